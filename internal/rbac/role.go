package rbac

import (
	"errors"
	"strings"
)

var (
	// ErrUnknownRole indica papel armazenado fora da enumeração suportada.
	ErrUnknownRole = errors.New("papel desconhecido")
)

// Role enumera os papéis reconhecidos pela plataforma.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// ParseRole normaliza valores armazenados, incluindo o legado "assessor".
// Valores fora da enumeração retornam ErrUnknownRole em vez de um default
// silencioso.
func ParseRole(raw string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "user":
		return RoleUser, nil
	case "assessor":
		// valor de uma revisão anterior do esquema; equivale a membro comum
		return RoleUser, nil
	case "admin":
		return RoleAdmin, nil
	case "superadmin":
		return RoleSuperAdmin, nil
	default:
		return "", ErrUnknownRole
	}
}

// IsValid informa se o papel pertence à enumeração fechada.
func IsValid(role Role) bool {
	switch role {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	default:
		return false
	}
}

// RequiresGabinete indica se o papel exige vínculo com um gabinete.
func RequiresGabinete(role Role) bool {
	return role != RoleSuperAdmin
}
