package session

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/gabinetefacil/gabinete/internal/gabinete"
	"github.com/gabinetefacil/gabinete/internal/rbac"
)

// Reason identifica o motivo de uma sessão rejeitada.
type Reason string

const (
	ReasonProfileNotFound   Reason = "profile_not_found"
	ReasonUserDeactivated   Reason = "user_deactivated"
	ReasonUnknownRole       Reason = "unknown_role"
	ReasonNoTenantAssigned  Reason = "no_tenant_assigned"
	ReasonTenantNotFound    Reason = "tenant_not_found"
	ReasonTenantDeactivated Reason = "tenant_deactivated"
	ReasonTenantExpired     Reason = "tenant_expired"
	ReasonInternal          Reason = "internal"
)

// RejectedError descreve uma sessão recusada na resolução.
// Toda rejeição exige sign-out forçado no chamador.
type RejectedError struct {
	Reason   Reason
	Mensagem string
	cause    error
}

func (e *RejectedError) Error() string {
	if e.Mensagem != "" {
		return fmt.Sprintf("sessão rejeitada (%s): %s", e.Reason, e.Mensagem)
	}
	return fmt.Sprintf("sessão rejeitada (%s)", e.Reason)
}

func (e *RejectedError) Unwrap() error {
	return e.cause
}

// Reject cria erro de rejeição com mensagem para o usuário.
func Reject(reason Reason, mensagem string) *RejectedError {
	return &RejectedError{Reason: reason, Mensagem: mensagem}
}

func rejectInternal(err error) *RejectedError {
	return &RejectedError{Reason: ReasonInternal, Mensagem: "erro interno", cause: err}
}

// Session é o objeto explícito que circula por requisição após a resolução.
// Gabinete é nil apenas para superadmin.
type Session struct {
	UsuarioID  uuid.UUID
	Nome       string
	Email      string
	Role       rbac.Role
	GabineteID *uuid.UUID
	Gabinete   *gabinete.Gabinete
}

// IsSuperAdmin informa se a sessão pertence a um superadmin.
func (s *Session) IsSuperAdmin() bool {
	return s.Role == rbac.RoleSuperAdmin
}
