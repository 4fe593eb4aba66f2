package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gabinetefacil/gabinete/internal/gabinete"
	"github.com/gabinetefacil/gabinete/internal/rbac"
	"github.com/gabinetefacil/gabinete/internal/repo"
)

type profileStore interface {
	GetUsuarioByID(ctx context.Context, id uuid.UUID) (repo.Usuario, error)
}

type gabineteStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*gabinete.Gabinete, error)
}

// Resolver valida uma identidade autenticada e produz a sessão autorizada.
type Resolver struct {
	usuarios  profileStore
	gabinetes gabineteStore
	now       func() time.Time
}

// NewResolver cria resolvedor de sessões.
func NewResolver(usuarios profileStore, gabinetes gabineteStore) *Resolver {
	return &Resolver{usuarios: usuarios, gabinetes: gabinetes, now: func() time.Time { return time.Now().UTC() }}
}

// Resolve executa as verificações de login na ordem fixa:
// perfil existe → perfil ativo → papel válido → superadmin dispensa gabinete →
// gabinete presente → gabinete existe → gabinete ativo → gabinete vigente.
// Qualquer falha de leitura vira rejeição interna; nunca autoriza em erro.
func (r *Resolver) Resolve(ctx context.Context, uid uuid.UUID) (*Session, error) {
	usuario, err := r.usuarios.GetUsuarioByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, Reject(ReasonProfileNotFound, "perfil não encontrado")
		}
		return nil, rejectInternal(err)
	}

	if !usuario.Ativo {
		return nil, Reject(ReasonUserDeactivated, "conta desativada")
	}

	role, err := rbac.ParseRole(usuario.Role)
	if err != nil {
		return nil, Reject(ReasonUnknownRole, "papel não reconhecido")
	}

	sess := &Session{
		UsuarioID:  usuario.ID,
		Nome:       usuario.Nome,
		Email:      usuario.Email,
		Role:       role,
		GabineteID: usuario.GabineteID,
	}

	if role == rbac.RoleSuperAdmin {
		return sess, nil
	}

	if usuario.GabineteID == nil {
		return nil, Reject(ReasonNoTenantAssigned, "perfil sem gabinete vinculado")
	}

	gab, err := r.gabinetes.GetByID(ctx, *usuario.GabineteID)
	if err != nil {
		if errors.Is(err, gabinete.ErrNotFound) {
			return nil, Reject(ReasonTenantNotFound, "gabinete não encontrado")
		}
		return nil, rejectInternal(err)
	}

	if !gab.Ativo {
		return nil, Reject(ReasonTenantDeactivated, "gabinete inativo")
	}

	if gab.Vencido(r.now()) {
		return nil, Reject(ReasonTenantExpired, "gabinete vencido")
	}

	sess.Gabinete = gab
	return sess, nil
}
