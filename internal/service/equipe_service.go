package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gabinetefacil/gabinete/internal/guard"
	"github.com/gabinetefacil/gabinete/internal/provision"
	"github.com/gabinetefacil/gabinete/internal/rbac"
	"github.com/gabinetefacil/gabinete/internal/repo"
	"github.com/gabinetefacil/gabinete/internal/session"
	"github.com/gabinetefacil/gabinete/internal/util"
)

var (
	// ErrForbidden indica ação administrativa fora da alçada do chamador.
	ErrForbidden = errors.New("operação não permitida para este papel")
	// ErrMemberNotFound indica membro inexistente ou fora do gabinete do chamador.
	ErrMemberNotFound = errors.New("membro não encontrado")
	// ErrSelfDeactivate impede o chamador de desativar a si mesmo.
	ErrSelfDeactivate = errors.New("não é possível desativar o próprio perfil")
)

type equipeRepository interface {
	GetUsuarioByID(ctx context.Context, id uuid.UUID) (repo.Usuario, error)
	ListUsuariosByGabinete(ctx context.Context, gabineteID uuid.UUID) ([]repo.Usuario, error)
	ListUsuarios(ctx context.Context) ([]repo.Usuario, error)
	UpdateUsuario(ctx context.Context, id uuid.UUID, nome, email string) error
	UpdateUsuarioRole(ctx context.Context, id uuid.UUID, role string, gabineteID *uuid.UUID) error
	UpdateUsuarioAtivo(ctx context.Context, id uuid.UUID, ativo bool) error
}

type memberProvisioner interface {
	CreateMember(ctx context.Context, input provision.CreateMemberInput) (*provision.CreateMemberResult, error)
}

type signOuter interface {
	ForceSignOut(ctx context.Context, subject uuid.UUID)
}

type inviteMailer interface {
	SendInvite(ctx context.Context, email, nome, tempPassword string) error
}

// EquipeService administra os membros de um gabinete.
// Toda operação recebe a sessão do chamador e passa pela tabela de políticas.
type EquipeService struct {
	repo      equipeRepository
	provision memberProvisioner
	auth      signOuter
	mailer    inviteMailer
}

// NewEquipeService cria o serviço de equipe. O mailer pode ser nil.
func NewEquipeService(r equipeRepository, p memberProvisioner, auth signOuter, mailer inviteMailer) *EquipeService {
	return &EquipeService{repo: r, provision: p, auth: auth, mailer: mailer}
}

// List devolve a equipe do gabinete efetivo.
func (s *EquipeService) List(ctx context.Context, sess *session.Session, requested uuid.UUID) ([]repo.Usuario, error) {
	gabineteID, err := guard.Effective(sess, requested)
	if err != nil {
		return nil, err
	}
	return s.repo.ListUsuariosByGabinete(ctx, gabineteID)
}

// ListAll devolve todos os perfis; exclusivo do superadmin.
func (s *EquipeService) ListAll(ctx context.Context, sess *session.Session) ([]repo.Usuario, error) {
	if !rbac.CanManage(sess.Role, rbac.RoleUser, rbac.ActionCrossTenant) {
		return nil, ErrForbidden
	}
	return s.repo.ListUsuarios(ctx)
}

// InviteInput descreve o convite de um novo membro.
type InviteInput struct {
	Nome       string
	Email      string
	Role       rbac.Role
	GabineteID uuid.UUID // ignorado para não superadmin
}

// InviteResult devolve o perfil criado e a senha temporária gerada.
type InviteResult struct {
	Usuario      repo.Usuario
	TempPassword string
	MailSent     bool
}

// Invite cria um novo membro no gabinete efetivo com senha temporária.
func (s *EquipeService) Invite(ctx context.Context, sess *session.Session, input InviteInput) (*InviteResult, error) {
	role, err := rbac.ParseRole(string(input.Role))
	if err != nil {
		return nil, provision.ErrInvalidRole
	}
	if !rbac.CanManage(sess.Role, role, rbac.ActionAddMember) {
		return nil, ErrForbidden
	}

	var gabineteID *uuid.UUID
	if rbac.RequiresGabinete(role) {
		effective, err := guard.Effective(sess, input.GabineteID)
		if err != nil {
			return nil, err
		}
		gabineteID = &effective
	}

	created, err := s.provision.CreateMember(ctx, provision.CreateMemberInput{
		Nome:       input.Nome,
		Email:      input.Email,
		Role:       role,
		GabineteID: gabineteID,
	})
	if err != nil {
		return nil, err
	}

	result := &InviteResult{Usuario: created.Usuario, TempPassword: created.TempPassword}
	if s.mailer != nil && created.TempPassword != "" {
		if err := s.mailer.SendInvite(ctx, created.Usuario.Email, created.Usuario.Nome, created.TempPassword); err != nil {
			log.Warn().Err(err).Msg("equipe: envio do convite falhou")
		} else {
			result.MailSent = true
		}
	}
	return result, nil
}

// UpdateMemberInput descreve a edição de nome e e-mail de um membro.
type UpdateMemberInput struct {
	Nome  string
	Email string
}

// UpdateMember altera os dados cadastrais de um membro do gabinete efetivo.
func (s *EquipeService) UpdateMember(ctx context.Context, sess *session.Session, memberID uuid.UUID, input UpdateMemberInput) (repo.Usuario, error) {
	if err := util.RequireString(input.Nome, "nome"); err != nil {
		return repo.Usuario{}, err
	}
	if err := util.ValidateEmail(input.Email); err != nil {
		return repo.Usuario{}, err
	}

	target, err := s.loadScoped(ctx, sess, memberID)
	if err != nil {
		return repo.Usuario{}, err
	}
	targetRole, err := rbac.ParseRole(target.Role)
	if err != nil {
		return repo.Usuario{}, ErrMemberNotFound
	}
	if !rbac.CanManage(sess.Role, targetRole, rbac.ActionEditMember) {
		return repo.Usuario{}, ErrForbidden
	}

	if err := s.repo.UpdateUsuario(ctx, memberID, input.Nome, input.Email); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return repo.Usuario{}, provision.ErrEmailInUse
		}
		return repo.Usuario{}, err
	}
	return s.repo.GetUsuarioByID(ctx, memberID)
}

// ChangeRole altera o papel de um membro; exclusivo do superadmin.
// O alvo perde as sessões ativas para reencarnar com o papel novo.
func (s *EquipeService) ChangeRole(ctx context.Context, sess *session.Session, memberID uuid.UUID, newRole rbac.Role, gabineteID *uuid.UUID) (repo.Usuario, error) {
	role, err := rbac.ParseRole(string(newRole))
	if err != nil {
		return repo.Usuario{}, provision.ErrInvalidRole
	}

	target, err := s.repo.GetUsuarioByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return repo.Usuario{}, ErrMemberNotFound
		}
		return repo.Usuario{}, err
	}
	targetRole, err := rbac.ParseRole(target.Role)
	if err != nil {
		targetRole = rbac.RoleUser
	}
	if !rbac.CanManage(sess.Role, targetRole, rbac.ActionChangeRole) {
		return repo.Usuario{}, ErrForbidden
	}

	if rbac.RequiresGabinete(role) {
		if gabineteID == nil {
			gabineteID = target.GabineteID
		}
		if gabineteID == nil {
			return repo.Usuario{}, provision.ErrGabineteRequired
		}
	} else {
		gabineteID = nil
	}

	if err := s.repo.UpdateUsuarioRole(ctx, memberID, string(role), gabineteID); err != nil {
		return repo.Usuario{}, err
	}
	if s.auth != nil {
		s.auth.ForceSignOut(ctx, memberID)
	}
	return s.repo.GetUsuarioByID(ctx, memberID)
}

// Deactivate desativa um membro e derruba suas sessões.
func (s *EquipeService) Deactivate(ctx context.Context, sess *session.Session, memberID uuid.UUID) error {
	if memberID == sess.UsuarioID {
		return ErrSelfDeactivate
	}

	target, err := s.loadScoped(ctx, sess, memberID)
	if err != nil {
		return err
	}
	targetRole, err := rbac.ParseRole(target.Role)
	if err != nil {
		targetRole = rbac.RoleUser
	}
	if !rbac.CanManage(sess.Role, targetRole, rbac.ActionDeactivate) {
		return ErrForbidden
	}

	if err := s.repo.UpdateUsuarioAtivo(ctx, memberID, false); err != nil {
		return err
	}
	if s.auth != nil {
		s.auth.ForceSignOut(ctx, memberID)
	}
	return nil
}

// Reactivate reativa um membro desativado.
func (s *EquipeService) Reactivate(ctx context.Context, sess *session.Session, memberID uuid.UUID) error {
	target, err := s.loadScoped(ctx, sess, memberID)
	if err != nil {
		return err
	}
	targetRole, err := rbac.ParseRole(target.Role)
	if err != nil {
		targetRole = rbac.RoleUser
	}
	if !rbac.CanManage(sess.Role, targetRole, rbac.ActionEditMember) {
		return ErrForbidden
	}
	return s.repo.UpdateUsuarioAtivo(ctx, memberID, true)
}

// loadScoped busca o alvo e garante que pertence ao gabinete do chamador.
// Membro de outro gabinete aparece como inexistente, nunca como proibido.
func (s *EquipeService) loadScoped(ctx context.Context, sess *session.Session, memberID uuid.UUID) (repo.Usuario, error) {
	target, err := s.repo.GetUsuarioByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return repo.Usuario{}, ErrMemberNotFound
		}
		return repo.Usuario{}, err
	}
	if sess.IsSuperAdmin() {
		return target, nil
	}
	if sess.GabineteID == nil || target.GabineteID == nil || *target.GabineteID != *sess.GabineteID {
		return repo.Usuario{}, ErrMemberNotFound
	}
	return target, nil
}
