package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/gabinetefacil/gabinete/internal/guard"
	"github.com/gabinetefacil/gabinete/internal/provision"
	"github.com/gabinetefacil/gabinete/internal/rbac"
	"github.com/gabinetefacil/gabinete/internal/repo"
	"github.com/gabinetefacil/gabinete/internal/session"
)

type stubEquipeRepo struct {
	usuarios map[uuid.UUID]repo.Usuario
}

func newStubEquipeRepo(usuarios ...repo.Usuario) *stubEquipeRepo {
	s := &stubEquipeRepo{usuarios: map[uuid.UUID]repo.Usuario{}}
	for _, u := range usuarios {
		s.usuarios[u.ID] = u
	}
	return s
}

func (s *stubEquipeRepo) GetUsuarioByID(ctx context.Context, id uuid.UUID) (repo.Usuario, error) {
	u, ok := s.usuarios[id]
	if !ok {
		return repo.Usuario{}, repo.ErrNotFound
	}
	return u, nil
}

func (s *stubEquipeRepo) ListUsuariosByGabinete(ctx context.Context, gabineteID uuid.UUID) ([]repo.Usuario, error) {
	var out []repo.Usuario
	for _, u := range s.usuarios {
		if u.GabineteID != nil && *u.GabineteID == gabineteID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *stubEquipeRepo) ListUsuarios(ctx context.Context) ([]repo.Usuario, error) {
	var out []repo.Usuario
	for _, u := range s.usuarios {
		out = append(out, u)
	}
	return out, nil
}

func (s *stubEquipeRepo) UpdateUsuario(ctx context.Context, id uuid.UUID, nome, email string) error {
	u, ok := s.usuarios[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.Nome = nome
	u.Email = email
	s.usuarios[id] = u
	return nil
}

func (s *stubEquipeRepo) UpdateUsuarioRole(ctx context.Context, id uuid.UUID, role string, gabineteID *uuid.UUID) error {
	u, ok := s.usuarios[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.Role = role
	u.GabineteID = gabineteID
	s.usuarios[id] = u
	return nil
}

func (s *stubEquipeRepo) UpdateUsuarioAtivo(ctx context.Context, id uuid.UUID, ativo bool) error {
	u, ok := s.usuarios[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.Ativo = ativo
	s.usuarios[id] = u
	return nil
}

type stubProvisioner struct {
	lastInput provision.CreateMemberInput
	result    *provision.CreateMemberResult
	err       error
}

func (s *stubProvisioner) CreateMember(ctx context.Context, input provision.CreateMemberInput) (*provision.CreateMemberResult, error) {
	s.lastInput = input
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubSignOuter struct {
	signedOut []uuid.UUID
}

func (s *stubSignOuter) ForceSignOut(ctx context.Context, subject uuid.UUID) {
	s.signedOut = append(s.signedOut, subject)
}

func adminSession(gabineteID uuid.UUID) *session.Session {
	return &session.Session{UsuarioID: uuid.New(), Role: rbac.RoleAdmin, GabineteID: &gabineteID}
}

func superAdminSession() *session.Session {
	return &session.Session{UsuarioID: uuid.New(), Role: rbac.RoleSuperAdmin}
}

func memberFixture(gabineteID uuid.UUID, role string) repo.Usuario {
	id := uuid.New()
	return repo.Usuario{
		ID:         id,
		Nome:       "Membro",
		Email:      "membro-" + id.String()[:8] + "@exemplo.com",
		Role:       role,
		GabineteID: &gabineteID,
		Ativo:      true,
	}
}

func TestInviteAdminNoProprioGabinete(t *testing.T) {
	gabID := uuid.New()
	prov := &stubProvisioner{result: &provision.CreateMemberResult{
		Usuario:      memberFixture(gabID, "user"),
		TempPassword: "temp123",
	}}
	svc := NewEquipeService(newStubEquipeRepo(), prov, &stubSignOuter{}, nil)

	result, err := svc.Invite(context.Background(), adminSession(gabID), InviteInput{
		Nome:  "Novo Membro",
		Email: "novo@exemplo.com",
		Role:  rbac.RoleUser,
	})
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if result.TempPassword != "temp123" {
		t.Fatal("senha temporária deve ser repassada quando não há mailer")
	}
	if result.MailSent {
		t.Fatal("sem mailer configurado, MailSent deve ser falso")
	}
	if prov.lastInput.GabineteID == nil || *prov.lastInput.GabineteID != gabID {
		t.Fatal("convite de admin deve cair no próprio gabinete")
	}
}

func TestInviteAdminNaoElevaPapel(t *testing.T) {
	gabID := uuid.New()
	svc := NewEquipeService(newStubEquipeRepo(), &stubProvisioner{}, &stubSignOuter{}, nil)

	_, err := svc.Invite(context.Background(), adminSession(gabID), InviteInput{
		Nome:  "Novo Admin",
		Email: "novo@exemplo.com",
		Role:  rbac.RoleAdmin,
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("esperava ErrForbidden, veio %v", err)
	}
}

func TestInviteAdminOutroGabinete(t *testing.T) {
	gabID := uuid.New()
	svc := NewEquipeService(newStubEquipeRepo(), &stubProvisioner{}, &stubSignOuter{}, nil)

	_, err := svc.Invite(context.Background(), adminSession(gabID), InviteInput{
		Nome:       "Novo Membro",
		Email:      "novo@exemplo.com",
		Role:       rbac.RoleUser,
		GabineteID: uuid.New(),
	})
	if !errors.Is(err, guard.ErrGabineteDivergente) {
		t.Fatalf("esperava ErrGabineteDivergente, veio %v", err)
	}
}

func TestInviteSuperAdminEscolheGabinete(t *testing.T) {
	alvo := uuid.New()
	prov := &stubProvisioner{result: &provision.CreateMemberResult{Usuario: memberFixture(alvo, "admin")}}
	svc := NewEquipeService(newStubEquipeRepo(), prov, &stubSignOuter{}, nil)

	_, err := svc.Invite(context.Background(), superAdminSession(), InviteInput{
		Nome:       "Admin do Alvo",
		Email:      "admin@exemplo.com",
		Role:       rbac.RoleAdmin,
		GabineteID: alvo,
	})
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if prov.lastInput.GabineteID == nil || *prov.lastInput.GabineteID != alvo {
		t.Fatal("superadmin deve poder indicar o gabinete alvo")
	}
}

func TestInviteMembroComumNegado(t *testing.T) {
	gabID := uuid.New()
	svc := NewEquipeService(newStubEquipeRepo(), &stubProvisioner{}, &stubSignOuter{}, nil)
	sess := &session.Session{UsuarioID: uuid.New(), Role: rbac.RoleUser, GabineteID: &gabID}

	_, err := svc.Invite(context.Background(), sess, InviteInput{
		Nome:  "Novo",
		Email: "novo@exemplo.com",
		Role:  rbac.RoleUser,
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("esperava ErrForbidden, veio %v", err)
	}
}

// Membro de outro gabinete aparece como inexistente, nunca como proibido.
func TestUpdateMemberOutroGabineteVira404(t *testing.T) {
	gabID := uuid.New()
	outro := uuid.New()
	alheio := memberFixture(outro, "user")
	svc := NewEquipeService(newStubEquipeRepo(alheio), &stubProvisioner{}, &stubSignOuter{}, nil)

	_, err := svc.UpdateMember(context.Background(), adminSession(gabID), alheio.ID, UpdateMemberInput{
		Nome:  "Tentativa",
		Email: "tentativa@exemplo.com",
	})
	if !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("esperava ErrMemberNotFound, veio %v", err)
	}
}

func TestUpdateMemberAdminNaoEditaAdmin(t *testing.T) {
	gabID := uuid.New()
	colega := memberFixture(gabID, "admin")
	svc := NewEquipeService(newStubEquipeRepo(colega), &stubProvisioner{}, &stubSignOuter{}, nil)

	_, err := svc.UpdateMember(context.Background(), adminSession(gabID), colega.ID, UpdateMemberInput{
		Nome:  "Novo Nome",
		Email: "novo@exemplo.com",
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("esperava ErrForbidden, veio %v", err)
	}
}

func TestChangeRoleExclusivoSuperAdmin(t *testing.T) {
	gabID := uuid.New()
	membro := memberFixture(gabID, "user")
	svc := NewEquipeService(newStubEquipeRepo(membro), &stubProvisioner{}, &stubSignOuter{}, nil)

	_, err := svc.ChangeRole(context.Background(), adminSession(gabID), membro.ID, rbac.RoleAdmin, nil)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("esperava ErrForbidden, veio %v", err)
	}
}

func TestChangeRoleDerrubaSessoesDoAlvo(t *testing.T) {
	gabID := uuid.New()
	membro := memberFixture(gabID, "user")
	signOuter := &stubSignOuter{}
	svc := NewEquipeService(newStubEquipeRepo(membro), &stubProvisioner{}, signOuter, nil)

	updated, err := svc.ChangeRole(context.Background(), superAdminSession(), membro.ID, rbac.RoleAdmin, nil)
	if err != nil {
		t.Fatalf("ChangeRole: %v", err)
	}
	if updated.Role != "admin" {
		t.Fatalf("role = %s, esperava admin", updated.Role)
	}
	if len(signOuter.signedOut) != 1 || signOuter.signedOut[0] != membro.ID {
		t.Fatal("mudança de papel deve derrubar as sessões do alvo")
	}
}

func TestChangeRoleParaSuperAdminRemoveGabinete(t *testing.T) {
	gabID := uuid.New()
	membro := memberFixture(gabID, "user")
	repoStub := newStubEquipeRepo(membro)
	svc := NewEquipeService(repoStub, &stubProvisioner{}, &stubSignOuter{}, nil)

	updated, err := svc.ChangeRole(context.Background(), superAdminSession(), membro.ID, rbac.RoleSuperAdmin, nil)
	if err != nil {
		t.Fatalf("ChangeRole: %v", err)
	}
	if updated.GabineteID != nil {
		t.Fatal("superadmin não mantém vínculo com gabinete")
	}
}

func TestDeactivateProprioPerfilNegado(t *testing.T) {
	gabID := uuid.New()
	sess := adminSession(gabID)
	svc := NewEquipeService(newStubEquipeRepo(), &stubProvisioner{}, &stubSignOuter{}, nil)

	if err := svc.Deactivate(context.Background(), sess, sess.UsuarioID); !errors.Is(err, ErrSelfDeactivate) {
		t.Fatalf("esperava ErrSelfDeactivate, veio %v", err)
	}
}

func TestDeactivateDerrubaSessoes(t *testing.T) {
	gabID := uuid.New()
	membro := memberFixture(gabID, "user")
	repoStub := newStubEquipeRepo(membro)
	signOuter := &stubSignOuter{}
	svc := NewEquipeService(repoStub, &stubProvisioner{}, signOuter, nil)

	if err := svc.Deactivate(context.Background(), adminSession(gabID), membro.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	if repoStub.usuarios[membro.ID].Ativo {
		t.Fatal("membro deveria estar desativado")
	}
	if len(signOuter.signedOut) != 1 || signOuter.signedOut[0] != membro.ID {
		t.Fatal("desativação deve derrubar as sessões do alvo")
	}
}

func TestReactivate(t *testing.T) {
	gabID := uuid.New()
	membro := memberFixture(gabID, "user")
	membro.Ativo = false
	repoStub := newStubEquipeRepo(membro)
	svc := NewEquipeService(repoStub, &stubProvisioner{}, &stubSignOuter{}, nil)

	if err := svc.Reactivate(context.Background(), adminSession(gabID), membro.ID); err != nil {
		t.Fatalf("Reactivate: %v", err)
	}
	if !repoStub.usuarios[membro.ID].Ativo {
		t.Fatal("membro deveria estar ativo novamente")
	}
}

func TestListAllExclusivoSuperAdmin(t *testing.T) {
	gabID := uuid.New()
	svc := NewEquipeService(newStubEquipeRepo(), &stubProvisioner{}, &stubSignOuter{}, nil)

	if _, err := svc.ListAll(context.Background(), adminSession(gabID)); !errors.Is(err, ErrForbidden) {
		t.Fatalf("esperava ErrForbidden, veio %v", err)
	}
	if _, err := svc.ListAll(context.Background(), superAdminSession()); err != nil {
		t.Fatalf("ListAll para superadmin: %v", err)
	}
}
