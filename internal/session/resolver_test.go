package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gabinetefacil/gabinete/internal/gabinete"
	"github.com/gabinetefacil/gabinete/internal/rbac"
	"github.com/gabinetefacil/gabinete/internal/repo"
)

type stubProfiles struct {
	usuarios map[uuid.UUID]repo.Usuario
	err      error
}

func (s *stubProfiles) GetUsuarioByID(ctx context.Context, id uuid.UUID) (repo.Usuario, error) {
	if s.err != nil {
		return repo.Usuario{}, s.err
	}
	u, ok := s.usuarios[id]
	if !ok {
		return repo.Usuario{}, repo.ErrNotFound
	}
	return u, nil
}

type stubGabinetes struct {
	gabinetes map[uuid.UUID]*gabinete.Gabinete
	err       error
}

func (s *stubGabinetes) GetByID(ctx context.Context, id uuid.UUID) (*gabinete.Gabinete, error) {
	if s.err != nil {
		return nil, s.err
	}
	g, ok := s.gabinetes[id]
	if !ok {
		return nil, gabinete.ErrNotFound
	}
	return g, nil
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
}

func newTestResolver(usuarios *stubProfiles, gabinetes *stubGabinetes) *Resolver {
	r := NewResolver(usuarios, gabinetes)
	r.now = fixedNow
	return r
}

func validFixture() (*stubProfiles, *stubGabinetes, uuid.UUID) {
	gabID := uuid.New()
	uid := uuid.New()
	usuarios := &stubProfiles{usuarios: map[uuid.UUID]repo.Usuario{
		uid: {ID: uid, Nome: "Ana", Email: "ana@exemplo.com", Role: "user", GabineteID: &gabID, Ativo: true},
	}}
	gabinetes := &stubGabinetes{gabinetes: map[uuid.UUID]*gabinete.Gabinete{
		gabID: {ID: gabID, Nome: "Gabinete Centro", Ativo: true, Vencimento: fixedNow().Add(24 * time.Hour)},
	}}
	return usuarios, gabinetes, uid
}

func assertRejected(t *testing.T, err error, want Reason) {
	t.Helper()
	var rejected *RejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("esperava RejectedError, veio %v", err)
	}
	if rejected.Reason != want {
		t.Fatalf("motivo = %s, esperava %s", rejected.Reason, want)
	}
}

func TestResolveAutorizado(t *testing.T) {
	usuarios, gabinetes, uid := validFixture()
	r := newTestResolver(usuarios, gabinetes)

	sess, err := r.Resolve(context.Background(), uid)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if sess.UsuarioID != uid {
		t.Fatalf("UsuarioID = %s, esperava %s", sess.UsuarioID, uid)
	}
	if sess.Role != rbac.RoleUser {
		t.Fatalf("Role = %s, esperava user", sess.Role)
	}
	if sess.Gabinete == nil {
		t.Fatal("sessão autorizada deve carregar o gabinete")
	}
}

func TestResolvePerfilInexistente(t *testing.T) {
	usuarios, gabinetes, _ := validFixture()
	r := newTestResolver(usuarios, gabinetes)

	_, err := r.Resolve(context.Background(), uuid.New())
	assertRejected(t, err, ReasonProfileNotFound)
}

func TestResolvePerfilDesativado(t *testing.T) {
	usuarios, gabinetes, uid := validFixture()
	u := usuarios.usuarios[uid]
	u.Ativo = false
	usuarios.usuarios[uid] = u
	r := newTestResolver(usuarios, gabinetes)

	_, err := r.Resolve(context.Background(), uid)
	assertRejected(t, err, ReasonUserDeactivated)
}

func TestResolvePapelDesconhecido(t *testing.T) {
	usuarios, gabinetes, uid := validFixture()
	u := usuarios.usuarios[uid]
	u.Role = "gestor"
	usuarios.usuarios[uid] = u
	r := newTestResolver(usuarios, gabinetes)

	_, err := r.Resolve(context.Background(), uid)
	assertRejected(t, err, ReasonUnknownRole)
}

func TestResolvePapelLegadoAssessor(t *testing.T) {
	usuarios, gabinetes, uid := validFixture()
	u := usuarios.usuarios[uid]
	u.Role = "assessor"
	usuarios.usuarios[uid] = u
	r := newTestResolver(usuarios, gabinetes)

	sess, err := r.Resolve(context.Background(), uid)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if sess.Role != rbac.RoleUser {
		t.Fatalf("Role = %s, esperava user para o legado assessor", sess.Role)
	}
}

func TestResolveSemGabineteVinculado(t *testing.T) {
	usuarios, gabinetes, uid := validFixture()
	u := usuarios.usuarios[uid]
	u.GabineteID = nil
	usuarios.usuarios[uid] = u
	r := newTestResolver(usuarios, gabinetes)

	_, err := r.Resolve(context.Background(), uid)
	assertRejected(t, err, ReasonNoTenantAssigned)
}

func TestResolveGabineteInexistente(t *testing.T) {
	usuarios, _, uid := validFixture()
	r := newTestResolver(usuarios, &stubGabinetes{gabinetes: map[uuid.UUID]*gabinete.Gabinete{}})

	_, err := r.Resolve(context.Background(), uid)
	assertRejected(t, err, ReasonTenantNotFound)
}

func TestResolveGabineteInativo(t *testing.T) {
	usuarios, gabinetes, uid := validFixture()
	for _, g := range gabinetes.gabinetes {
		g.Ativo = false
	}
	r := newTestResolver(usuarios, gabinetes)

	_, err := r.Resolve(context.Background(), uid)
	assertRejected(t, err, ReasonTenantDeactivated)
}

func TestResolveGabineteVencido(t *testing.T) {
	usuarios, gabinetes, uid := validFixture()
	for _, g := range gabinetes.gabinetes {
		g.Vencimento = fixedNow().Add(-time.Hour)
	}
	r := newTestResolver(usuarios, gabinetes)

	_, err := r.Resolve(context.Background(), uid)
	assertRejected(t, err, ReasonTenantExpired)
}

// Gabinete desativado E vencido: a ordem fixa reporta a desativação primeiro.
func TestResolveGabineteInativoEVencido(t *testing.T) {
	usuarios, gabinetes, uid := validFixture()
	for _, g := range gabinetes.gabinetes {
		g.Ativo = false
		g.Vencimento = fixedNow().Add(-time.Hour)
	}
	r := newTestResolver(usuarios, gabinetes)

	_, err := r.Resolve(context.Background(), uid)
	assertRejected(t, err, ReasonTenantDeactivated)
}

func TestResolveSuperAdminSemGabinete(t *testing.T) {
	uid := uuid.New()
	usuarios := &stubProfiles{usuarios: map[uuid.UUID]repo.Usuario{
		uid: {ID: uid, Nome: "Root", Email: "root@exemplo.com", Role: "superadmin", Ativo: true},
	}}
	r := newTestResolver(usuarios, &stubGabinetes{gabinetes: map[uuid.UUID]*gabinete.Gabinete{}})

	sess, err := r.Resolve(context.Background(), uid)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !sess.IsSuperAdmin() {
		t.Fatal("esperava sessão de superadmin")
	}
	if sess.Gabinete != nil {
		t.Fatal("superadmin não carrega gabinete na sessão")
	}
}

// Superadmin com gabinete residual no perfil: o vínculo é ignorado e a
// resolução não consulta o armazenamento de gabinetes.
func TestResolveSuperAdminIgnoraGabinete(t *testing.T) {
	gabID := uuid.New()
	uid := uuid.New()
	usuarios := &stubProfiles{usuarios: map[uuid.UUID]repo.Usuario{
		uid: {ID: uid, Role: "superadmin", GabineteID: &gabID, Ativo: true},
	}}
	gabinetes := &stubGabinetes{err: errors.New("não deveria consultar gabinetes")}
	r := newTestResolver(usuarios, gabinetes)

	sess, err := r.Resolve(context.Background(), uid)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if sess.Gabinete != nil {
		t.Fatal("superadmin não carrega gabinete na sessão")
	}
}

func TestResolveFalhaDeLeituraNuncaAutoriza(t *testing.T) {
	usuarios := &stubProfiles{err: errors.New("timeout")}
	r := newTestResolver(usuarios, &stubGabinetes{})

	sess, err := r.Resolve(context.Background(), uuid.New())
	if sess != nil {
		t.Fatal("falha de leitura não pode autorizar sessão")
	}
	assertRejected(t, err, ReasonInternal)
}
