package guard

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/gabinetefacil/gabinete/internal/rbac"
	"github.com/gabinetefacil/gabinete/internal/session"
)

func memberSession(gabineteID uuid.UUID) *session.Session {
	return &session.Session{
		UsuarioID:  uuid.New(),
		Role:       rbac.RoleUser,
		GabineteID: &gabineteID,
	}
}

func TestEffectiveMembroSemPedido(t *testing.T) {
	gabID := uuid.New()
	got, err := Effective(memberSession(gabID), uuid.Nil)
	if err != nil {
		t.Fatalf("Effective: %v", err)
	}
	if got != gabID {
		t.Fatalf("gabinete efetivo = %s, esperava o do perfil %s", got, gabID)
	}
}

func TestEffectiveMembroPedidoIgual(t *testing.T) {
	gabID := uuid.New()
	got, err := Effective(memberSession(gabID), gabID)
	if err != nil {
		t.Fatalf("Effective: %v", err)
	}
	if got != gabID {
		t.Fatalf("gabinete efetivo = %s, esperava %s", got, gabID)
	}
}

func TestEffectiveMembroPedidoDivergente(t *testing.T) {
	gabID := uuid.New()
	outro := uuid.New()
	_, err := Effective(memberSession(gabID), outro)
	if !errors.Is(err, ErrGabineteDivergente) {
		t.Fatalf("esperava ErrGabineteDivergente, veio %v", err)
	}
}

func TestEffectiveSuperAdminExigeAlvo(t *testing.T) {
	sess := &session.Session{UsuarioID: uuid.New(), Role: rbac.RoleSuperAdmin}

	if _, err := Effective(sess, uuid.Nil); !errors.Is(err, ErrGabineteNaoInformado) {
		t.Fatalf("esperava ErrGabineteNaoInformado, veio %v", err)
	}

	alvo := uuid.New()
	got, err := Effective(sess, alvo)
	if err != nil {
		t.Fatalf("Effective: %v", err)
	}
	if got != alvo {
		t.Fatalf("gabinete efetivo = %s, esperava %s", got, alvo)
	}
}

func TestEffectiveMembroSemVinculo(t *testing.T) {
	sess := &session.Session{UsuarioID: uuid.New(), Role: rbac.RoleUser}
	_, err := Effective(sess, uuid.Nil)

	var rejected *session.RejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("esperava RejectedError, veio %v", err)
	}
	if rejected.Reason != session.ReasonNoTenantAssigned {
		t.Fatalf("motivo = %s, esperava %s", rejected.Reason, session.ReasonNoTenantAssigned)
	}
}

func TestScopeKey(t *testing.T) {
	gabID := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	got := ScopeKey(gabID, "resumo")
	want := "gabinetes/6ba7b810-9dad-11d1-80b4-00c04fd430c8/resumo"
	if got != want {
		t.Fatalf("ScopeKey = %q, esperava %q", got, want)
	}
}
