package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/gabinetefacil/gabinete/internal/rbac"
	"github.com/gabinetefacil/gabinete/internal/session"
)

type stubResolver struct {
	sess *session.Session
	err  error
}

func (s *stubResolver) Resolve(ctx context.Context, uid uuid.UUID) (*session.Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.sess, nil
}

type stubSignOuter struct {
	signedOut []uuid.UUID
}

func (s *stubSignOuter) ForceSignOut(ctx context.Context, subject uuid.UUID) {
	s.signedOut = append(s.signedOut, subject)
}

func requestWithSubject(subject string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/v1/contatos", nil)
	ctx := context.WithValue(req.Context(), ContextKeySubject, subject)
	return req.WithContext(ctx)
}

func TestResolveSessionInjetaSessao(t *testing.T) {
	uid := uuid.New()
	gabID := uuid.New()
	resolver := &stubResolver{sess: &session.Session{UsuarioID: uid, Role: rbac.RoleUser, GabineteID: &gabID}}

	var got *session.Session
	handler := ResolveSession(resolver, &stubSignOuter{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetSession(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithSubject(uid.String()))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, esperava 200", rec.Code)
	}
	if got == nil || got.UsuarioID != uid {
		t.Fatal("sessão resolvida não chegou ao handler")
	}
}

// A rejeição na resolução nega a requisição e derruba as credenciais do
// subject na hora, mesmo com access token ainda dentro da validade.
func TestResolveSessionRejeicaoDerrubaCredenciais(t *testing.T) {
	uid := uuid.New()
	resolver := &stubResolver{err: session.Reject(session.ReasonTenantExpired, "gabinete vencido")}
	signOuter := &stubSignOuter{}

	handler := ResolveSession(resolver, signOuter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler não deveria ser alcançado")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithSubject(uid.String()))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, esperava 403", rec.Code)
	}
	if len(signOuter.signedOut) != 1 || signOuter.signedOut[0] != uid {
		t.Fatal("rejeição deve derrubar as credenciais do subject")
	}

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error.Code != "tenant_expired" {
		t.Fatalf("code = %q, esperava tenant_expired", envelope.Error.Code)
	}
}

func TestResolveSessionSubjectInvalido(t *testing.T) {
	handler := ResolveSession(&stubResolver{}, &stubSignOuter{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler não deveria ser alcançado")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithSubject("nao-e-uuid"))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, esperava 401", rec.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	cases := []struct {
		role rbac.Role
		want int
	}{
		{rbac.RoleUser, http.StatusForbidden},
		{rbac.RoleAdmin, http.StatusOK},
		{rbac.RoleSuperAdmin, http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/v1/equipe", nil)
		ctx := context.WithValue(req.Context(), ContextKeySession, &session.Session{UsuarioID: uuid.New(), Role: tc.role})
		rec := httptest.NewRecorder()
		RequireAdmin(next).ServeHTTP(rec, req.WithContext(ctx))
		if rec.Code != tc.want {
			t.Errorf("papel %s: status = %d, esperava %d", tc.role, rec.Code, tc.want)
		}
	}

	// sem sessão resolvida nega
	rec := httptest.NewRecorder()
	RequireAdmin(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/equipe", nil))
	if rec.Code != http.StatusForbidden {
		t.Errorf("sem sessão: status = %d, esperava 403", rec.Code)
	}
}

func TestRequireSuperAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/saas/gabinetes", nil)
	ctx := context.WithValue(req.Context(), ContextKeySession, &session.Session{UsuarioID: uuid.New(), Role: rbac.RoleAdmin})
	rec := httptest.NewRecorder()
	RequireSuperAdmin(next).ServeHTTP(rec, req.WithContext(ctx))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("admin no console saas: status = %d, esperava 403", rec.Code)
	}

	ctx = context.WithValue(req.Context(), ContextKeySession, &session.Session{UsuarioID: uuid.New(), Role: rbac.RoleSuperAdmin})
	rec = httptest.NewRecorder()
	RequireSuperAdmin(next).ServeHTTP(rec, req.WithContext(ctx))
	if rec.Code != http.StatusOK {
		t.Fatalf("superadmin: status = %d, esperava 200", rec.Code)
	}
}
