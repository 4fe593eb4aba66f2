package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/gabinetefacil/gabinete/internal/rbac"
	"github.com/gabinetefacil/gabinete/internal/session"
)

type sessionResolver interface {
	Resolve(ctx context.Context, uid uuid.UUID) (*session.Session, error)
}

type signOuter interface {
	ForceSignOut(ctx context.Context, subject uuid.UUID)
}

// ResolveSession valida o perfil e o gabinete a cada requisição autenticada e
// injeta a sessão resolvida no contexto. O token sozinho nunca é suficiente:
// perfil desativado ou gabinete vencido derrubam a requisição na hora.
func ResolveSession(resolver sessionResolver, auth signOuter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, err := uuid.Parse(GetSubject(r.Context()))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthenticated", "subject inválido")
				return
			}

			sess, err := resolver.Resolve(r.Context(), subject)
			if err != nil {
				var rejected *session.RejectedError
				if errors.As(err, &rejected) {
					if auth != nil {
						auth.ForceSignOut(r.Context(), subject)
					}
					writeError(w, http.StatusForbidden, string(rejected.Reason), rejected.Mensagem)
					return
				}
				writeError(w, http.StatusInternalServerError, "INTERNAL", "erro interno")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySession, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSession recupera a sessão resolvida do contexto.
func GetSession(ctx context.Context) *session.Session {
	val, _ := ctx.Value(ContextKeySession).(*session.Session)
	return val
}

// RequireSuperAdmin restringe a rota ao console do superadmin.
func RequireSuperAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := GetSession(r.Context())
		if sess == nil || !sess.IsSuperAdmin() {
			writeError(w, http.StatusForbidden, "FORBIDDEN", "acesso restrito ao superadmin")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin restringe a rota a admins e superadmins.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := GetSession(r.Context())
		if sess == nil || (sess.Role != rbac.RoleAdmin && sess.Role != rbac.RoleSuperAdmin) {
			writeError(w, http.StatusForbidden, "FORBIDDEN", "acesso restrito a administradores")
			return
		}
		next.ServeHTTP(w, r)
	})
}
