package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gabinetefacil/gabinete/internal/guard"
	httpmiddleware "github.com/gabinetefacil/gabinete/internal/http/middleware"
	"github.com/gabinetefacil/gabinete/internal/session"
)

// requestedGabinete extrai o gabinete alvo pedido na requisição, se houver.
// Aceita o header X-Gabinete ou o parâmetro de query `gabinete`.
func requestedGabinete(r *http.Request) uuid.UUID {
	raw := strings.TrimSpace(r.Header.Get("X-Gabinete"))
	if raw == "" {
		raw = strings.TrimSpace(r.URL.Query().Get("gabinete"))
	}
	if raw == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// effectiveGabinete resolve o gabinete efetivo da requisição pela sessão.
func effectiveGabinete(r *http.Request) (*session.Session, uuid.UUID, error) {
	sess := httpmiddleware.GetSession(r.Context())
	if sess == nil {
		return nil, uuid.Nil, guard.ErrGabineteNaoInformado
	}
	id, err := guard.Effective(sess, requestedGabinete(r))
	if err != nil {
		return nil, uuid.Nil, err
	}
	return sess, id, nil
}

// urlUUID interpreta um parâmetro de rota como UUID.
func urlUUID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	return id, err == nil
}
