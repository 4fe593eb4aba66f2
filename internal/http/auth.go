package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	httpmiddleware "github.com/gabinetefacil/gabinete/internal/http/middleware"
	"github.com/gabinetefacil/gabinete/internal/provision"
	"github.com/gabinetefacil/gabinete/internal/service"
	"github.com/gabinetefacil/gabinete/internal/session"
)

const refreshCookieName = "gf_refresh"

type sessionPayload struct {
	ID         string     `json:"id"`
	Nome       string     `json:"nome"`
	Email      string     `json:"email"`
	Role       string     `json:"role"`
	GabineteID *uuid.UUID `json:"gabinete_id,omitempty"`
	Gabinete   any        `json:"gabinete,omitempty"`
}

func newSessionPayload(sess *session.Session) sessionPayload {
	payload := sessionPayload{
		ID:         sess.UsuarioID.String(),
		Nome:       sess.Nome,
		Email:      sess.Email,
		Role:       string(sess.Role),
		GabineteID: sess.GabineteID,
	}
	if sess.Gabinete != nil {
		payload.Gabinete = sess.Gabinete
	}
	return payload
}

// Login autentica por e-mail e senha.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
		Senha string `json:"senha"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	if strings.TrimSpace(payload.Email) == "" || strings.TrimSpace(payload.Senha) == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "email e senha são obrigatórios", nil)
		return
	}

	result, err := h.authService.Login(r.Context(), payload.Email, payload.Senha, service.AccessMeta{
		IP:        httpmiddleware.RealIP(r),
		UserAgent: r.Header.Get("User-Agent"),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.writeLoginSuccess(w, result)
}

// Register cria gabinete e conta admin em uma única operação.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		GabineteNome string `json:"gabinete_nome"`
		Nome         string `json:"nome"`
		Email        string `json:"email"`
		Senha        string `json:"senha"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	result, err := h.provisioner.SelfRegister(r.Context(), provision.SelfRegisterInput{
		GabineteNome: payload.GabineteNome,
		UserNome:     payload.Nome,
		Email:        payload.Email,
		Password:     payload.Senha,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	// Autentica direto após o registro
	login, err := h.authService.Login(r.Context(), payload.Email, payload.Senha, service.AccessMeta{
		IP:        httpmiddleware.RealIP(r),
		UserAgent: r.Header.Get("User-Agent"),
	})
	if err != nil {
		WriteJSON(w, http.StatusCreated, map[string]any{
			"usuario":  result.Usuario,
			"gabinete": result.Gabinete,
		})
		return
	}

	h.setRefreshCookie(w, login.RefreshToken, login.RefreshExpiry)
	WriteJSON(w, http.StatusCreated, map[string]any{
		"access_token": login.AccessToken,
		"user":         newSessionPayload(login.Session),
		"gabinete":     result.Gabinete,
	})
}

// Refresh rotaciona o par de tokens.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	token, err := refreshFromRequest(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "unauthenticated", "refresh ausente", nil)
		return
	}

	result, err := h.authService.Refresh(r.Context(), token)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.writeLoginSuccess(w, result)
}

// Logout revoga o refresh token atual.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token, err := refreshFromRequest(r); err == nil {
		_ = h.authService.Logout(r.Context(), token)
	}

	h.clearRefreshCookie(w)
	WriteJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// Me devolve a sessão resolvida da requisição.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	sess := httpmiddleware.GetSession(r.Context())
	if sess == nil {
		WriteError(w, http.StatusUnauthorized, "unauthenticated", "sessão ausente", nil)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"user": newSessionPayload(sess)})
}

func (h *Handler) writeLoginSuccess(w http.ResponseWriter, result *service.LoginResult) {
	h.setRefreshCookie(w, result.RefreshToken, result.RefreshExpiry)

	WriteJSON(w, http.StatusOK, map[string]any{
		"access_token": result.AccessToken,
		"user":         newSessionPayload(result.Session),
	})
}

func refreshFromRequest(r *http.Request) (string, error) {
	if c, err := r.Cookie(refreshCookieName); err == nil && c.Value != "" {
		return c.Value, nil
	}
	var payload struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err == nil && payload.RefreshToken != "" {
		return payload.RefreshToken, nil
	}
	return "", http.ErrNoCookie
}

func (h *Handler) setRefreshCookie(w http.ResponseWriter, token string, expires time.Time) {
	secure := !h.devCookies
	sameSite := http.SameSiteNoneMode
	if h.devCookies {
		sameSite = http.SameSiteLaxMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
	})
}

func (h *Handler) clearRefreshCookie(w http.ResponseWriter) {
	secure := !h.devCookies
	sameSite := http.SameSiteNoneMode
	if h.devCookies {
		sameSite = http.SameSiteLaxMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
	})
}
