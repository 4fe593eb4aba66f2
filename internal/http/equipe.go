package http

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	httpmiddleware "github.com/gabinetefacil/gabinete/internal/http/middleware"
	"github.com/gabinetefacil/gabinete/internal/rbac"
	"github.com/gabinetefacil/gabinete/internal/service"
)

// ListEquipe devolve os membros do gabinete efetivo.
func (h *Handler) ListEquipe(w http.ResponseWriter, r *http.Request) {
	sess := httpmiddleware.GetSession(r.Context())
	usuarios, err := h.equipe.List(r.Context(), sess, requestedGabinete(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"membros": usuarios})
}

// InviteMember cria um novo membro com senha temporária.
func (h *Handler) InviteMember(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Nome     string `json:"nome"`
		Email    string `json:"email"`
		Role     string `json:"role"`
		Gabinete string `json:"gabinete_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	gabineteID := uuid.Nil
	if payload.Gabinete != "" {
		parsed, err := uuid.Parse(payload.Gabinete)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "VALIDATION", "gabinete_id inválido", nil)
			return
		}
		gabineteID = parsed
	}

	sess := httpmiddleware.GetSession(r.Context())
	result, err := h.equipe.Invite(r.Context(), sess, service.InviteInput{
		Nome:       payload.Nome,
		Email:      payload.Email,
		Role:       rbac.Role(payload.Role),
		GabineteID: gabineteID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	body := map[string]any{
		"membro":       result.Usuario,
		"email_criado": result.MailSent,
	}
	// A senha só aparece na resposta quando o e-mail de convite não saiu.
	if !result.MailSent {
		body["senha_temporaria"] = result.TempPassword
	}
	WriteJSON(w, http.StatusCreated, body)
}

// UpdateMember altera nome e e-mail de um membro.
func (h *Handler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	memberID, ok := urlUUID(r, "id")
	if !ok {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload struct {
		Nome  string `json:"nome"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	sess := httpmiddleware.GetSession(r.Context())
	usuario, err := h.equipe.UpdateMember(r.Context(), sess, memberID, service.UpdateMemberInput{
		Nome:  payload.Nome,
		Email: payload.Email,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"membro": usuario})
}

// ChangeMemberRole troca o papel de um membro (somente superadmin).
func (h *Handler) ChangeMemberRole(w http.ResponseWriter, r *http.Request) {
	memberID, ok := urlUUID(r, "id")
	if !ok {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload struct {
		Role     string `json:"role"`
		Gabinete string `json:"gabinete_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	var gabineteID *uuid.UUID
	if payload.Gabinete != "" {
		parsed, err := uuid.Parse(payload.Gabinete)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "VALIDATION", "gabinete_id inválido", nil)
			return
		}
		gabineteID = &parsed
	}

	sess := httpmiddleware.GetSession(r.Context())
	usuario, err := h.equipe.ChangeRole(r.Context(), sess, memberID, rbac.Role(payload.Role), gabineteID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"membro": usuario})
}

// DeactivateMember desativa um membro e derruba suas sessões.
func (h *Handler) DeactivateMember(w http.ResponseWriter, r *http.Request) {
	memberID, ok := urlUUID(r, "id")
	if !ok {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	sess := httpmiddleware.GetSession(r.Context())
	if err := h.equipe.Deactivate(r.Context(), sess, memberID); err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "desativado"})
}

// ReactivateMember reativa um membro desativado.
func (h *Handler) ReactivateMember(w http.ResponseWriter, r *http.Request) {
	memberID, ok := urlUUID(r, "id")
	if !ok {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	sess := httpmiddleware.GetSession(r.Context())
	if err := h.equipe.Reactivate(r.Context(), sess, memberID); err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "reativado"})
}
