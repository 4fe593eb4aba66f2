package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gabinetefacil/gabinete/internal/gabinete"
	httpmiddleware "github.com/gabinetefacil/gabinete/internal/http/middleware"
	"github.com/gabinetefacil/gabinete/internal/util"
)

// ListGabinetes devolve todos os gabinetes da plataforma.
func (h *Handler) ListGabinetes(w http.ResponseWriter, r *http.Request) {
	gabinetes, err := h.gabinetes.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"gabinetes": gabinetes})
}

// GetGabinete devolve um gabinete com a contagem de membros.
func (h *Handler) GetGabinete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(r, "id")
	if !ok {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	gab, err := h.gabinetes.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	membros, err := h.gabinetes.CountMembros(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"gabinete": gab,
		"membros":  membros,
		"vencido":  gab.Vencido(util.Now()),
	})
}

// CreateGabinete registra um gabinete manualmente pelo console.
func (h *Handler) CreateGabinete(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Nome       string `json:"nome"`
		Ativo      *bool  `json:"ativo"`
		Vencimento string `json:"vencimento"` // RFC 3339
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}
	if err := util.RequireString(payload.Nome, "nome"); err != nil {
		writeDomainError(w, err)
		return
	}

	ativo := true
	if payload.Ativo != nil {
		ativo = *payload.Ativo
	}

	vencimento := util.Now().Add(h.cfg.TrialDuration)
	if payload.Vencimento != "" {
		parsed, err := time.Parse(time.RFC3339, payload.Vencimento)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "VALIDATION", "vencimento inválido, use RFC 3339", nil)
			return
		}
		vencimento = parsed
	}

	gab, err := h.gabinetes.Create(r.Context(), gabinete.CreateInput{
		Nome:       payload.Nome,
		Ativo:      ativo,
		Vencimento: vencimento,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{"gabinete": gab})
}

// UpdateGabinete altera nome, vigência e ativação de um gabinete.
func (h *Handler) UpdateGabinete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(r, "id")
	if !ok {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	atual, err := h.gabinetes.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var payload struct {
		Nome       *string `json:"nome"`
		Ativo      *bool   `json:"ativo"`
		Vencimento *string `json:"vencimento"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	input := gabinete.UpdateInput{
		ID:         id,
		Nome:       atual.Nome,
		Ativo:      atual.Ativo,
		Vencimento: atual.Vencimento,
	}
	if payload.Nome != nil {
		input.Nome = *payload.Nome
	}
	if payload.Ativo != nil {
		input.Ativo = *payload.Ativo
	}
	if payload.Vencimento != nil {
		parsed, err := time.Parse(time.RFC3339, *payload.Vencimento)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "VALIDATION", "vencimento inválido, use RFC 3339", nil)
			return
		}
		input.Vencimento = parsed
	}

	gab, err := h.gabinetes.Update(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	// Gabinete desativado perde as sessões na próxima varredura; aqui
	// derrubamos imediatamente para não esperar o agendador.
	if payload.Ativo != nil && !*payload.Ativo && h.sweeper != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			h.sweeper.RunExpirationSweep(ctx)
		}()
	}

	WriteJSON(w, http.StatusOK, map[string]any{"gabinete": gab})
}

// ListAllUsuarios devolve todos os perfis da plataforma.
func (h *Handler) ListAllUsuarios(w http.ResponseWriter, r *http.Request) {
	sess := httpmiddleware.GetSession(r.Context())
	usuarios, err := h.equipe.ListAll(r.Context(), sess)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"usuarios": usuarios})
}

// ListAcessos devolve o histórico recente de autenticações.
func (h *Handler) ListAcessos(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.acessos.List(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"acessos": entries})
}
