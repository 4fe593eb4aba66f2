package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gabinetefacil/gabinete/internal/agenda"
)

// ListAgenda devolve os compromissos do período agrupados por dia.
// Sem parâmetros, devolve a semana corrente.
func (h *Handler) ListAgenda(w http.ResponseWriter, r *http.Request) {
	_, gabineteID, err := effectiveGabinete(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	deRaw := r.URL.Query().Get("de")
	ateRaw := r.URL.Query().Get("ate")
	if deRaw == "" || ateRaw == "" {
		dias, err := h.agenda.Semana(r.Context(), gabineteID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{"dias": dias})
		return
	}

	de, err := time.Parse("2006-01-02", deRaw)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "parâmetro de inválido, use AAAA-MM-DD", nil)
		return
	}
	ate, err := time.Parse("2006-01-02", ateRaw)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "parâmetro ate inválido, use AAAA-MM-DD", nil)
		return
	}

	dias, err := h.agenda.Periodo(r.Context(), gabineteID, de, ate.AddDate(0, 0, 1))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"dias": dias})
}

// GetCompromisso devolve um compromisso.
func (h *Handler) GetCompromisso(w http.ResponseWriter, r *http.Request) {
	_, gabineteID, err := effectiveGabinete(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	id, ok := urlUUID(r, "id")
	if !ok {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	c, err := h.agenda.Get(r.Context(), gabineteID, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"compromisso": c})
}

// CreateCompromisso insere um compromisso.
func (h *Handler) CreateCompromisso(w http.ResponseWriter, r *http.Request) {
	_, gabineteID, err := effectiveGabinete(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var input agenda.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	c, err := h.agenda.Create(r.Context(), gabineteID, input)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.dashboard.Invalidate(r.Context(), gabineteID)
	WriteJSON(w, http.StatusCreated, map[string]any{"compromisso": c})
}

// UpdateCompromisso altera um compromisso.
func (h *Handler) UpdateCompromisso(w http.ResponseWriter, r *http.Request) {
	_, gabineteID, err := effectiveGabinete(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	id, ok := urlUUID(r, "id")
	if !ok {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var input agenda.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	c, err := h.agenda.Update(r.Context(), gabineteID, id, input)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"compromisso": c})
}

// DeleteCompromisso remove um compromisso.
func (h *Handler) DeleteCompromisso(w http.ResponseWriter, r *http.Request) {
	_, gabineteID, err := effectiveGabinete(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	id, ok := urlUUID(r, "id")
	if !ok {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := h.agenda.Delete(r.Context(), gabineteID, id); err != nil {
		writeDomainError(w, err)
		return
	}
	h.dashboard.Invalidate(r.Context(), gabineteID)
	WriteJSON(w, http.StatusOK, map[string]string{"status": "removido"})
}

// Dashboard devolve o resumo consolidado do gabinete.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	_, gabineteID, err := effectiveGabinete(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resumo, err := h.dashboard.Resumo(r.Context(), gabineteID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"resumo": resumo})
}
