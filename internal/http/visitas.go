package http

import (
	"encoding/json"
	"net/http"

	"github.com/gabinetefacil/gabinete/internal/contato"
	"github.com/gabinetefacil/gabinete/internal/visita"
)

// ListVisitas devolve as visitas do gabinete efetivo.
func (h *Handler) ListVisitas(w http.ResponseWriter, r *http.Request) {
	_, gabineteID, err := effectiveGabinete(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	visitas, err := h.visitas.List(r.Context(), gabineteID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"visitas": visitas})
}

// ListTiposVisita devolve os tipos já usados pelo gabinete.
func (h *Handler) ListTiposVisita(w http.ResponseWriter, r *http.Request) {
	_, gabineteID, err := effectiveGabinete(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	tipos, err := h.visitas.Tipos(r.Context(), gabineteID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"tipos": tipos})
}

// CreateVisita insere uma visita; com `contato_novo` cria o contato junto.
func (h *Handler) CreateVisita(w http.ResponseWriter, r *http.Request) {
	_, gabineteID, err := effectiveGabinete(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var payload struct {
		visita.Input
		ContatoNovo *contato.Input `json:"contato_novo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	if payload.ContatoNovo != nil {
		v, c, err := h.visitas.CreateComContato(r.Context(), gabineteID, *payload.ContatoNovo, payload.Input)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		h.dashboard.Invalidate(r.Context(), gabineteID)
		WriteJSON(w, http.StatusCreated, map[string]any{"visita": v, "contato": c})
		return
	}

	v, err := h.visitas.Create(r.Context(), gabineteID, payload.Input)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.dashboard.Invalidate(r.Context(), gabineteID)
	WriteJSON(w, http.StatusCreated, map[string]any{"visita": v})
}

// UpdateVisita altera uma visita.
func (h *Handler) UpdateVisita(w http.ResponseWriter, r *http.Request) {
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

	var input visita.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	v, err := h.visitas.Update(r.Context(), gabineteID, id, input)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"visita": v})
}

// DeleteVisita remove uma visita.
func (h *Handler) DeleteVisita(w http.ResponseWriter, r *http.Request) {
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

	if err := h.visitas.Delete(r.Context(), gabineteID, id); err != nil {
		writeDomainError(w, err)
		return
	}
	h.dashboard.Invalidate(r.Context(), gabineteID)
	WriteJSON(w, http.StatusOK, map[string]string{"status": "removida"})
}
