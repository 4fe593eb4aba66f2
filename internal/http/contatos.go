package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gabinetefacil/gabinete/internal/contato"
)

// ListContatos devolve os contatos do gabinete efetivo.
func (h *Handler) ListContatos(w http.ResponseWriter, r *http.Request) {
	_, gabineteID, err := effectiveGabinete(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	contatos, err := h.contatos.List(r.Context(), gabineteID, r.URL.Query().Get("busca"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"contatos": contatos})
}

// GetContato devolve um contato.
func (h *Handler) GetContato(w http.ResponseWriter, r *http.Request) {
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

	c, err := h.contatos.Get(r.Context(), gabineteID, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"contato": c})
}

// CreateContato insere um contato.
func (h *Handler) CreateContato(w http.ResponseWriter, r *http.Request) {
	_, gabineteID, err := effectiveGabinete(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var input contato.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	c, err := h.contatos.Create(r.Context(), gabineteID, input)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.dashboard.Invalidate(r.Context(), gabineteID)
	WriteJSON(w, http.StatusCreated, map[string]any{"contato": c})
}

// UpdateContato altera um contato.
func (h *Handler) UpdateContato(w http.ResponseWriter, r *http.Request) {
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

	var input contato.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	c, err := h.contatos.Update(r.Context(), gabineteID, id, input)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"contato": c})
}

// DeleteContato remove um contato.
func (h *Handler) DeleteContato(w http.ResponseWriter, r *http.Request) {
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

	if err := h.contatos.Delete(r.Context(), gabineteID, id); err != nil {
		writeDomainError(w, err)
		return
	}
	h.dashboard.Invalidate(r.Context(), gabineteID)
	WriteJSON(w, http.StatusOK, map[string]string{"status": "removido"})
}

// ListAniversariantes devolve os próximos aniversariantes do gabinete.
func (h *Handler) ListAniversariantes(w http.ResponseWriter, r *http.Request) {
	_, gabineteID, err := effectiveGabinete(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dias, _ := strconv.Atoi(r.URL.Query().Get("dias"))
	aniversariantes, err := h.contatos.Aniversariantes(r.Context(), gabineteID, dias)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"aniversariantes": aniversariantes})
}
