package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gabinetefacil/gabinete/internal/despesa"
)

// ListDespesas devolve as despesas do gabinete, com filtro opcional ano/mes.
func (h *Handler) ListDespesas(w http.ResponseWriter, r *http.Request) {
	_, gabineteID, err := effectiveGabinete(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	ano, _ := strconv.Atoi(r.URL.Query().Get("ano"))
	mes, _ := strconv.Atoi(r.URL.Query().Get("mes"))

	despesas, err := h.despesas.List(r.Context(), gabineteID, ano, mes)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"despesas": despesas})
}

// ResumoDespesas consolida os gastos do mês por categoria.
func (h *Handler) ResumoDespesas(w http.ResponseWriter, r *http.Request) {
	_, gabineteID, err := effectiveGabinete(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	ano, _ := strconv.Atoi(r.URL.Query().Get("ano"))
	mes, _ := strconv.Atoi(r.URL.Query().Get("mes"))

	resumo, err := h.despesas.Resumo(r.Context(), gabineteID, ano, mes)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"resumo": resumo})
}

// ListCategoriasDespesa devolve a lista fixa de categorias.
func (h *Handler) ListCategoriasDespesa(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{"categorias": despesa.Categorias})
}

// CreateDespesa insere uma despesa.
func (h *Handler) CreateDespesa(w http.ResponseWriter, r *http.Request) {
	_, gabineteID, err := effectiveGabinete(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var input despesa.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	d, err := h.despesas.Create(r.Context(), gabineteID, input)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.dashboard.Invalidate(r.Context(), gabineteID)
	WriteJSON(w, http.StatusCreated, map[string]any{"despesa": d})
}

// UpdateDespesa altera uma despesa.
func (h *Handler) UpdateDespesa(w http.ResponseWriter, r *http.Request) {
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

	var input despesa.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	d, err := h.despesas.Update(r.Context(), gabineteID, id, input)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"despesa": d})
}

// DeleteDespesa remove uma despesa.
func (h *Handler) DeleteDespesa(w http.ResponseWriter, r *http.Request) {
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

	if err := h.despesas.Delete(r.Context(), gabineteID, id); err != nil {
		writeDomainError(w, err)
		return
	}
	h.dashboard.Invalidate(r.Context(), gabineteID)
	WriteJSON(w, http.StatusOK, map[string]string{"status": "removida"})
}
