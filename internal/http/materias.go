package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gabinetefacil/gabinete/internal/materia"
)

const maxAnexoBytes = 10 << 20 // 10 MiB

// ListMaterias devolve as matérias do gabinete, com filtros opcionais por
// status e texto livre.
func (h *Handler) ListMaterias(w http.ResponseWriter, r *http.Request) {
	_, gabineteID, err := effectiveGabinete(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	materias, err := h.materias.List(r.Context(), gabineteID, r.URL.Query().Get("status"), r.URL.Query().Get("busca"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"materias": materias})
}

// GetMateria devolve uma matéria com anexos.
func (h *Handler) GetMateria(w http.ResponseWriter, r *http.Request) {
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

	m, err := h.materias.Get(r.Context(), gabineteID, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"materia": m})
}

// CreateMateria insere uma matéria.
func (h *Handler) CreateMateria(w http.ResponseWriter, r *http.Request) {
	_, gabineteID, err := effectiveGabinete(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var input materia.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	m, err := h.materias.Create(r.Context(), gabineteID, input)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.dashboard.Invalidate(r.Context(), gabineteID)
	WriteJSON(w, http.StatusCreated, map[string]any{"materia": m})
}

// UpdateMateria altera uma matéria.
func (h *Handler) UpdateMateria(w http.ResponseWriter, r *http.Request) {
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

	var input materia.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	m, err := h.materias.Update(r.Context(), gabineteID, id, input)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"materia": m})
}

// ChangeMateriaStatus troca o status de tramitação.
func (h *Handler) ChangeMateriaStatus(w http.ResponseWriter, r *http.Request) {
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

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	if err := h.materias.ChangeStatus(r.Context(), gabineteID, id, payload.Status); err != nil {
		writeDomainError(w, err)
		return
	}
	h.dashboard.Invalidate(r.Context(), gabineteID)
	WriteJSON(w, http.StatusOK, map[string]string{"status": "atualizado"})
}

// DeleteMateria remove uma matéria e seus anexos.
func (h *Handler) DeleteMateria(w http.ResponseWriter, r *http.Request) {
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

	if err := h.materias.Delete(r.Context(), gabineteID, id); err != nil {
		writeDomainError(w, err)
		return
	}
	h.dashboard.Invalidate(r.Context(), gabineteID)
	WriteJSON(w, http.StatusOK, map[string]string{"status": "removida"})
}

// UploadAnexo recebe um arquivo multipart e o liga à matéria.
func (h *Handler) UploadAnexo(w http.ResponseWriter, r *http.Request) {
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

	if err := r.ParseMultipartForm(maxAnexoBytes); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "arquivo inválido ou grande demais", nil)
		return
	}

	file, header, err := r.FormFile("arquivo")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "campo arquivo ausente", nil)
		return
	}
	defer file.Close()

	body, err := io.ReadAll(io.LimitReader(file, maxAnexoBytes+1))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "falha ao ler arquivo", nil)
		return
	}
	if len(body) > maxAnexoBytes {
		WriteError(w, http.StatusRequestEntityTooLarge, "VALIDATION", "arquivo excede o limite de 10 MiB", nil)
		return
	}

	anexo, err := h.materias.AddAnexo(r.Context(), gabineteID, id, header.Filename, header.Header.Get("Content-Type"), body)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{"anexo": anexo})
}

// DeleteAnexo remove um anexo de matéria.
func (h *Handler) DeleteAnexo(w http.ResponseWriter, r *http.Request) {
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
	anexoID, ok := urlUUID(r, "anexoID")
	if !ok {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "anexo inválido", nil)
		return
	}

	if err := h.materias.RemoveAnexo(r.Context(), gabineteID, id, anexoID); err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "removido"})
}
