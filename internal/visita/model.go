package visita

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound indica visita inexistente no gabinete.
var ErrNotFound = errors.New("visita não encontrada")

// Visita registra um atendimento ou visita de munícipe ao gabinete.
type Visita struct {
	ID          uuid.UUID  `json:"id"`
	GabineteID  uuid.UUID  `json:"gabinete_id"`
	ContatoID   *uuid.UUID `json:"contato_id,omitempty"`
	ContatoNome string     `json:"contato_nome"`
	Tipo        string     `json:"tipo,omitempty"`
	Data        time.Time  `json:"data"`
	Descricao   string     `json:"descricao,omitempty"`
	CriadoEm    time.Time  `json:"criado_em"`
}

// Input carrega os campos editáveis de uma visita.
type Input struct {
	ContatoID   *uuid.UUID `json:"contato_id"`
	ContatoNome string     `json:"contato_nome"`
	Tipo        string     `json:"tipo"`
	Data        time.Time  `json:"data"`
	Descricao   string     `json:"descricao"`
}
