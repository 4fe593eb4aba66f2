package materia

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound indica matéria inexistente no gabinete.
	ErrNotFound = errors.New("matéria não encontrada")
	// ErrStatusInvalido indica status fora da enumeração.
	ErrStatusInvalido = errors.New("status inválido")
	// ErrAnexoNotFound indica anexo inexistente na matéria.
	ErrAnexoNotFound = errors.New("anexo não encontrado")
)

// Status de tramitação de uma matéria legislativa.
const (
	StatusAguardando = "aguardando"
	StatusAprovado   = "aprovado"
	StatusRejeitado  = "rejeitado"
	StatusAtendida   = "atendida"
)

// NormalizeStatus aceita variações de caixa e acento comuns na entrada.
func NormalizeStatus(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", StatusAguardando, "aguardando votação", "pendente":
		return StatusAguardando, nil
	case StatusAprovado, "aprovada":
		return StatusAprovado, nil
	case StatusRejeitado, "rejeitada":
		return StatusRejeitado, nil
	case StatusAtendida, "atendido":
		return StatusAtendida, nil
	default:
		return "", ErrStatusInvalido
	}
}

// Materia representa uma indicação, requerimento ou projeto do gabinete.
type Materia struct {
	ID         uuid.UUID `json:"id"`
	GabineteID uuid.UUID `json:"gabinete_id"`
	Titulo     string    `json:"titulo"`
	Tipo       string    `json:"tipo,omitempty"`
	Numero     string    `json:"numero,omitempty"`
	Status     string    `json:"status"`
	Descricao  string    `json:"descricao,omitempty"`
	Data       time.Time `json:"data"`
	Anexos     []Anexo   `json:"anexos,omitempty"`
	CriadoEm   time.Time `json:"criado_em"`
}

// Anexo é um arquivo ligado à matéria, guardado no bucket.
type Anexo struct {
	ID        uuid.UUID `json:"id"`
	MateriaID uuid.UUID `json:"materia_id"`
	Nome      string    `json:"nome"`
	Chave     string    `json:"chave"`
	URL       string    `json:"url"`
	Tamanho   int64     `json:"tamanho"`
	CriadoEm  time.Time `json:"criado_em"`
}

// Input carrega os campos editáveis de uma matéria.
type Input struct {
	Titulo    string    `json:"titulo"`
	Tipo      string    `json:"tipo"`
	Numero    string    `json:"numero"`
	Status    string    `json:"status"`
	Descricao string    `json:"descricao"`
	Data      time.Time `json:"data"`
}
