package agenda

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound indica compromisso inexistente no gabinete.
	ErrNotFound = errors.New("compromisso não encontrado")
	// ErrTipoInvalido indica tipo fora da enumeração.
	ErrTipoInvalido = errors.New("tipo de compromisso inválido")
)

// Tipos aceitos de compromisso.
const (
	TipoReuniao = "reuniao"
	TipoEvento  = "evento"
	TipoVisita  = "visita"
	TipoSessao  = "sessao"
)

// NormalizeTipo valida e normaliza o tipo do compromisso.
func NormalizeTipo(t string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "", TipoReuniao, "reunião":
		return TipoReuniao, nil
	case TipoEvento:
		return TipoEvento, nil
	case TipoVisita:
		return TipoVisita, nil
	case TipoSessao, "sessão":
		return TipoSessao, nil
	default:
		return "", ErrTipoInvalido
	}
}

// Compromisso é um item da agenda do gabinete.
type Compromisso struct {
	ID         uuid.UUID `json:"id"`
	GabineteID uuid.UUID `json:"gabinete_id"`
	Titulo     string    `json:"titulo"`
	Tipo       string    `json:"tipo"`
	Inicio     time.Time `json:"inicio"`
	Fim        time.Time `json:"fim,omitempty"`
	Local      string    `json:"local,omitempty"`
	Descricao  string    `json:"descricao,omitempty"`
	CriadoEm   time.Time `json:"criado_em"`
}

// Input carrega os campos editáveis de um compromisso.
type Input struct {
	Titulo    string    `json:"titulo"`
	Tipo      string    `json:"tipo"`
	Inicio    time.Time `json:"inicio"`
	Fim       time.Time `json:"fim"`
	Local     string    `json:"local"`
	Descricao string    `json:"descricao"`
}

// Dia agrupa os compromissos de uma data.
type Dia struct {
	Data         string        `json:"data"` // AAAA-MM-DD
	Compromissos []Compromisso `json:"compromissos"`
}
