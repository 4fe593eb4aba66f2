package gabinete

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("gabinete não encontrado")
)

// Gabinete representa um escritório/cliente na plataforma.
type Gabinete struct {
	ID           uuid.UUID  `json:"id"`
	Nome         string     `json:"nome"`
	Ativo        bool       `json:"ativo"`
	Vencimento   time.Time  `json:"vencimento"`
	OwnerID      *uuid.UUID `json:"owner_id,omitempty"`
	CriadoEm     time.Time  `json:"criado_em"`
	AtualizadoEm time.Time  `json:"atualizado_em"`
}

// Vencido indica se o prazo de vigência já passou.
func (g Gabinete) Vencido(now time.Time) bool {
	return !g.Vencimento.IsZero() && now.After(g.Vencimento)
}

// CreateInput contém os campos necessários para registrar um gabinete.
type CreateInput struct {
	Nome       string
	Ativo      bool
	Vencimento time.Time
	OwnerID    *uuid.UUID
}

// UpdateInput contém os campos mutáveis pelo superadmin.
type UpdateInput struct {
	ID         uuid.UUID
	Nome       string
	Ativo      bool
	Vencimento time.Time
}
