package contato

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound indica contato inexistente no gabinete.
var ErrNotFound = errors.New("contato não encontrado")

// Contato representa uma pessoa atendida pelo gabinete.
type Contato struct {
	ID             uuid.UUID  `json:"id"`
	GabineteID     uuid.UUID  `json:"gabinete_id"`
	Nome           string     `json:"nome"`
	Telefone       string     `json:"telefone,omitempty"`
	Email          string     `json:"email,omitempty"`
	Endereco       string     `json:"endereco,omitempty"`
	Bairro         string     `json:"bairro,omitempty"`
	Cidade         string     `json:"cidade,omitempty"`
	DataNascimento *time.Time `json:"data_nascimento,omitempty"`
	Observacoes    string     `json:"observacoes,omitempty"`
	CriadoEm       time.Time  `json:"criado_em"`
	AtualizadoEm   time.Time  `json:"atualizado_em"`
}

// Input carrega os campos editáveis de um contato.
type Input struct {
	Nome           string     `json:"nome"`
	Telefone       string     `json:"telefone"`
	Email          string     `json:"email"`
	Endereco       string     `json:"endereco"`
	Bairro         string     `json:"bairro"`
	Cidade         string     `json:"cidade"`
	DataNascimento *time.Time `json:"data_nascimento"`
	Observacoes    string     `json:"observacoes"`
}

// Aniversariante é um contato visto pela lente do aniversário.
type Aniversariante struct {
	Contato
	Idade  int    `json:"idade"`
	DiaMes string `json:"dia_mes"`
	Hoje   bool   `json:"hoje"`
}
