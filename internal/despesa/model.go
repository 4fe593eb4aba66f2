package despesa

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound indica despesa inexistente no gabinete.
	ErrNotFound = errors.New("despesa não encontrada")
	// ErrCategoriaInvalida indica categoria fora da lista fixa.
	ErrCategoriaInvalida = errors.New("categoria inválida")
	// ErrValorInvalido indica valor zerado ou negativo.
	ErrValorInvalido = errors.New("valor deve ser maior que zero")
)

// Categorias aceitas para despesas do gabinete.
var Categorias = []string{
	"combustivel",
	"alimentacao",
	"material_escritorio",
	"divulgacao",
	"locacao",
	"servicos",
	"outros",
}

// CategoriaValida informa se a categoria pertence à lista fixa.
func CategoriaValida(categoria string) bool {
	for _, c := range Categorias {
		if c == categoria {
			return true
		}
	}
	return false
}

// Despesa representa um gasto do gabinete. Valor em centavos.
type Despesa struct {
	ID            uuid.UUID `json:"id"`
	GabineteID    uuid.UUID `json:"gabinete_id"`
	Descricao     string    `json:"descricao"`
	Categoria     string    `json:"categoria"`
	ValorCentavos int64     `json:"valor_centavos"`
	Data          time.Time `json:"data"`
	Observacoes   string    `json:"observacoes,omitempty"`
	CriadoEm      time.Time `json:"criado_em"`
}

// Input carrega os campos editáveis de uma despesa.
type Input struct {
	Descricao     string    `json:"descricao"`
	Categoria     string    `json:"categoria"`
	ValorCentavos int64     `json:"valor_centavos"`
	Data          time.Time `json:"data"`
	Observacoes   string    `json:"observacoes"`
}

// TotalCategoria agrega o gasto de uma categoria no período.
type TotalCategoria struct {
	Categoria     string `json:"categoria"`
	TotalCentavos int64  `json:"total_centavos"`
}

// ResumoMes consolida os gastos de um mês.
type ResumoMes struct {
	Ano           int              `json:"ano"`
	Mes           int              `json:"mes"`
	TotalCentavos int64            `json:"total_centavos"`
	PorCategoria  []TotalCategoria `json:"por_categoria"`
}
