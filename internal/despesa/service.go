// Package despesa controla os gastos do gabinete com categorias fixas e
// consolidação mensal. Valores trafegam em centavos para evitar float.
package despesa

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gabinetefacil/gabinete/internal/util"
)

// Service aplica as regras de negócio sobre despesas.
type Service struct {
	repo *Repository
	now  func() time.Time
}

// NewService cria o serviço de despesas.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo, now: util.Now}
}

// Get busca uma despesa do gabinete.
func (s *Service) Get(ctx context.Context, gabineteID, id uuid.UUID) (Despesa, error) {
	return s.repo.GetByID(ctx, gabineteID, id)
}

// List devolve as despesas do gabinete, com filtro opcional por competência.
func (s *Service) List(ctx context.Context, gabineteID uuid.UUID, ano, mes int) ([]Despesa, error) {
	return s.repo.List(ctx, gabineteID, ano, mes)
}

// Create valida e insere uma despesa.
func (s *Service) Create(ctx context.Context, gabineteID uuid.UUID, input Input) (Despesa, error) {
	if err := s.validate(&input); err != nil {
		return Despesa{}, err
	}
	return s.repo.Create(ctx, gabineteID, input)
}

// Update valida e altera uma despesa.
func (s *Service) Update(ctx context.Context, gabineteID, id uuid.UUID, input Input) (Despesa, error) {
	if err := s.validate(&input); err != nil {
		return Despesa{}, err
	}
	return s.repo.Update(ctx, gabineteID, id, input)
}

// Delete remove uma despesa.
func (s *Service) Delete(ctx context.Context, gabineteID, id uuid.UUID) error {
	return s.repo.Delete(ctx, gabineteID, id)
}

// Resumo consolida os gastos do mês por categoria.
// Ano e mês zerados usam a competência corrente.
func (s *Service) Resumo(ctx context.Context, gabineteID uuid.UUID, ano, mes int) (ResumoMes, error) {
	if ano <= 0 || mes <= 0 || mes > 12 {
		agora := s.now()
		ano = agora.Year()
		mes = int(agora.Month())
	}

	totais, geral, err := s.repo.TotaisMes(ctx, gabineteID, ano, mes)
	if err != nil {
		return ResumoMes{}, err
	}
	return ResumoMes{Ano: ano, Mes: mes, TotalCentavos: geral, PorCategoria: totais}, nil
}

func (s *Service) validate(input *Input) error {
	if err := util.RequireString(input.Descricao, "descrição"); err != nil {
		return err
	}
	input.Categoria = strings.ToLower(strings.TrimSpace(input.Categoria))
	if !CategoriaValida(input.Categoria) {
		return ErrCategoriaInvalida
	}
	if input.ValorCentavos <= 0 {
		return ErrValorInvalido
	}
	if input.Data.IsZero() {
		input.Data = s.now()
	}
	return nil
}
