// Package agenda organiza os compromissos do gabinete agrupados por dia.
package agenda

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gabinetefacil/gabinete/internal/util"
)

// ErrInicioObrigatorio indica compromisso sem data de início.
var ErrInicioObrigatorio = errors.New("informe o início do compromisso")

// ErrFimAntesInicio indica intervalo invertido.
var ErrFimAntesInicio = errors.New("fim não pode ser anterior ao início")

// Service aplica as regras de negócio sobre a agenda.
type Service struct {
	repo *Repository
	now  func() time.Time
}

// NewService cria o serviço de agenda.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo, now: util.Now}
}

// Get busca um compromisso do gabinete.
func (s *Service) Get(ctx context.Context, gabineteID, id uuid.UUID) (Compromisso, error) {
	return s.repo.GetByID(ctx, gabineteID, id)
}

// Semana devolve os compromissos dos próximos sete dias agrupados por data.
func (s *Service) Semana(ctx context.Context, gabineteID uuid.UUID) ([]Dia, error) {
	inicio := s.truncateDay(s.now())
	return s.Periodo(ctx, gabineteID, inicio, inicio.AddDate(0, 0, 7))
}

// Periodo devolve os compromissos do intervalo agrupados por data.
func (s *Service) Periodo(ctx context.Context, gabineteID uuid.UUID, de, ate time.Time) ([]Dia, error) {
	if ate.Before(de) {
		de, ate = ate, de
	}

	compromissos, err := s.repo.ListPeriodo(ctx, gabineteID, de, ate)
	if err != nil {
		return nil, err
	}

	var dias []Dia
	for _, c := range compromissos {
		data := c.Inicio.UTC().Format("2006-01-02")
		if len(dias) == 0 || dias[len(dias)-1].Data != data {
			dias = append(dias, Dia{Data: data})
		}
		last := len(dias) - 1
		dias[last].Compromissos = append(dias[last].Compromissos, c)
	}
	return dias, nil
}

// Create valida e insere um compromisso.
func (s *Service) Create(ctx context.Context, gabineteID uuid.UUID, input Input) (Compromisso, error) {
	if err := s.validate(&input); err != nil {
		return Compromisso{}, err
	}
	return s.repo.Create(ctx, gabineteID, input)
}

// Update valida e altera um compromisso.
func (s *Service) Update(ctx context.Context, gabineteID, id uuid.UUID, input Input) (Compromisso, error) {
	if err := s.validate(&input); err != nil {
		return Compromisso{}, err
	}
	return s.repo.Update(ctx, gabineteID, id, input)
}

// Delete remove um compromisso.
func (s *Service) Delete(ctx context.Context, gabineteID, id uuid.UUID) error {
	return s.repo.Delete(ctx, gabineteID, id)
}

func (s *Service) validate(input *Input) error {
	if err := util.RequireString(input.Titulo, "título"); err != nil {
		return err
	}
	tipo, err := NormalizeTipo(input.Tipo)
	if err != nil {
		return err
	}
	input.Tipo = tipo
	if input.Inicio.IsZero() {
		return ErrInicioObrigatorio
	}
	if !input.Fim.IsZero() && input.Fim.Before(input.Inicio) {
		return ErrFimAntesInicio
	}
	return nil
}

func (s *Service) truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
