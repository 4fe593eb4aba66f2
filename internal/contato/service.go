// Package contato cuida do cadastro de munícipes do gabinete, incluindo a
// visão de aniversariantes usada no painel e no digest diário.
package contato

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/gabinetefacil/gabinete/internal/util"
)

// Service aplica as regras de negócio sobre contatos.
type Service struct {
	repo *Repository
	now  func() time.Time
}

// NewService cria o serviço de contatos.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo, now: util.Now}
}

// Get busca um contato do gabinete.
func (s *Service) Get(ctx context.Context, gabineteID, id uuid.UUID) (Contato, error) {
	return s.repo.GetByID(ctx, gabineteID, id)
}

// List devolve os contatos do gabinete, com busca opcional.
func (s *Service) List(ctx context.Context, gabineteID uuid.UUID, search string) ([]Contato, error) {
	return s.repo.List(ctx, gabineteID, search)
}

// Create valida e insere um contato.
func (s *Service) Create(ctx context.Context, gabineteID uuid.UUID, input Input) (Contato, error) {
	if err := util.RequireString(input.Nome, "nome"); err != nil {
		return Contato{}, err
	}
	if input.Email != "" {
		if err := util.ValidateEmail(input.Email); err != nil {
			return Contato{}, err
		}
	}
	return s.repo.Create(ctx, gabineteID, input)
}

// Update valida e altera um contato.
func (s *Service) Update(ctx context.Context, gabineteID, id uuid.UUID, input Input) (Contato, error) {
	if err := util.RequireString(input.Nome, "nome"); err != nil {
		return Contato{}, err
	}
	if input.Email != "" {
		if err := util.ValidateEmail(input.Email); err != nil {
			return Contato{}, err
		}
	}
	return s.repo.Update(ctx, gabineteID, id, input)
}

// Delete remove um contato.
func (s *Service) Delete(ctx context.Context, gabineteID, id uuid.UUID) error {
	return s.repo.Delete(ctx, gabineteID, id)
}

// Count devolve o total de contatos do gabinete.
func (s *Service) Count(ctx context.Context, gabineteID uuid.UUID) (int64, error) {
	return s.repo.Count(ctx, gabineteID)
}

// Aniversariantes devolve quem faz aniversário nos próximos `dias` dias,
// incluindo hoje, ordenado pela proximidade da data.
func (s *Service) Aniversariantes(ctx context.Context, gabineteID uuid.UUID, dias int) ([]Aniversariante, error) {
	if dias <= 0 {
		dias = 30
	}

	contatos, err := s.repo.ListComNascimento(ctx, gabineteID)
	if err != nil {
		return nil, err
	}

	hoje := s.now()
	hojeData := time.Date(hoje.Year(), hoje.Month(), hoje.Day(), 0, 0, 0, 0, time.UTC)

	type candidato struct {
		aniversariante Aniversariante
		faltam         int
	}
	var proximos []candidato
	for _, c := range contatos {
		nasc := *c.DataNascimento
		faltam, proximo := diasAteAniversario(hojeData, nasc)
		if faltam > dias {
			continue
		}
		idade := proximo.Year() - nasc.Year()
		proximos = append(proximos, candidato{
			aniversariante: Aniversariante{
				Contato: c,
				Idade:   idade,
				DiaMes:  nasc.Format("01-02"),
				Hoje:    faltam == 0,
			},
			faltam: faltam,
		})
	}

	sort.Slice(proximos, func(i, j int) bool {
		if proximos[i].faltam != proximos[j].faltam {
			return proximos[i].faltam < proximos[j].faltam
		}
		return proximos[i].aniversariante.Nome < proximos[j].aniversariante.Nome
	})

	result := make([]Aniversariante, 0, len(proximos))
	for _, p := range proximos {
		result = append(result, p.aniversariante)
	}
	return result, nil
}

// diasAteAniversario calcula quantos dias faltam para o próximo aniversário
// e em que data ele cai, tratando a virada de ano.
func diasAteAniversario(hoje time.Time, nascimento time.Time) (int, time.Time) {
	proximo := time.Date(hoje.Year(), nascimento.Month(), nascimento.Day(), 0, 0, 0, 0, time.UTC)
	// 29/02 em ano não bissexto normaliza para 01/03
	if proximo.Before(hoje) {
		proximo = time.Date(hoje.Year()+1, nascimento.Month(), nascimento.Day(), 0, 0, 0, 0, time.UTC)
	}
	return int(proximo.Sub(hoje).Hours() / 24), proximo
}
