package gabinete

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Service contém as regras de negócio para consulta e cadastro de gabinetes.
type Service struct {
	repo     *Repository
	cache    sync.Map
	cacheTTL time.Duration
}

// cachedGabinete armazena dados no cache em memória.
type cachedGabinete struct {
	gabinete Gabinete
	expireAt time.Time
}

// NewService cria uma nova instância de Service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo, cacheTTL: 2 * time.Minute}
}

// GetByID busca gabinete com cache de curta duração.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Gabinete, error) {
	if v, ok := s.cache.Load(id); ok {
		entry := v.(cachedGabinete)
		if time.Now().Before(entry.expireAt) {
			copia := entry.gabinete
			return &copia, nil
		}
		s.cache.Delete(id)
	}

	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.Store(id, cachedGabinete{gabinete: *g, expireAt: time.Now().Add(s.cacheTTL)})

	copia := *g
	return &copia, nil
}

// Create registra um novo gabinete.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Gabinete, error) {
	if strings.TrimSpace(input.Nome) == "" {
		return nil, errors.New("nome do gabinete obrigatório")
	}
	if input.Vencimento.IsZero() {
		return nil, errors.New("vencimento obrigatório")
	}

	g, err := s.repo.Create(ctx, input)
	if err != nil {
		return nil, err
	}

	s.cache.Store(g.ID, cachedGabinete{gabinete: *g, expireAt: time.Now().Add(s.cacheTTL)})
	return g, nil
}

// Update altera dados administrativos do gabinete e invalida o cache.
func (s *Service) Update(ctx context.Context, input UpdateInput) (*Gabinete, error) {
	if strings.TrimSpace(input.Nome) == "" {
		return nil, errors.New("nome do gabinete obrigatório")
	}

	g, err := s.repo.Update(ctx, input)
	if err != nil {
		return nil, err
	}

	s.cache.Store(g.ID, cachedGabinete{gabinete: *g, expireAt: time.Now().Add(s.cacheTTL)})
	return g, nil
}

// List devolve todos os gabinetes e atualiza o cache com o snapshot.
func (s *Service) List(ctx context.Context) ([]Gabinete, error) {
	gabinetes, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	for _, g := range gabinetes {
		s.cache.Store(g.ID, cachedGabinete{gabinete: g, expireAt: time.Now().Add(s.cacheTTL)})
	}

	return gabinetes, nil
}

// CountMembros expõe a contagem de membros (console do superadmin).
func (s *Service) CountMembros(ctx context.Context, id uuid.UUID) (int, error) {
	return s.repo.CountMembros(ctx, id)
}

// Invalidate remove entrada do cache (usado após mutações fora do serviço).
func (s *Service) Invalidate(id uuid.UUID) {
	s.cache.Delete(id)
}
