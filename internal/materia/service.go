// Package materia acompanha indicações, requerimentos e projetos do gabinete,
// com anexos guardados no bucket do sistema.
package materia

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gabinetefacil/gabinete/internal/storage"
	"github.com/gabinetefacil/gabinete/internal/util"
)

// Service aplica as regras de negócio sobre matérias legislativas.
type Service struct {
	repo  *Repository
	store storage.Store
	now   func() time.Time
}

// NewService cria o serviço de matérias.
func NewService(repo *Repository, store storage.Store) *Service {
	if store == nil {
		store = storage.NoopStore{}
	}
	return &Service{repo: repo, store: store, now: util.Now}
}

// Get busca uma matéria com seus anexos.
func (s *Service) Get(ctx context.Context, gabineteID, id uuid.UUID) (Materia, error) {
	m, err := s.repo.GetByID(ctx, gabineteID, id)
	if err != nil {
		return Materia{}, err
	}
	anexos, err := s.repo.ListAnexos(ctx, m.ID)
	if err != nil {
		return Materia{}, err
	}
	m.Anexos = anexos
	return m, nil
}

// List devolve as matérias do gabinete, com filtros opcionais por status
// e texto livre.
func (s *Service) List(ctx context.Context, gabineteID uuid.UUID, status, busca string) ([]Materia, error) {
	if status != "" {
		normalized, err := NormalizeStatus(status)
		if err != nil {
			return nil, err
		}
		status = normalized
	}
	return s.repo.List(ctx, gabineteID, status, strings.TrimSpace(busca))
}

// Create valida e insere uma matéria.
func (s *Service) Create(ctx context.Context, gabineteID uuid.UUID, input Input) (Materia, error) {
	if err := s.validate(&input); err != nil {
		return Materia{}, err
	}
	return s.repo.Create(ctx, gabineteID, input)
}

// Update valida e altera uma matéria.
func (s *Service) Update(ctx context.Context, gabineteID, id uuid.UUID, input Input) (Materia, error) {
	if err := s.validate(&input); err != nil {
		return Materia{}, err
	}
	return s.repo.Update(ctx, gabineteID, id, input)
}

// ChangeStatus troca o status de tramitação.
func (s *Service) ChangeStatus(ctx context.Context, gabineteID, id uuid.UUID, status string) error {
	normalized, err := NormalizeStatus(status)
	if err != nil {
		return err
	}
	return s.repo.UpdateStatus(ctx, gabineteID, id, normalized)
}

// Delete remove a matéria e tenta limpar os anexos no bucket.
func (s *Service) Delete(ctx context.Context, gabineteID, id uuid.UUID) error {
	anexos, err := s.repo.ListAnexos(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, gabineteID, id); err != nil {
		return err
	}
	for _, a := range anexos {
		if err := s.store.Delete(ctx, a.Chave); err != nil && err != storage.ErrNotConfigured {
			log.Warn().Err(err).Str("chave", a.Chave).Msg("materia: limpeza de anexo falhou")
		}
	}
	return nil
}

// AddAnexo envia o arquivo ao bucket e registra o anexo.
func (s *Service) AddAnexo(ctx context.Context, gabineteID, materiaID uuid.UUID, nome, contentType string, body []byte) (Anexo, error) {
	if _, err := s.repo.GetByID(ctx, gabineteID, materiaID); err != nil {
		return Anexo{}, err
	}

	nome = filepath.Base(strings.TrimSpace(nome))
	if nome == "" || nome == "." {
		nome = "anexo"
	}

	key := storage.AnexoKey(gabineteID, "materias", nome)
	result, err := s.store.Put(ctx, storage.Object{
		Key:         key,
		Body:        body,
		ContentType: contentType,
	})
	if err != nil {
		return Anexo{}, err
	}

	return s.repo.InsertAnexo(ctx, Anexo{
		ID:        uuid.New(),
		MateriaID: materiaID,
		Nome:      nome,
		Chave:     key,
		URL:       result.URL,
		Tamanho:   int64(len(body)),
		CriadoEm:  s.now(),
	})
}

// RemoveAnexo apaga o registro e o objeto no bucket.
func (s *Service) RemoveAnexo(ctx context.Context, gabineteID, materiaID, anexoID uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, gabineteID, materiaID); err != nil {
		return err
	}
	anexo, err := s.repo.GetAnexo(ctx, materiaID, anexoID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteAnexo(ctx, materiaID, anexoID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, anexo.Chave); err != nil && err != storage.ErrNotConfigured {
		log.Warn().Err(err).Str("chave", anexo.Chave).Msg("materia: remoção no bucket falhou")
	}
	return nil
}

// CountPorStatus agrega matérias do gabinete por status.
func (s *Service) CountPorStatus(ctx context.Context, gabineteID uuid.UUID) (map[string]int64, error) {
	return s.repo.CountPorStatus(ctx, gabineteID)
}

func (s *Service) validate(input *Input) error {
	if err := util.RequireString(input.Titulo, "título"); err != nil {
		return err
	}
	status, err := NormalizeStatus(input.Status)
	if err != nil {
		return err
	}
	input.Status = status
	if input.Data.IsZero() {
		input.Data = s.now()
	}
	return nil
}
