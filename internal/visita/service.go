// Package visita registra atendimentos do gabinete, com criação casada de
// contato quando o munícipe ainda não está no cadastro.
package visita

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gabinetefacil/gabinete/internal/contato"
	"github.com/gabinetefacil/gabinete/internal/db"
	"github.com/gabinetefacil/gabinete/internal/util"
)

// ErrContatoObrigatorio indica visita sem contato vinculado nem nome avulso.
var ErrContatoObrigatorio = errors.New("informe o contato da visita")

// Service aplica as regras de negócio sobre visitas.
type Service struct {
	repo     *Repository
	contatos *contato.Repository
	runTx    func(ctx context.Context, fn func(pctx context.Context, tx pgx.Tx) error) error
}

// NewService cria o serviço de visitas.
func NewService(pool *pgxpool.Pool, repo *Repository, contatos *contato.Repository) *Service {
	return &Service{
		repo:     repo,
		contatos: contatos,
		runTx: func(ctx context.Context, fn func(pctx context.Context, tx pgx.Tx) error) error {
			return db.WithTx(ctx, pool, fn)
		},
	}
}

// Get busca uma visita do gabinete.
func (s *Service) Get(ctx context.Context, gabineteID, id uuid.UUID) (Visita, error) {
	return s.repo.GetByID(ctx, gabineteID, id)
}

// List devolve as visitas do gabinete.
func (s *Service) List(ctx context.Context, gabineteID uuid.UUID) ([]Visita, error) {
	return s.repo.List(ctx, gabineteID)
}

// Tipos devolve os tipos de visita já usados pelo gabinete.
func (s *Service) Tipos(ctx context.Context, gabineteID uuid.UUID) ([]string, error) {
	return s.repo.ListTipos(ctx, gabineteID)
}

// Create insere uma visita vinculada a um contato existente.
func (s *Service) Create(ctx context.Context, gabineteID uuid.UUID, input Input) (Visita, error) {
	if err := s.normalize(ctx, gabineteID, &input); err != nil {
		return Visita{}, err
	}
	return s.repo.Create(ctx, gabineteID, input)
}

// CreateComContato cria contato e visita na mesma transação.
// Falha em qualquer etapa não deixa contato solto.
func (s *Service) CreateComContato(ctx context.Context, gabineteID uuid.UUID, novoContato contato.Input, input Input) (Visita, contato.Contato, error) {
	if err := util.RequireString(novoContato.Nome, "nome do contato"); err != nil {
		return Visita{}, contato.Contato{}, err
	}
	if input.Data.IsZero() {
		input.Data = util.Now()
	}

	var visita Visita
	var criado contato.Contato
	err := s.runTx(ctx, func(pctx context.Context, tx pgx.Tx) error {
		c, err := s.contatos.WithTx(tx).Create(pctx, gabineteID, novoContato)
		if err != nil {
			return err
		}
		criado = c

		input.ContatoID = &c.ID
		input.ContatoNome = c.Nome
		v, err := s.repo.WithTx(tx).Create(pctx, gabineteID, input)
		if err != nil {
			return err
		}
		visita = v
		return nil
	})
	if err != nil {
		return Visita{}, contato.Contato{}, err
	}
	return visita, criado, nil
}

// Update altera uma visita do gabinete.
func (s *Service) Update(ctx context.Context, gabineteID, id uuid.UUID, input Input) (Visita, error) {
	if err := s.normalize(ctx, gabineteID, &input); err != nil {
		return Visita{}, err
	}
	return s.repo.Update(ctx, gabineteID, id, input)
}

// Delete remove uma visita.
func (s *Service) Delete(ctx context.Context, gabineteID, id uuid.UUID) error {
	return s.repo.Delete(ctx, gabineteID, id)
}

// normalize resolve o nome do contato e valida o vínculo com o gabinete.
func (s *Service) normalize(ctx context.Context, gabineteID uuid.UUID, input *Input) error {
	if input.Data.IsZero() {
		input.Data = util.Now()
	}
	if input.ContatoID != nil {
		c, err := s.contatos.GetByID(ctx, gabineteID, *input.ContatoID)
		if err != nil {
			return err
		}
		input.ContatoNome = c.Nome
		return nil
	}
	if input.ContatoNome == "" {
		return ErrContatoObrigatorio
	}
	return nil
}
