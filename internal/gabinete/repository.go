package gabinete

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provê acesso ao armazenamento de gabinetes.
type Repository struct {
	db querier
}

// NewRepository cria um novo repositório sobre pool ou transação.
func NewRepository(db querier) *Repository {
	return &Repository{db: db}
}

// WithTx devolve repositório ligado à transação informada.
func (r *Repository) WithTx(tx pgx.Tx) *Repository {
	return &Repository{db: tx}
}

const gabineteColumns = `id, nome, ativo, vencimento, owner_id, criado_em, atualizado_em`

func scanGabinete(row pgx.Row) (*Gabinete, error) {
	var g Gabinete
	err := row.Scan(&g.ID, &g.Nome, &g.Ativo, &g.Vencimento, &g.OwnerID, &g.CriadoEm, &g.AtualizadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

// GetByID busca gabinete pelo identificador.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Gabinete, error) {
	const query = `SELECT ` + gabineteColumns + ` FROM gabinetes WHERE id = $1`
	return scanGabinete(r.db.QueryRow(ctx, query, id))
}

// List devolve todos os gabinetes ordenados por criação.
func (r *Repository) List(ctx context.Context) ([]Gabinete, error) {
	const query = `SELECT ` + gabineteColumns + ` FROM gabinetes ORDER BY criado_em DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var gabinetes []Gabinete
	for rows.Next() {
		g, err := scanGabinete(rows)
		if err != nil {
			return nil, err
		}
		gabinetes = append(gabinetes, *g)
	}
	return gabinetes, rows.Err()
}

// ListIndisponiveis devolve gabinetes inativos ou vencidos (rotina de varredura).
func (r *Repository) ListIndisponiveis(ctx context.Context) ([]Gabinete, error) {
	const query = `SELECT ` + gabineteColumns + ` FROM gabinetes WHERE NOT ativo OR vencimento < now()`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var gabinetes []Gabinete
	for rows.Next() {
		g, err := scanGabinete(rows)
		if err != nil {
			return nil, err
		}
		gabinetes = append(gabinetes, *g)
	}
	return gabinetes, rows.Err()
}

// Create insere um novo gabinete e devolve os dados persistidos.
func (r *Repository) Create(ctx context.Context, input CreateInput) (*Gabinete, error) {
	const query = `
        INSERT INTO gabinetes (nome, ativo, vencimento, owner_id)
        VALUES ($1, $2, $3, $4)
        RETURNING ` + gabineteColumns

	return scanGabinete(r.db.QueryRow(ctx, query,
		strings.TrimSpace(input.Nome), input.Ativo, input.Vencimento, input.OwnerID))
}

// Update altera nome, status e vencimento.
func (r *Repository) Update(ctx context.Context, input UpdateInput) (*Gabinete, error) {
	const query = `
        UPDATE gabinetes
        SET nome = $2, ativo = $3, vencimento = $4, atualizado_em = now()
        WHERE id = $1
        RETURNING ` + gabineteColumns

	return scanGabinete(r.db.QueryRow(ctx, query,
		input.ID, strings.TrimSpace(input.Nome), input.Ativo, input.Vencimento))
}

// SetOwner registra o dono do gabinete (apenas no auto-registro).
func (r *Repository) SetOwner(ctx context.Context, id, ownerID uuid.UUID) error {
	const query = `UPDATE gabinetes SET owner_id = $2, atualizado_em = now() WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountMembros devolve o número de perfis vinculados ao gabinete.
func (r *Repository) CountMembros(ctx context.Context, id uuid.UUID) (int, error) {
	const query = `SELECT count(*) FROM usuarios WHERE gabinete_id = $1`
	var count int
	if err := r.db.QueryRow(ctx, query, id).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
