package visita

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gabinetefacil/gabinete/internal/repo"
	"github.com/gabinetefacil/gabinete/internal/util"
)

// Repository persiste visitas por gabinete.
type Repository struct {
	db repo.DBTX
}

// NewRepository cria o repositório de visitas.
func NewRepository(db repo.DBTX) *Repository {
	return &Repository{db: db}
}

// WithTx devolve o repositório ligado à transação.
func (r *Repository) WithTx(tx pgx.Tx) *Repository {
	return &Repository{db: tx}
}

const columns = `id, gabinete_id, contato_id, contato_nome, coalesce(tipo,''), data, coalesce(descricao,''), criado_em`

func scan(row pgx.Row) (Visita, error) {
	var v Visita
	err := row.Scan(&v.ID, &v.GabineteID, &v.ContatoID, &v.ContatoNome, &v.Tipo, &v.Data, &v.Descricao, &v.CriadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Visita{}, ErrNotFound
		}
		return Visita{}, err
	}
	return v, nil
}

// GetByID busca visita do gabinete informado.
func (r *Repository) GetByID(ctx context.Context, gabineteID, id uuid.UUID) (Visita, error) {
	const query = `SELECT ` + columns + ` FROM visitas WHERE gabinete_id = $1 AND id = $2`
	return scan(r.db.QueryRow(ctx, query, gabineteID, id))
}

// List devolve as visitas do gabinete, mais recentes primeiro.
func (r *Repository) List(ctx context.Context, gabineteID uuid.UUID) ([]Visita, error) {
	const query = `SELECT ` + columns + ` FROM visitas WHERE gabinete_id = $1 ORDER BY data DESC, criado_em DESC`
	rows, err := r.db.Query(ctx, query, gabineteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visitas []Visita
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		visitas = append(visitas, v)
	}
	return visitas, rows.Err()
}

// ListTipos devolve os tipos de visita já usados pelo gabinete, sem repetição.
func (r *Repository) ListTipos(ctx context.Context, gabineteID uuid.UUID) ([]string, error) {
	const query = `SELECT DISTINCT tipo FROM visitas WHERE gabinete_id = $1 AND tipo IS NOT NULL ORDER BY tipo`
	rows, err := r.db.Query(ctx, query, gabineteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tipos []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tipos = append(tipos, t)
	}
	return tipos, rows.Err()
}

// Create insere uma visita no gabinete.
func (r *Repository) Create(ctx context.Context, gabineteID uuid.UUID, input Input) (Visita, error) {
	const query = `
        INSERT INTO visitas (id, gabinete_id, contato_id, contato_nome, tipo, data, descricao, criado_em)
        VALUES ($1, $2, $3, $4, NULLIF($5,''), $6, NULLIF($7,''), $8)
        RETURNING ` + columns

	return scan(r.db.QueryRow(ctx, query,
		uuid.New(), gabineteID, input.ContatoID, strings.TrimSpace(input.ContatoNome),
		strings.TrimSpace(input.Tipo), input.Data, input.Descricao, util.Now()))
}

// Update altera uma visita do gabinete.
func (r *Repository) Update(ctx context.Context, gabineteID, id uuid.UUID, input Input) (Visita, error) {
	const query = `
        UPDATE visitas
        SET contato_id = $3, contato_nome = $4, tipo = NULLIF($5,''), data = $6, descricao = NULLIF($7,'')
        WHERE gabinete_id = $1 AND id = $2
        RETURNING ` + columns

	return scan(r.db.QueryRow(ctx, query,
		gabineteID, id, input.ContatoID, strings.TrimSpace(input.ContatoNome),
		strings.TrimSpace(input.Tipo), input.Data, input.Descricao))
}

// Delete remove uma visita do gabinete.
func (r *Repository) Delete(ctx context.Context, gabineteID, id uuid.UUID) error {
	const query = `DELETE FROM visitas WHERE gabinete_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, gabineteID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountMes devolve o total de visitas do gabinete no mês corrente.
func (r *Repository) CountMes(ctx context.Context, gabineteID uuid.UUID) (int64, error) {
	const query = `
        SELECT count(*) FROM visitas
        WHERE gabinete_id = $1 AND date_trunc('month', data) = date_trunc('month', now())
    `
	var total int64
	if err := r.db.QueryRow(ctx, query, gabineteID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
