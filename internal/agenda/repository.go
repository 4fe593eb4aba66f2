package agenda

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gabinetefacil/gabinete/internal/repo"
	"github.com/gabinetefacil/gabinete/internal/util"
)

// Repository persiste compromissos por gabinete.
type Repository struct {
	db repo.DBTX
}

// NewRepository cria o repositório de agenda.
func NewRepository(db repo.DBTX) *Repository {
	return &Repository{db: db}
}

const columns = `id, gabinete_id, titulo, tipo, inicio, fim, coalesce(local,''), coalesce(descricao,''), criado_em`

func scan(row pgx.Row) (Compromisso, error) {
	var c Compromisso
	var fim *time.Time
	err := row.Scan(&c.ID, &c.GabineteID, &c.Titulo, &c.Tipo, &c.Inicio, &fim, &c.Local, &c.Descricao, &c.CriadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Compromisso{}, ErrNotFound
		}
		return Compromisso{}, err
	}
	if fim != nil {
		c.Fim = *fim
	}
	return c, nil
}

// GetByID busca compromisso do gabinete.
func (r *Repository) GetByID(ctx context.Context, gabineteID, id uuid.UUID) (Compromisso, error) {
	const query = `SELECT ` + columns + ` FROM agenda WHERE gabinete_id = $1 AND id = $2`
	return scan(r.db.QueryRow(ctx, query, gabineteID, id))
}

// ListPeriodo devolve os compromissos do gabinete no intervalo, ordenados por início.
func (r *Repository) ListPeriodo(ctx context.Context, gabineteID uuid.UUID, de, ate time.Time) ([]Compromisso, error) {
	const query = `
        SELECT ` + columns + ` FROM agenda
        WHERE gabinete_id = $1 AND inicio >= $2 AND inicio < $3
        ORDER BY inicio
    `
	rows, err := r.db.Query(ctx, query, gabineteID, de, ate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var compromissos []Compromisso
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, err
		}
		compromissos = append(compromissos, c)
	}
	return compromissos, rows.Err()
}

// Create insere um compromisso no gabinete.
func (r *Repository) Create(ctx context.Context, gabineteID uuid.UUID, input Input) (Compromisso, error) {
	const query = `
        INSERT INTO agenda (id, gabinete_id, titulo, tipo, inicio, fim, local, descricao, criado_em)
        VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7,''), NULLIF($8,''), $9)
        RETURNING ` + columns

	var fim *time.Time
	if !input.Fim.IsZero() {
		fim = &input.Fim
	}
	return scan(r.db.QueryRow(ctx, query,
		uuid.New(), gabineteID, strings.TrimSpace(input.Titulo), input.Tipo,
		input.Inicio, fim, input.Local, input.Descricao, util.Now()))
}

// Update altera um compromisso do gabinete.
func (r *Repository) Update(ctx context.Context, gabineteID, id uuid.UUID, input Input) (Compromisso, error) {
	const query = `
        UPDATE agenda
        SET titulo = $3, tipo = $4, inicio = $5, fim = $6, local = NULLIF($7,''), descricao = NULLIF($8,'')
        WHERE gabinete_id = $1 AND id = $2
        RETURNING ` + columns

	var fim *time.Time
	if !input.Fim.IsZero() {
		fim = &input.Fim
	}
	return scan(r.db.QueryRow(ctx, query,
		gabineteID, id, strings.TrimSpace(input.Titulo), input.Tipo,
		input.Inicio, fim, input.Local, input.Descricao))
}

// Delete remove um compromisso do gabinete.
func (r *Repository) Delete(ctx context.Context, gabineteID, id uuid.UUID) error {
	const query = `DELETE FROM agenda WHERE gabinete_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, gabineteID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountFuturos devolve quantos compromissos ainda vão acontecer.
func (r *Repository) CountFuturos(ctx context.Context, gabineteID uuid.UUID) (int64, error) {
	const query = `SELECT count(*) FROM agenda WHERE gabinete_id = $1 AND inicio >= now()`
	var total int64
	if err := r.db.QueryRow(ctx, query, gabineteID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
