package despesa

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gabinetefacil/gabinete/internal/repo"
	"github.com/gabinetefacil/gabinete/internal/util"
)

// Repository persiste despesas por gabinete.
type Repository struct {
	db repo.DBTX
}

// NewRepository cria o repositório de despesas.
func NewRepository(db repo.DBTX) *Repository {
	return &Repository{db: db}
}

const columns = `id, gabinete_id, descricao, categoria, valor_centavos, data, coalesce(observacoes,''), criado_em`

func scan(row pgx.Row) (Despesa, error) {
	var d Despesa
	err := row.Scan(&d.ID, &d.GabineteID, &d.Descricao, &d.Categoria, &d.ValorCentavos, &d.Data, &d.Observacoes, &d.CriadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Despesa{}, ErrNotFound
		}
		return Despesa{}, err
	}
	return d, nil
}

// GetByID busca despesa do gabinete informado.
func (r *Repository) GetByID(ctx context.Context, gabineteID, id uuid.UUID) (Despesa, error) {
	const query = `SELECT ` + columns + ` FROM despesas WHERE gabinete_id = $1 AND id = $2`
	return scan(r.db.QueryRow(ctx, query, gabineteID, id))
}

// List devolve as despesas do gabinete; ano e mês zerados listam tudo.
func (r *Repository) List(ctx context.Context, gabineteID uuid.UUID, ano, mes int) ([]Despesa, error) {
	query := `SELECT ` + columns + ` FROM despesas WHERE gabinete_id = $1`
	args := []any{gabineteID}
	if ano > 0 && mes > 0 {
		query += ` AND extract(year FROM data) = $2 AND extract(month FROM data) = $3`
		args = append(args, ano, mes)
	}
	query += ` ORDER BY data DESC, criado_em DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var despesas []Despesa
	for rows.Next() {
		d, err := scan(rows)
		if err != nil {
			return nil, err
		}
		despesas = append(despesas, d)
	}
	return despesas, rows.Err()
}

// Create insere uma despesa no gabinete.
func (r *Repository) Create(ctx context.Context, gabineteID uuid.UUID, input Input) (Despesa, error) {
	const query = `
        INSERT INTO despesas (id, gabinete_id, descricao, categoria, valor_centavos, data, observacoes, criado_em)
        VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7,''), $8)
        RETURNING ` + columns

	return scan(r.db.QueryRow(ctx, query,
		uuid.New(), gabineteID, strings.TrimSpace(input.Descricao), input.Categoria,
		input.ValorCentavos, input.Data, input.Observacoes, util.Now()))
}

// Update altera uma despesa do gabinete.
func (r *Repository) Update(ctx context.Context, gabineteID, id uuid.UUID, input Input) (Despesa, error) {
	const query = `
        UPDATE despesas
        SET descricao = $3, categoria = $4, valor_centavos = $5, data = $6, observacoes = NULLIF($7,'')
        WHERE gabinete_id = $1 AND id = $2
        RETURNING ` + columns

	return scan(r.db.QueryRow(ctx, query,
		gabineteID, id, strings.TrimSpace(input.Descricao), input.Categoria,
		input.ValorCentavos, input.Data, input.Observacoes))
}

// Delete remove uma despesa do gabinete.
func (r *Repository) Delete(ctx context.Context, gabineteID, id uuid.UUID) error {
	const query = `DELETE FROM despesas WHERE gabinete_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, gabineteID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// TotaisMes agrega os gastos do mês por categoria.
func (r *Repository) TotaisMes(ctx context.Context, gabineteID uuid.UUID, ano, mes int) ([]TotalCategoria, int64, error) {
	const query = `
        SELECT categoria, coalesce(sum(valor_centavos), 0)
        FROM despesas
        WHERE gabinete_id = $1 AND extract(year FROM data) = $2 AND extract(month FROM data) = $3
        GROUP BY categoria
        ORDER BY 2 DESC
    `
	rows, err := r.db.Query(ctx, query, gabineteID, ano, mes)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var totais []TotalCategoria
	var geral int64
	for rows.Next() {
		var t TotalCategoria
		if err := rows.Scan(&t.Categoria, &t.TotalCentavos); err != nil {
			return nil, 0, err
		}
		totais = append(totais, t)
		geral += t.TotalCentavos
	}
	return totais, geral, rows.Err()
}

// TotalMesCorrente devolve o gasto total do gabinete no mês atual.
func (r *Repository) TotalMesCorrente(ctx context.Context, gabineteID uuid.UUID) (int64, error) {
	const query = `
        SELECT coalesce(sum(valor_centavos), 0) FROM despesas
        WHERE gabinete_id = $1 AND date_trunc('month', data) = date_trunc('month', now())
    `
	var total int64
	if err := r.db.QueryRow(ctx, query, gabineteID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
