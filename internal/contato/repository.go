package contato

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gabinetefacil/gabinete/internal/repo"
	"github.com/gabinetefacil/gabinete/internal/util"
)

// Repository persiste contatos por gabinete.
type Repository struct {
	db repo.DBTX
}

// NewRepository cria o repositório de contatos.
func NewRepository(db repo.DBTX) *Repository {
	return &Repository{db: db}
}

// WithTx devolve o repositório ligado à transação.
func (r *Repository) WithTx(tx pgx.Tx) *Repository {
	return &Repository{db: tx}
}

const columns = `id, gabinete_id, nome, coalesce(telefone,''), coalesce(email,''), coalesce(endereco,''), coalesce(bairro,''), coalesce(cidade,''), data_nascimento, coalesce(observacoes,''), criado_em, atualizado_em`

func scan(row pgx.Row) (Contato, error) {
	var c Contato
	err := row.Scan(&c.ID, &c.GabineteID, &c.Nome, &c.Telefone, &c.Email, &c.Endereco,
		&c.Bairro, &c.Cidade, &c.DataNascimento, &c.Observacoes, &c.CriadoEm, &c.AtualizadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Contato{}, ErrNotFound
		}
		return Contato{}, err
	}
	return c, nil
}

// GetByID busca contato do gabinete informado.
func (r *Repository) GetByID(ctx context.Context, gabineteID, id uuid.UUID) (Contato, error) {
	const query = `SELECT ` + columns + ` FROM contatos WHERE gabinete_id = $1 AND id = $2`
	return scan(r.db.QueryRow(ctx, query, gabineteID, id))
}

// List devolve os contatos do gabinete; busca opcional por nome, telefone ou e-mail.
func (r *Repository) List(ctx context.Context, gabineteID uuid.UUID, search string) ([]Contato, error) {
	query := `SELECT ` + columns + ` FROM contatos WHERE gabinete_id = $1`
	args := []any{gabineteID}
	if s := strings.TrimSpace(search); s != "" {
		query += ` AND (nome ILIKE $2 OR telefone ILIKE $2 OR email ILIKE $2)`
		args = append(args, "%"+s+"%")
	}
	query += ` ORDER BY nome`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contatos []Contato
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, err
		}
		contatos = append(contatos, c)
	}
	return contatos, rows.Err()
}

// ListComNascimento devolve os contatos do gabinete que têm data de nascimento.
func (r *Repository) ListComNascimento(ctx context.Context, gabineteID uuid.UUID) ([]Contato, error) {
	const query = `SELECT ` + columns + ` FROM contatos WHERE gabinete_id = $1 AND data_nascimento IS NOT NULL ORDER BY nome`
	rows, err := r.db.Query(ctx, query, gabineteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contatos []Contato
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, err
		}
		contatos = append(contatos, c)
	}
	return contatos, rows.Err()
}

// Create insere um contato no gabinete.
func (r *Repository) Create(ctx context.Context, gabineteID uuid.UUID, input Input) (Contato, error) {
	const query = `
        INSERT INTO contatos (id, gabinete_id, nome, telefone, email, endereco, bairro, cidade, data_nascimento, observacoes, criado_em, atualizado_em)
        VALUES ($1, $2, $3, NULLIF($4,''), NULLIF($5,''), NULLIF($6,''), NULLIF($7,''), NULLIF($8,''), $9, NULLIF($10,''), $11, $11)
        RETURNING ` + columns

	now := util.Now()
	return scan(r.db.QueryRow(ctx, query,
		uuid.New(), gabineteID, strings.TrimSpace(input.Nome), input.Telefone, input.Email,
		input.Endereco, input.Bairro, input.Cidade, input.DataNascimento, input.Observacoes, now))
}

// Update altera um contato do gabinete.
func (r *Repository) Update(ctx context.Context, gabineteID, id uuid.UUID, input Input) (Contato, error) {
	const query = `
        UPDATE contatos
        SET nome = $3, telefone = NULLIF($4,''), email = NULLIF($5,''), endereco = NULLIF($6,''),
            bairro = NULLIF($7,''), cidade = NULLIF($8,''), data_nascimento = $9,
            observacoes = NULLIF($10,''), atualizado_em = $11
        WHERE gabinete_id = $1 AND id = $2
        RETURNING ` + columns

	return scan(r.db.QueryRow(ctx, query,
		gabineteID, id, strings.TrimSpace(input.Nome), input.Telefone, input.Email,
		input.Endereco, input.Bairro, input.Cidade, input.DataNascimento, input.Observacoes, util.Now()))
}

// Delete remove um contato do gabinete.
func (r *Repository) Delete(ctx context.Context, gabineteID, id uuid.UUID) error {
	const query = `DELETE FROM contatos WHERE gabinete_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, gabineteID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Count devolve o total de contatos do gabinete.
func (r *Repository) Count(ctx context.Context, gabineteID uuid.UUID) (int64, error) {
	const query = `SELECT count(*) FROM contatos WHERE gabinete_id = $1`
	var total int64
	if err := r.db.QueryRow(ctx, query, gabineteID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
