package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX abstrai pool ou transação do pgx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries concentra o acesso às tabelas de usuários e sessões.
type Queries struct {
	db DBTX
}

// New cria instância sobre pool ou transação.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx devolve Queries ligadas à transação informada.
func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

const usuarioColumns = `id, nome, email, senha_hash, role, gabinete_id, ativo, criado_em`

func scanUsuario(row pgx.Row) (Usuario, error) {
	var u Usuario
	err := row.Scan(&u.ID, &u.Nome, &u.Email, &u.SenhaHash, &u.Role, &u.GabineteID, &u.Ativo, &u.CriadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Usuario{}, ErrNotFound
		}
		return Usuario{}, err
	}
	return u, nil
}

// GetUsuarioByEmail busca perfil pelo e-mail normalizado.
func (q *Queries) GetUsuarioByEmail(ctx context.Context, email string) (Usuario, error) {
	const query = `SELECT ` + usuarioColumns + ` FROM usuarios WHERE lower(email) = lower($1)`
	return scanUsuario(q.db.QueryRow(ctx, query, strings.TrimSpace(email)))
}

// GetUsuarioByID busca perfil pelo identificador.
func (q *Queries) GetUsuarioByID(ctx context.Context, id uuid.UUID) (Usuario, error) {
	const query = `SELECT ` + usuarioColumns + ` FROM usuarios WHERE id = $1`
	return scanUsuario(q.db.QueryRow(ctx, query, id))
}

// ListUsuariosByGabinete devolve a equipe de um gabinete ordenada por nome.
func (q *Queries) ListUsuariosByGabinete(ctx context.Context, gabineteID uuid.UUID) ([]Usuario, error) {
	const query = `SELECT ` + usuarioColumns + ` FROM usuarios WHERE gabinete_id = $1 ORDER BY nome`
	rows, err := q.db.Query(ctx, query, gabineteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var usuarios []Usuario
	for rows.Next() {
		u, err := scanUsuario(rows)
		if err != nil {
			return nil, err
		}
		usuarios = append(usuarios, u)
	}
	return usuarios, rows.Err()
}

// ListUsuarios devolve todos os perfis (console do superadmin).
func (q *Queries) ListUsuarios(ctx context.Context) ([]Usuario, error) {
	const query = `SELECT ` + usuarioColumns + ` FROM usuarios ORDER BY criado_em DESC`
	rows, err := q.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var usuarios []Usuario
	for rows.Next() {
		u, err := scanUsuario(rows)
		if err != nil {
			return nil, err
		}
		usuarios = append(usuarios, u)
	}
	return usuarios, rows.Err()
}

// InsertUsuario cria um novo perfil; e-mail duplicado vira ErrDuplicate.
func (q *Queries) InsertUsuario(ctx context.Context, arg InsertUsuarioParams) (Usuario, error) {
	const query = `
        INSERT INTO usuarios (id, nome, email, senha_hash, role, gabinete_id, ativo, criado_em)
        VALUES ($1, $2, lower($3), $4, $5, $6, $7, $8)
        RETURNING ` + usuarioColumns

	u, err := scanUsuario(q.db.QueryRow(ctx, query,
		arg.ID, arg.Nome, arg.Email, arg.SenhaHash, arg.Role, arg.GabineteID, arg.Ativo, arg.CriadoEm))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Usuario{}, ErrDuplicate
		}
		return Usuario{}, err
	}
	return u, nil
}

// UpdateUsuario altera nome e e-mail do perfil.
func (q *Queries) UpdateUsuario(ctx context.Context, id uuid.UUID, nome, email string) error {
	const query = `UPDATE usuarios SET nome = $2, email = lower($3) WHERE id = $1`
	tag, err := q.db.Exec(ctx, query, id, nome, strings.TrimSpace(email))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicate
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateUsuarioRole altera o papel do perfil.
func (q *Queries) UpdateUsuarioRole(ctx context.Context, id uuid.UUID, role string, gabineteID *uuid.UUID) error {
	const query = `UPDATE usuarios SET role = $2, gabinete_id = $3 WHERE id = $1`
	tag, err := q.db.Exec(ctx, query, id, role, gabineteID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateUsuarioAtivo ativa ou desativa o perfil.
func (q *Queries) UpdateUsuarioAtivo(ctx context.Context, id uuid.UUID, ativo bool) error {
	const query = `UPDATE usuarios SET ativo = $2 WHERE id = $1`
	tag, err := q.db.Exec(ctx, query, id, ativo)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateUsuarioSenha troca o hash de senha do perfil.
func (q *Queries) UpdateUsuarioSenha(ctx context.Context, id uuid.UUID, senhaHash string) error {
	const query = `UPDATE usuarios SET senha_hash = $2 WHERE id = $1`
	tag, err := q.db.Exec(ctx, query, id, senhaHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertRefreshToken persiste um novo refresh token.
func (q *Queries) InsertRefreshToken(ctx context.Context, arg InsertRefreshTokenParams) (TokenRefresh, error) {
	const query = `
        INSERT INTO tokens_refresh (id, subject, token_hash, expiracao, criado_em, revogado)
        VALUES ($1, $2, $3, $4, $5, false)
        RETURNING id, subject, token_hash, expiracao, criado_em, revogado
    `

	var t TokenRefresh
	err := q.db.QueryRow(ctx, query, arg.ID, arg.Subject, arg.TokenHash, arg.Expiracao, arg.CriadoEm).
		Scan(&t.ID, &t.Subject, &t.TokenHash, &t.Expiracao, &t.CriadoEm, &t.Revogado)
	if err != nil {
		return TokenRefresh{}, err
	}
	return t, nil
}

// GetRefreshTokenByHash localiza refresh token pelo hash.
func (q *Queries) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (TokenRefresh, error) {
	const query = `
        SELECT id, subject, token_hash, expiracao, criado_em, revogado
        FROM tokens_refresh
        WHERE token_hash = $1
    `

	var t TokenRefresh
	err := q.db.QueryRow(ctx, query, tokenHash).
		Scan(&t.ID, &t.Subject, &t.TokenHash, &t.Expiracao, &t.CriadoEm, &t.Revogado)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return TokenRefresh{}, ErrNotFound
		}
		return TokenRefresh{}, err
	}
	return t, nil
}

// InvalidateOtherRefreshTokens revoga todos os tokens do subject exceto o atual.
func (q *Queries) InvalidateOtherRefreshTokens(ctx context.Context, subject uuid.UUID, keepHash string) error {
	const query = `UPDATE tokens_refresh SET revogado = true WHERE subject = $1 AND token_hash <> $2`
	_, err := q.db.Exec(ctx, query, subject, keepHash)
	return err
}

// RevokeRefreshToken revoga um token específico.
func (q *Queries) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	const query = `UPDATE tokens_refresh SET revogado = true WHERE token_hash = $1`
	tag, err := q.db.Exec(ctx, query, tokenHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RevokeAllRefreshTokens revoga todos os tokens do subject e devolve os hashes
// afetados para limpeza no redis.
func (q *Queries) RevokeAllRefreshTokens(ctx context.Context, subject uuid.UUID) ([]string, error) {
	const query = `
        UPDATE tokens_refresh SET revogado = true
        WHERE subject = $1 AND NOT revogado
        RETURNING token_hash
    `
	rows, err := q.db.Query(ctx, query, subject)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hashes []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		hashes = append(hashes, h)
	}
	return hashes, rows.Err()
}

// RevokeRefreshTokensByGabinete revoga as sessões de todos os membros do gabinete.
func (q *Queries) RevokeRefreshTokensByGabinete(ctx context.Context, gabineteID uuid.UUID) ([]string, error) {
	const query = `
        UPDATE tokens_refresh SET revogado = true
        WHERE NOT revogado AND subject IN (SELECT id FROM usuarios WHERE gabinete_id = $1)
        RETURNING token_hash
    `
	rows, err := q.db.Query(ctx, query, gabineteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hashes []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		hashes = append(hashes, h)
	}
	return hashes, rows.Err()
}
