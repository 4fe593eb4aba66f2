package acesso

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Repository persiste o histórico de autenticações.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria novo repositório de acessos.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Record insere o evento; falhas são apenas logadas para não bloquear o login.
func (r *Repository) Record(ctx context.Context, e Entry) {
	const insert = `
        INSERT INTO acessos (user_email, usuario_id, gabinete_id, resultado, motivo, ip, user_agent)
        VALUES ($1, $2, $3, $4, NULLIF($5,''), NULLIF($6,''), NULLIF($7,''))
    `
	if _, err := r.pool.Exec(ctx, insert,
		e.Email, e.UsuarioID, e.GabineteID, e.Resultado, e.Motivo, e.IP, e.UserAgent); err != nil {
		log.Warn().Err(err).Msg("acesso: falha ao registrar tentativa")
	}
}

// List devolve os acessos mais recentes.
func (r *Repository) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	const query = `
        SELECT id, user_email, usuario_id, gabinete_id, resultado, coalesce(motivo,''), coalesce(ip,''), coalesce(user_agent,''), criado_em
        FROM acessos
        ORDER BY criado_em DESC
        LIMIT $1
    `
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var usuarioID, gabineteID *uuid.UUID
		if err := rows.Scan(&e.ID, &e.Email, &usuarioID, &gabineteID, &e.Resultado, &e.Motivo, &e.IP, &e.UserAgent, &e.CriadoEm); err != nil {
			return nil, err
		}
		e.UsuarioID = usuarioID
		e.GabineteID = gabineteID
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
