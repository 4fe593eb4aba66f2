package materia

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gabinetefacil/gabinete/internal/repo"
	"github.com/gabinetefacil/gabinete/internal/util"
)

// Repository persiste matérias e anexos por gabinete.
type Repository struct {
	db repo.DBTX
}

// NewRepository cria o repositório de matérias.
func NewRepository(db repo.DBTX) *Repository {
	return &Repository{db: db}
}

const columns = `id, gabinete_id, titulo, coalesce(tipo,''), coalesce(numero,''), status, coalesce(descricao,''), data, criado_em`

func scan(row pgx.Row) (Materia, error) {
	var m Materia
	err := row.Scan(&m.ID, &m.GabineteID, &m.Titulo, &m.Tipo, &m.Numero, &m.Status, &m.Descricao, &m.Data, &m.CriadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Materia{}, ErrNotFound
		}
		return Materia{}, err
	}
	return m, nil
}

// GetByID busca matéria do gabinete, sem anexos.
func (r *Repository) GetByID(ctx context.Context, gabineteID, id uuid.UUID) (Materia, error) {
	const query = `SELECT ` + columns + ` FROM materias WHERE gabinete_id = $1 AND id = $2`
	return scan(r.db.QueryRow(ctx, query, gabineteID, id))
}

// List devolve as matérias do gabinete, com filtros opcionais por status
// e por texto livre em título, número e descrição.
func (r *Repository) List(ctx context.Context, gabineteID uuid.UUID, status, busca string) ([]Materia, error) {
	query := `SELECT ` + columns + ` FROM materias WHERE gabinete_id = $1`
	args := []any{gabineteID}
	if status != "" {
		args = append(args, status)
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if busca != "" {
		args = append(args, "%"+busca+"%")
		n := strconv.Itoa(len(args))
		query += ` AND (titulo ILIKE $` + n + ` OR numero ILIKE $` + n + ` OR descricao ILIKE $` + n + `)`
	}
	query += ` ORDER BY data DESC, criado_em DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var materias []Materia
	for rows.Next() {
		m, err := scan(rows)
		if err != nil {
			return nil, err
		}
		materias = append(materias, m)
	}
	return materias, rows.Err()
}

// Create insere uma matéria no gabinete.
func (r *Repository) Create(ctx context.Context, gabineteID uuid.UUID, input Input) (Materia, error) {
	const query = `
        INSERT INTO materias (id, gabinete_id, titulo, tipo, numero, status, descricao, data, criado_em)
        VALUES ($1, $2, $3, NULLIF($4,''), NULLIF($5,''), $6, NULLIF($7,''), $8, $9)
        RETURNING ` + columns

	return scan(r.db.QueryRow(ctx, query,
		uuid.New(), gabineteID, strings.TrimSpace(input.Titulo), input.Tipo, input.Numero,
		input.Status, input.Descricao, input.Data, util.Now()))
}

// Update altera uma matéria do gabinete.
func (r *Repository) Update(ctx context.Context, gabineteID, id uuid.UUID, input Input) (Materia, error) {
	const query = `
        UPDATE materias
        SET titulo = $3, tipo = NULLIF($4,''), numero = NULLIF($5,''), status = $6,
            descricao = NULLIF($7,''), data = $8
        WHERE gabinete_id = $1 AND id = $2
        RETURNING ` + columns

	return scan(r.db.QueryRow(ctx, query,
		gabineteID, id, strings.TrimSpace(input.Titulo), input.Tipo, input.Numero,
		input.Status, input.Descricao, input.Data))
}

// UpdateStatus troca apenas o status de tramitação.
func (r *Repository) UpdateStatus(ctx context.Context, gabineteID, id uuid.UUID, status string) error {
	const query = `UPDATE materias SET status = $3 WHERE gabinete_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, gabineteID, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete remove uma matéria e, por cascata, seus anexos.
func (r *Repository) Delete(ctx context.Context, gabineteID, id uuid.UUID) error {
	const query = `DELETE FROM materias WHERE gabinete_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, gabineteID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountPorStatus agrega as matérias do gabinete por status.
func (r *Repository) CountPorStatus(ctx context.Context, gabineteID uuid.UUID) (map[string]int64, error) {
	const query = `SELECT status, count(*) FROM materias WHERE gabinete_id = $1 GROUP BY status`
	rows, err := r.db.Query(ctx, query, gabineteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totais := make(map[string]int64)
	for rows.Next() {
		var status string
		var total int64
		if err := rows.Scan(&status, &total); err != nil {
			return nil, err
		}
		totais[status] = total
	}
	return totais, rows.Err()
}

const anexoColumns = `id, materia_id, nome, chave, url, tamanho, criado_em`

func scanAnexo(row pgx.Row) (Anexo, error) {
	var a Anexo
	err := row.Scan(&a.ID, &a.MateriaID, &a.Nome, &a.Chave, &a.URL, &a.Tamanho, &a.CriadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Anexo{}, ErrAnexoNotFound
		}
		return Anexo{}, err
	}
	return a, nil
}

// InsertAnexo registra um anexo já enviado ao bucket.
func (r *Repository) InsertAnexo(ctx context.Context, a Anexo) (Anexo, error) {
	const query = `
        INSERT INTO materia_anexos (id, materia_id, nome, chave, url, tamanho, criado_em)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING ` + anexoColumns

	return scanAnexo(r.db.QueryRow(ctx, query, a.ID, a.MateriaID, a.Nome, a.Chave, a.URL, a.Tamanho, a.CriadoEm))
}

// ListAnexos devolve os anexos de uma matéria.
func (r *Repository) ListAnexos(ctx context.Context, materiaID uuid.UUID) ([]Anexo, error) {
	const query = `SELECT ` + anexoColumns + ` FROM materia_anexos WHERE materia_id = $1 ORDER BY criado_em`
	rows, err := r.db.Query(ctx, query, materiaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var anexos []Anexo
	for rows.Next() {
		a, err := scanAnexo(rows)
		if err != nil {
			return nil, err
		}
		anexos = append(anexos, a)
	}
	return anexos, rows.Err()
}

// GetAnexo busca um anexo de uma matéria.
func (r *Repository) GetAnexo(ctx context.Context, materiaID, anexoID uuid.UUID) (Anexo, error) {
	const query = `SELECT ` + anexoColumns + ` FROM materia_anexos WHERE materia_id = $1 AND id = $2`
	return scanAnexo(r.db.QueryRow(ctx, query, materiaID, anexoID))
}

// DeleteAnexo remove o registro de um anexo.
func (r *Repository) DeleteAnexo(ctx context.Context, materiaID, anexoID uuid.UUID) error {
	const query = `DELETE FROM materia_anexos WHERE materia_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, materiaID, anexoID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAnexoNotFound
	}
	return nil
}
