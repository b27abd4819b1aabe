package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/encuestas-api/internal/domain"
	"github.com/jhoicas/encuestas-api/internal/domain/entity"
	"github.com/jhoicas/encuestas-api/internal/domain/repository"
)

var (
	_ repository.PositionRepository  = (*PositionRepo)(nil)
	_ repository.CandidateRepository = (*CandidateRepo)(nil)
)

// ── Posiciones ───────────────────────────────────────────────────────────────

// PositionRepo implementación de PositionRepository sobre PostgreSQL.
type PositionRepo struct {
	q Querier
}

// NewPositionRepository construye el adaptador de posiciones.
func NewPositionRepository(q Querier) *PositionRepo {
	return &PositionRepo{q: q}
}

const positionColumns = `id, name, description, display_order, is_active, created_at, updated_at`

// Create persiste una posición. Nombre repetido (sin distinguir mayúsculas) -> ErrDuplicate.
func (r *PositionRepo) Create(ctx context.Context, p *entity.Position) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO positions (name, description, display_order, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		p.Name, p.Description, p.Order, p.IsActive, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert position: %w", err)
	}
	return nil
}

// GetByID obtiene una posición por ID.
func (r *PositionRepo) GetByID(ctx context.Context, id int64) (*entity.Position, error) {
	return r.findOne(ctx, "get position by id", `WHERE id = $1`, id)
}

// GetByName obtiene una posición por nombre sin distinguir mayúsculas.
func (r *PositionRepo) GetByName(ctx context.Context, name string) (*entity.Position, error) {
	return r.findOne(ctx, "get position by name", `WHERE lower(name) = lower($1)`, name)
}

// Update persiste los campos editables.
func (r *PositionRepo) Update(ctx context.Context, p *entity.Position) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE positions SET name = $2, description = $3, display_order = $4, is_active = $5, updated_at = $6
		WHERE id = $1`,
		p.ID, p.Name, p.Description, p.Order, p.IsActive, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update position: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina la posición; candidatos y votos caen en cascada y has_voted se recalcula
// en la misma transacción.
func (r *PositionRepo) Delete(ctx context.Context, id int64) error {
	return inTx(ctx, r.q, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM positions WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete position: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		if _, err := tx.Exec(ctx, refreshAllHasVoted); err != nil {
			return fmt.Errorf("refresh has_voted: %w", err)
		}
		return nil
	})
}

// List posiciones por display_order, id.
func (r *PositionRepo) List(ctx context.Context, f repository.PositionFilter) ([]*entity.Position, int64, error) {
	where := ""
	if f.OnlyActive {
		where = ` WHERE is_active`
	}
	var total int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM positions`+where).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count positions: %w", err)
	}
	query := `SELECT ` + positionColumns + ` FROM positions` + where + ` ORDER BY display_order, id`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, max(f.Offset, 0))
	}
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("list positions: %w", err)
	}
	defer rows.Close()
	list := []*entity.Position{}
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan position: %w", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list positions: %w", err)
	}
	return list, total, nil
}

func (r *PositionRepo) findOne(ctx context.Context, op, where string, arg any) (*entity.Position, error) {
	p, err := scanPosition(r.q.QueryRow(ctx, `SELECT `+positionColumns+` FROM positions `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func scanPosition(row pgxScanner) (*entity.Position, error) {
	var p entity.Position
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Order, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// ── Candidatos ───────────────────────────────────────────────────────────────

// CandidateRepo implementación de CandidateRepository sobre PostgreSQL.
type CandidateRepo struct {
	q Querier
}

// NewCandidateRepository construye el adaptador de candidatos.
func NewCandidateRepository(q Querier) *CandidateRepo {
	return &CandidateRepo{q: q}
}

const candidateColumns = `id, position_id, name, description, display_order, photo, nominated_by, created_at, updated_at`

// Create persiste un candidato. (posición, nombre) repetido -> ErrDuplicate; posición inexistente -> ErrNotFound.
func (r *CandidateRepo) Create(ctx context.Context, c *entity.Candidate) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO candidates (position_id, name, description, display_order, photo, nominated_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		c.PositionID, c.Name, c.Description, c.Order, c.Photo, c.NominatedBy, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert candidate: %w", err)
	}
	return nil
}

// GetByID obtiene un candidato por ID.
func (r *CandidateRepo) GetByID(ctx context.Context, id int64) (*entity.Candidate, error) {
	c, err := scanCandidate(r.q.QueryRow(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id))
	return nilIfNoRows(c, err, "get candidate by id")
}

// GetByPositionAndName busca por nombre dentro de una posición sin distinguir mayúsculas.
func (r *CandidateRepo) GetByPositionAndName(ctx context.Context, positionID int64, name string) (*entity.Candidate, error) {
	c, err := scanCandidate(r.q.QueryRow(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE position_id = $1 AND lower(name) = lower($2)`,
		positionID, name))
	return nilIfNoRows(c, err, "get candidate by name")
}

// Update persiste los campos editables.
func (r *CandidateRepo) Update(ctx context.Context, c *entity.Candidate) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE candidates SET name = $2, description = $3, display_order = $4, photo = $5, updated_at = $6
		WHERE id = $1`,
		c.ID, c.Name, c.Description, c.Order, c.Photo, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update candidate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el candidato y sus votos; has_voted se recalcula en la misma transacción.
func (r *CandidateRepo) Delete(ctx context.Context, id int64) error {
	return inTx(ctx, r.q, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM candidates WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete candidate: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		if _, err := tx.Exec(ctx, refreshAllHasVoted); err != nil {
			return fmt.Errorf("refresh has_voted: %w", err)
		}
		return nil
	})
}

// ListByPosition candidatos por display_order, id. positionID 0 = todos.
func (r *CandidateRepo) ListByPosition(ctx context.Context, positionID int64) ([]*entity.Candidate, error) {
	if positionID == 0 {
		return r.list(ctx, `SELECT `+candidateColumns+` FROM candidates ORDER BY position_id, display_order, id`)
	}
	return r.list(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE position_id = $1 ORDER BY display_order, id`, positionID)
}

// ListByNominator candidaturas creadas por una cuenta de participante.
func (r *CandidateRepo) ListByNominator(ctx context.Context, participantUserID int64) ([]*entity.Candidate, error) {
	return r.list(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE nominated_by = $1 ORDER BY created_at DESC, id DESC`, participantUserID)
}

// CountByPosition número de candidatos por posición.
func (r *CandidateRepo) CountByPosition(ctx context.Context) (map[int64]int64, error) {
	return r.counts(ctx, "count candidates", `SELECT position_id, COUNT(*) FROM candidates GROUP BY position_id`)
}

// CountVotes votos por candidato.
func (r *CandidateRepo) CountVotes(ctx context.Context) (map[int64]int64, error) {
	return r.counts(ctx, "count candidate votes", `
		SELECT candidate_id, COUNT(*) FROM votes WHERE candidate_id IS NOT NULL GROUP BY candidate_id`)
}

func (r *CandidateRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Candidate, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()
	list := []*entity.Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	return list, nil
}

func (r *CandidateRepo) counts(ctx context.Context, op, query string) (map[int64]int64, error) {
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	out := map[int64]int64{}
	for rows.Next() {
		var id, n int64
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out[id] = n
	}
	return out, rows.Err()
}

func scanCandidate(row pgxScanner) (*entity.Candidate, error) {
	var c entity.Candidate
	err := row.Scan(&c.ID, &c.PositionID, &c.Name, &c.Description, &c.Order, &c.Photo, &c.NominatedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func nilIfNoRows[T any](v *T, err error, op string) (*T, error) {
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}
