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

var _ repository.ParticipantRepository = (*ParticipantRepo)(nil)

// ParticipantRepo implementación de ParticipantRepository sobre PostgreSQL (usable con pool o tx).
type ParticipantRepo struct {
	q Querier
}

// NewParticipantRepository construye el adaptador. Pasar pool o tx (Querier).
func NewParticipantRepository(q Querier) *ParticipantRepo {
	return &ParticipantRepo{q: q}
}

const participantColumns = `id, email, first_name, last_name, field1, field2, field3, has_voted, created_at, updated_at`

// Create persiste un participante y asigna su ID.
func (r *ParticipantRepo) Create(ctx context.Context, p *entity.Participant) error {
	query := `
		INSERT INTO participants (email, first_name, last_name, field1, field2, field3, has_voted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		p.Email, p.FirstName, p.LastName, p.Field1, p.Field2, p.Field3, p.HasVoted, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

// GetByID obtiene un participante por ID.
func (r *ParticipantRepo) GetByID(ctx context.Context, id int64) (*entity.Participant, error) {
	row := r.q.QueryRow(ctx, `SELECT `+participantColumns+` FROM participants WHERE id = $1`, id)
	return r.scanOne(row, "get participant by id")
}

// GetByEmail obtiene un participante por email sin distinguir mayúsculas.
func (r *ParticipantRepo) GetByEmail(ctx context.Context, email string) (*entity.Participant, error) {
	row := r.q.QueryRow(ctx, `SELECT `+participantColumns+` FROM participants WHERE lower(email) = lower($1)`, email)
	return r.scanOne(row, "get participant by email")
}

// Update actualiza nombres y campos libres. El email no cambia.
func (r *ParticipantRepo) Update(ctx context.Context, p *entity.Participant) error {
	query := `
		UPDATE participants
		SET first_name = $2, last_name = $3, field1 = $4, field2 = $5, field3 = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, p.ID, p.FirstName, p.LastName, p.Field1, p.Field2, p.Field3, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update participant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el participante; sus votos caen por ON DELETE CASCADE.
func (r *ParticipantRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM participants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List búsqueda paginada, más recientes primero.
func (r *ParticipantRepo) List(ctx context.Context, f repository.ParticipantFilter) ([]*entity.Participant, int64, error) {
	where := ""
	args := []any{}
	if f.Search != "" {
		where = ` WHERE email ILIKE $1 OR first_name ILIKE $1 OR last_name ILIKE $1`
		args = append(args, "%"+f.Search+"%")
	}

	var total int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM participants`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count participants: %w", err)
	}

	query := `SELECT ` + participantColumns + ` FROM participants` + where + ` ORDER BY id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, max(f.Offset, 0))
	}
	list, err := r.queryList(ctx, "list participants", query, args...)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListByIDs participantes existentes entre ids.
func (r *ParticipantRepo) ListByIDs(ctx context.Context, ids []int64) ([]*entity.Participant, error) {
	if len(ids) == 0 {
		return []*entity.Participant{}, nil
	}
	return r.queryList(ctx, "list participants by ids",
		`SELECT `+participantColumns+` FROM participants WHERE id = ANY($1) ORDER BY id`, ids)
}

// ListWithoutVotes participantes sin filas en votes.
func (r *ParticipantRepo) ListWithoutVotes(ctx context.Context) ([]*entity.Participant, error) {
	return r.queryList(ctx, "list participants without votes", `
		SELECT `+participantColumns+` FROM participants p
		WHERE NOT EXISTS (SELECT 1 FROM votes v WHERE v.participant_id = p.id)
		ORDER BY id`)
}

// RefreshHasVoted recalcula has_voted desde votes.
func (r *ParticipantRepo) RefreshHasVoted(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE participants p
		SET has_voted = EXISTS (SELECT 1 FROM votes v WHERE v.participant_id = p.id), updated_at = now()
		WHERE p.id = $1
		RETURNING has_voted`
	var has bool
	if err := r.q.QueryRow(ctx, query, id).Scan(&has); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, domain.ErrNotFound
		}
		return false, fmt.Errorf("refresh has_voted: %w", err)
	}
	return has, nil
}

func (r *ParticipantRepo) queryList(ctx context.Context, op, query string, args ...any) ([]*entity.Participant, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	list := []*entity.Participant{}
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

func (r *ParticipantRepo) scanOne(row pgx.Row, op string) (*entity.Participant, error) {
	p, err := scanParticipant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func scanParticipant(row pgxScanner) (*entity.Participant, error) {
	var p entity.Participant
	err := row.Scan(
		&p.ID, &p.Email, &p.FirstName, &p.LastName, &p.Field1, &p.Field2, &p.Field3,
		&p.HasVoted, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
