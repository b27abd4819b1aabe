package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/encuestas-api/internal/domain"
	"github.com/jhoicas/encuestas-api/internal/domain/entity"
	"github.com/jhoicas/encuestas-api/internal/domain/repository"
)

var (
	_ repository.VoteRepository  = (*VoteRepo)(nil)
	_ repository.AuditRepository = (*AuditRepo)(nil)
)

// VoteRepo libro de votos sobre PostgreSQL (usable con pool o tx).
type VoteRepo struct {
	q Querier
}

// NewVoteRepository construye el adaptador del libro de votos.
func NewVoteRepository(q Querier) *VoteRepo {
	return &VoteRepo{q: q}
}

// Create inserta un voto. La restricción única (participant_id, position_id) se traduce a
// ErrVoteAlreadyCast, también cuando dos envíos compiten.
func (r *VoteRepo) Create(ctx context.Context, v *entity.Vote) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO votes (participant_id, position_id, candidate_id, vote_type, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, now()))
		RETURNING id, created_at`,
		v.ParticipantID, v.PositionID, v.CandidateID, string(v.VoteType), v.IPAddress, v.UserAgent, nullTime(v.CreatedAt),
	).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrVoteAlreadyCast
		}
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert vote: %w", err)
	}
	return nil
}

// VotedPositions posiciones de positionIDs con voto del participante. nil = todas.
func (r *VoteRepo) VotedPositions(ctx context.Context, participantID int64, positionIDs []int64) ([]int64, error) {
	query := `SELECT position_id FROM votes WHERE participant_id = $1`
	args := []any{participantID}
	if positionIDs != nil {
		if len(positionIDs) == 0 {
			return []int64{}, nil
		}
		query += ` AND position_id = ANY($2)`
		args = append(args, positionIDs)
	}
	rows, err := r.q.Query(ctx, query+` ORDER BY position_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("voted positions: %w", err)
	}
	defer rows.Close()
	out := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("voted positions: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// DeleteByParticipant borra todos los votos del participante y devuelve cuántos eran.
func (r *VoteRepo) DeleteByParticipant(ctx context.Context, participantID int64) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM votes WHERE participant_id = $1`, participantID)
	if err != nil {
		return 0, fmt.Errorf("delete votes: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListByParticipant votos del participante por posición.
func (r *VoteRepo) ListByParticipant(ctx context.Context, participantID int64) ([]*entity.Vote, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, participant_id, position_id, candidate_id, vote_type, ip_address, user_agent, created_at
		FROM votes WHERE participant_id = $1 ORDER BY position_id`, participantID)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	defer rows.Close()
	list := []*entity.Vote{}
	for rows.Next() {
		var v entity.Vote
		var voteType string
		if err := rows.Scan(&v.ID, &v.ParticipantID, &v.PositionID, &v.CandidateID, &voteType, &v.IPAddress, &v.UserAgent, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan vote: %w", err)
		}
		v.VoteType = entity.VoteType(voteType)
		list = append(list, &v)
	}
	return list, rows.Err()
}

// AuditRepo registro de auditoría append-only.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador de auditoría.
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// Create agrega una entrada.
func (r *AuditRepo) Create(ctx context.Context, l *entity.AuditLog) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO audit_logs (admin_id, action, entity_type, entity_id, description, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		l.AdminID, l.Action, l.EntityType, l.EntityID, l.Description, l.IPAddress, l.CreatedAt,
	).Scan(&l.ID)
	if err != nil {
		return fmt.Errorf("insert audit_log: %w", err)
	}
	return nil
}

// List entradas más recientes primero, con filtros opcionales.
func (r *AuditRepo) List(ctx context.Context, f repository.AuditFilter) ([]*entity.AuditLog, error) {
	query := `
		SELECT id, admin_id, action, entity_type, entity_id, description, ip_address, created_at
		FROM audit_logs
		WHERE ($1::text = '' OR entity_type = $1::text) AND ($2::text = '' OR action = $2::text)
		ORDER BY created_at DESC, id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}
	rows, err := r.q.Query(ctx, query, f.EntityType, f.Action)
	if err != nil {
		return nil, fmt.Errorf("list audit_logs: %w", err)
	}
	defer rows.Close()
	list := []*entity.AuditLog{}
	for rows.Next() {
		var l entity.AuditLog
		if err := rows.Scan(&l.ID, &l.AdminID, &l.Action, &l.EntityType, &l.EntityID, &l.Description, &l.IPAddress, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit_log: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
