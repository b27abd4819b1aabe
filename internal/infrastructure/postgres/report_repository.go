package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/encuestas-api/internal/domain/entity"
	"github.com/jhoicas/encuestas-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas agregadas de solo lectura sobre el libro de votos.
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador de reportes.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// PositionTallies conteos por posición: votos por candidato y por tipo.
// Las posiciones y candidatos salen en orden de presentación.
func (r *ReportRepo) PositionTallies(ctx context.Context, onlyActive bool, positionID int64) ([]entity.PositionTally, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+positionColumns+` FROM positions
		WHERE ($1::boolean = FALSE OR is_active) AND ($2::bigint = 0 OR id = $2::bigint)
		ORDER BY display_order, id`, onlyActive, positionID)
	if err != nil {
		return nil, fmt.Errorf("tallies positions: %w", err)
	}
	var tallies []entity.PositionTally
	index := map[int64]int{}
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("tallies positions: %w", err)
		}
		index[p.ID] = len(tallies)
		tallies = append(tallies, entity.PositionTally{Position: *p, ByType: map[entity.VoteType]int64{}})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tallies positions: %w", err)
	}
	if len(tallies) == 0 {
		return []entity.PositionTally{}, nil
	}

	const candidatesQuery = `
		SELECT c.id, c.position_id, c.name, c.description, c.photo, COUNT(v.id)
		FROM candidates c
		LEFT JOIN votes v ON v.candidate_id = c.id
		WHERE ($1::bigint = 0 OR c.position_id = $1::bigint)
		GROUP BY c.id
		ORDER BY c.position_id, c.display_order, c.id`
	crows, err := r.q.Query(ctx, candidatesQuery, positionID)
	if err != nil {
		return nil, fmt.Errorf("tallies candidates: %w", err)
	}
	for crows.Next() {
		var c entity.CandidateTally
		var posID int64
		if err := crows.Scan(&c.CandidateID, &posID, &c.Name, &c.Description, &c.Photo, &c.Votes); err != nil {
			crows.Close()
			return nil, fmt.Errorf("tallies candidates: %w", err)
		}
		if i, ok := index[posID]; ok {
			tallies[i].Candidates = append(tallies[i].Candidates, c)
		}
	}
	crows.Close()
	if err := crows.Err(); err != nil {
		return nil, fmt.Errorf("tallies candidates: %w", err)
	}

	trows, err := r.q.Query(ctx, `
		SELECT position_id, vote_type, COUNT(*) FROM votes
		WHERE ($1::bigint = 0 OR position_id = $1::bigint)
		GROUP BY position_id, vote_type`, positionID)
	if err != nil {
		return nil, fmt.Errorf("tallies by type: %w", err)
	}
	defer trows.Close()
	for trows.Next() {
		var posID, n int64
		var voteType string
		if err := trows.Scan(&posID, &voteType, &n); err != nil {
			return nil, fmt.Errorf("tallies by type: %w", err)
		}
		if i, ok := index[posID]; ok {
			tallies[i].ByType[entity.VoteType(voteType)] = n
		}
	}
	if err := trows.Err(); err != nil {
		return nil, fmt.Errorf("tallies by type: %w", err)
	}
	return tallies, nil
}

// Counts totales globales. VotedParticipants se cuenta desde votes, no desde has_voted.
func (r *ReportRepo) Counts(ctx context.Context) (entity.VoteCounts, error) {
	var c entity.VoteCounts
	err := r.q.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM participants),
			(SELECT COUNT(DISTINCT participant_id) FROM votes),
			(SELECT COUNT(*) FROM votes),
			(SELECT COUNT(*) FROM positions WHERE is_active),
			(SELECT COUNT(*) FROM candidates)`,
	).Scan(&c.TotalParticipants, &c.VotedParticipants, &c.TotalVotes, &c.ActivePositions, &c.TotalCandidates)
	if err != nil {
		return entity.VoteCounts{}, fmt.Errorf("vote counts: %w", err)
	}
	return c, nil
}

// Timeline votos por hora o día en UTC, en orden cronológico.
func (r *ReportRepo) Timeline(ctx context.Context, bucket entity.Bucket) ([]entity.TimeBucket, error) {
	unit := "hour"
	if bucket == entity.BucketDay {
		unit = "day"
	}
	rows, err := r.q.Query(ctx, `
		SELECT date_trunc($1::text, created_at AT TIME ZONE 'UTC') AS bucket, COUNT(*)
		FROM votes
		GROUP BY bucket
		ORDER BY bucket`, unit)
	if err != nil {
		return nil, fmt.Errorf("vote timeline: %w", err)
	}
	defer rows.Close()
	out := []entity.TimeBucket{}
	for rows.Next() {
		var start time.Time
		var n int64
		if err := rows.Scan(&start, &n); err != nil {
			return nil, fmt.Errorf("vote timeline: %w", err)
		}
		// timestamp sin zona: los componentes ya están en UTC.
		start = time.Date(start.Year(), start.Month(), start.Day(), start.Hour(), 0, 0, 0, time.UTC)
		out = append(out, entity.TimeBucket{Start: start, Votes: n})
	}
	return out, rows.Err()
}

// VoteAuditTrail una fila por voto, en orden cronológico.
func (r *ReportRepo) VoteAuditTrail(ctx context.Context) ([]entity.VoteAuditRow, error) {
	rows, err := r.q.Query(ctx, `
		SELECT v.id, v.created_at, p.email, pos.name, v.vote_type, COALESCE(c.name, ''), v.ip_address
		FROM votes v
		JOIN participants p ON p.id = v.participant_id
		JOIN positions pos ON pos.id = v.position_id
		LEFT JOIN candidates c ON c.id = v.candidate_id
		ORDER BY v.created_at, v.id`)
	if err != nil {
		return nil, fmt.Errorf("vote audit trail: %w", err)
	}
	defer rows.Close()
	out := []entity.VoteAuditRow{}
	for rows.Next() {
		var row entity.VoteAuditRow
		var voteType string
		if err := rows.Scan(&row.VoteID, &row.CreatedAt, &row.ParticipantEmail, &row.PositionName, &voteType, &row.CandidateName, &row.IPAddress); err != nil {
			return nil, fmt.Errorf("vote audit trail: %w", err)
		}
		row.VoteType = entity.VoteType(voteType)
		out = append(out, row)
	}
	return out, rows.Err()
}
