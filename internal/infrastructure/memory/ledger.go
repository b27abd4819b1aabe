package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/encuestas-api/internal/domain"
	"github.com/jhoicas/encuestas-api/internal/domain/entity"
	"github.com/jhoicas/encuestas-api/internal/domain/repository"
)

var (
	_ repository.VoteRepository   = (*VoteRepo)(nil)
	_ repository.AuditRepository  = (*AuditRepo)(nil)
	_ repository.ReportRepository = (*ReportRepo)(nil)
)

// VoteRepo libro de votos en memoria.
type VoteRepo struct{ h handle }

func (r *VoteRepo) Create(_ context.Context, v *entity.Vote) error {
	return r.h.do(func(d *data) error {
		if _, ok := d.participants[v.ParticipantID]; !ok {
			return domain.ErrNotFound
		}
		if _, ok := d.positions[v.PositionID]; !ok {
			return domain.ErrNotFound
		}
		if v.CandidateID != nil {
			if _, ok := d.candidates[*v.CandidateID]; !ok {
				return domain.ErrNotFound
			}
		}
		for _, o := range d.votes {
			if o.ParticipantID == v.ParticipantID && o.PositionID == v.PositionID {
				return domain.ErrVoteAlreadyCast
			}
		}
		if v.CreatedAt.IsZero() {
			v.CreatedAt = r.h.now()
		}
		v.ID = d.nextID()
		d.votes[v.ID] = *v
		return nil
	})
}

// VotedPositions nil = todas; un slice vacío no consulta nada (igual que la versión SQL).
func (r *VoteRepo) VotedPositions(_ context.Context, participantID int64, positionIDs []int64) ([]int64, error) {
	out := []int64{}
	if positionIDs != nil && len(positionIDs) == 0 {
		return out, nil
	}
	want := make(map[int64]bool, len(positionIDs))
	for _, id := range positionIDs {
		want[id] = true
	}
	_ = r.h.do(func(d *data) error {
		for _, v := range d.votes {
			if v.ParticipantID == participantID && (positionIDs == nil || want[v.PositionID]) {
				out = append(out, v.PositionID)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (r *VoteRepo) DeleteByParticipant(_ context.Context, participantID int64) (int64, error) {
	var n int64
	_ = r.h.do(func(d *data) error {
		for id, v := range d.votes {
			if v.ParticipantID == participantID {
				delete(d.votes, id)
				n++
			}
		}
		return nil
	})
	return n, nil
}

func (r *VoteRepo) ListByParticipant(_ context.Context, participantID int64) ([]*entity.Vote, error) {
	var rows []entity.Vote
	_ = r.h.do(func(d *data) error {
		for _, v := range d.votes {
			if v.ParticipantID == participantID {
				rows = append(rows, v)
			}
		}
		return nil
	})
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return paginate(rows, 0, 0), nil
}

// AuditRepo registro de auditoría en memoria.
type AuditRepo struct{ h handle }

func (r *AuditRepo) Create(_ context.Context, l *entity.AuditLog) error {
	return r.h.do(func(d *data) error {
		if l.CreatedAt.IsZero() {
			l.CreatedAt = r.h.now()
		}
		l.ID = d.nextID()
		d.audit = append(d.audit, *l)
		return nil
	})
}

// List devuelve las entradas más recientes primero.
func (r *AuditRepo) List(_ context.Context, f repository.AuditFilter) ([]*entity.AuditLog, error) {
	var rows []entity.AuditLog
	_ = r.h.do(func(d *data) error {
		for i := len(d.audit) - 1; i >= 0; i-- {
			l := d.audit[i]
			if f.EntityType != "" && l.EntityType != f.EntityType {
				continue
			}
			if f.Action != "" && l.Action != f.Action {
				continue
			}
			rows = append(rows, l)
		}
		return nil
	})
	return paginate(rows, f.Limit, 0), nil
}

// ReportRepo agregados calculados sobre el almacén.
type ReportRepo struct{ h handle }

func (r *ReportRepo) PositionTallies(_ context.Context, onlyActive bool, positionID int64) ([]entity.PositionTally, error) {
	var out []entity.PositionTally
	_ = r.h.do(func(d *data) error {
		var positions []entity.Position
		for _, p := range d.positions {
			if onlyActive && !p.IsActive {
				continue
			}
			if positionID != 0 && p.ID != positionID {
				continue
			}
			positions = append(positions, p)
		}
		sortPositions(positions)

		var cands []entity.Candidate
		for _, c := range d.candidates {
			cands = append(cands, c)
		}
		sortCandidates(cands)

		byCandidate := map[int64]int64{}
		byType := map[int64]map[entity.VoteType]int64{}
		for _, v := range d.votes {
			if byType[v.PositionID] == nil {
				byType[v.PositionID] = map[entity.VoteType]int64{}
			}
			byType[v.PositionID][v.VoteType]++
			if v.CandidateID != nil {
				byCandidate[*v.CandidateID]++
			}
		}

		for _, p := range positions {
			t := entity.PositionTally{Position: p, ByType: byType[p.ID]}
			if t.ByType == nil {
				t.ByType = map[entity.VoteType]int64{}
			}
			for _, c := range cands {
				if c.PositionID != p.ID {
					continue
				}
				t.Candidates = append(t.Candidates, entity.CandidateTally{
					CandidateID: c.ID,
					Name:        c.Name,
					Description: c.Description,
					Photo:       c.Photo,
					Votes:       byCandidate[c.ID],
				})
			}
			out = append(out, t)
		}
		return nil
	})
	return out, nil
}

func (r *ReportRepo) Counts(_ context.Context) (entity.VoteCounts, error) {
	var c entity.VoteCounts
	_ = r.h.do(func(d *data) error {
		c.TotalParticipants = int64(len(d.participants))
		c.TotalVotes = int64(len(d.votes))
		c.TotalCandidates = int64(len(d.candidates))
		voters := map[int64]bool{}
		for _, v := range d.votes {
			voters[v.ParticipantID] = true
		}
		c.VotedParticipants = int64(len(voters))
		for _, p := range d.positions {
			if p.IsActive {
				c.ActivePositions++
			}
		}
		return nil
	})
	return c, nil
}

func (r *ReportRepo) Timeline(_ context.Context, bucket entity.Bucket) ([]entity.TimeBucket, error) {
	counts := map[int64]int64{}
	_ = r.h.do(func(d *data) error {
		for _, v := range d.votes {
			counts[bucket.Truncate(v.CreatedAt).Unix()]++
		}
		return nil
	})
	out := make([]entity.TimeBucket, 0, len(counts))
	for k, n := range counts {
		out = append(out, entity.TimeBucket{Start: unixUTC(k), Votes: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (r *ReportRepo) VoteAuditTrail(_ context.Context) ([]entity.VoteAuditRow, error) {
	var out []entity.VoteAuditRow
	_ = r.h.do(func(d *data) error {
		for _, v := range d.votes {
			row := entity.VoteAuditRow{
				VoteID:           v.ID,
				CreatedAt:        v.CreatedAt,
				ParticipantEmail: d.participants[v.ParticipantID].Email,
				PositionName:     d.positions[v.PositionID].Name,
				VoteType:         v.VoteType,
				IPAddress:        v.IPAddress,
			}
			if v.CandidateID != nil {
				row.CandidateName = d.candidates[*v.CandidateID].Name
			}
			out = append(out, row)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].VoteID < out[j].VoteID
	})
	return out, nil
}
