package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/encuestas-api/internal/domain"
	"github.com/jhoicas/encuestas-api/internal/domain/entity"
	"github.com/jhoicas/encuestas-api/internal/domain/repository"
)

var (
	_ repository.PositionRepository  = (*PositionRepo)(nil)
	_ repository.CandidateRepository = (*CandidateRepo)(nil)
)

// PositionRepo posiciones en memoria.
type PositionRepo struct{ h handle }

func (r *PositionRepo) Create(_ context.Context, p *entity.Position) error {
	return r.h.do(func(d *data) error {
		for _, o := range d.positions {
			if sameFold(o.Name, p.Name) {
				return domain.ErrDuplicate
			}
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = r.h.now()
		}
		if p.UpdatedAt.IsZero() {
			p.UpdatedAt = p.CreatedAt
		}
		p.ID = d.nextID()
		d.positions[p.ID] = *p
		return nil
	})
}

func (r *PositionRepo) GetByID(_ context.Context, id int64) (*entity.Position, error) {
	var out *entity.Position
	_ = r.h.do(func(d *data) error {
		if p, ok := d.positions[id]; ok {
			out = &p
		}
		return nil
	})
	return out, nil
}

func (r *PositionRepo) GetByName(_ context.Context, name string) (*entity.Position, error) {
	var out *entity.Position
	_ = r.h.do(func(d *data) error {
		for _, p := range d.positions {
			if sameFold(p.Name, name) {
				p := p
				out = &p
				return nil
			}
		}
		return nil
	})
	return out, nil
}

func (r *PositionRepo) Update(_ context.Context, p *entity.Position) error {
	return r.h.do(func(d *data) error {
		if _, ok := d.positions[p.ID]; !ok {
			return domain.ErrNotFound
		}
		for _, o := range d.positions {
			if o.ID != p.ID && sameFold(o.Name, p.Name) {
				return domain.ErrDuplicate
			}
		}
		d.positions[p.ID] = *p
		return nil
	})
}

func (r *PositionRepo) Delete(_ context.Context, id int64) error {
	return r.h.do(func(d *data) error {
		if _, ok := d.positions[id]; !ok {
			return domain.ErrNotFound
		}
		delete(d.positions, id)
		for cid, c := range d.candidates {
			if c.PositionID == id {
				delete(d.candidates, cid)
			}
		}
		d.deleteVotes(func(v entity.Vote) bool { return v.PositionID == id }, r.h.now())
		return nil
	})
}

func (r *PositionRepo) List(_ context.Context, f repository.PositionFilter) ([]*entity.Position, int64, error) {
	var rows []entity.Position
	_ = r.h.do(func(d *data) error {
		for _, p := range d.positions {
			if f.OnlyActive && !p.IsActive {
				continue
			}
			rows = append(rows, p)
		}
		return nil
	})
	sortPositions(rows)
	return paginate(rows, f.Limit, f.Offset), int64(len(rows)), nil
}

func sortPositions(rows []entity.Position) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Order != rows[j].Order {
			return rows[i].Order < rows[j].Order
		}
		return rows[i].ID < rows[j].ID
	})
}

// deleteVotes borra los votos que cumplen match y recalcula has_voted de los afectados.
func (d *data) deleteVotes(match func(entity.Vote) bool, now time.Time) {
	affected := map[int64]bool{}
	for vid, v := range d.votes {
		if match(v) {
			affected[v.ParticipantID] = true
			delete(d.votes, vid)
		}
	}
	for pid := range affected {
		p, ok := d.participants[pid]
		if !ok {
			continue
		}
		p.HasVoted = false
		for _, v := range d.votes {
			if v.ParticipantID == pid {
				p.HasVoted = true
				break
			}
		}
		p.UpdatedAt = now
		d.participants[pid] = p
	}
}

// CandidateRepo candidatos en memoria.
type CandidateRepo struct{ h handle }

func (r *CandidateRepo) Create(_ context.Context, c *entity.Candidate) error {
	return r.h.do(func(d *data) error {
		if _, ok := d.positions[c.PositionID]; !ok {
			return domain.ErrNotFound
		}
		for _, o := range d.candidates {
			if o.PositionID == c.PositionID && sameFold(o.Name, c.Name) {
				return domain.ErrDuplicate
			}
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = r.h.now()
		}
		if c.UpdatedAt.IsZero() {
			c.UpdatedAt = c.CreatedAt
		}
		c.ID = d.nextID()
		d.candidates[c.ID] = *c
		return nil
	})
}

func (r *CandidateRepo) GetByID(_ context.Context, id int64) (*entity.Candidate, error) {
	var out *entity.Candidate
	_ = r.h.do(func(d *data) error {
		if c, ok := d.candidates[id]; ok {
			out = &c
		}
		return nil
	})
	return out, nil
}

func (r *CandidateRepo) GetByPositionAndName(_ context.Context, positionID int64, name string) (*entity.Candidate, error) {
	var out *entity.Candidate
	_ = r.h.do(func(d *data) error {
		for _, c := range d.candidates {
			if c.PositionID == positionID && sameFold(c.Name, name) {
				c := c
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, nil
}

func (r *CandidateRepo) Update(_ context.Context, c *entity.Candidate) error {
	return r.h.do(func(d *data) error {
		if _, ok := d.candidates[c.ID]; !ok {
			return domain.ErrNotFound
		}
		for _, o := range d.candidates {
			if o.ID != c.ID && o.PositionID == c.PositionID && sameFold(o.Name, c.Name) {
				return domain.ErrDuplicate
			}
		}
		d.candidates[c.ID] = *c
		return nil
	})
}

func (r *CandidateRepo) Delete(_ context.Context, id int64) error {
	return r.h.do(func(d *data) error {
		if _, ok := d.candidates[id]; !ok {
			return domain.ErrNotFound
		}
		delete(d.candidates, id)
		d.deleteVotes(func(v entity.Vote) bool { return v.CandidateID != nil && *v.CandidateID == id }, r.h.now())
		return nil
	})
}

func (r *CandidateRepo) ListByPosition(_ context.Context, positionID int64) ([]*entity.Candidate, error) {
	return r.list(func(c entity.Candidate) bool { return positionID == 0 || c.PositionID == positionID })
}

func (r *CandidateRepo) ListByNominator(_ context.Context, participantUserID int64) ([]*entity.Candidate, error) {
	return r.list(func(c entity.Candidate) bool { return c.NominatedBy != nil && *c.NominatedBy == participantUserID })
}

func (r *CandidateRepo) list(match func(entity.Candidate) bool) ([]*entity.Candidate, error) {
	var rows []entity.Candidate
	_ = r.h.do(func(d *data) error {
		for _, c := range d.candidates {
			if match(c) {
				rows = append(rows, c)
			}
		}
		return nil
	})
	sortCandidates(rows)
	return paginate(rows, 0, 0), nil
}

func sortCandidates(rows []entity.Candidate) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].PositionID != rows[j].PositionID {
			return rows[i].PositionID < rows[j].PositionID
		}
		if rows[i].Order != rows[j].Order {
			return rows[i].Order < rows[j].Order
		}
		return rows[i].ID < rows[j].ID
	})
}

func (r *CandidateRepo) CountByPosition(_ context.Context) (map[int64]int64, error) {
	out := map[int64]int64{}
	_ = r.h.do(func(d *data) error {
		for _, c := range d.candidates {
			out[c.PositionID]++
		}
		return nil
	})
	return out, nil
}

func (r *CandidateRepo) CountVotes(_ context.Context) (map[int64]int64, error) {
	out := map[int64]int64{}
	_ = r.h.do(func(d *data) error {
		for _, v := range d.votes {
			if v.CandidateID != nil {
				out[*v.CandidateID]++
			}
		}
		return nil
	})
	return out, nil
}
