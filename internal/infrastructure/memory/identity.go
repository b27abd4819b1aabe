package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/encuestas-api/internal/domain"
	"github.com/jhoicas/encuestas-api/internal/domain/entity"
	"github.com/jhoicas/encuestas-api/internal/domain/repository"
)

var (
	_ repository.ParticipantRepository     = (*ParticipantRepo)(nil)
	_ repository.ParticipantUserRepository = (*ParticipantUserRepo)(nil)
	_ repository.AdminRepository           = (*AdminRepo)(nil)
)

// ParticipantRepo participantes en memoria.
type ParticipantRepo struct{ h handle }

func (r *ParticipantRepo) Create(_ context.Context, p *entity.Participant) error {
	return r.h.do(func(d *data) error {
		for _, o := range d.participants {
			if sameFold(o.Email, p.Email) {
				return domain.ErrEmailAlreadyExists
			}
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = r.h.now()
		}
		if p.UpdatedAt.IsZero() {
			p.UpdatedAt = p.CreatedAt
		}
		p.ID = d.nextID()
		d.participants[p.ID] = *p
		return nil
	})
}

func (r *ParticipantRepo) GetByID(_ context.Context, id int64) (*entity.Participant, error) {
	var out *entity.Participant
	_ = r.h.do(func(d *data) error {
		if p, ok := d.participants[id]; ok {
			out = &p
		}
		return nil
	})
	return out, nil
}

func (r *ParticipantRepo) GetByEmail(_ context.Context, email string) (*entity.Participant, error) {
	var out *entity.Participant
	_ = r.h.do(func(d *data) error {
		for _, p := range d.participants {
			if sameFold(p.Email, email) {
				p := p
				out = &p
				return nil
			}
		}
		return nil
	})
	return out, nil
}

func (r *ParticipantRepo) Update(_ context.Context, p *entity.Participant) error {
	return r.h.do(func(d *data) error {
		if _, ok := d.participants[p.ID]; !ok {
			return domain.ErrNotFound
		}
		d.participants[p.ID] = *p
		return nil
	})
}

func (r *ParticipantRepo) Delete(_ context.Context, id int64) error {
	return r.h.do(func(d *data) error {
		if _, ok := d.participants[id]; !ok {
			return domain.ErrNotFound
		}
		delete(d.participants, id)
		for vid, v := range d.votes {
			if v.ParticipantID == id {
				delete(d.votes, vid)
			}
		}
		for uid, u := range d.participantUsers {
			if u.ParticipantID != nil && *u.ParticipantID == id {
				u.ParticipantID = nil
				d.participantUsers[uid] = u
			}
		}
		return nil
	})
}

func (r *ParticipantRepo) List(_ context.Context, f repository.ParticipantFilter) ([]*entity.Participant, int64, error) {
	var matched []entity.Participant
	search := strings.ToLower(strings.TrimSpace(f.Search))
	_ = r.h.do(func(d *data) error {
		for _, p := range d.participants {
			if search == "" ||
				strings.Contains(strings.ToLower(p.Email), search) ||
				strings.Contains(strings.ToLower(p.FirstName), search) ||
				strings.Contains(strings.ToLower(p.LastName), search) {
				matched = append(matched, p)
			}
		}
		return nil
	})
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	total := int64(len(matched))
	return paginate(matched, f.Limit, f.Offset), total, nil
}

func (r *ParticipantRepo) ListByIDs(_ context.Context, ids []int64) ([]*entity.Participant, error) {
	var out []*entity.Participant
	_ = r.h.do(func(d *data) error {
		for _, id := range ids {
			if p, ok := d.participants[id]; ok {
				out = append(out, &p)
			}
		}
		return nil
	})
	return out, nil
}

func (r *ParticipantRepo) ListWithoutVotes(_ context.Context) ([]*entity.Participant, error) {
	var out []*entity.Participant
	_ = r.h.do(func(d *data) error {
		voted := map[int64]bool{}
		for _, v := range d.votes {
			voted[v.ParticipantID] = true
		}
		for _, p := range d.participants {
			if !voted[p.ID] {
				p := p
				out = append(out, &p)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *ParticipantRepo) RefreshHasVoted(_ context.Context, id int64) (bool, error) {
	var has bool
	err := r.h.do(func(d *data) error {
		p, ok := d.participants[id]
		if !ok {
			return domain.ErrNotFound
		}
		has = false
		for _, v := range d.votes {
			if v.ParticipantID == id {
				has = true
				break
			}
		}
		p.HasVoted = has
		p.UpdatedAt = r.h.now()
		d.participants[id] = p
		return nil
	})
	return has, err
}

func paginate[T any](rows []T, limit, offset int) []*T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) {
		return []*T{}
	}
	end := len(rows)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	out := make([]*T, 0, end-offset)
	for i := offset; i < end; i++ {
		row := rows[i]
		out = append(out, &row)
	}
	return out
}

// ParticipantUserRepo cuentas de participantes en memoria.
type ParticipantUserRepo struct{ h handle }

func (r *ParticipantUserRepo) Create(_ context.Context, u *entity.ParticipantUser) error {
	return r.h.do(func(d *data) error {
		for _, o := range d.participantUsers {
			if sameFold(o.Email, u.Email) {
				return domain.ErrEmailAlreadyExists
			}
		}
		if u.CreatedAt.IsZero() {
			u.CreatedAt = r.h.now()
		}
		if u.UpdatedAt.IsZero() {
			u.UpdatedAt = u.CreatedAt
		}
		u.ID = d.nextID()
		d.participantUsers[u.ID] = *u
		return nil
	})
}

func (r *ParticipantUserRepo) GetByID(_ context.Context, id int64) (*entity.ParticipantUser, error) {
	var out *entity.ParticipantUser
	_ = r.h.do(func(d *data) error {
		if u, ok := d.participantUsers[id]; ok {
			out = &u
		}
		return nil
	})
	return out, nil
}

func (r *ParticipantUserRepo) GetByEmail(_ context.Context, email string) (*entity.ParticipantUser, error) {
	return r.find(func(u entity.ParticipantUser) bool { return sameFold(u.Email, email) })
}

func (r *ParticipantUserRepo) GetByConfirmationHash(_ context.Context, hash string) (*entity.ParticipantUser, error) {
	if hash == "" {
		return nil, nil
	}
	return r.find(func(u entity.ParticipantUser) bool { return u.ConfirmationTokenHash == hash })
}

func (r *ParticipantUserRepo) find(match func(entity.ParticipantUser) bool) (*entity.ParticipantUser, error) {
	var out *entity.ParticipantUser
	_ = r.h.do(func(d *data) error {
		for _, u := range d.participantUsers {
			if match(u) {
				u := u
				out = &u
				return nil
			}
		}
		return nil
	})
	return out, nil
}

func (r *ParticipantUserRepo) Update(_ context.Context, u *entity.ParticipantUser) error {
	return r.h.do(func(d *data) error {
		if _, ok := d.participantUsers[u.ID]; !ok {
			return domain.ErrNotFound
		}
		d.participantUsers[u.ID] = *u
		return nil
	})
}

// AdminRepo administradores en memoria.
type AdminRepo struct{ h handle }

func (r *AdminRepo) Create(_ context.Context, a *entity.AdminUser) error {
	return r.h.do(func(d *data) error {
		for _, o := range d.admins {
			if sameFold(o.Email, a.Email) {
				return domain.ErrEmailAlreadyExists
			}
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = r.h.now()
		}
		a.ID = d.nextID()
		d.admins[a.ID] = *a
		return nil
	})
}

func (r *AdminRepo) GetByID(_ context.Context, id int64) (*entity.AdminUser, error) {
	var out *entity.AdminUser
	_ = r.h.do(func(d *data) error {
		if a, ok := d.admins[id]; ok {
			out = &a
		}
		return nil
	})
	return out, nil
}

func (r *AdminRepo) GetByEmail(_ context.Context, email string) (*entity.AdminUser, error) {
	var out *entity.AdminUser
	_ = r.h.do(func(d *data) error {
		for _, a := range d.admins {
			if sameFold(a.Email, email) {
				a := a
				out = &a
				return nil
			}
		}
		return nil
	})
	return out, nil
}

func (r *AdminRepo) Update(_ context.Context, a *entity.AdminUser) error {
	return r.h.do(func(d *data) error {
		if _, ok := d.admins[a.ID]; !ok {
			return domain.ErrNotFound
		}
		d.admins[a.ID] = *a
		return nil
	})
}
