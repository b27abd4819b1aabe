// Package memory implementa todos los repositorios sobre un almacén en memoria.
// Se usa en el perfil testing y como doble de pruebas. Respeta las mismas
// restricciones de unicidad que el esquema PostgreSQL.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/encuestas-api/internal/domain/entity"
	"github.com/jhoicas/encuestas-api/internal/domain/repository"
)

type data struct {
	seq              int64
	participants     map[int64]entity.Participant
	participantUsers map[int64]entity.ParticipantUser
	admins           map[int64]entity.AdminUser
	positions        map[int64]entity.Position
	candidates       map[int64]entity.Candidate
	votes            map[int64]entity.Vote
	audit            []entity.AuditLog
}

func newData() *data {
	return &data{
		participants:     map[int64]entity.Participant{},
		participantUsers: map[int64]entity.ParticipantUser{},
		admins:           map[int64]entity.AdminUser{},
		positions:        map[int64]entity.Position{},
		candidates:       map[int64]entity.Candidate{},
		votes:            map[int64]entity.Vote{},
	}
}

func (d *data) nextID() int64 {
	d.seq++
	return d.seq
}

// clone copia superficial de cada tabla; las filas son valores y nunca se mutan en sitio.
func (d *data) clone() *data {
	c := &data{
		seq:              d.seq,
		participants:     make(map[int64]entity.Participant, len(d.participants)),
		participantUsers: make(map[int64]entity.ParticipantUser, len(d.participantUsers)),
		admins:           make(map[int64]entity.AdminUser, len(d.admins)),
		positions:        make(map[int64]entity.Position, len(d.positions)),
		candidates:       make(map[int64]entity.Candidate, len(d.candidates)),
		votes:            make(map[int64]entity.Vote, len(d.votes)),
		audit:            append([]entity.AuditLog(nil), d.audit...),
	}
	for k, v := range d.participants {
		c.participants[k] = v
	}
	for k, v := range d.participantUsers {
		c.participantUsers[k] = v
	}
	for k, v := range d.admins {
		c.admins[k] = v
	}
	for k, v := range d.positions {
		c.positions[k] = v
	}
	for k, v := range d.candidates {
		c.candidates[k] = v
	}
	for k, v := range d.votes {
		c.votes[k] = v
	}
	return c
}

// Store almacén en memoria. Las transacciones trabajan sobre una copia que se
// publica en el commit; mientras dura una transacción el resto de operaciones espera.
type Store struct {
	mu  sync.Mutex
	d   *data
	now func() time.Time
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{d: newData(), now: func() time.Time { return time.Now().UTC() }}
}

// handle enlaza un repositorio al almacén (con bloqueo) o a una transacción en curso.
type handle struct {
	s  *Store
	tx *data
}

func (h handle) do(fn func(d *data) error) error {
	if h.tx != nil {
		return fn(h.tx)
	}
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	return fn(h.s.d)
}

func (h handle) now() time.Time { return h.s.now() }

func (s *Store) root() handle { return handle{s: s} }

// Participants repositorio de participantes.
func (s *Store) Participants() *ParticipantRepo { return &ParticipantRepo{h: s.root()} }

// ParticipantUsers repositorio de cuentas de participantes.
func (s *Store) ParticipantUsers() *ParticipantUserRepo { return &ParticipantUserRepo{h: s.root()} }

// Admins repositorio de administradores.
func (s *Store) Admins() *AdminRepo { return &AdminRepo{h: s.root()} }

// Positions repositorio de posiciones.
func (s *Store) Positions() *PositionRepo { return &PositionRepo{h: s.root()} }

// Candidates repositorio de candidatos.
func (s *Store) Candidates() *CandidateRepo { return &CandidateRepo{h: s.root()} }

// Votes libro de votos.
func (s *Store) Votes() *VoteRepo { return &VoteRepo{h: s.root()} }

// Audit registro de auditoría.
func (s *Store) Audit() *AuditRepo { return &AuditRepo{h: s.root()} }

// Reports consultas agregadas.
func (s *Store) Reports() *ReportRepo { return &ReportRepo{h: s.root()} }

func (s *Store) run(fn func(h handle) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := s.d.clone()
	if err := fn(handle{s: s, tx: tx}); err != nil {
		return err
	}
	s.d = tx
	return nil
}

// RunVoting ejecuta fn con repos de votos y participantes atados a una transacción.
// Dentro de fn no se deben usar repositorios obtenidos fuera de ella.
func (s *Store) RunVoting(ctx context.Context, fn func(votes repository.VoteRepository, participants repository.ParticipantRepository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.run(func(h handle) error {
		return fn(&VoteRepo{h: h}, &ParticipantRepo{h: h})
	})
}

// RunRegistration ejecuta fn con repos de cuentas y participantes atados a una transacción.
func (s *Store) RunRegistration(ctx context.Context, fn func(users repository.ParticipantUserRepository, participants repository.ParticipantRepository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.run(func(h handle) error {
		return fn(&ParticipantUserRepo{h: h}, &ParticipantRepo{h: h})
	})
}

func sameFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func unixUTC(sec int64) time.Time { return time.Unix(sec, 0).UTC() }
