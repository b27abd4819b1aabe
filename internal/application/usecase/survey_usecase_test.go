package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/encuestas-api/internal/application/audit"
	"github.com/jhoicas/encuestas-api/internal/application/dto"
	"github.com/jhoicas/encuestas-api/internal/application/usecase"
	"github.com/jhoicas/encuestas-api/internal/domain"
	"github.com/jhoicas/encuestas-api/internal/domain/entity"
	"github.com/jhoicas/encuestas-api/internal/domain/repository"
	"github.com/jhoicas/encuestas-api/internal/infrastructure/memory"
	"github.com/jhoicas/encuestas-api/pkg/logger"
)

type memPhotos struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemPhotos() *memPhotos { return &memPhotos{files: map[string][]byte{}} }

func (m *memPhotos) Save(_ context.Context, name string, r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = b
	return nil
}

func (m *memPhotos) Remove(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, name)
	return nil
}

func (m *memPhotos) URL(name string) string { return "/uploads/candidates/" + name }

func newSurvey(t *testing.T) (*usecase.SurveyUseCase, *memory.Store, *memPhotos) {
	t.Helper()
	s := memory.NewStore()
	photos := newMemPhotos()
	uc := usecase.NewSurveyUseCase(s.Positions(), s.Candidates(), audit.NewRecorder(s.Audit(), logger.Nop()), photos)
	return uc, s, photos
}

func TestPositions_CRUD(t *testing.T) {
	uc, s, _ := newSurvey(t)
	ctx := context.Background()

	inactive := false
	tes, err := uc.CreatePosition(ctx, dto.PositionRequest{Name: "Tesorero", Order: 2, IsActive: &inactive}, adminID, "")
	require.NoError(t, err)
	assert.False(t, tes.IsActive)
	pres, err := uc.CreatePosition(ctx, dto.PositionRequest{Name: " Presidente ", Order: 1}, adminID, "")
	require.NoError(t, err)
	assert.Equal(t, "Presidente", pres.Name)
	assert.True(t, pres.IsActive, "activa por defecto")

	_, err = uc.CreatePosition(ctx, dto.PositionRequest{Name: "Presidente"}, adminID, "")
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	_, err = uc.CreatePosition(ctx, dto.PositionRequest{Name: "  "}, adminID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.CreateCandidate(ctx, dto.CandidateRequest{PositionID: pres.ID, Name: "Ana"}, adminID, "")
	require.NoError(t, err)

	list, err := uc.ListPositions(ctx, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list.Positions, 2)
	assert.Equal(t, "Presidente", list.Positions[0].Name, "ordenadas por order")
	assert.Equal(t, int64(1), list.Positions[0].CandidateCount)

	dup := "Tesorero"
	_, err = uc.UpdatePosition(ctx, pres.ID, dto.UpdatePositionRequest{Name: &dup}, adminID, "")
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	same := "Presidente"
	active := true
	upd, err := uc.UpdatePosition(ctx, tes.ID, dto.UpdatePositionRequest{IsActive: &active}, adminID, "")
	require.NoError(t, err)
	assert.True(t, upd.IsActive)
	_, err = uc.UpdatePosition(ctx, pres.ID, dto.UpdatePositionRequest{Name: &same}, adminID, "")
	require.NoError(t, err, "conservar el propio nombre no es conflicto")

	require.NoError(t, uc.DeletePosition(ctx, pres.ID, adminID, ""))
	cands, _ := s.Candidates().ListByPosition(ctx, 0)
	assert.Empty(t, cands, "los candidatos se eliminan con la posición")
	assert.ErrorIs(t, uc.DeletePosition(ctx, pres.ID, adminID, ""), domain.ErrNotFound)

	logs, _ := s.Audit().List(ctx, repository.AuditFilter{EntityType: entity.EntityPosition})
	assert.Len(t, logs, 5)
}

func TestSurvey_LongitudesMaximas(t *testing.T) {
	uc, s, _ := newSurvey(t)
	ctx := context.Background()

	_, err := uc.CreatePosition(ctx, dto.PositionRequest{Name: strings.Repeat("a", 101)}, adminID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	pos, err := uc.CreatePosition(ctx, dto.PositionRequest{Name: strings.Repeat("é", 100)}, adminID, "")
	require.NoError(t, err, "el límite cuenta caracteres, no bytes")

	long := strings.Repeat("b", 101)
	_, err = uc.UpdatePosition(ctx, pos.ID, dto.UpdatePositionRequest{Name: &long}, adminID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.CreateCandidate(ctx, dto.CandidateRequest{PositionID: pos.ID, Name: strings.Repeat("c", 201)}, adminID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	c, err := uc.CreateCandidate(ctx, dto.CandidateRequest{PositionID: pos.ID, Name: strings.Repeat("c", 200)}, adminID, "")
	require.NoError(t, err)
	longer := strings.Repeat("d", 201)
	_, err = uc.UpdateCandidate(ctx, c.ID, dto.UpdateCandidateRequest{Name: &longer}, adminID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	stored, err := s.Positions().GetByID(ctx, pos.ID)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("é", 100), stored.Name)
}

func TestCandidates_CRUD(t *testing.T) {
	uc, s, photos := newSurvey(t)
	ctx := context.Background()
	pres, err := uc.CreatePosition(ctx, dto.PositionRequest{Name: "Presidente"}, adminID, "")
	require.NoError(t, err)
	vice, err := uc.CreatePosition(ctx, dto.PositionRequest{Name: "Vicepresidente"}, adminID, "")
	require.NoError(t, err)

	_, err = uc.CreateCandidate(ctx, dto.CandidateRequest{PositionID: 999, Name: "X"}, adminID, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	a, err := uc.CreateCandidate(ctx, dto.CandidateRequest{PositionID: pres.ID, Name: "Ana"}, adminID, "")
	require.NoError(t, err)
	assert.Equal(t, "Presidente", a.PositionName)
	_, err = uc.CreateCandidate(ctx, dto.CandidateRequest{PositionID: pres.ID, Name: "Ana"}, adminID, "")
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	_, err = uc.CreateCandidate(ctx, dto.CandidateRequest{PositionID: vice.ID, Name: "Ana"}, adminID, "")
	require.NoError(t, err, "el nombre es único solo dentro de la posición")
	b, err := uc.CreateCandidate(ctx, dto.CandidateRequest{PositionID: pres.ID, Name: "Beto"}, adminID, "")
	require.NoError(t, err)

	voter := &entity.Participant{Email: "v@example.com", FirstName: "V", LastName: "W"}
	require.NoError(t, s.Participants().Create(ctx, voter))
	require.NoError(t, s.Votes().Create(ctx, &entity.Vote{ParticipantID: voter.ID, PositionID: pres.ID, CandidateID: &b.ID, VoteType: entity.VoteCandidate}))

	list, err := uc.ListCandidates(ctx, pres.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	votes := map[string]int64{}
	for _, c := range list {
		votes[c.Name] = c.VoteCount
	}
	assert.Equal(t, map[string]int64{"Ana": 0, "Beto": 1}, votes)

	ana := "Ana"
	_, err = uc.UpdateCandidate(ctx, b.ID, dto.UpdateCandidateRequest{Name: &ana}, adminID, "")
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	desc := "Nueva descripción"
	upd, err := uc.UpdateCandidate(ctx, b.ID, dto.UpdateCandidateRequest{Description: &desc}, adminID, "")
	require.NoError(t, err)
	assert.Equal(t, desc, upd.Description)
	assert.Equal(t, int64(1), upd.VoteCount)

	require.NoError(t, photos.Save(ctx, "foto.png", strings.NewReader("png")))
	cand, _ := s.Candidates().GetByID(ctx, a.ID)
	cand.Photo = "foto.png"
	require.NoError(t, s.Candidates().Update(ctx, cand))
	require.NoError(t, uc.DeleteCandidate(ctx, a.ID, adminID, ""))
	assert.NotContains(t, photos.files, "foto.png")

	require.NoError(t, uc.DeleteCandidate(ctx, b.ID, adminID, ""))
	has, err := s.Participants().RefreshHasVoted(ctx, voter.ID)
	require.NoError(t, err)
	assert.False(t, has, "borrar el candidato borra sus votos")
}

// ── Auto-postulación ─────────────────────────────────────────────────────────

type failingCandidates struct {
	repository.CandidateRepository
}

func (failingCandidates) Create(context.Context, *entity.Candidate) error {
	return errors.New("insert falló")
}

type nominationFixture struct {
	store  *memory.Store
	photos *memPhotos
	uc     *usecase.NominationUseCase
	user   *entity.ParticipantUser
	pos    *entity.Position
	closed *entity.Position
}

func newNomination(t *testing.T) *nominationFixture {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()
	f := &nominationFixture{store: s, photos: newMemPhotos()}
	f.user = &entity.ParticipantUser{Email: "cand@example.com", FirstName: "Carla", LastName: "Ruiz", IsActive: true}
	require.NoError(t, s.ParticipantUsers().Create(ctx, f.user))
	f.pos = &entity.Position{Name: "Presidente", IsActive: true}
	f.closed = &entity.Position{Name: "Secretario", IsActive: false}
	require.NoError(t, s.Positions().Create(ctx, f.pos))
	require.NoError(t, s.Positions().Create(ctx, f.closed))
	f.uc = usecase.NewNominationUseCase(s.ParticipantUsers(), s.Positions(), s.Candidates(), audit.NewRecorder(s.Audit(), logger.Nop()), f.photos, 1024)
	return f
}

func nomination(positionID int64) dto.NominationRequest {
	return dto.NominationRequest{PositionID: positionID, PublicName: "Carla Ruiz", Description: "Propuesta de gestión transparente"}
}

func photo(name string, size int) *usecase.PhotoUpload {
	return &usecase.PhotoUpload{Filename: name, Size: int64(size), Content: bytes.NewReader(make([]byte, size))}
}

func TestNominate_ConFoto(t *testing.T) {
	f := newNomination(t)
	ctx := context.Background()

	c, err := f.uc.Nominate(ctx, f.user.ID, nomination(f.pos.ID), photo("retrato.JPG", 100), "")
	require.NoError(t, err)
	assert.Equal(t, "Carla Ruiz", c.Name)
	assert.Regexp(t, `^candidate_\d+_[0-9a-f-]{36}\.jpg$`, c.Photo)
	assert.Equal(t, "/uploads/candidates/"+c.Photo, c.PhotoURL)
	assert.Len(t, f.photos.files[c.Photo], 100)

	stored, _ := f.store.Candidates().GetByID(ctx, c.ID)
	require.NotNil(t, stored.NominatedBy)
	assert.Equal(t, f.user.ID, *stored.NominatedBy)

	mine, err := f.uc.MyNominations(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Presidente", mine[0].PositionName)

	_, err = f.uc.Nominate(ctx, f.user.ID, nomination(f.pos.ID), nil, "")
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestNominate_Validaciones(t *testing.T) {
	f := newNomination(t)
	ctx := context.Background()

	short := nomination(f.pos.ID)
	short.PublicName = "AB"
	_, err := f.uc.Nominate(ctx, f.user.ID, short, nil, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	brief := nomination(f.pos.ID)
	brief.Description = "corta"
	_, err = f.uc.Nominate(ctx, f.user.ID, brief, nil, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.Nominate(ctx, f.user.ID, nomination(f.closed.ID), nil, "")
	assert.ErrorIs(t, err, domain.ErrNotFound, "posición inactiva")
	_, err = f.uc.Nominate(ctx, f.user.ID, nomination(999), nil, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.Nominate(ctx, f.user.ID, nomination(f.pos.ID), photo("doc.pdf", 10), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.uc.Nominate(ctx, f.user.ID, nomination(f.pos.ID), photo("grande.png", 2048), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.Nominate(ctx, 12345, nomination(f.pos.ID), nil, "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	assert.Empty(t, f.photos.files)
	all, _ := f.store.Candidates().ListByPosition(ctx, 0)
	assert.Empty(t, all)
}

func TestNominate_FalloDelAltaBorraFoto(t *testing.T) {
	f := newNomination(t)
	s := f.store
	uc := usecase.NewNominationUseCase(s.ParticipantUsers(), s.Positions(), failingCandidates{s.Candidates()}, nil, f.photos, 1024)

	_, err := uc.Nominate(context.Background(), f.user.ID, nomination(f.pos.ID), photo("a.png", 10), "")
	require.Error(t, err)
	assert.Empty(t, f.photos.files)
}

func TestCandidatesPublic(t *testing.T) {
	f := newNomination(t)
	ctx := context.Background()
	c, err := f.uc.Nominate(ctx, f.user.ID, nomination(f.pos.ID), nil, "")
	require.NoError(t, err)

	positions, err := f.uc.AvailablePositions(ctx)
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, int64(1), positions[0].CandidateCount)

	list, err := f.uc.CandidatesByPosition(ctx, f.pos.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	_, err = f.uc.CandidatesByPosition(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	detail, err := f.uc.CandidateDetail(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Presidente", detail.PositionName)
	assert.Empty(t, detail.PhotoURL)
	_, err = f.uc.CandidateDetail(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
