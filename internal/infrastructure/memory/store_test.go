package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/encuestas-api/internal/domain"
	"github.com/jhoicas/encuestas-api/internal/domain/entity"
	"github.com/jhoicas/encuestas-api/internal/domain/repository"
	"github.com/jhoicas/encuestas-api/internal/infrastructure/memory"
)

func seed(t *testing.T, s *memory.Store) (*entity.Participant, *entity.Position, *entity.Candidate) {
	t.Helper()
	ctx := context.Background()
	p := &entity.Participant{Email: "ana@example.com", FirstName: "Ana", LastName: "Pérez"}
	require.NoError(t, s.Participants().Create(ctx, p))
	pos := &entity.Position{Name: "Presidente", IsActive: true}
	require.NoError(t, s.Positions().Create(ctx, pos))
	c := &entity.Candidate{PositionID: pos.ID, Name: "A"}
	require.NoError(t, s.Candidates().Create(ctx, c))
	return p, pos, c
}

func TestParticipants_EmailUnicoSinMayusculas(t *testing.T) {
	s := memory.NewStore()
	seed(t, s)
	err := s.Participants().Create(context.Background(), &entity.Participant{Email: "ANA@example.com"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	got, err := s.Participants().GetByEmail(context.Background(), " Ana@Example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestGet_NoExisteDevuelveNil(t *testing.T) {
	s := memory.NewStore()
	p, err := s.Participants().GetByID(context.Background(), 99)
	assert.NoError(t, err)
	assert.Nil(t, p)
}

func TestRunVoting_RollbackDescartaCambios(t *testing.T) {
	s := memory.NewStore()
	p, pos, c := seed(t, s)
	ctx := context.Background()

	boom := errors.New("falla")
	err := s.RunVoting(ctx, func(votes repository.VoteRepository, participants repository.ParticipantRepository) error {
		require.NoError(t, votes.Create(ctx, &entity.Vote{ParticipantID: p.ID, PositionID: pos.ID, CandidateID: &c.ID, VoteType: entity.VoteCandidate}))
		_, err := participants.RefreshHasVoted(ctx, p.ID)
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, _ := s.Votes().ListByParticipant(ctx, p.ID)
	assert.Empty(t, got)
	fresh, _ := s.Participants().GetByID(ctx, p.ID)
	assert.False(t, fresh.HasVoted)
}

func TestVotes_UnicoPorPosicion(t *testing.T) {
	s := memory.NewStore()
	p, pos, _ := seed(t, s)
	ctx := context.Background()

	require.NoError(t, s.Votes().Create(ctx, &entity.Vote{ParticipantID: p.ID, PositionID: pos.ID, VoteType: entity.VoteBlanco}))
	err := s.Votes().Create(ctx, &entity.Vote{ParticipantID: p.ID, PositionID: pos.ID, VoteType: entity.VoteNoSe})
	assert.ErrorIs(t, err, domain.ErrVoteAlreadyCast)
}

func TestCandidateDelete_RecalculaHasVoted(t *testing.T) {
	s := memory.NewStore()
	p, pos, c := seed(t, s)
	ctx := context.Background()

	require.NoError(t, s.Votes().Create(ctx, &entity.Vote{ParticipantID: p.ID, PositionID: pos.ID, CandidateID: &c.ID, VoteType: entity.VoteCandidate}))
	has, err := s.Participants().RefreshHasVoted(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, has)

	require.NoError(t, s.Candidates().Delete(ctx, c.ID))
	fresh, _ := s.Participants().GetByID(ctx, p.ID)
	assert.False(t, fresh.HasVoted)

	counts, _ := s.Reports().Counts(ctx)
	assert.Equal(t, int64(0), counts.VotedParticipants)
}

func TestPositions_NombreDuplicado(t *testing.T) {
	s := memory.NewStore()
	seed(t, s)
	err := s.Positions().Create(context.Background(), &entity.Position{Name: "presidente"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestParticipants_ListPaginaYBusca(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	for _, e := range []string{"a@x.com", "b@x.com", "c@y.com"} {
		require.NoError(t, s.Participants().Create(ctx, &entity.Participant{Email: e, FirstName: "N", LastName: "M"}))
	}
	rows, total, err := s.Participants().List(ctx, repository.ParticipantFilter{Search: "X.COM", Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, rows, 1)
	assert.Equal(t, "b@x.com", rows[0].Email, "más recientes primero")
}
