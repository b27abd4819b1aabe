package voting_test

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/encuestas-api/internal/application/audit"
	"github.com/jhoicas/encuestas-api/internal/application/dto"
	"github.com/jhoicas/encuestas-api/internal/application/voting"
	"github.com/jhoicas/encuestas-api/internal/domain"
	"github.com/jhoicas/encuestas-api/internal/domain/entity"
	"github.com/jhoicas/encuestas-api/internal/domain/repository"
	domvoting "github.com/jhoicas/encuestas-api/internal/domain/voting"
	"github.com/jhoicas/encuestas-api/internal/infrastructure/memory"
	"github.com/jhoicas/encuestas-api/pkg/ballot"
	"github.com/jhoicas/encuestas-api/pkg/logger"
)

// ── fixtures ─────────────────────────────────────────────────────────────────

type fixture struct {
	store     *memory.Store
	uc        *voting.UseCase
	signer    *ballot.Signer
	voter     *entity.Participant
	user      *entity.ParticipantUser
	president *entity.Position
	treasurer *entity.Position
	inactive  *entity.Position
	candA     *entity.Candidate
	candB     *entity.Candidate
	candT     *entity.Candidate
}

func newFixture(t *testing.T, legacy bool) *fixture {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()
	signer, err := ballot.NewSigner("secreto-papeleta")
	require.NoError(t, err)

	f := &fixture{store: s, signer: signer}
	f.voter = &entity.Participant{Email: "ana@example.com", FirstName: "Ana", LastName: "Pérez"}
	require.NoError(t, s.Participants().Create(ctx, f.voter))
	f.user = &entity.ParticipantUser{Email: "ana@example.com", FirstName: "Ana", LastName: "Pérez", ParticipantID: &f.voter.ID, IsActive: true}
	require.NoError(t, s.ParticipantUsers().Create(ctx, f.user))

	f.president = &entity.Position{Name: "Presidente", Order: 1, IsActive: true}
	f.treasurer = &entity.Position{Name: "Tesorero", Order: 2, IsActive: true}
	f.inactive = &entity.Position{Name: "Secretario", Order: 3, IsActive: false}
	for _, p := range []*entity.Position{f.president, f.treasurer, f.inactive} {
		require.NoError(t, s.Positions().Create(ctx, p))
	}
	f.candA = &entity.Candidate{PositionID: f.president.ID, Name: "A"}
	f.candB = &entity.Candidate{PositionID: f.president.ID, Name: "B"}
	f.candT = &entity.Candidate{PositionID: f.treasurer.ID, Name: "T"}
	for _, c := range []*entity.Candidate{f.candA, f.candB, f.candT} {
		require.NoError(t, s.Candidates().Create(ctx, c))
	}

	f.uc = voting.NewUseCase(
		s.Participants(), s.ParticipantUsers(), s.Positions(), s.Candidates(), s.Votes(),
		s, audit.NewRecorder(s.Audit(), logger.Nop()), nil,
		voting.Options{LegacyEnabled: legacy, Signer: signer},
	)
	return f
}

func pk(p *entity.Position) string { return strconv.FormatInt(p.ID, 10) }

func (f *fixture) votesOf(t *testing.T) []*entity.Vote {
	t.Helper()
	v, err := f.store.Votes().ListByParticipant(context.Background(), f.voter.ID)
	require.NoError(t, err)
	return v
}

// ── SubmitBallot ─────────────────────────────────────────────────────────────

func TestSubmitBallot_ValidoRegistraTodoYMarcaHasVoted(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	resp, err := f.uc.SubmitBallot(ctx, f.voter.ID, domvoting.Ballot{
		pk(f.president): {Type: "candidate", CandidateID: &f.candA.ID},
		pk(f.treasurer): {Type: "abstencion"},
	}, voting.PolicyStrict, voting.Meta{IP: "10.0.0.1", UserAgent: "go-test"})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.VotesCount)
	assert.True(t, resp.HasVoted)

	votes := f.votesOf(t)
	require.Len(t, votes, 2)
	p, _ := f.store.Participants().GetByID(ctx, f.voter.ID)
	assert.True(t, p.HasVoted)

	logs, _ := f.store.Audit().List(ctx, repository.AuditFilter{Action: entity.ActionVoteSubmitted})
	assert.Len(t, logs, 1, "una entrada de auditoría por papeleta")
}

func TestSubmitBallot_StrictSegundoEnvio409SinFilasNuevas(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	first := domvoting.Ballot{pk(f.president): {Type: "blanco"}}
	_, err := f.uc.SubmitBallot(ctx, f.voter.ID, first, voting.PolicyStrict, voting.Meta{})
	require.NoError(t, err)

	_, err = f.uc.SubmitBallot(ctx, f.voter.ID, domvoting.Ballot{
		pk(f.president): {Type: "candidate", CandidateID: &f.candB.ID},
		pk(f.treasurer): {Type: "no_se"},
	}, voting.PolicyStrict, voting.Meta{})
	assert.ErrorIs(t, err, domain.ErrVoteAlreadyCast)

	votes := f.votesOf(t)
	require.Len(t, votes, 1, "el rechazo es de toda la papeleta")
	assert.Equal(t, entity.VoteBlanco, votes[0].VoteType)
}

func TestSubmitBallot_CandidatoDeOtraPosicionNoEscribe(t *testing.T) {
	f := newFixture(t, true)
	_, err := f.uc.SubmitBallot(context.Background(), f.voter.ID, domvoting.Ballot{
		pk(f.treasurer): {Type: "blanco"},
		pk(f.president): {Type: "candidate", CandidateID: &f.candT.ID},
	}, voting.PolicyStrict, voting.Meta{})
	assert.ErrorIs(t, err, domain.ErrCandidateMismatch)
	assert.Empty(t, f.votesOf(t))
}

func TestSubmitBallot_CandidatoSinIDNoEscribe(t *testing.T) {
	f := newFixture(t, true)
	_, err := f.uc.SubmitBallot(context.Background(), f.voter.ID, domvoting.Ballot{
		pk(f.treasurer): {Type: "blanco"},
		pk(f.president): {Type: "candidate"},
	}, voting.PolicyStrict, voting.Meta{})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Empty(t, f.votesOf(t))
}

func TestSubmitBallot_PosicionInactiva(t *testing.T) {
	f := newFixture(t, true)
	_, err := f.uc.SubmitBallot(context.Background(), f.voter.ID, domvoting.Ballot{
		pk(f.inactive): {Type: "blanco"},
	}, voting.PolicyStrict, voting.Meta{})
	assert.ErrorIs(t, err, domain.ErrPositionUnavailable)
}

func TestSubmitBallot_ReplaceAllReemplaza(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	_, err := f.uc.SubmitBallot(ctx, f.voter.ID, domvoting.Ballot{
		pk(f.president): {Type: "blanco"},
		pk(f.treasurer): {Type: "blanco"},
	}, voting.PolicyReplaceAll, voting.Meta{})
	require.NoError(t, err)

	_, err = f.uc.SubmitBallot(ctx, f.voter.ID, domvoting.Ballot{
		pk(f.president): {Type: "candidate", CandidateID: &f.candA.ID},
	}, voting.PolicyReplaceAll, voting.Meta{})
	require.NoError(t, err)

	votes := f.votesOf(t)
	require.Len(t, votes, 1)
	assert.Equal(t, f.candA.ID, *votes[0].CandidateID)
}

func TestSubmitBallot_UserAgentTruncado(t *testing.T) {
	f := newFixture(t, true)
	_, err := f.uc.SubmitBallot(context.Background(), f.voter.ID, domvoting.Ballot{
		pk(f.president): {Type: "ninguno"},
	}, voting.PolicyStrict, voting.Meta{UserAgent: strings.Repeat("x", 800)})
	require.NoError(t, err)
	assert.Len(t, f.votesOf(t)[0].UserAgent, 500)
}

func TestSubmitBallot_IPRecortadaAlAnchoDeColumna(t *testing.T) {
	f := newFixture(t, true)
	ip := "203.0.113.66-" + strings.Repeat("z", 60)
	_, err := f.uc.SubmitBallot(context.Background(), f.voter.ID, domvoting.Ballot{
		pk(f.president): {Type: "blanco"},
	}, voting.PolicyStrict, voting.Meta{IP: ip})
	require.NoError(t, err)
	assert.Equal(t, ip[:entity.MaxIPLength], f.votesOf(t)[0].IPAddress)

	logs, err := f.store.Audit().List(context.Background(), repository.AuditFilter{})
	require.NoError(t, err)
	require.NotEmpty(t, logs)
	assert.Len(t, logs[0].IPAddress, entity.MaxIPLength)
}

// ── Flujo autenticado y por correo ───────────────────────────────────────────

func TestSubmitForUser_SinVinculo404(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	u := &entity.ParticipantUser{Email: "solo@example.com", IsActive: true}
	require.NoError(t, f.store.ParticipantUsers().Create(ctx, u))

	_, err := f.uc.SubmitForUser(ctx, u.ID, domvoting.Ballot{pk(f.president): {Type: "blanco"}}, voting.Meta{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCuentaInactiva401(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	f.user.IsActive = false
	require.NoError(t, f.store.ParticipantUsers().Update(ctx, f.user))

	_, err := f.uc.SubmitForUser(ctx, f.user.ID, domvoting.Ballot{pk(f.president): {Type: "blanco"}}, voting.Meta{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Empty(t, f.votesOf(t), "sin escrituras")

	_, err = f.uc.VoteStatus(ctx, f.user.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = f.uc.MyVotes(ctx, f.user.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = f.uc.UserInfo(ctx, f.user.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestVoteStatusYMyVotes(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	_, err := f.uc.SubmitForUser(ctx, f.user.ID, domvoting.Ballot{
		pk(f.president): {Type: "candidate", CandidateID: &f.candA.ID},
	}, voting.Meta{})
	require.NoError(t, err)

	st, err := f.uc.VoteStatus(ctx, f.user.ID)
	require.NoError(t, err)
	assert.True(t, st.HasVoted)
	assert.Equal(t, []int64{f.president.ID}, st.VotedPositions)
	assert.Equal(t, 2, st.ActivePositions)
	assert.False(t, st.Completed)

	mine, err := f.uc.MyVotes(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Presidente", mine[0].PositionName)
	assert.Equal(t, "A", mine[0].CandidateName)
}

func TestBallotForUser_SoloActivasEnOrden(t *testing.T) {
	f := newFixture(t, true)
	b, err := f.uc.BallotForUser(context.Background(), f.user.ID)
	require.NoError(t, err)
	require.Len(t, b.Positions, 2)
	assert.Equal(t, "Presidente", b.Positions[0].Name)
	assert.Len(t, b.Positions[0].Candidates, 2)
	assert.Len(t, b.VoteTypes, 5)
}

func TestLegacy_TokenYHabilitacion(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	token := f.signer.Sign("ana@example.com")

	_, err := f.uc.SubmitLegacy(ctx, dto.LegacySubmitRequest{Email: "ANA@example.com", Token: token, Votes: domvoting.Ballot{pk(f.president): {Type: "blanco"}}}, voting.Meta{})
	require.NoError(t, err)

	_, err = f.uc.LegacyBallot(ctx, "ana@example.com", "deadbeef")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.uc.LegacyBallot(ctx, "nadie@example.com", f.signer.Sign("nadie@example.com"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	off := newFixture(t, false)
	_, err = off.uc.LegacyBallot(ctx, "ana@example.com", token)
	assert.ErrorIs(t, err, domain.ErrLegacyVotingOff)
}
