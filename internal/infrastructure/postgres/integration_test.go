package postgres_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/encuestas-api/internal/application/voting"
	"github.com/jhoicas/encuestas-api/internal/bootstrap"
	"github.com/jhoicas/encuestas-api/internal/domain"
	"github.com/jhoicas/encuestas-api/internal/domain/entity"
	domvoting "github.com/jhoicas/encuestas-api/internal/domain/voting"
	"github.com/jhoicas/encuestas-api/internal/infrastructure/mail"
	"github.com/jhoicas/encuestas-api/internal/infrastructure/memory"
	"github.com/jhoicas/encuestas-api/internal/infrastructure/postgres/pgtest"
	"github.com/jhoicas/encuestas-api/pkg/config"
	"github.com/jhoicas/encuestas-api/pkg/logger"
)

// stores ejecuta fn sobre el almacén en memoria y, si hay base de pruebas, sobre PostgreSQL.
// Así ambas implementaciones quedan sujetas a las mismas aserciones.
func stores(t *testing.T, fn func(t *testing.T, repos bootstrap.Repositories)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, bootstrap.MemoryRepositories(memory.NewStore()))
	})
	t.Run("postgres", func(t *testing.T) {
		fn(t, bootstrap.PostgresRepositories(pgtest.Open(t)))
	})
}

func services(t *testing.T, repos bootstrap.Repositories) *bootstrap.Services {
	t.Helper()
	cfg := &config.Config{
		App:    config.AppConfig{Env: config.EnvTesting, Name: "encuestas-test", BaseURL: "http://localhost:8080"},
		JWT:    config.JWTConfig{Secret: "secreto-jwt", Expiration: 60, Issuer: "test"},
		Voting: config.VotingConfig{LegacyEnabled: true, BallotSecret: "secreto-papeleta", ConfirmationTTLHours: 24},
	}
	log := logger.Nop()
	svc, err := bootstrap.NewServices(cfg, repos, bootstrap.Adapters{Mailer: mail.NewLogMailer(log)}, log)
	require.NoError(t, err)
	return svc
}

type board struct {
	voters    []*entity.Participant
	president *entity.Position
	treasurer *entity.Position
	candA     *entity.Candidate
	candB     *entity.Candidate
}

func newBoard(t *testing.T, repos bootstrap.Repositories, voters int) *board {
	t.Helper()
	ctx := context.Background()
	b := &board{
		president: &entity.Position{Name: "Presidente", Order: 1, IsActive: true},
		treasurer: &entity.Position{Name: "Tesorero", Order: 2, IsActive: true},
	}
	require.NoError(t, repos.Positions.Create(ctx, b.president))
	require.NoError(t, repos.Positions.Create(ctx, b.treasurer))
	b.candA = &entity.Candidate{PositionID: b.president.ID, Name: "Ana"}
	b.candB = &entity.Candidate{PositionID: b.president.ID, Name: "Beto"}
	require.NoError(t, repos.Candidates.Create(ctx, b.candA))
	require.NoError(t, repos.Candidates.Create(ctx, b.candB))
	for i := 0; i < voters; i++ {
		p := &entity.Participant{Email: fmt.Sprintf("votante%d@example.com", i), FirstName: "Votante", LastName: strconv.Itoa(i)}
		require.NoError(t, repos.Participants.Create(ctx, p))
		b.voters = append(b.voters, p)
	}
	return b
}

func key(p *entity.Position) string { return strconv.FormatInt(p.ID, 10) }

func TestVotes_UnicoPorPosicion409(t *testing.T) {
	stores(t, func(t *testing.T, repos bootstrap.Repositories) {
		ctx := context.Background()
		b := newBoard(t, repos, 1)
		v := &entity.Vote{ParticipantID: b.voters[0].ID, PositionID: b.president.ID, CandidateID: &b.candA.ID, VoteType: entity.VoteCandidate}
		require.NoError(t, repos.Votes.Create(ctx, v))
		assert.Positive(t, v.ID)

		again := &entity.Vote{ParticipantID: b.voters[0].ID, PositionID: b.president.ID, VoteType: entity.VoteBlanco}
		assert.ErrorIs(t, repos.Votes.Create(ctx, again), domain.ErrVoteAlreadyCast)
	})
}

func TestVotes_VotedPositions(t *testing.T) {
	stores(t, func(t *testing.T, repos bootstrap.Repositories) {
		ctx := context.Background()
		b := newBoard(t, repos, 1)
		voter := b.voters[0].ID
		require.NoError(t, repos.Votes.Create(ctx, &entity.Vote{ParticipantID: voter, PositionID: b.treasurer.ID, VoteType: entity.VoteNinguno}))

		all, err := repos.Votes.VotedPositions(ctx, voter, nil)
		require.NoError(t, err)
		assert.Equal(t, []int64{b.treasurer.ID}, all, "nil consulta todas")

		none, err := repos.Votes.VotedPositions(ctx, voter, []int64{})
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none, "un filtro vacío no coincide con nada")

		some, err := repos.Votes.VotedPositions(ctx, voter, []int64{b.president.ID, b.treasurer.ID})
		require.NoError(t, err)
		assert.Equal(t, []int64{b.treasurer.ID}, some)

		other, err := repos.Votes.VotedPositions(ctx, voter, []int64{b.president.ID})
		require.NoError(t, err)
		assert.Empty(t, other)
	})
}

func TestCandidateDelete_CascadaRecalculaHasVoted(t *testing.T) {
	stores(t, func(t *testing.T, repos bootstrap.Repositories) {
		ctx := context.Background()
		b := newBoard(t, repos, 1)
		voter := b.voters[0].ID
		require.NoError(t, repos.Votes.Create(ctx, &entity.Vote{ParticipantID: voter, PositionID: b.president.ID, CandidateID: &b.candA.ID, VoteType: entity.VoteCandidate}))
		has, err := repos.Participants.RefreshHasVoted(ctx, voter)
		require.NoError(t, err)
		require.True(t, has)

		require.NoError(t, repos.Candidates.Delete(ctx, b.candA.ID))
		fresh, err := repos.Participants.GetByID(ctx, voter)
		require.NoError(t, err)
		require.NotNil(t, fresh)
		assert.False(t, fresh.HasVoted)

		counts, err := repos.Reports.Counts(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), counts.VotedParticipants)
		assert.Equal(t, int64(0), counts.TotalVotes)
	})
}

func TestSubmitBallot_StrictSegundoEnvio409SinFilasNuevas(t *testing.T) {
	stores(t, func(t *testing.T, repos bootstrap.Repositories) {
		ctx := context.Background()
		svc := services(t, repos)
		b := newBoard(t, repos, 1)
		voter := b.voters[0].ID

		first := domvoting.Ballot{key(b.president): {Type: "candidate", CandidateID: &b.candA.ID}}
		_, err := svc.Voting.SubmitBallot(ctx, voter, first, voting.PolicyStrict, voting.Meta{IP: "10.0.0.1"})
		require.NoError(t, err)

		// la posición ya votada invalida toda la papeleta, también la parte nueva
		second := domvoting.Ballot{
			key(b.president): {Type: "blanco"},
			key(b.treasurer): {Type: "ninguno"},
		}
		_, err = svc.Voting.SubmitBallot(ctx, voter, second, voting.PolicyStrict, voting.Meta{})
		assert.ErrorIs(t, err, domain.ErrVoteAlreadyCast)

		votes, err := repos.Votes.ListByParticipant(ctx, voter)
		require.NoError(t, err)
		require.Len(t, votes, 1)
		assert.Equal(t, b.candA.ID, *votes[0].CandidateID)
		assert.Equal(t, "10.0.0.1", votes[0].IPAddress)

		_, err = svc.Voting.SubmitBallot(ctx, voter, second, voting.PolicyReplaceAll, voting.Meta{})
		require.NoError(t, err)
		votes, err = repos.Votes.ListByParticipant(ctx, voter)
		require.NoError(t, err)
		assert.Len(t, votes, 2, "replace_all sustituye la papeleta completa")
	})
}

func TestResults_CSVCoincideConJSON(t *testing.T) {
	stores(t, func(t *testing.T, repos bootstrap.Repositories) {
		ctx := context.Background()
		svc := services(t, repos)
		b := newBoard(t, repos, 3)
		ballots := []domvoting.Entry{
			{Type: "candidate", CandidateID: &b.candA.ID},
			{Type: "candidate", CandidateID: &b.candA.ID},
			{Type: "blanco"},
		}
		for i, e := range ballots {
			_, err := svc.Voting.SubmitBallot(ctx, b.voters[i].ID, domvoting.Ballot{key(b.president): e}, voting.PolicyStrict, voting.Meta{})
			require.NoError(t, err)
		}

		res, err := svc.Reporting.Results(ctx, 0)
		require.NoError(t, err)
		var pres *positionPercentages
		for _, p := range res.Positions {
			if p.PositionID != b.president.ID {
				continue
			}
			pres = &positionPercentages{name: p.PositionName, total: p.TotalVotes, pcts: map[string]decimal.Decimal{}}
			for _, c := range p.Candidates {
				pres.pcts[c.Name] = c.Percentage
			}
			for _, sv := range p.SpecialVotes {
				pres.pcts[sv.Label] = sv.Percentage
			}
		}
		require.NotNil(t, pres)
		assert.Equal(t, int64(3), pres.total)
		assert.Equal(t, "66.67", pres.pcts["Ana"].StringFixed(2))
		assert.True(t, pres.pcts["Beto"].IsZero())

		file, err := svc.Reporting.ExportCSV(ctx)
		require.NoError(t, err)
		records, err := csvRecords(file.Data)
		require.NoError(t, err)
		section := positionSection(records, pres.name)
		require.NotEmpty(t, section)
		for _, rec := range section {
			want, ok := pres.pcts[rec[0]]
			require.True(t, ok, "fila CSV sin equivalente JSON: %v", rec)
			got, err := decimal.NewFromString(strings.TrimSuffix(rec[2], "%"))
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "%s: json %s, csv %s", rec[0], want, rec[2])
		}
	})
}

func TestTimeline_PorHoraEnUTC(t *testing.T) {
	stores(t, func(t *testing.T, repos bootstrap.Repositories) {
		ctx := context.Background()
		svc := services(t, repos)
		b := newBoard(t, repos, 3)
		base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		bogota := time.FixedZone("COT", -5*3600)
		at := []time.Time{
			base.Add(5 * time.Minute),
			base.Add(50 * time.Minute).In(bogota), // mismo bucket aunque llegue con otra zona
			base.Add(2*time.Hour + 10*time.Minute),
		}
		for i, ts := range at {
			require.NoError(t, repos.Votes.Create(ctx, &entity.Vote{
				ParticipantID: b.voters[i].ID, PositionID: b.treasurer.ID, VoteType: entity.VoteAbstencion, CreatedAt: ts,
			}))
		}

		tl, err := svc.Reporting.Timeline(ctx, entity.BucketHour)
		require.NoError(t, err)
		require.Len(t, tl.Points, 2)
		assert.Equal(t, "2026-03-01 10:00", tl.Points[0].Period)
		assert.Equal(t, int64(2), tl.Points[0].Votes)
		assert.Equal(t, "2026-03-01 12:00", tl.Points[1].Period)
		assert.Equal(t, int64(1), tl.Points[1].Votes)
		assert.Equal(t, int64(3), tl.Points[1].Cumulative)

		days, err := svc.Reporting.Timeline(ctx, entity.BucketDay)
		require.NoError(t, err)
		require.Len(t, days.Points, 1)
		assert.Equal(t, "2026-03-01", days.Points[0].Period)
		assert.Equal(t, int64(3), days.Points[0].Cumulative)
	})
}

type positionPercentages struct {
	name  string
	total int64
	pcts  map[string]decimal.Decimal
}

func csvRecords(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

// positionSection filas de datos (nombre, votos, porcentaje) bajo "Posición: <name>".
// El lector CSV omite las líneas vacías, así que la sección termina en la siguiente posición.
func positionSection(records [][]string, name string) [][]string {
	var out [][]string
	in := false
	for _, rec := range records {
		switch {
		case rec[0] == "Posición: "+name:
			in = true
		case strings.HasPrefix(rec[0], "Posición: "):
			if in {
				return out
			}
		case in && len(rec) == 3 && rec[0] != "Candidato":
			out = append(out, rec)
		}
	}
	return out
}
