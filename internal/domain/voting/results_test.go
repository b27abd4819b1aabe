package voting_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/encuestas-api/internal/domain/entity"
	"github.com/jhoicas/encuestas-api/internal/domain/voting"
)

func TestPercentage(t *testing.T) {
	assert.True(t, voting.Percentage(0, 0).Equal(decimal.Zero), "total 0 nunca divide")
	assert.True(t, voting.Percentage(5, 0).Equal(decimal.Zero))
	assert.Equal(t, "33.33", voting.Percentage(1, 3).StringFixed(2))
	assert.Equal(t, "66.67", voting.Percentage(2, 3).StringFixed(2))
	assert.Equal(t, "100.00", voting.Percentage(4, 4).StringFixed(2))
}

func TestCompute_PresidenteAB(t *testing.T) {
	res := voting.Compute(entity.PositionTally{
		Position: entity.Position{ID: 1, Name: "Presidente", IsActive: true},
		Candidates: []entity.CandidateTally{
			{CandidateID: 1, Name: "A", Votes: 1},
			{CandidateID: 2, Name: "B", Votes: 0},
		},
		ByType: map[entity.VoteType]int64{entity.VoteCandidate: 1},
	})

	assert.Equal(t, int64(1), res.TotalVotes)
	assert.Equal(t, "100.00", res.Candidates[0].Percentage.StringFixed(2))
	assert.Equal(t, "0.00", res.Candidates[1].Percentage.StringFixed(2))
	require.NotNil(t, res.Winner)
	assert.Equal(t, "A", res.Winner.Name)
	assert.Len(t, res.ByType, 5)
	assert.Len(t, res.Special(), 4)
}

func TestCompute_SinVotos(t *testing.T) {
	res := voting.Compute(entity.PositionTally{
		Position:   entity.Position{ID: 1},
		Candidates: []entity.CandidateTally{{CandidateID: 1, Name: "A"}},
	})
	assert.Equal(t, int64(0), res.TotalVotes)
	assert.True(t, res.Candidates[0].Percentage.IsZero())
	for _, tr := range res.ByType {
		assert.True(t, tr.Percentage.IsZero())
	}
	assert.Nil(t, res.Winner)
}

func TestCompute_VotosEspecialesCuentanEnTotal(t *testing.T) {
	res := voting.Compute(entity.PositionTally{
		Candidates: []entity.CandidateTally{{CandidateID: 1, Name: "A", Votes: 1}},
		ByType:     map[entity.VoteType]int64{entity.VoteCandidate: 1, entity.VoteBlanco: 3},
	})
	assert.Equal(t, int64(4), res.TotalVotes)
	assert.Equal(t, "25.00", res.Candidates[0].Percentage.StringFixed(2))
	assert.Equal(t, "75.00", res.ByType[4].Percentage.StringFixed(2))
}

func TestWinner_EmpateMenorID(t *testing.T) {
	w := voting.Winner([]voting.CandidateResult{
		{CandidateTally: entity.CandidateTally{CandidateID: 7, Votes: 3}},
		{CandidateTally: entity.CandidateTally{CandidateID: 4, Votes: 3}},
		{CandidateTally: entity.CandidateTally{CandidateID: 9, Votes: 1}},
	})
	require.NotNil(t, w)
	assert.Equal(t, int64(4), w.CandidateID)

	assert.Nil(t, voting.Winner(nil))
}

func TestTimeline_AcumuladoCronologico(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	points := voting.Timeline(entity.BucketHour, []entity.TimeBucket{
		{Start: base.Add(2 * time.Hour), Votes: 1},
		{Start: base, Votes: 2},
		{Start: base.Add(15 * time.Minute), Votes: 1},
	})
	require.Len(t, points, 2)
	assert.Equal(t, "2026-03-01 10:00", points[0].Label)
	assert.Equal(t, int64(3), points[0].Votes)
	assert.Equal(t, int64(3), points[0].Cumulative)
	assert.Equal(t, "2026-03-01 12:00", points[1].Label)
	assert.Equal(t, int64(4), points[1].Cumulative)

	days := voting.Timeline(entity.BucketDay, []entity.TimeBucket{{Start: base, Votes: 2}, {Start: base.Add(20 * time.Hour), Votes: 1}})
	require.Len(t, days, 2)
	assert.Equal(t, "2026-03-02", days[1].Label)
}
