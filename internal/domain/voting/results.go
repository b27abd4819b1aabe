package voting

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/encuestas-api/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// Percentage votes/total*100 redondeado a 2 decimales; 0 cuando total es 0.
func Percentage(votes, total int64) decimal.Decimal {
	if total <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(votes).Mul(hundred).Div(decimal.NewFromInt(total)).Round(2)
}

// CandidateResult votos y porcentaje de un candidato.
type CandidateResult struct {
	entity.CandidateTally
	Percentage decimal.Decimal
}

// TypeResult votos y porcentaje de un tipo de voto.
type TypeResult struct {
	Type       entity.VoteType
	Votes      int64
	Percentage decimal.Decimal
}

// PositionResult resultado calculado de una posición.
type PositionResult struct {
	Position   entity.Position
	TotalVotes int64
	ByType     []TypeResult // los cinco tipos, en entity.VoteTypes
	Candidates []CandidateResult
	Winner     *CandidateResult
}

// Special resultados de los tipos que no son candidato.
func (r PositionResult) Special() []TypeResult {
	out := make([]TypeResult, 0, len(r.ByType))
	for _, t := range r.ByType {
		if t.Type != entity.VoteCandidate {
			out = append(out, t)
		}
	}
	return out
}

// Compute calcula totales, porcentajes y ganador a partir de los conteos crudos.
// El total de la posición incluye votos especiales.
func Compute(t entity.PositionTally) PositionResult {
	res := PositionResult{Position: t.Position}
	for _, vt := range entity.VoteTypes {
		res.TotalVotes += t.ByType[vt]
	}
	for _, vt := range entity.VoteTypes {
		n := t.ByType[vt]
		res.ByType = append(res.ByType, TypeResult{Type: vt, Votes: n, Percentage: Percentage(n, res.TotalVotes)})
	}
	res.Candidates = make([]CandidateResult, len(t.Candidates))
	for i, c := range t.Candidates {
		res.Candidates[i] = CandidateResult{CandidateTally: c, Percentage: Percentage(c.Votes, res.TotalVotes)}
	}
	res.Winner = Winner(res.Candidates)
	return res
}

// Winner candidato con más votos; empate -> menor ID. nil si no hay candidatos o todos tienen 0.
func Winner(cands []CandidateResult) *CandidateResult {
	var best *CandidateResult
	for i := range cands {
		c := &cands[i]
		if c.Votes == 0 {
			continue
		}
		if best == nil || c.Votes > best.Votes || (c.Votes == best.Votes && c.CandidateID < best.CandidateID) {
			best = c
		}
	}
	if best == nil {
		return nil
	}
	w := *best
	return &w
}
