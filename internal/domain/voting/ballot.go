// Package voting contiene las reglas puras de la papeleta y del cómputo de resultados.
package voting

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jhoicas/encuestas-api/internal/domain"
	"github.com/jhoicas/encuestas-api/internal/domain/entity"
)

// Entry selección para una posición tal como llega en la papeleta.
type Entry struct {
	Type        string `json:"type"`
	CandidateID *int64 `json:"candidate_id,omitempty"`
}

// Ballot papeleta: ID de posición (string) -> selección.
type Ballot map[string]Entry

// Choice selección ya validada sintácticamente.
type Choice struct {
	PositionID  int64
	Type        entity.VoteType
	CandidateID *int64
}

// Parse valida la forma de la papeleta sin tocar el almacén. Devuelve las selecciones
// ordenadas por posición. Los tipos especiales descartan cualquier candidate_id.
// Dos claves que resuelven a la misma posición ("4", " 4", "04") son un error de entrada.
func Parse(b Ballot) ([]Choice, error) {
	if len(b) == 0 {
		return nil, domain.NewValidationError("votes", "no se enviaron votos")
	}
	choices := make([]Choice, 0, len(b))
	seen := make(map[int64]string, len(b))
	for key, e := range b {
		posID, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
		if err != nil || posID <= 0 {
			return nil, domain.NewValidationError("votes", fmt.Sprintf("ID de posición inválido: %q", key))
		}
		if prev, dup := seen[posID]; dup {
			return nil, domain.NewValidationError("votes", fmt.Sprintf("posición %d repetida (%q y %q)", posID, prev, key))
		}
		seen[posID] = key
		vt, ok := entity.ParseVoteType(e.Type)
		if !ok {
			return nil, domain.NewValidationError("type", fmt.Sprintf("tipo de voto inválido para la posición %d: %q", posID, e.Type))
		}
		c := Choice{PositionID: posID, Type: vt}
		if vt == entity.VoteCandidate {
			if e.CandidateID == nil || *e.CandidateID <= 0 {
				return nil, domain.NewValidationError("candidate_id", fmt.Sprintf("candidate_id requerido para la posición %d", posID))
			}
			id := *e.CandidateID
			c.CandidateID = &id
		}
		choices = append(choices, c)
	}
	sort.Slice(choices, func(i, j int) bool { return choices[i].PositionID < choices[j].PositionID })
	return choices, nil
}

// CheckChoice aplica las reglas de negocio de una selección contra la configuración:
// la posición debe existir y estar activa, y el candidato debe pertenecer a ella.
func CheckChoice(c Choice, position *entity.Position, candidate *entity.Candidate) error {
	if position == nil || !position.IsActive {
		return fmt.Errorf("%w: posición %d", domain.ErrPositionUnavailable, c.PositionID)
	}
	if c.Type != entity.VoteCandidate {
		return nil
	}
	if candidate == nil || candidate.PositionID != position.ID {
		return fmt.Errorf("%w: candidato %d, posición %d", domain.ErrCandidateMismatch, *c.CandidateID, c.PositionID)
	}
	return nil
}

// PositionIDs IDs de posición de las selecciones, en orden.
func PositionIDs(choices []Choice) []int64 {
	ids := make([]int64, len(choices))
	for i, c := range choices {
		ids[i] = c.PositionID
	}
	return ids
}
