package repository

import (
	"context"

	"github.com/jhoicas/encuestas-api/internal/domain/entity"
)

// PositionFilter listado de posiciones ordenado por display order.
type PositionFilter struct {
	OnlyActive bool
	Limit      int // 0 = sin límite
	Offset     int
}

// PositionRepository define el puerto de persistencia para Position.
type PositionRepository interface {
	Create(ctx context.Context, p *entity.Position) error
	GetByID(ctx context.Context, id int64) (*entity.Position, error)
	GetByName(ctx context.Context, name string) (*entity.Position, error)
	Update(ctx context.Context, p *entity.Position) error
	// Delete elimina la posición con sus candidatos y votos.
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f PositionFilter) ([]*entity.Position, int64, error)
}

// CandidateRepository define el puerto de persistencia para Candidate.
type CandidateRepository interface {
	Create(ctx context.Context, c *entity.Candidate) error
	GetByID(ctx context.Context, id int64) (*entity.Candidate, error)
	GetByPositionAndName(ctx context.Context, positionID int64, name string) (*entity.Candidate, error)
	Update(ctx context.Context, c *entity.Candidate) error
	Delete(ctx context.Context, id int64) error
	// ListByPosition candidatos de una posición por order, id. positionID 0 = todos.
	ListByPosition(ctx context.Context, positionID int64) ([]*entity.Candidate, error)
	ListByNominator(ctx context.Context, participantUserID int64) ([]*entity.Candidate, error)
	CountByPosition(ctx context.Context) (map[int64]int64, error)
	CountVotes(ctx context.Context) (map[int64]int64, error)
}
