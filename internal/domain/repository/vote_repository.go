package repository

import (
	"context"

	"github.com/jhoicas/encuestas-api/internal/domain/entity"
)

// VoteRepository define el puerto del libro de votos.
type VoteRepository interface {
	// Create devuelve domain.ErrVoteAlreadyCast si ya hay voto para (participante, posición).
	Create(ctx context.Context, v *entity.Vote) error
	// VotedPositions devuelve, de positionIDs, las que ya tienen voto del participante, en orden.
	// positionIDs nil consulta todas; vacío devuelve un slice vacío. Nunca devuelve nil.
	VotedPositions(ctx context.Context, participantID int64, positionIDs []int64) ([]int64, error)
	DeleteByParticipant(ctx context.Context, participantID int64) (int64, error)
	ListByParticipant(ctx context.Context, participantID int64) ([]*entity.Vote, error)
}

// AuditFilter filtros de consulta del registro de auditoría.
type AuditFilter struct {
	EntityType string
	Action     string
	Limit      int
}

// AuditRepository registro append-only de auditoría.
type AuditRepository interface {
	Create(ctx context.Context, l *entity.AuditLog) error
	List(ctx context.Context, f AuditFilter) ([]*entity.AuditLog, error)
}

// ReportRepository consultas agregadas de solo lectura sobre el libro de votos.
type ReportRepository interface {
	// PositionTallies conteos por posición en orden de presentación. positionID 0 = todas.
	PositionTallies(ctx context.Context, onlyActive bool, positionID int64) ([]entity.PositionTally, error)
	Counts(ctx context.Context) (entity.VoteCounts, error)
	Timeline(ctx context.Context, bucket entity.Bucket) ([]entity.TimeBucket, error)
	VoteAuditTrail(ctx context.Context) ([]entity.VoteAuditRow, error)
}
