package audit_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/encuestas-api/internal/application/audit"
	"github.com/jhoicas/encuestas-api/internal/domain/entity"
	"github.com/jhoicas/encuestas-api/internal/domain/repository"
	"github.com/jhoicas/encuestas-api/pkg/logger"
)

type failingRepo struct{}

func (failingRepo) Create(context.Context, *entity.AuditLog) error { return errors.New("db caída") }
func (failingRepo) List(context.Context, repository.AuditFilter) ([]*entity.AuditLog, error) {
	return nil, nil
}

type captureRepo struct{ logs []*entity.AuditLog }

func (c *captureRepo) Create(ctx context.Context, l *entity.AuditLog) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	c.logs = append(c.logs, l)
	return nil
}
func (c *captureRepo) List(context.Context, repository.AuditFilter) ([]*entity.AuditLog, error) {
	return c.logs, nil
}

func TestRecord_ErrorNoSePropaga(t *testing.T) {
	var buf bytes.Buffer
	rec := audit.NewRecorder(failingRepo{}, logger.FromZerolog(zerolog.New(&buf)))

	assert.NotPanics(t, func() {
		rec.Record(context.Background(), audit.Entry{Action: entity.ActionCreate, EntityType: entity.EntityPosition})
	})
	assert.Contains(t, buf.String(), "error registrando auditoría")
}

// Una petición ya cancelada no impide escribir la auditoría.
func TestRecord_ContextoCanceladoIgualEscribe(t *testing.T) {
	var buf bytes.Buffer
	repo := &captureRepo{}
	rec := audit.NewRecorder(repo, logger.FromZerolog(zerolog.New(&buf)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec.Record(ctx, audit.Entry{
		AdminID:     audit.ID(1),
		Action:      entity.ActionDelete,
		EntityType:  entity.EntityCandidate,
		EntityID:    audit.ID(5),
		Description: "Candidato eliminado",
		IP:          "10.0.0.1",
	})

	require.Len(t, repo.logs, 1)
	assert.Equal(t, int64(5), *repo.logs[0].EntityID)
	assert.Contains(t, buf.String(), "[AUDIT] Candidato eliminado")
}
