// Package audit registra acciones en el log de auditoría sin afectar la operación principal.
package audit

import (
	"context"
	"time"

	"github.com/jhoicas/encuestas-api/internal/domain/entity"
	"github.com/jhoicas/encuestas-api/internal/domain/repository"
	"github.com/jhoicas/encuestas-api/pkg/logger"
)

const writeTimeout = 3 * time.Second

// Entry acción a registrar. AdminID nil para acciones de participantes.
type Entry struct {
	AdminID     *int64
	Action      string
	EntityType  string
	EntityID    *int64
	Description string
	IP          string
}

// Recorder escribe entradas de auditoría. Los errores se registran y nunca se devuelven.
type Recorder struct {
	repo repository.AuditRepository
	log  *logger.Logger
	now  func() time.Time
}

// NewRecorder construye el recorder.
func NewRecorder(repo repository.AuditRepository, log *logger.Logger) *Recorder {
	return &Recorder{repo: repo, log: log, now: time.Now}
}

// Record persiste la entrada con un contexto desacoplado de la petición (timeout 3s).
func (r *Recorder) Record(ctx context.Context, e Entry) {
	if r == nil || r.repo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()
	e.IP = entity.ClampIP(e.IP)

	l := &entity.AuditLog{
		AdminID:     e.AdminID,
		Action:      e.Action,
		EntityType:  e.EntityType,
		EntityID:    e.EntityID,
		Description: e.Description,
		IPAddress:   e.IP,
		CreatedAt:   r.now().UTC(),
	}
	if err := r.repo.Create(ctx, l); err != nil {
		r.log.Error().Err(err).Str("action", e.Action).Str("entity_type", e.EntityType).Msg("error registrando auditoría")
		return
	}
	r.log.Info().
		Str("action", e.Action).
		Str("entity_type", e.EntityType).
		Interface("entity_id", e.EntityID).
		Str("ip", e.IP).
		Msgf("[AUDIT] %s", e.Description)
}

// ID helper para EntityID/AdminID.
func ID(v int64) *int64 { return &v }
