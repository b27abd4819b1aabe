package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/encuestas-api/internal/application/audit"
	"github.com/jhoicas/encuestas-api/internal/application/dto"
	"github.com/jhoicas/encuestas-api/internal/application/ports"
	"github.com/jhoicas/encuestas-api/internal/domain"
	"github.com/jhoicas/encuestas-api/internal/domain/entity"
	"github.com/jhoicas/encuestas-api/internal/domain/identity"
	"github.com/jhoicas/encuestas-api/internal/domain/repository"
)

// SurveyUseCase configuración de posiciones y candidatos (admin).
type SurveyUseCase struct {
	positions  repository.PositionRepository
	candidates repository.CandidateRepository
	audit      *audit.Recorder
	photos     ports.PhotoStore
	now        func() time.Time
}

// NewSurveyUseCase construye el caso de uso.
func NewSurveyUseCase(
	positions repository.PositionRepository,
	candidates repository.CandidateRepository,
	recorder *audit.Recorder,
	photos ports.PhotoStore,
) *SurveyUseCase {
	return &SurveyUseCase{
		positions:  positions,
		candidates: candidates,
		audit:      recorder,
		photos:     photos,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// ── Posiciones ───────────────────────────────────────────────────────────────

// ListPositions posiciones por orden de presentación con su número de candidatos.
func (uc *SurveyUseCase) ListPositions(ctx context.Context, page dto.PageRequest) (*dto.PositionListResponse, error) {
	page.DefaultPage()
	rows, total, err := uc.positions.List(ctx, repository.PositionFilter{Limit: page.PerPage, Offset: page.Offset()})
	if err != nil {
		return nil, fmt.Errorf("usecase: listar posiciones: %w", err)
	}
	counts, err := uc.candidates.CountByPosition(ctx)
	if err != nil {
		return nil, fmt.Errorf("usecase: contar candidatos: %w", err)
	}
	out := make([]dto.PositionResponse, 0, len(rows))
	for _, p := range rows {
		out = append(out, dto.NewPositionResponse(p, counts[p.ID]))
	}
	return &dto.PositionListResponse{Positions: out, Pagination: dto.NewPageResponse(page, total)}, nil
}

// CreatePosition alta de posición; el nombre es único.
func (uc *SurveyUseCase) CreatePosition(ctx context.Context, in dto.PositionRequest, adminID int64, ip string) (*dto.PositionResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidationError("name", "el nombre es obligatorio")
	}
	if err := identity.ValidateMaxLength("name", name, identity.MaxPositionNameLength); err != nil {
		return nil, err
	}
	if err := uc.ensurePositionName(ctx, name, 0); err != nil {
		return nil, err
	}
	now := uc.now()
	p := &entity.Position{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Order:       in.Order,
		IsActive:    in.IsActive == nil || *in.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.positions.Create(ctx, p); err != nil {
		return nil, conflictOr(err, "usecase: crear posición")
	}
	uc.audit.Record(ctx, audit.Entry{
		AdminID:     audit.ID(adminID),
		Action:      entity.ActionCreate,
		EntityType:  entity.EntityPosition,
		EntityID:    audit.ID(p.ID),
		Description: fmt.Sprintf("Posición creada: %s", p.Name),
		IP:          ip,
	})
	resp := dto.NewPositionResponse(p, 0)
	return &resp, nil
}

// UpdatePosition modifica una posición; re-verifica la unicidad del nombre.
func (uc *SurveyUseCase) UpdatePosition(ctx context.Context, id int64, in dto.UpdatePositionRequest, adminID int64, ip string) (*dto.PositionResponse, error) {
	p, err := uc.findPosition(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.NewValidationError("name", "el nombre es obligatorio")
		}
		if err := identity.ValidateMaxLength("name", name, identity.MaxPositionNameLength); err != nil {
			return nil, err
		}
		if err := uc.ensurePositionName(ctx, name, p.ID); err != nil {
			return nil, err
		}
		p.Name = name
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Order != nil {
		p.Order = *in.Order
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	p.UpdatedAt = uc.now()
	if err := uc.positions.Update(ctx, p); err != nil {
		return nil, conflictOr(err, "usecase: actualizar posición")
	}
	uc.audit.Record(ctx, audit.Entry{
		AdminID:     audit.ID(adminID),
		Action:      entity.ActionUpdate,
		EntityType:  entity.EntityPosition,
		EntityID:    audit.ID(p.ID),
		Description: fmt.Sprintf("Posición actualizada: %s", p.Name),
		IP:          ip,
	})
	counts, err := uc.candidates.CountByPosition(ctx)
	if err != nil {
		return nil, fmt.Errorf("usecase: contar candidatos: %w", err)
	}
	resp := dto.NewPositionResponse(p, counts[p.ID])
	return &resp, nil
}

// DeletePosition elimina la posición con sus candidatos y votos.
func (uc *SurveyUseCase) DeletePosition(ctx context.Context, id int64, adminID int64, ip string) error {
	p, err := uc.findPosition(ctx, id)
	if err != nil {
		return err
	}
	candidates, err := uc.candidates.ListByPosition(ctx, id)
	if err != nil {
		return fmt.Errorf("usecase: candidatos de la posición: %w", err)
	}
	if err := uc.positions.Delete(ctx, id); err != nil {
		return fmt.Errorf("usecase: eliminar posición: %w", err)
	}
	for _, c := range candidates {
		uc.removePhoto(ctx, c.Photo)
	}
	uc.audit.Record(ctx, audit.Entry{
		AdminID:     audit.ID(adminID),
		Action:      entity.ActionDelete,
		EntityType:  entity.EntityPosition,
		EntityID:    audit.ID(id),
		Description: fmt.Sprintf("Posición eliminada: %s", p.Name),
		IP:          ip,
	})
	return nil
}

// ── Candidatos ───────────────────────────────────────────────────────────────

// ListCandidates candidatos con su conteo de votos. positionID 0 = todos.
func (uc *SurveyUseCase) ListCandidates(ctx context.Context, positionID int64) ([]dto.CandidateResponse, error) {
	rows, err := uc.candidates.ListByPosition(ctx, positionID)
	if err != nil {
		return nil, fmt.Errorf("usecase: listar candidatos: %w", err)
	}
	votes, err := uc.candidates.CountVotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("usecase: contar votos: %w", err)
	}
	names, err := uc.positionNames(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CandidateResponse, 0, len(rows))
	for _, c := range rows {
		out = append(out, dto.NewCandidateResponse(c, names[c.PositionID], uc.photoURL(c.Photo), votes[c.ID]))
	}
	return out, nil
}

// CreateCandidate alta de candidato; la posición debe existir y el nombre ser único en ella.
func (uc *SurveyUseCase) CreateCandidate(ctx context.Context, in dto.CandidateRequest, adminID int64, ip string) (*dto.CandidateResponse, error) {
	name := strings.TrimSpace(in.Name)
	if in.PositionID <= 0 {
		return nil, domain.NewValidationError("position_id", "la posición es obligatoria")
	}
	if name == "" {
		return nil, domain.NewValidationError("name", "el nombre es obligatorio")
	}
	if err := identity.ValidateMaxLength("name", name, identity.MaxCandidateNameLength); err != nil {
		return nil, err
	}
	pos, err := uc.findPosition(ctx, in.PositionID)
	if err != nil {
		return nil, err
	}
	if err := uc.ensureCandidateName(ctx, pos.ID, name, 0); err != nil {
		return nil, err
	}
	now := uc.now()
	c := &entity.Candidate{
		PositionID:  pos.ID,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Order:       in.Order,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.candidates.Create(ctx, c); err != nil {
		return nil, conflictOr(err, "usecase: crear candidato")
	}
	uc.audit.Record(ctx, audit.Entry{
		AdminID:     audit.ID(adminID),
		Action:      entity.ActionCreate,
		EntityType:  entity.EntityCandidate,
		EntityID:    audit.ID(c.ID),
		Description: fmt.Sprintf("Candidato creado: %s (%s)", c.Name, pos.Name),
		IP:          ip,
	})
	resp := dto.NewCandidateResponse(c, pos.Name, uc.photoURL(c.Photo), 0)
	return &resp, nil
}

// UpdateCandidate modifica un candidato; re-verifica la unicidad dentro de su posición.
func (uc *SurveyUseCase) UpdateCandidate(ctx context.Context, id int64, in dto.UpdateCandidateRequest, adminID int64, ip string) (*dto.CandidateResponse, error) {
	c, err := uc.findCandidate(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.NewValidationError("name", "el nombre es obligatorio")
		}
		if err := identity.ValidateMaxLength("name", name, identity.MaxCandidateNameLength); err != nil {
			return nil, err
		}
		if err := uc.ensureCandidateName(ctx, c.PositionID, name, c.ID); err != nil {
			return nil, err
		}
		c.Name = name
	}
	if in.Description != nil {
		c.Description = strings.TrimSpace(*in.Description)
	}
	if in.Order != nil {
		c.Order = *in.Order
	}
	c.UpdatedAt = uc.now()
	if err := uc.candidates.Update(ctx, c); err != nil {
		return nil, conflictOr(err, "usecase: actualizar candidato")
	}
	uc.audit.Record(ctx, audit.Entry{
		AdminID:     audit.ID(adminID),
		Action:      entity.ActionUpdate,
		EntityType:  entity.EntityCandidate,
		EntityID:    audit.ID(c.ID),
		Description: fmt.Sprintf("Candidato actualizado: %s", c.Name),
		IP:          ip,
	})
	votes, err := uc.candidates.CountVotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("usecase: contar votos: %w", err)
	}
	names, err := uc.positionNames(ctx)
	if err != nil {
		return nil, err
	}
	resp := dto.NewCandidateResponse(c, names[c.PositionID], uc.photoURL(c.Photo), votes[c.ID])
	return &resp, nil
}

// DeleteCandidate elimina el candidato, sus votos y su foto.
func (uc *SurveyUseCase) DeleteCandidate(ctx context.Context, id int64, adminID int64, ip string) error {
	c, err := uc.findCandidate(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.candidates.Delete(ctx, id); err != nil {
		return fmt.Errorf("usecase: eliminar candidato: %w", err)
	}
	uc.removePhoto(ctx, c.Photo)
	uc.audit.Record(ctx, audit.Entry{
		AdminID:     audit.ID(adminID),
		Action:      entity.ActionDelete,
		EntityType:  entity.EntityCandidate,
		EntityID:    audit.ID(id),
		Description: fmt.Sprintf("Candidato eliminado: %s", c.Name),
		IP:          ip,
	})
	return nil
}

func (uc *SurveyUseCase) findPosition(ctx context.Context, id int64) (*entity.Position, error) {
	p, err := uc.positions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("usecase: obtener posición: %w", err)
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (uc *SurveyUseCase) findCandidate(ctx context.Context, id int64) (*entity.Candidate, error) {
	c, err := uc.candidates.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("usecase: obtener candidato: %w", err)
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

// ensurePositionName 409 si otra posición (distinta de selfID) ya usa el nombre.
func (uc *SurveyUseCase) ensurePositionName(ctx context.Context, name string, selfID int64) error {
	existing, err := uc.positions.GetByName(ctx, name)
	if err != nil {
		return fmt.Errorf("usecase: verificar nombre de posición: %w", err)
	}
	if existing != nil && existing.ID != selfID {
		return fmt.Errorf("ya existe una posición con el nombre %q: %w", name, domain.ErrDuplicate)
	}
	return nil
}

func (uc *SurveyUseCase) ensureCandidateName(ctx context.Context, positionID int64, name string, selfID int64) error {
	existing, err := uc.candidates.GetByPositionAndName(ctx, positionID, name)
	if err != nil {
		return fmt.Errorf("usecase: verificar nombre de candidato: %w", err)
	}
	if existing != nil && existing.ID != selfID {
		return fmt.Errorf("ya existe un candidato %q en esta posición: %w", name, domain.ErrDuplicate)
	}
	return nil
}

func (uc *SurveyUseCase) positionNames(ctx context.Context) (map[int64]string, error) {
	rows, _, err := uc.positions.List(ctx, repository.PositionFilter{})
	if err != nil {
		return nil, fmt.Errorf("usecase: listar posiciones: %w", err)
	}
	names := make(map[int64]string, len(rows))
	for _, p := range rows {
		names[p.ID] = p.Name
	}
	return names, nil
}

func (uc *SurveyUseCase) photoURL(name string) string {
	if uc.photos == nil || name == "" {
		return ""
	}
	return uc.photos.URL(name)
}

// removePhoto borra la foto del almacén; un fallo no afecta la operación.
func (uc *SurveyUseCase) removePhoto(ctx context.Context, name string) {
	if uc.photos == nil || name == "" {
		return
	}
	_ = uc.photos.Remove(ctx, name)
}

// conflictOr traduce violaciones de unicidad del repositorio a ErrDuplicate y envuelve el resto.
func conflictOr(err error, op string) error {
	if errors.Is(err, domain.ErrDuplicate) {
		return domain.ErrDuplicate
	}
	return fmt.Errorf("%s: %w", op, err)
}
