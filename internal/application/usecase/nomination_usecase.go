package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jhoicas/encuestas-api/internal/application/audit"
	"github.com/jhoicas/encuestas-api/internal/application/dto"
	"github.com/jhoicas/encuestas-api/internal/application/ports"
	"github.com/jhoicas/encuestas-api/internal/domain"
	"github.com/jhoicas/encuestas-api/internal/domain/entity"
	"github.com/jhoicas/encuestas-api/internal/domain/repository"
)

// Límites de la postulación.
const (
	minPublicName  = 3
	maxPublicName  = 200
	minDescription = 10
	maxDescription = 2000
)

var allowedPhotoExt = map[string]bool{"jpg": true, "jpeg": true, "png": true, "gif": true}

// PhotoUpload foto adjunta a una postulación.
type PhotoUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// NominationUseCase auto-postulación de candidatos y consultas públicas de candidatos.
type NominationUseCase struct {
	users         repository.ParticipantUserRepository
	positions     repository.PositionRepository
	candidates    repository.CandidateRepository
	audit         *audit.Recorder
	photos        ports.PhotoStore
	maxPhotoBytes int64
	now           func() time.Time
	newID         func() string
}

// NewNominationUseCase construye el caso de uso.
func NewNominationUseCase(
	users repository.ParticipantUserRepository,
	positions repository.PositionRepository,
	candidates repository.CandidateRepository,
	recorder *audit.Recorder,
	photos ports.PhotoStore,
	maxPhotoBytes int64,
) *NominationUseCase {
	return &NominationUseCase{
		users:         users,
		positions:     positions,
		candidates:    candidates,
		audit:         recorder,
		photos:        photos,
		maxPhotoBytes: maxPhotoBytes,
		now:           func() time.Time { return time.Now().UTC() },
		newID:         func() string { return uuid.New().String() },
	}
}

// Nominate registra al participante como candidato de una posición activa.
// Si el alta falla después de guardar la foto, la foto se elimina.
func (uc *NominationUseCase) Nominate(ctx context.Context, userID int64, in dto.NominationRequest, photo *PhotoUpload, ip string) (*dto.CandidateResponse, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("usecase: obtener cuenta: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, domain.ErrUnauthorized
	}

	name := strings.TrimSpace(in.PublicName)
	description := strings.TrimSpace(in.Description)
	if n := utf8.RuneCountInString(name); n < minPublicName || n > maxPublicName {
		return nil, domain.NewValidationError("public_name", fmt.Sprintf("debe tener entre %d y %d caracteres", minPublicName, maxPublicName))
	}
	if n := utf8.RuneCountInString(description); n < minDescription || n > maxDescription {
		return nil, domain.NewValidationError("description", fmt.Sprintf("debe tener entre %d y %d caracteres", minDescription, maxDescription))
	}
	if in.PositionID <= 0 {
		return nil, domain.NewValidationError("position_id", "la posición es obligatoria")
	}
	pos, err := uc.positions.GetByID(ctx, in.PositionID)
	if err != nil {
		return nil, fmt.Errorf("usecase: obtener posición: %w", err)
	}
	if pos == nil || !pos.IsActive {
		return nil, fmt.Errorf("la posición no existe o no está activa: %w", domain.ErrNotFound)
	}
	existing, err := uc.candidates.GetByPositionAndName(ctx, pos.ID, name)
	if err != nil {
		return nil, fmt.Errorf("usecase: verificar candidato: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("ya existe un candidato %q en esta posición: %w", name, domain.ErrDuplicate)
	}

	var photoName string
	if photo != nil {
		ext, err := uc.validatePhoto(photo)
		if err != nil {
			return nil, err
		}
		if uc.photos == nil {
			return nil, domain.NewValidationError("photo", "la carga de fotos no está habilitada")
		}
		photoName = fmt.Sprintf("candidate_%d_%s.%s", pos.ID, uc.newID(), ext)
		content := photo.Content
		if uc.maxPhotoBytes > 0 {
			content = io.LimitReader(content, uc.maxPhotoBytes)
		}
		if err := uc.photos.Save(ctx, photoName, content); err != nil {
			return nil, fmt.Errorf("usecase: guardar foto: %w", err)
		}
	}

	now := uc.now()
	c := &entity.Candidate{
		PositionID:  pos.ID,
		Name:        name,
		Description: description,
		Photo:       photoName,
		NominatedBy: &user.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.candidates.Create(ctx, c); err != nil {
		if photoName != "" {
			_ = uc.photos.Remove(ctx, photoName)
		}
		return nil, conflictOr(err, "usecase: crear candidatura")
	}
	uc.audit.Record(ctx, audit.Entry{
		Action:      entity.ActionCreate,
		EntityType:  entity.EntityCandidate,
		EntityID:    audit.ID(c.ID),
		Description: fmt.Sprintf("Auto-postulación: %s (%s) por %s", c.Name, pos.Name, user.Email),
		IP:          ip,
	})
	resp := dto.NewCandidateResponse(c, pos.Name, uc.photoURL(photoName), 0)
	return &resp, nil
}

// MyNominations candidaturas creadas por la cuenta.
func (uc *NominationUseCase) MyNominations(ctx context.Context, userID int64) ([]dto.CandidateResponse, error) {
	rows, err := uc.candidates.ListByNominator(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("usecase: mis candidaturas: %w", err)
	}
	return uc.withDetails(ctx, rows)
}

// AvailablePositions posiciones activas en las que es posible postularse.
func (uc *NominationUseCase) AvailablePositions(ctx context.Context) ([]dto.PositionResponse, error) {
	rows, _, err := uc.positions.List(ctx, repository.PositionFilter{OnlyActive: true})
	if err != nil {
		return nil, fmt.Errorf("usecase: posiciones disponibles: %w", err)
	}
	counts, err := uc.candidates.CountByPosition(ctx)
	if err != nil {
		return nil, fmt.Errorf("usecase: contar candidatos: %w", err)
	}
	out := make([]dto.PositionResponse, 0, len(rows))
	for _, p := range rows {
		out = append(out, dto.NewPositionResponse(p, counts[p.ID]))
	}
	return out, nil
}

// CandidatesByPosition candidatos públicos de una posición existente.
func (uc *NominationUseCase) CandidatesByPosition(ctx context.Context, positionID int64) ([]dto.CandidateResponse, error) {
	pos, err := uc.positions.GetByID(ctx, positionID)
	if err != nil {
		return nil, fmt.Errorf("usecase: obtener posición: %w", err)
	}
	if pos == nil {
		return nil, domain.ErrNotFound
	}
	rows, err := uc.candidates.ListByPosition(ctx, positionID)
	if err != nil {
		return nil, fmt.Errorf("usecase: listar candidatos: %w", err)
	}
	return uc.withDetails(ctx, rows)
}

// CandidateDetail ficha pública de un candidato con su conteo de votos.
func (uc *NominationUseCase) CandidateDetail(ctx context.Context, id int64) (*dto.CandidateResponse, error) {
	c, err := uc.candidates.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("usecase: obtener candidato: %w", err)
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	out, err := uc.withDetails(ctx, []*entity.Candidate{c})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (uc *NominationUseCase) withDetails(ctx context.Context, rows []*entity.Candidate) ([]dto.CandidateResponse, error) {
	votes, err := uc.candidates.CountVotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("usecase: contar votos: %w", err)
	}
	positions, _, err := uc.positions.List(ctx, repository.PositionFilter{})
	if err != nil {
		return nil, fmt.Errorf("usecase: listar posiciones: %w", err)
	}
	names := make(map[int64]string, len(positions))
	for _, p := range positions {
		names[p.ID] = p.Name
	}
	out := make([]dto.CandidateResponse, 0, len(rows))
	for _, c := range rows {
		out = append(out, dto.NewCandidateResponse(c, names[c.PositionID], uc.photoURL(c.Photo), votes[c.ID]))
	}
	return out, nil
}

// validatePhoto extensión permitida y tamaño máximo. Devuelve la extensión normalizada.
func (uc *NominationUseCase) validatePhoto(p *PhotoUpload) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(p.Filename), "."))
	if !allowedPhotoExt[ext] {
		return "", domain.NewValidationError("photo", "formato no permitido (jpg, jpeg, png, gif)")
	}
	if p.Size <= 0 {
		return "", domain.NewValidationError("photo", "el archivo está vacío")
	}
	if uc.maxPhotoBytes > 0 && p.Size > uc.maxPhotoBytes {
		return "", domain.NewValidationError("photo", fmt.Sprintf("la foto supera el máximo de %d MB", uc.maxPhotoBytes/(1024*1024)))
	}
	return ext, nil
}

func (uc *NominationUseCase) photoURL(name string) string {
	if uc.photos == nil || name == "" {
		return ""
	}
	return uc.photos.URL(name)
}
