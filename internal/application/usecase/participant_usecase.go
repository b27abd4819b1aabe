package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/encuestas-api/internal/application/audit"
	"github.com/jhoicas/encuestas-api/internal/application/dto"
	"github.com/jhoicas/encuestas-api/internal/application/notification"
	"github.com/jhoicas/encuestas-api/internal/domain"
	"github.com/jhoicas/encuestas-api/internal/domain/entity"
	"github.com/jhoicas/encuestas-api/internal/domain/identity"
	"github.com/jhoicas/encuestas-api/internal/domain/repository"
	domvoting "github.com/jhoicas/encuestas-api/internal/domain/voting"
	"github.com/jhoicas/encuestas-api/pkg/ballot"
)

const maxInvitationErrors = 10

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParticipantUseCase administración del padrón de participantes.
type ParticipantUseCase struct {
	repo     repository.ParticipantRepository
	reports  repository.ReportRepository
	audit    *audit.Recorder
	notifier *notification.Notifier
	signer   *ballot.Signer
	baseURL  string
	now      func() time.Time
}

// NewParticipantUseCase construye el caso de uso. signer firma los enlaces de invitación.
func NewParticipantUseCase(
	repo repository.ParticipantRepository,
	reports repository.ReportRepository,
	recorder *audit.Recorder,
	notifier *notification.Notifier,
	signer *ballot.Signer,
	baseURL string,
) *ParticipantUseCase {
	return &ParticipantUseCase{
		repo:     repo,
		reports:  reports,
		audit:    recorder,
		notifier: notifier,
		signer:   signer,
		baseURL:  strings.TrimRight(baseURL, "/"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// List padrón paginado con búsqueda por email o nombre.
func (uc *ParticipantUseCase) List(ctx context.Context, search string, page dto.PageRequest) (*dto.ParticipantListResponse, error) {
	page.DefaultPage()
	rows, total, err := uc.repo.List(ctx, repository.ParticipantFilter{
		Search: strings.TrimSpace(search),
		Limit:  page.PerPage,
		Offset: page.Offset(),
	})
	if err != nil {
		return nil, fmt.Errorf("usecase: listar participantes: %w", err)
	}
	out := make([]dto.ParticipantResponse, 0, len(rows))
	for _, p := range rows {
		out = append(out, dto.NewParticipantResponse(p))
	}
	return &dto.ParticipantListResponse{Participants: out, Pagination: dto.NewPageResponse(page, total)}, nil
}

// Get obtiene un participante por ID.
func (uc *ParticipantUseCase) Get(ctx context.Context, id int64) (*dto.ParticipantResponse, error) {
	p, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewParticipantResponse(p)
	return &resp, nil
}

// Create alta manual de un participante.
func (uc *ParticipantUseCase) Create(ctx context.Context, in dto.ParticipantRequest, adminID int64, ip string) (*dto.ParticipantResponse, error) {
	p, err := uc.newParticipant(in.Email, in.FirstName, in.LastName, in.Field1, in.Field2, in.Field3)
	if err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetByEmail(ctx, p.Email)
	if err != nil {
		return nil, fmt.Errorf("usecase: verificar email: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	if err := uc.repo.Create(ctx, p); err != nil {
		if isEmailConflict(err) {
			return nil, domain.ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("usecase: crear participante: %w", err)
	}
	uc.audit.Record(ctx, audit.Entry{
		AdminID:     audit.ID(adminID),
		Action:      entity.ActionCreate,
		EntityType:  entity.EntityParticipant,
		EntityID:    audit.ID(p.ID),
		Description: fmt.Sprintf("Participante creado: %s", p.Email),
		IP:          ip,
	})
	resp := dto.NewParticipantResponse(p)
	return &resp, nil
}

// Update modifica nombres y campos libres.
func (uc *ParticipantUseCase) Update(ctx context.Context, id int64, in dto.UpdateParticipantRequest, adminID int64, ip string) (*dto.ParticipantResponse, error) {
	p, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.FirstName != nil {
		p.FirstName = strings.TrimSpace(*in.FirstName)
		if p.FirstName == "" {
			return nil, domain.NewValidationError("first_name", "el nombre es obligatorio")
		}
	}
	if in.LastName != nil {
		p.LastName = strings.TrimSpace(*in.LastName)
		if p.LastName == "" {
			return nil, domain.NewValidationError("last_name", "el apellido es obligatorio")
		}
	}
	if in.Field1 != nil {
		p.Field1 = strings.TrimSpace(*in.Field1)
	}
	if in.Field2 != nil {
		p.Field2 = strings.TrimSpace(*in.Field2)
	}
	if in.Field3 != nil {
		p.Field3 = strings.TrimSpace(*in.Field3)
	}
	if err := validateParticipantLengths(p); err != nil {
		return nil, err
	}
	p.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("usecase: actualizar participante: %w", err)
	}
	uc.audit.Record(ctx, audit.Entry{
		AdminID:     audit.ID(adminID),
		Action:      entity.ActionUpdate,
		EntityType:  entity.EntityParticipant,
		EntityID:    audit.ID(p.ID),
		Description: fmt.Sprintf("Participante actualizado: %s", p.Email),
		IP:          ip,
	})
	resp := dto.NewParticipantResponse(p)
	return &resp, nil
}

// Delete elimina el participante y sus votos.
func (uc *ParticipantUseCase) Delete(ctx context.Context, id int64, adminID int64, ip string) error {
	p, err := uc.find(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("usecase: eliminar participante: %w", err)
	}
	uc.audit.Record(ctx, audit.Entry{
		AdminID:     audit.ID(adminID),
		Action:      entity.ActionDelete,
		EntityType:  entity.EntityParticipant,
		EntityID:    audit.ID(id),
		Description: fmt.Sprintf("Participante eliminado: %s", p.Email),
		IP:          ip,
	})
	return nil
}

// BulkUpload carga CSV con cabecera email,first_name,last_name[,field1,field2,field3].
// Acepta UTF-8 (con o sin BOM) y Latin-1/Windows-1252. Las filas válidas se crean;
// las inválidas se informan con su número de fila (la cabecera es la fila 1).
func (uc *ParticipantUseCase) BulkUpload(ctx context.Context, data []byte, adminID int64, ip string) (*dto.BulkUploadResponse, error) {
	r := csv.NewReader(decodeCSV(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, domain.NewValidationError("file", "el archivo está vacío")
	}
	if err != nil {
		return nil, domain.NewValidationError("file", "CSV inválido: "+err.Error())
	}
	cols := indexHeader(header)
	for _, required := range []string{"email", "first_name", "last_name"} {
		if _, ok := cols[required]; !ok {
			return nil, domain.NewValidationError("file", "falta la columna "+required)
		}
	}

	resp := &dto.BulkUploadResponse{Errors: []string{}}
	seen := make(map[string]int)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				resp.Errors = append(resp.Errors, fmt.Sprintf("Fila %d: %v", pe.StartLine, pe.Err))
				continue
			}
			return nil, domain.NewValidationError("file", "CSV inválido: "+err.Error())
		}
		// Número de línea física: el lector omite líneas vacías.
		row, _ := r.FieldPos(0)
		if blankRecord(rec) {
			continue
		}
		get := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return rec[i]
		}
		p, err := uc.newParticipant(get("email"), get("first_name"), get("last_name"), get("field1"), get("field2"), get("field3"))
		if err != nil {
			resp.Errors = append(resp.Errors, fmt.Sprintf("Fila %d: %s", row, validationMessage(err)))
			continue
		}
		if first, dup := seen[p.Email]; dup {
			resp.Errors = append(resp.Errors, fmt.Sprintf("Fila %d: email %s repetido (fila %d)", row, p.Email, first))
			continue
		}
		seen[p.Email] = row
		existing, err := uc.repo.GetByEmail(ctx, p.Email)
		if err != nil {
			return nil, fmt.Errorf("usecase: carga masiva: %w", err)
		}
		if existing != nil {
			resp.Errors = append(resp.Errors, fmt.Sprintf("Fila %d: el email %s ya existe", row, p.Email))
			continue
		}
		if err := uc.repo.Create(ctx, p); err != nil {
			if isEmailConflict(err) {
				resp.Errors = append(resp.Errors, fmt.Sprintf("Fila %d: el email %s ya existe", row, p.Email))
				continue
			}
			return nil, fmt.Errorf("usecase: carga masiva fila %d: %w", row, err)
		}
		resp.Created++
	}

	uc.audit.Record(ctx, audit.Entry{
		AdminID:     audit.ID(adminID),
		Action:      entity.ActionBulkCreate,
		EntityType:  entity.EntityParticipant,
		Description: fmt.Sprintf("Carga masiva: %d creados, %d errores", resp.Created, len(resp.Errors)),
		IP:          ip,
	})
	return resp, nil
}

// SendInvitations envía el enlace de votación. Sin IDs se invita a quienes aún no votaron.
func (uc *ParticipantUseCase) SendInvitations(ctx context.Context, ids []int64, adminID int64, ip string) (*dto.SendInvitationsResponse, error) {
	var (
		targets []*entity.Participant
		err     error
	)
	if len(ids) == 0 {
		targets, err = uc.repo.ListWithoutVotes(ctx)
	} else {
		targets, err = uc.repo.ListByIDs(ctx, ids)
	}
	if err != nil {
		return nil, fmt.Errorf("usecase: destinatarios de invitación: %w", err)
	}

	resp := &dto.SendInvitationsResponse{Errors: []string{}}
	for _, p := range targets {
		if err := uc.notifier.SendInvitation(ctx, p.Email, p.FullName(), uc.invitationLink(p.Email)); err != nil {
			resp.Failed++
			if len(resp.Errors) < maxInvitationErrors {
				resp.Errors = append(resp.Errors, fmt.Sprintf("%s: %v", p.Email, err))
			}
			continue
		}
		resp.Success++
	}

	uc.audit.Record(ctx, audit.Entry{
		AdminID:     audit.ID(adminID),
		Action:      entity.ActionSendInvitations,
		EntityType:  entity.EntityParticipant,
		Description: fmt.Sprintf("Invitaciones enviadas: %d exitosas, %d fallidas", resp.Success, resp.Failed),
		IP:          ip,
	})
	return resp, nil
}

// Stats totales del padrón. "Votaron" se cuenta desde el libro de votos.
func (uc *ParticipantUseCase) Stats(ctx context.Context) (*dto.ParticipantStatsResponse, error) {
	c, err := uc.reports.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("usecase: estadísticas del padrón: %w", err)
	}
	return &dto.ParticipantStatsResponse{
		Total:             c.TotalParticipants,
		Voted:             c.VotedParticipants,
		Pending:           c.TotalParticipants - c.VotedParticipants,
		ParticipationRate: domvoting.Percentage(c.VotedParticipants, c.TotalParticipants),
	}, nil
}

func (uc *ParticipantUseCase) find(ctx context.Context, id int64) (*entity.Participant, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("usecase: obtener participante: %w", err)
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (uc *ParticipantUseCase) newParticipant(email, firstName, lastName, f1, f2, f3 string) (*entity.Participant, error) {
	email = identity.NormalizeEmail(email)
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if email == "" || firstName == "" || lastName == "" {
		return nil, domain.NewValidationError("participant", "email, nombre y apellido son obligatorios")
	}
	if err := identity.ValidateEmail(email); err != nil {
		return nil, err
	}
	now := uc.now()
	p := &entity.Participant{
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Field1:    strings.TrimSpace(f1),
		Field2:    strings.TrimSpace(f2),
		Field3:    strings.TrimSpace(f3),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := validateParticipantLengths(p); err != nil {
		return nil, err
	}
	return p, nil
}

// validateParticipantLengths límites de las columnas de participants.
func validateParticipantLengths(p *entity.Participant) error {
	checks := [...]struct {
		field, value string
		max          int
	}{
		{"first_name", p.FirstName, identity.MaxPersonNameLength},
		{"last_name", p.LastName, identity.MaxPersonNameLength},
		{"field1", p.Field1, identity.MaxExtraFieldLength},
		{"field2", p.Field2, identity.MaxExtraFieldLength},
		{"field3", p.Field3, identity.MaxExtraFieldLength},
	}
	for _, c := range checks {
		if err := identity.ValidateMaxLength(c.field, c.value, c.max); err != nil {
			return err
		}
	}
	return nil
}

func (uc *ParticipantUseCase) invitationLink(email string) string {
	q := url.Values{}
	q.Set("email", email)
	if uc.signer != nil {
		q.Set("token", uc.signer.Sign(email))
	}
	return uc.baseURL + "/api/voting/public/positions?" + q.Encode()
}

// decodeCSV quita el BOM y decodifica Windows-1252 cuando el contenido no es UTF-8 válido.
func decodeCSV(data []byte) io.Reader {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return bytes.NewReader(data)
	}
	return transform.NewReader(bytes.NewReader(data), charmap.Windows1252.NewDecoder())
}

func indexHeader(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return cols
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func isEmailConflict(err error) bool {
	return errors.Is(err, domain.ErrEmailAlreadyExists) || errors.Is(err, domain.ErrDuplicate)
}

func validationMessage(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return err.Error()
}
