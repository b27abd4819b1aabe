package usecase_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/encuestas-api/internal/application/audit"
	"github.com/jhoicas/encuestas-api/internal/application/dto"
	"github.com/jhoicas/encuestas-api/internal/application/notification"
	"github.com/jhoicas/encuestas-api/internal/application/ports"
	"github.com/jhoicas/encuestas-api/internal/application/usecase"
	"github.com/jhoicas/encuestas-api/internal/domain"
	"github.com/jhoicas/encuestas-api/internal/domain/entity"
	"github.com/jhoicas/encuestas-api/internal/domain/repository"
	"github.com/jhoicas/encuestas-api/internal/infrastructure/memory"
	"github.com/jhoicas/encuestas-api/pkg/ballot"
	"github.com/jhoicas/encuestas-api/pkg/logger"
)

const adminID int64 = 1

type recordingMailer struct {
	mu   sync.Mutex
	sent []ports.Mail
	fail bool
}

func (m *recordingMailer) Send(_ context.Context, mail ports.Mail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp caído")
	}
	m.sent = append(m.sent, mail)
	return nil
}

func newParticipants(t *testing.T, mailer ports.Mailer) (*usecase.ParticipantUseCase, *memory.Store) {
	t.Helper()
	s := memory.NewStore()
	signer, err := ballot.NewSigner("secreto")
	require.NoError(t, err)
	uc := usecase.NewParticipantUseCase(
		s.Participants(), s.Reports(),
		audit.NewRecorder(s.Audit(), logger.Nop()),
		notification.NewNotifier(mailer, logger.Nop(), "Encuestas"),
		signer, "http://localhost:8080/",
	)
	return uc, s
}

func TestParticipantCreate_EmailDuplicado(t *testing.T) {
	uc, _ := newParticipants(t, nil)
	ctx := context.Background()

	p, err := uc.Create(ctx, dto.ParticipantRequest{Email: " Ana@Example.com", FirstName: "Ana", LastName: "Pérez", Field1: "Sede Norte"}, adminID, "")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", p.Email)
	assert.Equal(t, "Sede Norte", p.Field1)

	_, err = uc.Create(ctx, dto.ParticipantRequest{Email: "ANA@example.com", FirstName: "Otra", LastName: "Ana"}, adminID, "")
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	_, err = uc.Create(ctx, dto.ParticipantRequest{Email: "sin-arroba", FirstName: "X", LastName: "Y"}, adminID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParticipantUpdateDeleteYAuditoria(t *testing.T) {
	uc, s := newParticipants(t, nil)
	ctx := context.Background()
	p, err := uc.Create(ctx, dto.ParticipantRequest{Email: "luis@example.com", FirstName: "Luis", LastName: "Gómez"}, adminID, "10.0.0.1")
	require.NoError(t, err)

	name := "Luis Alberto"
	updated, err := uc.Update(ctx, p.ID, dto.UpdateParticipantRequest{FirstName: &name}, adminID, "")
	require.NoError(t, err)
	assert.Equal(t, "Luis Alberto", updated.FirstName)
	assert.Equal(t, "Gómez", updated.LastName)

	empty := " "
	_, err = uc.Update(ctx, p.ID, dto.UpdateParticipantRequest{LastName: &empty}, adminID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	require.NoError(t, uc.Delete(ctx, p.ID, adminID, ""))
	_, err = uc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, uc.Delete(ctx, p.ID, adminID, ""), domain.ErrNotFound)

	logs, err := s.Audit().List(ctx, repository.AuditFilter{EntityType: entity.EntityParticipant})
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, entity.ActionDelete, logs[0].Action)
	require.NotNil(t, logs[0].AdminID)
	assert.Equal(t, adminID, *logs[0].AdminID)
}

func TestParticipantList_BusquedaYPaginacion(t *testing.T) {
	uc, _ := newParticipants(t, nil)
	ctx := context.Background()
	for _, e := range []string{"ana@example.com", "andres@example.com", "beto@example.com"} {
		_, err := uc.Create(ctx, dto.ParticipantRequest{Email: e, FirstName: "Nombre", LastName: "Apellido"}, adminID, "")
		require.NoError(t, err)
	}

	res, err := uc.List(ctx, "AN", dto.PageRequest{Page: 1, PerPage: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Pagination.Total)
	assert.Equal(t, 2, res.Pagination.Pages)
	assert.Len(t, res.Participants, 1)
}

func TestParticipant_LongitudesMaximas(t *testing.T) {
	uc, s := newParticipants(t, nil)
	ctx := context.Background()

	cases := map[string]dto.ParticipantRequest{
		"nombre":   {Email: "a@example.com", FirstName: strings.Repeat("n", 101), LastName: "Pérez"},
		"apellido": {Email: "b@example.com", FirstName: "Ana", LastName: strings.Repeat("p", 101)},
		"field1":   {Email: "c@example.com", FirstName: "Ana", LastName: "Pérez", Field1: strings.Repeat("x", 256)},
		"field3":   {Email: "d@example.com", FirstName: "Ana", LastName: "Pérez", Field3: strings.Repeat("x", 256)},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Create(ctx, req, adminID, "")
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	p, err := uc.Create(ctx, dto.ParticipantRequest{Email: "ok@example.com", FirstName: "Ana", LastName: "Pérez", Field2: strings.Repeat("ñ", 255)}, adminID, "")
	require.NoError(t, err)
	long := strings.Repeat("x", 256)
	_, err = uc.Update(ctx, p.ID, dto.UpdateParticipantRequest{Field2: &long}, adminID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	stored, err := s.Participants().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("ñ", 255), stored.Field2, "una actualización rechazada no persiste")

	csv := "email,first_name,last_name,field1\nlargo@example.com,Ana,Pérez," + strings.Repeat("z", 256) + "\n"
	res, err := uc.BulkUpload(ctx, []byte(csv), adminID, "")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Created)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "Fila 2:")
}

// ── Carga masiva ─────────────────────────────────────────────────────────────

func TestBulkUpload_FilaInvalidaReportaNumero(t *testing.T) {
	uc, s := newParticipants(t, nil)
	ctx := context.Background()
	csv := "email,first_name,last_name\nno-es-email,Mala,Fila\nok@example.com,Buena,Fila\n"

	res, err := uc.BulkUpload(ctx, []byte(csv), adminID, "")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	require.Len(t, res.Errors, 1)
	assert.True(t, strings.HasPrefix(res.Errors[0], "Fila 2:"), res.Errors[0])

	_, total, _ := s.Participants().List(ctx, repository.ParticipantFilter{})
	assert.Equal(t, int64(1), total)
}

func TestBulkUpload_DuplicadosYLineasVacias(t *testing.T) {
	uc, _ := newParticipants(t, nil)
	ctx := context.Background()
	_, err := uc.Create(ctx, dto.ParticipantRequest{Email: "existe@example.com", FirstName: "Ya", LastName: "Existe"}, adminID, "")
	require.NoError(t, err)

	csv := "Email,First_Name,Last_Name,field1\n" +
		"uno@example.com,Uno,Apellido,A\n" +
		"\n" +
		"UNO@example.com,Uno,Repetido,B\n" +
		"existe@example.com,Ya,Existe,C\n" +
		"dos@example.com,,Apellido,D\n"

	res, err := uc.BulkUpload(ctx, []byte(csv), adminID, "")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	require.Len(t, res.Errors, 3)
	assert.Contains(t, res.Errors[0], "Fila 4:")
	assert.Contains(t, res.Errors[0], "fila 2")
	assert.Contains(t, res.Errors[1], "Fila 5:")
	assert.Contains(t, res.Errors[2], "Fila 6:")
}

func TestBulkUpload_Codificaciones(t *testing.T) {
	ctx := context.Background()

	t.Run("UTF-8 con BOM", func(t *testing.T) {
		uc, s := newParticipants(t, nil)
		data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("email,first_name,last_name\nmaria@example.com,María,Núñez\n")...)
		res, err := uc.BulkUpload(ctx, data, adminID, "")
		require.NoError(t, err)
		assert.Equal(t, 1, res.Created)
		p, _ := s.Participants().GetByEmail(ctx, "maria@example.com")
		require.NotNil(t, p)
		assert.Equal(t, "Núñez", p.LastName)
	})

	t.Run("Latin-1", func(t *testing.T) {
		uc, s := newParticipants(t, nil)
		// "José,Peña" en ISO-8859-1: é = 0xE9, ñ = 0xF1.
		data := []byte("email,first_name,last_name\njose@example.com,Jos\xe9,Pe\xf1a\n")
		res, err := uc.BulkUpload(ctx, data, adminID, "")
		require.NoError(t, err)
		assert.Equal(t, 1, res.Created)
		p, _ := s.Participants().GetByEmail(ctx, "jose@example.com")
		require.NotNil(t, p)
		assert.Equal(t, "José", p.FirstName)
		assert.Equal(t, "Peña", p.LastName)
	})
}

func TestBulkUpload_CabeceraInvalida(t *testing.T) {
	uc, _ := newParticipants(t, nil)
	_, err := uc.BulkUpload(context.Background(), []byte("correo,nombre\nx@example.com,X\n"), adminID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.BulkUpload(context.Background(), nil, adminID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ── Invitaciones y estadísticas ──────────────────────────────────────────────

func seedVoter(t *testing.T, s *memory.Store, email string) *entity.Participant {
	t.Helper()
	ctx := context.Background()
	p := &entity.Participant{Email: email, FirstName: "Votante", LastName: "Uno"}
	require.NoError(t, s.Participants().Create(ctx, p))
	pos, _ := s.Positions().GetByName(ctx, "Presidente")
	if pos == nil {
		pos = &entity.Position{Name: "Presidente", IsActive: true}
		require.NoError(t, s.Positions().Create(ctx, pos))
	}
	require.NoError(t, s.Votes().Create(ctx, &entity.Vote{ParticipantID: p.ID, PositionID: pos.ID, VoteType: entity.VoteBlanco}))
	return p
}

func TestSendInvitations_SoloPendientes(t *testing.T) {
	mailer := &recordingMailer{}
	uc, s := newParticipants(t, mailer)
	ctx := context.Background()
	seedVoter(t, s, "voto@example.com")
	pending := &entity.Participant{Email: "pendiente@example.com", FirstName: "Pen", LastName: "Diente"}
	require.NoError(t, s.Participants().Create(ctx, pending))

	res, err := uc.SendInvitations(ctx, nil, adminID, "")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Success)
	assert.Equal(t, 0, res.Failed)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "pendiente@example.com", mailer.sent[0].To)
	assert.Contains(t, mailer.sent[0].TextBody, "http://localhost:8080/api/voting/public/positions?email=pendiente%40example.com&token=")
}

func TestSendInvitations_ErroresLimitados(t *testing.T) {
	uc, s := newParticipants(t, &recordingMailer{fail: true})
	ctx := context.Background()
	var ids []int64
	for i := 0; i < 12; i++ {
		p := &entity.Participant{Email: "p" + strings.Repeat("x", i) + "@example.com", FirstName: "P", LastName: "Q"}
		require.NoError(t, s.Participants().Create(ctx, p))
		ids = append(ids, p.ID)
	}

	res, err := uc.SendInvitations(ctx, ids, adminID, "")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Success)
	assert.Equal(t, 12, res.Failed)
	assert.Len(t, res.Errors, 10)
}

func TestParticipantStats(t *testing.T) {
	uc, s := newParticipants(t, nil)
	ctx := context.Background()

	empty, err := uc.Stats(ctx)
	require.NoError(t, err)
	assert.True(t, empty.ParticipationRate.IsZero())

	seedVoter(t, s, "a@example.com")
	for _, e := range []string{"b@example.com", "c@example.com"} {
		require.NoError(t, s.Participants().Create(ctx, &entity.Participant{Email: e, FirstName: "N", LastName: "M"}))
	}
	st, err := uc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), st.Total)
	assert.Equal(t, int64(1), st.Voted)
	assert.Equal(t, int64(2), st.Pending)
	assert.True(t, decimal.RequireFromString("33.33").Equal(st.ParticipationRate), st.ParticipationRate.String())
}
