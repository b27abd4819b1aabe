// Package voting casos de uso de emisión y consulta de votos.
package voting

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
	domvoting "github.com/jhoicas/encuestas-api/internal/domain/voting"
	"github.com/jhoicas/encuestas-api/pkg/ballot"
)

// Policy política de reenvío de una papeleta.
type Policy int

const (
	// PolicyStrict rechaza toda la papeleta (409) si alguna posición ya tiene voto.
	PolicyStrict Policy = iota
	// PolicyReplaceAll borra todos los votos previos del participante y registra los nuevos.
	PolicyReplaceAll
)

func (p Policy) String() string {
	if p == PolicyReplaceAll {
		return "replace_all"
	}
	return "strict"
}

const maxUserAgent = 500

// Meta datos de la petición guardados con cada voto.
type Meta struct {
	IP        string
	UserAgent string
}

// Options configuración del flujo de votación por email.
type Options struct {
	LegacyEnabled bool
	Signer        *ballot.Signer
}

// UseCase emisión de papeletas y consultas del participante.
type UseCase struct {
	participants repository.ParticipantRepository
	users        repository.ParticipantUserRepository
	positions    repository.PositionRepository
	candidates   repository.CandidateRepository
	votes        repository.VoteRepository
	tx           TxRunner
	audit        *audit.Recorder
	photos       ports.PhotoStore
	opts         Options
	now          func() time.Time
}

// NewUseCase construye el caso de uso de votación.
func NewUseCase(
	participants repository.ParticipantRepository,
	users repository.ParticipantUserRepository,
	positions repository.PositionRepository,
	candidates repository.CandidateRepository,
	votes repository.VoteRepository,
	tx TxRunner,
	recorder *audit.Recorder,
	photos ports.PhotoStore,
	opts Options,
) *UseCase {
	return &UseCase{
		participants: participants,
		users:        users,
		positions:    positions,
		candidates:   candidates,
		votes:        votes,
		tx:           tx,
		audit:        recorder,
		photos:       photos,
		opts:         opts,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// SubmitBallot valida la papeleta completa y la registra en una sola transacción según policy.
// Ninguna fila se escribe si alguna selección es inválida.
func (uc *UseCase) SubmitBallot(ctx context.Context, participantID int64, b domvoting.Ballot, policy Policy, meta Meta) (*dto.SubmitVotesResponse, error) {
	choices, err := domvoting.Parse(b)
	if err != nil {
		return nil, err
	}
	participant, err := uc.participants.GetByID(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("voting: obtener participante: %w", err)
	}
	if participant == nil {
		return nil, fmt.Errorf("%w: participante", domain.ErrNotFound)
	}
	if err := uc.checkChoices(ctx, choices); err != nil {
		return nil, err
	}

	userAgent := truncate(meta.UserAgent, maxUserAgent)
	meta.IP = entity.ClampIP(meta.IP)
	now := uc.now()
	var hasVoted bool
	err = uc.tx.RunVoting(ctx, func(votes repository.VoteRepository, participants repository.ParticipantRepository) error {
		switch policy {
		case PolicyStrict:
			voted, err := votes.VotedPositions(ctx, participantID, domvoting.PositionIDs(choices))
			if err != nil {
				return fmt.Errorf("consultar votos previos: %w", err)
			}
			if len(voted) > 0 {
				return fmt.Errorf("%w: posiciones %v", domain.ErrVoteAlreadyCast, voted)
			}
		case PolicyReplaceAll:
			if _, err := votes.DeleteByParticipant(ctx, participantID); err != nil {
				return fmt.Errorf("borrar votos previos: %w", err)
			}
		}
		for _, c := range choices {
			v := &entity.Vote{
				ParticipantID: participantID,
				PositionID:    c.PositionID,
				CandidateID:   c.CandidateID,
				VoteType:      c.Type,
				IPAddress:     meta.IP,
				UserAgent:     userAgent,
				CreatedAt:     now,
			}
			if err := votes.Create(ctx, v); err != nil {
				if errors.Is(err, domain.ErrVoteAlreadyCast) {
					return fmt.Errorf("%w: posición %d", domain.ErrVoteAlreadyCast, c.PositionID)
				}
				return fmt.Errorf("registrar voto: %w", err)
			}
		}
		var err error
		hasVoted, err = participants.RefreshHasVoted(ctx, participantID)
		return err
	})
	if err != nil {
		return nil, err
	}

	action, entityType := entity.ActionVoteSubmitted, entity.EntityParticipant
	entityID := participantID
	if policy == PolicyReplaceAll {
		action, entityType = entity.ActionVote, entity.EntityVote
	}
	uc.audit.Record(ctx, audit.Entry{
		Action:      action,
		EntityType:  entityType,
		EntityID:    &entityID,
		Description: fmt.Sprintf("Participante %s registró votos para %d posiciones (%s)", participant.Email, len(choices), policy),
		IP:          meta.IP,
	})

	return &dto.SubmitVotesResponse{
		Message:    "Votos registrados exitosamente",
		VotesCount: len(choices),
		HasVoted:   hasVoted,
	}, nil
}

// checkChoices valida posiciones y candidatos de todas las selecciones antes de escribir.
func (uc *UseCase) checkChoices(ctx context.Context, choices []domvoting.Choice) error {
	for _, c := range choices {
		pos, err := uc.positions.GetByID(ctx, c.PositionID)
		if err != nil {
			return fmt.Errorf("voting: obtener posición: %w", err)
		}
		var cand *entity.Candidate
		if c.CandidateID != nil {
			cand, err = uc.candidates.GetByID(ctx, *c.CandidateID)
			if err != nil {
				return fmt.Errorf("voting: obtener candidato: %w", err)
			}
		}
		if err := domvoting.CheckChoice(c, pos, cand); err != nil {
			return err
		}
	}
	return nil
}

// ParticipantForUser resuelve el participante vinculado a una cuenta.
// Una cuenta desactivada (o sin confirmar) responde 401 aunque su token siga vigente.
func (uc *UseCase) ParticipantForUser(ctx context.Context, userID int64) (*entity.ParticipantUser, *entity.Participant, error) {
	u, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("voting: obtener usuario: %w", err)
	}
	if u == nil {
		return nil, nil, domain.ErrUserNotFound
	}
	if !u.IsActive {
		return nil, nil, fmt.Errorf("%w: cuenta inactiva", domain.ErrUnauthorized)
	}
	if u.ParticipantID == nil {
		return u, nil, nil
	}
	p, err := uc.participants.GetByID(ctx, *u.ParticipantID)
	if err != nil {
		return nil, nil, fmt.Errorf("voting: obtener participante: %w", err)
	}
	return u, p, nil
}

// linkedParticipant como ParticipantForUser pero exige vínculo.
func (uc *UseCase) linkedParticipant(ctx context.Context, userID int64) (*entity.Participant, error) {
	_, p, err := uc.ParticipantForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: participante no vinculado", domain.ErrNotFound)
	}
	return p, nil
}

// SubmitForUser papeleta del participante autenticado con política estricta.
func (uc *UseCase) SubmitForUser(ctx context.Context, userID int64, b domvoting.Ballot, meta Meta) (*dto.SubmitVotesResponse, error) {
	p, err := uc.linkedParticipant(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.SubmitBallot(ctx, p.ID, b, PolicyStrict, meta)
}

// ResolveLegacyVoter valida email + token de papeleta del flujo por correo.
func (uc *UseCase) ResolveLegacyVoter(ctx context.Context, email, token string) (*entity.Participant, error) {
	if !uc.opts.LegacyEnabled {
		return nil, domain.ErrLegacyVotingOff
	}
	if strings.TrimSpace(email) == "" || strings.TrimSpace(token) == "" {
		return nil, domain.NewValidationError("email", "email y token son requeridos")
	}
	if uc.opts.Signer == nil || uc.opts.Signer.Verify(email, token) != nil {
		return nil, fmt.Errorf("%w: token de papeleta inválido", domain.ErrUnauthorized)
	}
	p, err := uc.participants.GetByEmail(ctx, identity.NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("voting: obtener participante: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: participante no encontrado", domain.ErrNotFound)
	}
	return p, nil
}

// LegacyBallot papeleta para el flujo por correo.
func (uc *UseCase) LegacyBallot(ctx context.Context, email, token string) (*dto.BallotResponse, error) {
	p, err := uc.ResolveLegacyVoter(ctx, email, token)
	if err != nil {
		return nil, err
	}
	return uc.ballotFor(ctx, p)
}

// SubmitLegacy papeleta del flujo por correo: reemplaza todos los votos previos.
func (uc *UseCase) SubmitLegacy(ctx context.Context, req dto.LegacySubmitRequest, meta Meta) (*dto.SubmitVotesResponse, error) {
	p, err := uc.ResolveLegacyVoter(ctx, req.Email, req.Token)
	if err != nil {
		return nil, err
	}
	return uc.SubmitBallot(ctx, p.ID, req.Votes, PolicyReplaceAll, meta)
}

// BallotForUser posiciones activas con candidatos para el participante autenticado.
func (uc *UseCase) BallotForUser(ctx context.Context, userID int64) (*dto.BallotResponse, error) {
	p, err := uc.linkedParticipant(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.ballotFor(ctx, p)
}

func (uc *UseCase) ballotFor(ctx context.Context, p *entity.Participant) (*dto.BallotResponse, error) {
	positions, _, err := uc.positions.List(ctx, repository.PositionFilter{OnlyActive: true})
	if err != nil {
		return nil, fmt.Errorf("voting: listar posiciones: %w", err)
	}
	cands, err := uc.candidates.ListByPosition(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("voting: listar candidatos: %w", err)
	}
	byPos := map[int64][]dto.BallotCandidate{}
	for _, c := range cands {
		byPos[c.PositionID] = append(byPos[c.PositionID], dto.BallotCandidate{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Order:       c.Order,
			PhotoURL:    uc.photoURL(c.Photo),
		})
	}
	resp := &dto.BallotResponse{Positions: make([]dto.BallotPosition, 0, len(positions))}
	if p != nil {
		pr := dto.NewParticipantResponse(p)
		resp.Participant = &pr
	}
	for _, pos := range positions {
		bc := byPos[pos.ID]
		if bc == nil {
			bc = []dto.BallotCandidate{}
		}
		resp.Positions = append(resp.Positions, dto.BallotPosition{
			ID:          pos.ID,
			Name:        pos.Name,
			Description: pos.Description,
			Order:       pos.Order,
			Candidates:  bc,
		})
	}
	for _, vt := range entity.VoteTypes {
		resp.VoteTypes = append(resp.VoteTypes, string(vt))
	}
	return resp, nil
}

// VoteStatus posiciones ya votadas por el participante autenticado.
func (uc *UseCase) VoteStatus(ctx context.Context, userID int64) (*dto.VoteStatusResponse, error) {
	_, p, err := uc.ParticipantForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	active, total, err := uc.positions.List(ctx, repository.PositionFilter{OnlyActive: true})
	if err != nil {
		return nil, fmt.Errorf("voting: listar posiciones: %w", err)
	}
	resp := &dto.VoteStatusResponse{VotedPositions: []int64{}, ActivePositions: int(total)}
	if p == nil {
		return resp, nil
	}
	voted, err := uc.votes.VotedPositions(ctx, p.ID, nil)
	if err != nil {
		return nil, fmt.Errorf("voting: votos del participante: %w", err)
	}
	resp.HasVoted = len(voted) > 0
	resp.VotedPositions = append(resp.VotedPositions, voted...)
	votedSet := make(map[int64]bool, len(voted))
	for _, id := range voted {
		votedSet[id] = true
	}
	resp.Completed = len(active) > 0
	for _, pos := range active {
		if !votedSet[pos.ID] {
			resp.Completed = false
			break
		}
	}
	return resp, nil
}

// UserInfo cuenta del participante autenticado con su registro del padrón.
func (uc *UseCase) UserInfo(ctx context.Context, userID int64) (*dto.UserInfoResponse, error) {
	u, p, err := uc.ParticipantForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := &dto.UserInfoResponse{User: dto.NewParticipantUserResponse(u)}
	if p != nil {
		pr := dto.NewParticipantResponse(p)
		resp.Participant = &pr
	}
	return resp, nil
}

// MyVotes votos registrados del participante autenticado.
func (uc *UseCase) MyVotes(ctx context.Context, userID int64) ([]dto.MyVoteResponse, error) {
	_, p, err := uc.ParticipantForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := []dto.MyVoteResponse{}
	if p == nil {
		return out, nil
	}
	votes, err := uc.votes.ListByParticipant(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("voting: votos del participante: %w", err)
	}
	for _, v := range votes {
		item := dto.MyVoteResponse{
			PositionID:  v.PositionID,
			VoteType:    string(v.VoteType),
			CandidateID: v.CandidateID,
			CreatedAt:   v.CreatedAt,
		}
		if pos, err := uc.positions.GetByID(ctx, v.PositionID); err == nil && pos != nil {
			item.PositionName = pos.Name
		}
		if v.CandidateID != nil {
			if c, err := uc.candidates.GetByID(ctx, *v.CandidateID); err == nil && c != nil {
				item.CandidateName = c.Name
			}
		}
		out = append(out, item)
	}
	return out, nil
}

func (uc *UseCase) photoURL(name string) string {
	if uc.photos == nil || name == "" {
		return ""
	}
	return uc.photos.URL(name)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
