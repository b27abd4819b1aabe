// Package reporting resultados, estadísticas, líneas de tiempo y exportaciones (solo lectura).
package reporting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/encuestas-api/internal/application/dto"
	"github.com/jhoicas/encuestas-api/internal/application/ports"
	"github.com/jhoicas/encuestas-api/internal/domain"
	"github.com/jhoicas/encuestas-api/internal/domain/entity"
	"github.com/jhoicas/encuestas-api/internal/domain/repository"
	domvoting "github.com/jhoicas/encuestas-api/internal/domain/voting"
)

// MaxAuditLogs límite superior de /api/audit-logs.
const MaxAuditLogs = 500

// UseCase consultas agregadas sobre el libro de votos y el registro de auditoría.
type UseCase struct {
	reports repository.ReportRepository
	audits  repository.AuditRepository
	photos  ports.PhotoStore
	pdf     ports.ResultsPDFGenerator
	xml     ports.AuditXMLExporter
	now     func() time.Time
}

// NewUseCase construye el caso de uso de reportes. pdf y xml pueden ser nil (exportación deshabilitada).
func NewUseCase(
	reports repository.ReportRepository,
	audits repository.AuditRepository,
	photos ports.PhotoStore,
	pdf ports.ResultsPDFGenerator,
	xml ports.AuditXMLExporter,
) *UseCase {
	return &UseCase{
		reports: reports,
		audits:  audits,
		photos:  photos,
		pdf:     pdf,
		xml:     xml,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Summary resumen de participación calculado desde el libro de votos.
func (uc *UseCase) Summary(ctx context.Context) (*dto.SummaryResponse, error) {
	c, err := uc.reports.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("reporting: conteos: %w", err)
	}
	s := summaryFrom(c, uc.now())
	return &s, nil
}

func summaryFrom(c entity.VoteCounts, now time.Time) dto.SummaryResponse {
	return dto.SummaryResponse{
		TotalParticipants:   c.TotalParticipants,
		VotedParticipants:   c.VotedParticipants,
		PendingParticipants: c.TotalParticipants - c.VotedParticipants,
		ParticipationRate:   domvoting.Percentage(c.VotedParticipants, c.TotalParticipants),
		TotalVotes:          c.TotalVotes,
		GeneratedAt:         now,
	}
}

// Results resultados de todas las posiciones (o de una) para administradores.
func (uc *UseCase) Results(ctx context.Context, positionID int64) (*dto.ResultsResponse, error) {
	return uc.results(ctx, false, positionID)
}

// PublicSummary resultados de las posiciones activas.
func (uc *UseCase) PublicSummary(ctx context.Context) (*dto.ResultsResponse, error) {
	return uc.results(ctx, true, 0)
}

func (uc *UseCase) results(ctx context.Context, onlyActive bool, positionID int64) (*dto.ResultsResponse, error) {
	summary, err := uc.Summary(ctx)
	if err != nil {
		return nil, err
	}
	tallies, err := uc.reports.PositionTallies(ctx, onlyActive, positionID)
	if err != nil {
		return nil, fmt.Errorf("reporting: conteos por posición: %w", err)
	}
	if positionID != 0 && len(tallies) == 0 {
		return nil, fmt.Errorf("%w: posición %d", domain.ErrNotFound, positionID)
	}
	out := &dto.ResultsResponse{Summary: *summary, Positions: make([]dto.PositionResultResponse, 0, len(tallies))}
	for _, t := range tallies {
		out.Positions = append(out.Positions, uc.positionResult(domvoting.Compute(t)))
	}
	return out, nil
}

// PositionResults resultado público de una posición, candidatos por votos desc y luego ID.
func (uc *UseCase) PositionResults(ctx context.Context, positionID int64) (*dto.PositionResultResponse, error) {
	tallies, err := uc.reports.PositionTallies(ctx, false, positionID)
	if err != nil {
		return nil, fmt.Errorf("reporting: conteos por posición: %w", err)
	}
	if len(tallies) == 0 {
		return nil, fmt.Errorf("%w: posición %d", domain.ErrNotFound, positionID)
	}
	res := uc.positionResult(domvoting.Compute(tallies[0]))
	sort.SliceStable(res.Candidates, func(i, j int) bool {
		if res.Candidates[i].Votes != res.Candidates[j].Votes {
			return res.Candidates[i].Votes > res.Candidates[j].Votes
		}
		return res.Candidates[i].CandidateID < res.Candidates[j].CandidateID
	})
	return &res, nil
}

func (uc *UseCase) positionResult(r domvoting.PositionResult) dto.PositionResultResponse {
	out := dto.PositionResultResponse{
		PositionID:   r.Position.ID,
		PositionName: r.Position.Name,
		Description:  r.Position.Description,
		IsActive:     r.Position.IsActive,
		TotalVotes:   r.TotalVotes,
		VotesByType:  make(map[string]int64, len(r.ByType)),
		Candidates:   make([]dto.CandidateResultResponse, 0, len(r.Candidates)),
		SpecialVotes: make([]dto.VoteTypeResultResponse, 0, 4),
	}
	for _, t := range r.ByType {
		out.VotesByType[string(t.Type)] = t.Votes
	}
	for _, t := range r.Special() {
		out.SpecialVotes = append(out.SpecialVotes, dto.VoteTypeResultResponse{
			Type:       string(t.Type),
			Label:      t.Type.Label(),
			Votes:      t.Votes,
			Percentage: t.Percentage,
		})
	}
	for _, c := range r.Candidates {
		out.Candidates = append(out.Candidates, uc.candidateResult(c))
	}
	if r.Winner != nil {
		w := uc.candidateResult(*r.Winner)
		out.Winner = &w
	}
	return out
}

func (uc *UseCase) candidateResult(c domvoting.CandidateResult) dto.CandidateResultResponse {
	out := dto.CandidateResultResponse{
		CandidateID: c.CandidateID,
		Name:        c.Name,
		Description: c.Description,
		Votes:       c.Votes,
		Percentage:  c.Percentage,
	}
	if uc.photos != nil && c.Photo != "" {
		out.PhotoURL = uc.photos.URL(c.Photo)
	}
	return out
}

// Statistics estadísticas públicas: resumen más posiciones activas, candidatos y promedio de votos.
func (uc *UseCase) Statistics(ctx context.Context) (*dto.StatisticsResponse, error) {
	c, err := uc.reports.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("reporting: conteos: %w", err)
	}
	avg := decimal.Zero
	if c.ActivePositions > 0 {
		avg = decimal.NewFromInt(c.TotalVotes).Div(decimal.NewFromInt(c.ActivePositions)).Round(2)
	}
	return &dto.StatisticsResponse{
		SummaryResponse:         summaryFrom(c, uc.now()),
		ActivePositions:         c.ActivePositions,
		TotalCandidates:         c.TotalCandidates,
		AverageVotesPerPosition: avg,
	}, nil
}

// Timeline votos por hora o día en orden cronológico con acumulado.
func (uc *UseCase) Timeline(ctx context.Context, bucket entity.Bucket) (*dto.TimelineResponse, error) {
	if bucket != entity.BucketHour && bucket != entity.BucketDay {
		return nil, domain.NewValidationError("bucket", "debe ser hour o day")
	}
	buckets, err := uc.reports.Timeline(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("reporting: línea de tiempo: %w", err)
	}
	points := domvoting.Timeline(bucket, buckets)
	out := &dto.TimelineResponse{Bucket: string(bucket), Points: make([]dto.TimelinePointResponse, 0, len(points))}
	for _, p := range points {
		out.Points = append(out.Points, dto.TimelinePointResponse{Period: p.Label, Votes: p.Votes, Cumulative: p.Cumulative})
	}
	return out, nil
}

// VoteAuditTrail rastro detallado de votos.
func (uc *UseCase) VoteAuditTrail(ctx context.Context) ([]dto.VoteAuditRowResponse, error) {
	rows, err := uc.reports.VoteAuditTrail(ctx)
	if err != nil {
		return nil, fmt.Errorf("reporting: rastro de votos: %w", err)
	}
	out := make([]dto.VoteAuditRowResponse, 0, len(rows))
	for _, r := range rows {
		item := dto.VoteAuditRowResponse{
			Timestamp:        r.CreatedAt,
			ParticipantEmail: r.ParticipantEmail,
			Position:         r.PositionName,
			VoteType:         string(r.VoteType),
			IPAddress:        r.IPAddress,
		}
		if r.CandidateName != "" {
			name := r.CandidateName
			item.Candidate = &name
		}
		out = append(out, item)
	}
	return out, nil
}

// AuditLogs entradas del registro de auditoría, más recientes primero (límite 1..500, por defecto 100).
func (uc *UseCase) AuditLogs(ctx context.Context, q dto.AuditLogQuery) ([]dto.AuditLogResponse, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	if limit > MaxAuditLogs {
		limit = MaxAuditLogs
	}
	logs, err := uc.audits.List(ctx, repository.AuditFilter{EntityType: q.EntityType, Action: q.Action, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("reporting: auditoría: %w", err)
	}
	out := make([]dto.AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, dto.NewAuditLogResponse(l))
	}
	return out, nil
}
