package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CandidateResultResponse votos de un candidato.
type CandidateResultResponse struct {
	CandidateID int64           `json:"candidate_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	PhotoURL    string          `json:"photo_url,omitempty"`
	Votes       int64           `json:"votes"`
	Percentage  decimal.Decimal `json:"percentage"`
}

// VoteTypeResultResponse votos de un tipo especial.
type VoteTypeResultResponse struct {
	Type       string          `json:"type"`
	Label      string          `json:"label"`
	Votes      int64           `json:"votes"`
	Percentage decimal.Decimal `json:"percentage"`
}

// PositionResultResponse resultado de una posición.
type PositionResultResponse struct {
	PositionID   int64                     `json:"position_id"`
	PositionName string                    `json:"position_name"`
	Description  string                    `json:"description,omitempty"`
	IsActive     bool                      `json:"is_active"`
	TotalVotes   int64                     `json:"total_votes"`
	VotesByType  map[string]int64          `json:"votes_by_type"`
	Candidates   []CandidateResultResponse `json:"candidates"`
	SpecialVotes []VoteTypeResultResponse  `json:"special_votes"`
	Winner       *CandidateResultResponse  `json:"winner"`
}

// SummaryResponse resumen general de participación.
type SummaryResponse struct {
	TotalParticipants   int64           `json:"total_participants"`
	VotedParticipants   int64           `json:"voted_participants"`
	PendingParticipants int64           `json:"pending_participants"`
	ParticipationRate   decimal.Decimal `json:"participation_rate"`
	TotalVotes          int64           `json:"total_votes"`
	GeneratedAt         time.Time       `json:"generated_at"`
}

// ResultsResponse resumen + resultados por posición.
type ResultsResponse struct {
	Summary   SummaryResponse          `json:"summary"`
	Positions []PositionResultResponse `json:"positions"`
}

// StatisticsResponse estadísticas públicas.
type StatisticsResponse struct {
	SummaryResponse
	ActivePositions         int64           `json:"active_positions"`
	TotalCandidates         int64           `json:"total_candidates"`
	AverageVotesPerPosition decimal.Decimal `json:"average_votes_per_position"`
}

// TimelinePointResponse bucket de la línea de tiempo.
type TimelinePointResponse struct {
	Period     string `json:"period"`
	Votes      int64  `json:"votes"`
	Cumulative int64  `json:"cumulative"`
}

// TimelineResponse línea de tiempo por hora o día.
type TimelineResponse struct {
	Bucket string                  `json:"bucket"`
	Points []TimelinePointResponse `json:"points"`
}

// VoteAuditRowResponse fila del rastro de votos.
type VoteAuditRowResponse struct {
	Timestamp        time.Time `json:"timestamp"`
	ParticipantEmail string    `json:"participant_email"`
	Position         string    `json:"position"`
	VoteType         string    `json:"vote_type"`
	Candidate        *string   `json:"candidate"`
	IPAddress        string    `json:"ip_address"`
}

// AuditLogResponse entrada del registro de auditoría.
type AuditLogResponse struct {
	ID          int64     `json:"id"`
	AdminID     *int64    `json:"admin_id,omitempty"`
	Action      string    `json:"action"`
	EntityType  string    `json:"entity_type"`
	EntityID    *int64    `json:"entity_id,omitempty"`
	Description string    `json:"description"`
	IPAddress   string    `json:"ip_address"`
	CreatedAt   time.Time `json:"created_at"`
}

// AuditLogQuery filtros de /api/audit-logs.
type AuditLogQuery struct {
	EntityType string `query:"entity_type"`
	Action     string `query:"action"`
	Limit      int    `query:"limit"`
}
