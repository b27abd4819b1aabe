package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ParticipantRequest alta de participante en el padrón.
type ParticipantRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Field1    string `json:"field1"`
	Field2    string `json:"field2"`
	Field3    string `json:"field3"`
}

// UpdateParticipantRequest campos opcionales; nil = sin cambio. El email no se modifica.
type UpdateParticipantRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Field1    *string `json:"field1"`
	Field2    *string `json:"field2"`
	Field3    *string `json:"field3"`
}

// ParticipantResponse salida de un participante.
type ParticipantResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Field1    string    `json:"field1,omitempty"`
	Field2    string    `json:"field2,omitempty"`
	Field3    string    `json:"field3,omitempty"`
	HasVoted  bool      `json:"has_voted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ParticipantListResponse listado paginado.
type ParticipantListResponse struct {
	Participants []ParticipantResponse `json:"participants"`
	Pagination   PageResponse          `json:"pagination"`
}

// BulkUploadResponse resultado de la carga CSV.
type BulkUploadResponse struct {
	Created int      `json:"created"`
	Errors  []string `json:"errors"`
}

// SendInvitationsRequest IDs vacíos = todos los que no han votado.
type SendInvitationsRequest struct {
	ParticipantIDs []int64 `json:"participant_ids"`
}

// SendInvitationsResponse conteos del envío (como máximo 10 errores).
type SendInvitationsResponse struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}

// ParticipantStatsResponse estadísticas públicas del padrón.
type ParticipantStatsResponse struct {
	Total             int64           `json:"total"`
	Voted             int64           `json:"voted"`
	Pending           int64           `json:"pending"`
	ParticipationRate decimal.Decimal `json:"participation_rate"`
}
