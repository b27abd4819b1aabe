package dto

import "time"

// PositionRequest alta de posición. IsActive nil = activa.
type PositionRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Order       int    `json:"order"`
	IsActive    *bool  `json:"is_active"`
}

// UpdatePositionRequest campos opcionales; nil = sin cambio.
type UpdatePositionRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Order       *int    `json:"order"`
	IsActive    *bool   `json:"is_active"`
}

// PositionResponse salida de una posición.
type PositionResponse struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Order          int       `json:"order"`
	IsActive       bool      `json:"is_active"`
	CandidateCount int64     `json:"candidate_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PositionListResponse listado paginado de posiciones.
type PositionListResponse struct {
	Positions  []PositionResponse `json:"positions"`
	Pagination PageResponse       `json:"pagination"`
}

// CandidateRequest alta de candidato por un admin.
type CandidateRequest struct {
	PositionID  int64  `json:"position_id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Order       int    `json:"order"`
}

// UpdateCandidateRequest campos opcionales; nil = sin cambio.
type UpdateCandidateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Order       *int    `json:"order"`
}

// CandidateResponse salida de un candidato.
type CandidateResponse struct {
	ID           int64     `json:"id"`
	PositionID   int64     `json:"position_id"`
	PositionName string    `json:"position_name,omitempty"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Order        int       `json:"order"`
	Photo        string    `json:"photo,omitempty"`
	PhotoURL     string    `json:"photo_url,omitempty"`
	VoteCount    int64     `json:"vote_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// NominationRequest auto-postulación (multipart; la foto llega aparte).
type NominationRequest struct {
	PositionID  int64  `form:"position_id"`
	PublicName  string `form:"public_name"`
	Description string `form:"description"`
}
