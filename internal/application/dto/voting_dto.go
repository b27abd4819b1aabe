package dto

import (
	"time"

	"github.com/jhoicas/encuestas-api/internal/domain/voting"
)

// SubmitVotesRequest papeleta del participante autenticado.
type SubmitVotesRequest struct {
	Votes voting.Ballot `json:"votes"`
}

// LegacySubmitRequest papeleta del flujo por email + token.
type LegacySubmitRequest struct {
	Email string        `json:"email"`
	Token string        `json:"token"`
	Votes voting.Ballot `json:"votes"`
}

// SubmitVotesResponse resultado del envío.
type SubmitVotesResponse struct {
	Message    string `json:"message"`
	VotesCount int    `json:"votes_count"`
	HasVoted   bool   `json:"has_voted"`
}

// BallotCandidate opción de candidato en la papeleta.
type BallotCandidate struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Order       int    `json:"order"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

// BallotPosition posición activa con sus candidatos.
type BallotPosition struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Order       int               `json:"order"`
	Candidates  []BallotCandidate `json:"candidates"`
}

// BallotResponse papeleta completa.
type BallotResponse struct {
	Participant *ParticipantResponse `json:"participant,omitempty"`
	Positions   []BallotPosition     `json:"positions"`
	VoteTypes   []string             `json:"vote_types"`
}

// VoteStatusResponse estado de votación del participante.
type VoteStatusResponse struct {
	HasVoted        bool    `json:"has_voted"`
	VotedPositions  []int64 `json:"voted_positions"`
	ActivePositions int     `json:"active_positions"`
	Completed       bool    `json:"completed"`
}

// MyVoteResponse voto propio.
type MyVoteResponse struct {
	PositionID    int64     `json:"position_id"`
	PositionName  string    `json:"position_name"`
	VoteType      string    `json:"vote_type"`
	CandidateID   *int64    `json:"candidate_id,omitempty"`
	CandidateName string    `json:"candidate_name,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// UserInfoResponse cuenta del participante con su registro del padrón.
type UserInfoResponse struct {
	User        ParticipantUserResponse `json:"user"`
	Participant *ParticipantResponse    `json:"participant,omitempty"`
}
