package entity

import "time"

// AuditLog entrada append-only del registro de auditoría.
type AuditLog struct {
	ID          int64
	AdminID     *int64
	Action      string
	EntityType  string
	EntityID    *int64
	Description string
	IPAddress   string
	CreatedAt   time.Time
}

// MaxIPLength ancho de ip_address (VARCHAR(45), cabe una IPv6 con IPv4 embebida).
const MaxIPLength = 45

// ClampIP recorta la IP al ancho de la columna.
func ClampIP(ip string) string {
	if len(ip) > MaxIPLength {
		return ip[:MaxIPLength]
	}
	return ip
}

// Acciones y tipos de entidad registrados.
const (
	ActionCreate          = "CREATE"
	ActionUpdate          = "UPDATE"
	ActionDelete          = "DELETE"
	ActionLogin           = "LOGIN"
	ActionBulkCreate      = "BULK_CREATE"
	ActionSendInvitations = "SEND_INVITATIONS"
	ActionVote            = "VOTE"
	ActionVoteSubmitted   = "VOTE_SUBMITTED"
	ActionEmailVerified   = "EMAIL_VERIFIED"

	EntityAdmin           = "ADMIN"
	EntityParticipant     = "PARTICIPANT"
	EntityParticipantUser = "PARTICIPANT_USER"
	EntityPosition        = "POSITION"
	EntityCandidate       = "CANDIDATE"
	EntityVote            = "VOTE"
)
