package entity

import "time"

// ParticipantUser cuenta con contraseña de un participante (auto-registro).
// Solo se guarda el hash SHA-256 del token de confirmación.
type ParticipantUser struct {
	ID                    int64
	Email                 string
	PasswordHash          string
	FirstName             string
	LastName              string
	ParticipantID         *int64
	ConfirmationTokenHash string
	ConfirmationExpiresAt *time.Time
	IsActive              bool
	EmailConfirmed        bool
	CreatedAt             time.Time
	UpdatedAt             time.Time
	LastLogin             *time.Time
}

// ConfirmationExpired indica si el token pendiente venció en el instante now.
func (u *ParticipantUser) ConfirmationExpired(now time.Time) bool {
	return u.ConfirmationExpiresAt == nil || now.After(*u.ConfirmationExpiresAt)
}
