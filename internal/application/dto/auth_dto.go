package dto

import "time"

// LoginRequest entrada para login de admin o participante.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AdminResponse salida de un administrador (sin password).
type AdminResponse struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// AdminLoginResponse token + admin.
type AdminLoginResponse struct {
	AccessToken string        `json:"access_token"`
	Admin       AdminResponse `json:"admin"`
}

// CreateAdminRequest alta explícita de administradores.
type CreateAdminRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required"`
}

// ParticipantRegisterRequest auto-registro de participantes.
type ParticipantRegisterRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password"`
	PasswordConfirm string `json:"password_confirm"`
	FirstName       string `json:"first_name" validate:"required,min=2"`
	LastName        string `json:"last_name" validate:"required,min=2"`
}

// Confirmation acepta password_confirm (cliente web) y confirm_password.
func (r ParticipantRegisterRequest) Confirmation() string {
	if r.PasswordConfirm != "" {
		return r.PasswordConfirm
	}
	return r.ConfirmPassword
}

// ParticipantUserResponse salida de una cuenta de participante.
type ParticipantUserResponse struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	ParticipantID  *int64    `json:"participant_id,omitempty"`
	IsActive       bool      `json:"is_active"`
	EmailConfirmed bool      `json:"email_confirmed"`
	CreatedAt      time.Time `json:"created_at"`
}

// ParticipantRegisterResponse AccessToken solo cuando la cuenta queda activa al registrarse.
type ParticipantRegisterResponse struct {
	Message              string                  `json:"message"`
	User                 ParticipantUserResponse `json:"user"`
	AccessToken          string                  `json:"access_token,omitempty"`
	RequiresConfirmation bool                    `json:"requires_confirmation"`
}

// ParticipantLoginResponse token + cuenta.
type ParticipantLoginResponse struct {
	AccessToken string                  `json:"access_token"`
	User        ParticipantUserResponse `json:"user"`
}

// CheckEmailRequest consulta de disponibilidad de email.
type CheckEmailRequest struct {
	Email string `json:"email"`
}

// CheckEmailResponse resultado de la consulta.
type CheckEmailResponse struct {
	Email     string `json:"email"`
	Available bool   `json:"available"`
}
