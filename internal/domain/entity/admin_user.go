package entity

import "time"

// AdminUser administrador de la encuesta.
type AdminUser struct {
	ID           int64
	Email        string
	PasswordHash string
	FullName     string
	IsActive     bool
	CreatedAt    time.Time
	LastLogin    *time.Time
}
