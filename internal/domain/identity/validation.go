// Package identity reglas de validación de cuentas (email, nombre, contraseña).
package identity

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jhoicas/encuestas-api/internal/domain"
)

// MaxEmailLength longitud máxima de email admitida.
const MaxEmailLength = 120

// MaxPasswordBytes límite de bcrypt; por encima GenerateFromPassword falla.
const MaxPasswordBytes = 72

// Longitudes máximas (en caracteres) de las columnas VARCHAR del esquema.
const (
	MaxPersonNameLength    = 100
	MaxPositionNameLength  = 100
	MaxCandidateNameLength = 200
	MaxAdminNameLength     = 200
	MaxExtraFieldLength    = 255
)

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// NormalizeEmail recorta espacios y pasa a minúsculas. Toda comparación de emails usa esta forma.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail indica si el email (ya normalizado o no) tiene formato válido.
func ValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	return email != "" && len(email) <= MaxEmailLength && emailRe.MatchString(email)
}

// ValidateEmail devuelve un *domain.ValidationError si el email no es válido.
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return domain.NewValidationError("email", "el email es requerido")
	}
	if !ValidEmail(email) {
		return domain.NewValidationError("email", "formato de email inválido")
	}
	return nil
}

// ValidateName exige al menos 2 caracteres tras recortar.
func ValidateName(field, value string) error {
	if len([]rune(strings.TrimSpace(value))) < 2 {
		return domain.NewValidationError(field, "debe tener al menos 2 caracteres")
	}
	return nil
}

// ValidateMaxLength cuenta runas, no bytes: VARCHAR(n) en PostgreSQL limita caracteres.
func ValidateMaxLength(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return domain.NewValidationError(field, fmt.Sprintf("no puede superar %d caracteres", max))
	}
	return nil
}

// ValidatePassword al menos 8 caracteres con mayúscula, minúscula y dígito, y como mucho 72 bytes.
func ValidatePassword(password string) error {
	if len([]rune(password)) < 8 {
		return domain.NewValidationError("password", "la contraseña debe tener al menos 8 caracteres")
	}
	if len(password) > MaxPasswordBytes {
		return domain.NewValidationError("password", fmt.Sprintf("la contraseña no puede superar %d bytes", MaxPasswordBytes))
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return domain.NewValidationError("password", "la contraseña debe incluir mayúsculas, minúsculas y números")
	}
	return nil
}
