// Package ballot firma y verifica el token de papeleta usado por el flujo de
// votación por email (sin cuenta de participante).
package ballot

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// ErrInvalidToken el token no corresponde al email.
var ErrInvalidToken = errors.New("ballot: token inválido")

// Signer genera y verifica tokens HMAC-SHA256 sobre el email normalizado.
type Signer struct {
	secret []byte
}

// NewSigner crea un firmador con el secreto dado. Un secreto vacío es un error de configuración.
func NewSigner(secret string) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("ballot: secret vacío")
	}
	return &Signer{secret: []byte(secret)}, nil
}

// Sign devuelve el token hex para el email.
func (s *Signer) Sign(email string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(normalize(email)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify compara en tiempo constante el token recibido con el esperado.
func (s *Signer) Verify(email, token string) error {
	got, err := hex.DecodeString(strings.TrimSpace(token))
	if err != nil || len(got) != sha256.Size {
		return ErrInvalidToken
	}
	want, _ := hex.DecodeString(s.Sign(email))
	if !hmac.Equal(got, want) {
		return ErrInvalidToken
	}
	return nil
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
