package identity_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/encuestas-api/internal/domain"
	"github.com/jhoicas/encuestas-api/internal/domain/identity"
)

func TestValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"ana@example.com", true},
		{"  Ana.Perez+x@Sub.Example.co ", true},
		{"sin-arroba.com", false},
		{"a@b.c", false},
		{"", false},
		{"a@x", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, identity.ValidEmail(tt.email), tt.email)
	}
}

func TestValidEmail_Longitud(t *testing.T) {
	local := ""
	for len(local) < 115 {
		local += "a"
	}
	assert.False(t, identity.ValidEmail(local+"@ex.com"), "más de 120 caracteres")
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ana@example.com", identity.NormalizeEmail("  ANA@Example.COM "))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, identity.ValidatePassword("Secreta123"))
	for _, p := range []string{"Corta1", "todominuscula1", "TODOMAYUS1", "SinNumeros", "Aa1" + strings.Repeat("x", 80)} {
		err := identity.ValidatePassword(p)
		assert.Error(t, err, p)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	}
}

func TestValidatePassword_LimiteBcrypt(t *testing.T) {
	assert.NoError(t, identity.ValidatePassword("Aa1"+strings.Repeat("x", identity.MaxPasswordBytes-3)))
	assert.Error(t, identity.ValidatePassword("Aa1"+strings.Repeat("x", identity.MaxPasswordBytes-2)))
	// 30 runas de 3 bytes: pocas letras pero más de 72 bytes
	assert.Error(t, identity.ValidatePassword("Aa1"+strings.Repeat("€", 30)))
}

func TestValidateMaxLength(t *testing.T) {
	assert.NoError(t, identity.ValidateMaxLength("name", strings.Repeat("ñ", 100), 100))
	err := identity.ValidateMaxLength("name", strings.Repeat("a", 101), 100)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "name", ve.Field)
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, identity.ValidateName("first_name", "Al"))
	assert.Error(t, identity.ValidateName("first_name", " A "))
}
