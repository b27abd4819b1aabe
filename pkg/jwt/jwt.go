package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles de identidad. Admins y participantes viven en tablas distintas, por eso el
// token declara a qué espacio pertenece su subject.
const (
	RoleAdmin       = "admin"
	RoleParticipant = "participant"
)

// ErrRoleAudience el claim aud no corresponde al rol declarado.
var ErrRoleAudience = errors.New("jwt: audience no corresponde al rol")

// Claims incluye los claims estándar JWT más el rol.
// Subject = ID del usuario en la tabla de su rol; Audience = AudienceFor(Role).
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// AudienceFor devuelve el audience que debe acompañar a cada rol.
func AudienceFor(role string) string {
	switch role {
	case RoleAdmin:
		return "encuestas:admin"
	case RoleParticipant:
		return "encuestas:participant"
	default:
		return ""
	}
}

// Generate genera un token JWT firmado para subject con el rol indicado.
func Generate(secret, subject, role, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		Role: role,
	}
	if aud := AudienceFor(role); aud != "" {
		claims.Audience = jwt.ClaimStrings{aud}
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida firma, expiración y la coherencia rol/audience, y devuelve los claims.
func Parse(secret, tokenString string) (*Claims, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("claims inválidos")
	}
	if claims.Role != "" {
		expected := AudienceFor(claims.Role)
		if expected == "" || !containsAudience(claims.Audience, expected) {
			return nil, ErrRoleAudience
		}
	}
	return claims, nil
}

func containsAudience(aud jwt.ClaimStrings, expected string) bool {
	for _, a := range aud {
		if a == expected {
			return true
		}
	}
	return false
}
