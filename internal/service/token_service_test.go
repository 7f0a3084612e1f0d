package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

func signToken(t *testing.T, secret string, method jwt.SigningMethod, claims models.JWTClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims() models.JWTClaims {
	return models.JWTClaims{
		UserID: "u1",
		Role:   models.RoleCoordinator,
		Email:  "coordinator@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestValidateToken(t *testing.T) {
	svc := NewTokenService("secret")

	claims, err := svc.ValidateToken(signToken(t, "secret", jwt.SigningMethodHS256, validClaims()))
	require.NoError(t, err)

	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleCoordinator, claims.Role)
}

func TestValidateTokenRejects(t *testing.T) {
	svc := NewTokenService("secret")

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	noRole := validClaims()
	noRole.Role = ""

	tests := map[string]string{
		"wrong secret":    signToken(t, "other", jwt.SigningMethodHS256, validClaims()),
		"wrong algorithm": signToken(t, "secret", jwt.SigningMethodHS512, validClaims()),
		"expired":         signToken(t, "secret", jwt.SigningMethodHS256, expired),
		"missing role":    signToken(t, "secret", jwt.SigningMethodHS256, noRole),
		"not a token":     "abc.def",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			assert.Error(t, err)
		})
	}
}
