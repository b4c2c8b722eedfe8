package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelterwood/mnemo/internal/auth"
	"github.com/shelterwood/mnemo/internal/config"
)

const testSecret = "test-secret-key-at-least-32-characters-long"

func signToken(t *testing.T, secret string, userID uuid.UUID, issuedAt, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"uid": userID.String(),
		"sub": userID.String(),
		"iat": jwt.NewNumericDate(issuedAt),
		"exp": jwt.NewNumericDate(expiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestNewTokenVerifierRejectsShortSecret(t *testing.T) {
	t.Parallel()

	_, err := auth.NewTokenVerifier(config.AuthConfig{JWTSecret: "too-short"})
	assert.Error(t, err)
}

func TestVerifyToken(t *testing.T) {
	verifier, err := auth.NewTokenVerifier(config.AuthConfig{JWTSecret: testSecret})
	require.NoError(t, err)

	userID := uuid.New()
	ctx := context.Background()
	now := time.Now()

	t.Run("valid token", func(t *testing.T) {
		tokenString := signToken(t, testSecret, userID, now, now.Add(time.Hour))

		claims, err := verifier.VerifyToken(ctx, tokenString)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, userID.String(), claims.Subject)
	})

	t.Run("expired token", func(t *testing.T) {
		tokenString := signToken(t, testSecret, userID, now.Add(-2*time.Hour), now.Add(-time.Hour))

		_, err := verifier.VerifyToken(ctx, tokenString)
		assert.ErrorIs(t, err, auth.ErrExpiredToken)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		tokenString := signToken(t, "another-secret-key-that-is-32-chars!", userID, now, now.Add(time.Hour))

		_, err := verifier.VerifyToken(ctx, tokenString)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("malformed token", func(t *testing.T) {
		_, err := verifier.VerifyToken(ctx, "not.a.jwt")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := verifier.VerifyToken(ctx, "")
		assert.ErrorIs(t, err, auth.ErrMissingToken)
	})
}
