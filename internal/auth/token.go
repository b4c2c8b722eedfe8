// Package auth resolves user identity from bearer tokens. Token issuance
// is owned by the identity service; this package only verifies.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/shelterwood/mnemo/internal/config"
	"github.com/shelterwood/mnemo/internal/platform/logger"
)

var (
	// ErrInvalidToken indicates the token format is invalid or the signature doesn't match.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrMissingToken indicates a token was expected but not provided.
	ErrMissingToken = errors.New("authentication token is missing")
)

// Claims carries the verified identity extracted from a token.
type Claims struct {
	UserID    uuid.UUID
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenVerifier validates bearer tokens and extracts the caller's identity.
type TokenVerifier interface {
	// VerifyToken validates the token string and returns its claims, or an
	// error (ErrInvalidToken, ErrExpiredToken) if validation fails.
	VerifyToken(ctx context.Context, tokenString string) (*Claims, error)
}

type tokenClaims struct {
	UserID uuid.UUID `json:"uid"`
	jwt.RegisteredClaims
}

// hmacVerifier validates HMAC-SHA256 signed tokens issued by the identity
// service with a shared secret.
type hmacVerifier struct {
	signingKey []byte
	clockSkew  time.Duration
	timeFunc   func() time.Time
}

var _ TokenVerifier = (*hmacVerifier)(nil)

// NewTokenVerifier creates a TokenVerifier from the auth configuration.
func NewTokenVerifier(cfg config.AuthConfig) (TokenVerifier, error) {
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 characters")
	}
	return &hmacVerifier{
		signingKey: []byte(cfg.JWTSecret),
		clockSkew:  2 * time.Minute,
		timeFunc:   time.Now,
	}, nil
}

func (v *hmacVerifier) VerifyToken(ctx context.Context, tokenString string) (*Claims, error) {
	log := logger.FromContextOrDefault(ctx, nil)

	if tokenString == "" {
		return nil, ErrMissingToken
	}

	now := v.timeFunc()
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(v.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&tokenClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return v.signingKey, nil
		},
		parserOpts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			log.Debug("token validation failed: token expired", "error", err)
			return nil, ErrExpiredToken
		}
		log.Debug("token validation failed", "error", err, "error_type", fmt.Sprintf("%T", err))
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		log.Debug("token validation failed: invalid claims")
		return nil, ErrInvalidToken
	}

	out := &Claims{
		UserID:  claims.UserID,
		Subject: claims.Subject,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
