// Package auth verifies access tokens issued by the external auth provider.
// Sessions are never issued here.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/ikkim/replydesk-backend/config"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims are the fields read from a provider access token. Subject holds the user id.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

// TokenVerifier validates a bearer token and returns the caller's identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// NewVerifier builds the verifier selected by cfg.Mode.
func NewVerifier(ctx context.Context, cfg config.AuthConfig) (TokenVerifier, error) {
	switch cfg.Mode {
	case config.AuthModeSecret:
		return NewHMACVerifier(cfg.JWTSecret), nil
	case config.AuthModeJWKS:
		return NewJWKSVerifier(ctx, cfg.JWKSURL)
	case config.AuthModeRemote:
		return NewRemoteVerifier(cfg.SupabaseURL, cfg.SupabaseAnonKey)
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Mode)
	}
}

// identityFromClaims converts verified claims into an Identity.
func identityFromClaims(claims *Claims) (*Identity, error) {
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: subject is not a user id", ErrInvalidToken)
	}
	return &Identity{UserID: userID, Email: claims.Email}, nil
}

// mapParseError folds jwt parse errors into the package sentinels.
func mapParseError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return ErrExpiredToken
	}
	return fmt.Errorf("%w: %v", ErrInvalidToken, err)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header value.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
