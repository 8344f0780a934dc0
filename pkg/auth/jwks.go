package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/ikkim/replydesk-backend/pkg/logger"
)

// JWKSVerifier checks asymmetric tokens against the provider's published key set.
// Keys are refreshed in the background until Close is called.
type JWKSVerifier struct {
	jwks *keyfunc.JWKS
}

func NewJWKSVerifier(ctx context.Context, jwksURL string) (*JWKSVerifier, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			logger.Error("Failed to refresh JWKS", err, map[string]interface{}{
				"url": jwksURL,
			})
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load JWKS: %w", err)
	}
	return &JWKSVerifier{jwks: jwks}, nil
}

func (v *JWKSVerifier) Verify(_ context.Context, tokenString string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, v.jwks.Keyfunc)
	if err != nil {
		return nil, mapParseError(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return identityFromClaims(claims)
}

// Close stops the background refresh.
func (v *JWKSVerifier) Close() {
	v.jwks.EndBackground()
}
