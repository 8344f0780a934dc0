package middleware

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ikkim/replydesk-backend/internal/errors"
	"github.com/ikkim/replydesk-backend/pkg/auth"
)

// Context keys for user information
const (
	UserIDKey    = "user_id"
	UserEmailKey = "user_email"
)

type AuthMiddleware struct {
	verifier auth.TokenVerifier
}

func NewAuthMiddleware(verifier auth.TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
	}
}

// Authenticate validates the bearer token (required) and answers with the dashboard error body.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return m.authenticate(false, rejectDashboard)
}

// AuthenticateWebsocket is Authenticate that also accepts ?token= when no
// Authorization header is present. Browsers cannot set headers on websocket
// upgrades, so only the realtime route should use it.
func (m *AuthMiddleware) AuthenticateWebsocket() gin.HandlerFunc {
	return m.authenticate(true, rejectDashboard)
}

func rejectDashboard(c *gin.Context, err error) {
	switch {
	case err == nil:
		errors.Unauthorized(c, "Sign-in required")
	case stderrors.Is(err, auth.ErrExpiredToken):
		errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenExpired, "Your session has expired")
	default:
		errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Invalid access token")
	}
}

// AuthenticateFunction validates the bearer token and answers with the analysis function envelope.
func (m *AuthMiddleware) AuthenticateFunction() gin.HandlerFunc {
	return m.authenticate(false, func(c *gin.Context, err error) {
		errors.RespondFunctionError(c, errors.FnUnauthorized, "Missing or invalid authorization")
	})
}

// authenticate runs verification and calls reject on failure. reject gets a nil
// error when the token is missing altogether.
func (m *AuthMiddleware) authenticate(allowQueryToken bool, reject func(*gin.Context, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		var token string

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			var ok bool
			token, ok = auth.BearerToken(authHeader)
			if !ok {
				log.Warn("Invalid authorization header format", map[string]interface{}{
					"path": c.Request.URL.Path,
				})
				reject(c, auth.ErrInvalidToken)
				return
			}
		} else {
			if allowQueryToken {
				token = c.Query("token")
			}
			if token == "" {
				log.Warn("Missing authorization header", map[string]interface{}{
					"path": c.Request.URL.Path,
				})
				reject(c, nil)
				return
			}
			log.Debug("Using token from query parameter", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
		}

		identity, err := m.verifier.Verify(c.Request.Context(), token)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			reject(c, err)
			return
		}

		c.Set(UserIDKey, identity.UserID)
		c.Set(UserEmailKey, identity.Email)

		log.Debug("User authenticated successfully", map[string]interface{}{
			"user_id": identity.UserID,
			"email":   identity.Email,
		})

		c.Next()
	}
}

// GetUserID extracts user ID from context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := userID.(uuid.UUID)
	return id, ok
}

// GetUserEmail extracts user email from context
func GetUserEmail(c *gin.Context) (string, bool) {
	email, exists := c.Get(UserEmailKey)
	if !exists {
		return "", false
	}
	s, ok := email.(string)
	return s, ok
}
