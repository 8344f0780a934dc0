package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the standard error body
type ErrorResponse struct {
	Error   string `json:"error"`   // error code the client maps on
	Message string `json:"message"` // human readable message
}

// RespondWithError writes an error body and aborts the handler chain.
// errorCode is one of the constants in codes.go.
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}

// Shorthands for common responses

func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Sign-in required"
	}
	RespondWithError(c, http.StatusUnauthorized, AuthUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "You do not have access to this resource"
	}
	RespondWithError(c, http.StatusForbidden, AuthzForbidden, message)
}

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

func NotFound(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusNotFound, errorCode, message)
}

func Conflict(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusConflict, errorCode, message)
}

func TooManyRequests(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusTooManyRequests, errorCode, message)
}

func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Something went wrong. Please try again shortly"
	}
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, message)
}

// ValidationError carries per-field messages
type ValidationError struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func RespondWithValidationError(c *gin.Context, fields map[string]string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ValidationError{
		Error:   ValidationInvalidInput,
		Message: "Some fields are invalid",
		Fields:  fields,
	})
}

// FunctionErrorResponse is the error envelope of the analysis function.
type FunctionErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

var functionStatus = map[string]int{
	FnConfigMissing:   http.StatusInternalServerError,
	FnValidationError: http.StatusBadRequest,
	FnUnauthorized:    http.StatusUnauthorized,
	FnQuotaExceeded:   http.StatusTooManyRequests,
	FnRateLimited:     http.StatusTooManyRequests,
	FnPaymentRequired: http.StatusPaymentRequired,
	FnUpstreamError:   http.StatusInternalServerError,
	FnParseError:      http.StatusInternalServerError,
	FnTimeout:         http.StatusGatewayTimeout,
}

// FunctionStatus returns the HTTP status for an analysis function code.
func FunctionStatus(code string) int {
	if status, ok := functionStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// RespondFunctionError writes the analysis function error envelope.
func RespondFunctionError(c *gin.Context, code string, message string) {
	c.AbortWithStatusJSON(FunctionStatus(code), FunctionErrorResponse{
		Success: false,
		Error:   code,
		Message: message,
	})
}
