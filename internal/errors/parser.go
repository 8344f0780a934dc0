package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a code plus a user facing message
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError maps storage errors to client codes without leaking driver details.
// context names the operation, e.g. "create business" or "review".
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "Something went wrong",
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	// 1. gorm sentinel errors
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    notFoundCode(context),
			Message: getNotFoundMessage(context),
		}
	}

	// 2. constraint violations (postgres and sqlite wording)

	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "This record already exists",
		}
	}

	if strings.Contains(errStrLower, "foreign key constraint") {
		if strings.Contains(errStrLower, "still referenced") {
			return ErrorInfo{Code: ResourceConflict, Message: "Other records still depend on this one"}
		}
		return ErrorInfo{Code: ResourceNotFound, Message: "A referenced record does not exist"}
	}

	if strings.Contains(errStrLower, "not-null constraint") || strings.Contains(errStrLower, "not null constraint") {
		return ErrorInfo{Code: ValidationRequired, Message: "A required field is missing"}
	}

	if strings.Contains(errStrLower, "check constraint") {
		if strings.Contains(errStrLower, "rating") {
			return ErrorInfo{Code: ReviewInvalidRating, Message: "Rating must be between 1 and 5"}
		}
		return ErrorInfo{Code: ValidationInvalidInput, Message: "Some fields are invalid"}
	}

	// 3. connectivity
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "An upstream service is unavailable. Please try again shortly",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

func notFoundCode(context string) string {
	contextLower := strings.ToLower(context)
	switch {
	case strings.Contains(contextLower, "business"):
		return BusinessNotFound
	case strings.Contains(contextLower, "template"):
		return TemplateNotFound
	case strings.Contains(contextLower, "reply"):
		return ReplyNotFound
	case strings.Contains(contextLower, "review"):
		return ReviewNotFound
	}
	return ResourceNotFound
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "business"):
		return "Business not found"
	case strings.Contains(contextLower, "template"):
		return "Template not found"
	case strings.Contains(contextLower, "reply"):
		return "Reply not found"
	case strings.Contains(contextLower, "review"):
		return "Review not found"
	case strings.Contains(contextLower, "profile"):
		return "Profile not found"
	}
	return "The requested record was not found"
}

func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "create"):
		return "Could not save. Please try again shortly"
	case strings.Contains(contextLower, "update"):
		return "Could not update. Please try again shortly"
	case strings.Contains(contextLower, "delete"):
		return "Could not delete. Please try again shortly"
	}
	return "Something went wrong. Please try again shortly"
}

// ParseAndRespond parses err and writes it with the given status.
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}
