package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/ikkim/replydesk-backend/internal/app/service"
	apperrors "github.com/ikkim/replydesk-backend/internal/errors"
	"github.com/ikkim/replydesk-backend/internal/middleware"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// requireUser returns the authenticated user or writes 401.
func requireUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Sign-in required")
		return uuid.Nil, false
	}
	return userID, true
}

// parseIDParam reads a uuid path parameter or writes 400.
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// respondBindError reports field-level validation failures, or a generic bad request.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = "failed on " + fe.Tag()
		}
		apperrors.RespondWithValidationError(c, fields)
		return
	}
	apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Request body is not valid JSON")
}

// pagination reads page/page_size query values, clamped to sane bounds.
func pagination(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	return page, pageSize
}

// respondServiceError maps service sentinel errors to dashboard error codes.
func respondServiceError(c *gin.Context, err error, context string) {
	log := middleware.GetLoggerFromContext(c)

	switch {
	case errors.Is(err, service.ErrBusinessNotFound):
		apperrors.NotFound(c, apperrors.BusinessNotFound, "Business not found")
	case errors.Is(err, service.ErrReviewNotFound):
		apperrors.NotFound(c, apperrors.ReviewNotFound, "Review not found")
	case errors.Is(err, service.ErrReplyNotFound):
		apperrors.NotFound(c, apperrors.ReplyNotFound, "Reply not found")
	case errors.Is(err, service.ErrTemplateNotFound):
		apperrors.NotFound(c, apperrors.TemplateNotFound, "Template not found")
	case errors.Is(err, service.ErrInvalidStatusTransition):
		apperrors.Conflict(c, apperrors.ReviewInvalidTransition, err.Error())
	case errors.Is(err, service.ErrImportFailed):
		apperrors.BadRequest(c, apperrors.ReviewImportFailed, err.Error())
	case errors.Is(err, service.ErrInvalidBusiness),
		errors.Is(err, service.ErrInvalidReview),
		errors.Is(err, service.ErrInvalidReply),
		errors.Is(err, service.ErrInvalidTemplate):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
	default:
		log.Error("Request failed", err, map[string]interface{}{
			"operation": context,
		})
		info := apperrors.ParseError(err, context)
		apperrors.RespondWithError(c, http.StatusInternalServerError, info.Code, info.Message)
	}
}
