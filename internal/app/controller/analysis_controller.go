package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/replydesk-backend/internal/app/model"
	"github.com/ikkim/replydesk-backend/internal/app/service"
	apperrors "github.com/ikkim/replydesk-backend/internal/errors"
	"github.com/ikkim/replydesk-backend/internal/middleware"
	"github.com/ikkim/replydesk-backend/pkg/llm"
)

type AnalysisController struct {
	analysisService service.AnalysisService
}

func NewAnalysisController(analysisService service.AnalysisService) *AnalysisController {
	return &AnalysisController{analysisService: analysisService}
}

// AnalyzeReview runs the analysis pipeline for one review.
// POST /functions/v1/analyze-review
func (ctrl *AnalysisController) AnalyzeReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.RespondFunctionError(c, apperrors.FnUnauthorized, "Missing or invalid authorization")
		return
	}

	var req model.AnalyzeReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid analyze-review body", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.RespondFunctionError(c, apperrors.FnValidationError, "Request body must be a JSON object with reviewText")
		return
	}

	result, err := ctrl.analysisService.Analyze(c.Request.Context(), userID, &req)
	if err != nil {
		code, message := functionError(err)
		log.Warn("Review analysis failed", map[string]interface{}{
			"user_id": userID,
			"code":    code,
			"error":   err.Error(),
		})
		apperrors.RespondFunctionError(c, code, message)
		return
	}

	if result.Persist.Status == service.PersistFailed {
		log.Warn("Analysis returned without persisting", map[string]interface{}{
			"review_id": req.ReviewID,
		})
	}

	c.JSON(http.StatusOK, result.Response)
}

// functionError maps pipeline errors to the function's error vocabulary.
func functionError(err error) (code, message string) {
	switch {
	case errors.Is(err, service.ErrAnalysisNotConfigured), errors.Is(err, llm.ErrNotConfigured):
		return apperrors.FnConfigMissing, "AI provider is not configured"
	case errors.Is(err, service.ErrInvalidAnalysisRequest):
		return apperrors.FnValidationError, err.Error()
	case errors.Is(err, service.ErrQuotaExceeded):
		return apperrors.FnQuotaExceeded, "Daily AI usage limit reached. Please try again tomorrow."
	case errors.Is(err, llm.ErrRateLimited):
		return apperrors.FnRateLimited, "Rate limit exceeded. Please try again in a moment."
	case errors.Is(err, llm.ErrPaymentRequired):
		return apperrors.FnPaymentRequired, "AI credits exhausted. Please add credits to continue."
	case errors.Is(err, llm.ErrTimeout):
		return apperrors.FnTimeout, "The AI provider took too long to respond."
	case errors.Is(err, service.ErrParse):
		return apperrors.FnParseError, "Failed to parse AI response"
	default:
		return apperrors.FnUpstreamError, "AI analysis failed"
	}
}
