package controller

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/replydesk-backend/internal/app/model"
	"github.com/ikkim/replydesk-backend/internal/app/repository"
	"github.com/ikkim/replydesk-backend/internal/app/service"
	apperrors "github.com/ikkim/replydesk-backend/internal/errors"
	"github.com/ikkim/replydesk-backend/internal/middleware"
)

const maxImportSize = 10 << 20

type ReviewController struct {
	reviewService   service.ReviewService
	businessService service.BusinessService
	importService   service.ReviewImportService
	exportService   service.ReviewExportService
}

func NewReviewController(
	reviewService service.ReviewService,
	businessService service.BusinessService,
	importService service.ReviewImportService,
	exportService service.ReviewExportService,
) *ReviewController {
	return &ReviewController{
		reviewService:   reviewService,
		businessService: businessService,
		importService:   importService,
		exportService:   exportService,
	}
}

type CreateReviewRequest struct {
	ReviewerName string             `json:"reviewer_name" binding:"max=200"`
	Rating       int                `json:"rating" binding:"required,min=1,max=5"`
	Text         string             `json:"text" binding:"required"`
	Source       model.ReviewSource `json:"source" binding:"omitempty,review_source"`
	ReviewDate   *time.Time         `json:"review_date"`
}

// UpdateReviewRequest lists the only fields a user may change.
type UpdateReviewRequest struct {
	ReviewerName *string             `json:"reviewer_name"`
	Text         *string             `json:"text"`
	Rating       *int                `json:"rating" binding:"omitempty,min=1,max=5"`
	Status       *model.ReviewStatus `json:"status" binding:"omitempty,review_status"`
}

type CreateReplyRequest struct {
	Text string         `json:"text" binding:"required"`
	Tone model.ToneType `json:"tone" binding:"omitempty,tone"`
}

// ListReviews
// GET /api/v1/businesses/:id/reviews?status=&sentiment=&page=&page_size=
func (ctrl *ReviewController) ListReviews(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	businessID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	page, pageSize := pagination(c)
	reviews, total, err := ctrl.reviewService.ListReviews(userID, businessID, repository.ReviewFilter{
		Status:    model.ReviewStatus(c.Query("status")),
		Sentiment: model.Sentiment(c.Query("sentiment")),
		Offset:    (page - 1) * pageSize,
		Limit:     pageSize,
	})
	if err != nil {
		respondServiceError(c, err, "list reviews")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      reviews,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// CreateReview
// POST /api/v1/businesses/:id/reviews
func (ctrl *ReviewController) CreateReview(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	businessID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	review, err := ctrl.reviewService.CreateReview(userID, businessID, service.ReviewInput{
		ReviewerName: req.ReviewerName,
		Rating:       req.Rating,
		Text:         req.Text,
		Source:       req.Source,
		ReviewDate:   req.ReviewDate,
	})
	if err != nil {
		respondServiceError(c, err, "create review")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"review": review})
}

// GetReview returns a review with its replies, newest first
// GET /api/v1/reviews/:id
func (ctrl *ReviewController) GetReview(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	review, err := ctrl.reviewService.GetReview(userID, id)
	if err != nil {
		respondServiceError(c, err, "review")
		return
	}

	c.JSON(http.StatusOK, gin.H{"review": review})
}

// UpdateReview
// PATCH /api/v1/reviews/:id
func (ctrl *ReviewController) UpdateReview(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	review, err := ctrl.reviewService.UpdateReview(userID, id, service.ReviewPatch{
		ReviewerName: req.ReviewerName,
		Text:         req.Text,
		Rating:       req.Rating,
		Status:       req.Status,
	})
	if err != nil {
		respondServiceError(c, err, "update review")
		return
	}

	c.JSON(http.StatusOK, gin.H{"review": review})
}

// CreateReply stores a user-authored reply
// POST /api/v1/reviews/:id/replies
func (ctrl *ReviewController) CreateReply(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req CreateReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	reply, err := ctrl.reviewService.AddReply(userID, id, service.ReplyInput{Text: req.Text, Tone: req.Tone})
	if err != nil {
		respondServiceError(c, err, "create reply")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"reply": reply})
}

// ApproveReply
// POST /api/v1/reviews/:id/replies/:replyId/approve
func (ctrl *ReviewController) ApproveReply(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}
	reviewID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	replyID, ok := parseIDParam(c, "replyId")
	if !ok {
		return
	}

	review, err := ctrl.reviewService.ApproveReply(userID, reviewID, replyID)
	if err != nil {
		respondServiceError(c, err, "approve reply")
		return
	}

	log.Info("Reply approved", map[string]interface{}{
		"review_id": reviewID,
		"reply_id":  replyID,
	})
	c.JSON(http.StatusOK, gin.H{"review": review})
}

// GetStats returns the last 30 days of dashboard stats
// GET /api/v1/businesses/:id/stats
func (ctrl *ReviewController) GetStats(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	businessID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	stats, err := ctrl.reviewService.GetStats(userID, businessID)
	if err != nil {
		respondServiceError(c, err, "business stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportReviews
// GET /api/v1/businesses/:id/reviews/export
func (ctrl *ReviewController) ExportReviews(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	businessID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := ctrl.exportService.ExportReviews(c.Request.Context(), userID, businessID)
	if err != nil {
		respondServiceError(c, err, "export reviews")
		return
	}

	if result.DownloadURL != "" {
		c.JSON(http.StatusOK, gin.H{
			"download_url": result.DownloadURL,
			"file_name":    result.FileName,
			"expires_at":   result.ExpiresAt,
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, result.FileName))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

// ImportReviews bulk-imports an xlsx upload (form field "file")
// POST /api/v1/businesses/:id/reviews/import
func (ctrl *ReviewController) ImportReviews(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}
	businessID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	business, err := ctrl.businessService.GetBusiness(userID, businessID)
	if err != nil {
		respondServiceError(c, err, "business")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "An .xlsx file is required in the \"file\" field")
		return
	}
	if fileHeader.Size > maxImportSize {
		apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "File is larger than 10MB")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		apperrors.BadRequest(c, apperrors.ReviewImportFailed, "Could not read upload")
		return
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(file); err != nil {
		apperrors.BadRequest(c, apperrors.ReviewImportFailed, "Could not read upload")
		return
	}

	result, err := ctrl.importService.ImportXLSX(business, &buf)
	if err != nil {
		respondServiceError(c, err, "import reviews")
		return
	}

	log.Info("Reviews imported", map[string]interface{}{
		"business_id": businessID,
		"imported":    result.Imported,
	})
	c.JSON(http.StatusOK, result)
}
