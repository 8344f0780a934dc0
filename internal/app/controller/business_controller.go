package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/replydesk-backend/internal/app/model"
	"github.com/ikkim/replydesk-backend/internal/app/service"
	"github.com/ikkim/replydesk-backend/internal/middleware"
)

type BusinessController struct {
	businessService service.BusinessService
}

func NewBusinessController(businessService service.BusinessService) *BusinessController {
	return &BusinessController{businessService: businessService}
}

type BusinessRequest struct {
	Name            *string         `json:"name" binding:"omitempty,max=200"`
	Category        *string         `json:"category" binding:"omitempty,max=100"`
	DefaultTone     *model.ToneType `json:"default_tone" binding:"omitempty,tone"`
	Facts           *[]string       `json:"facts" binding:"omitempty,max=50"`
	RefundPolicy    *string         `json:"refund_policy"`
	OpeningHours    *string         `json:"opening_hours"`
	ContactPhone    *string         `json:"contact_phone"`
	PrimaryLocation *string         `json:"primary_location"`
}

func (r BusinessRequest) input() service.BusinessInput {
	return service.BusinessInput{
		Name:            r.Name,
		Category:        r.Category,
		DefaultTone:     r.DefaultTone,
		Facts:           r.Facts,
		RefundPolicy:    r.RefundPolicy,
		OpeningHours:    r.OpeningHours,
		ContactPhone:    r.ContactPhone,
		PrimaryLocation: r.PrimaryLocation,
	}
}

// ListBusinesses returns the caller's businesses
// GET /api/v1/businesses
func (ctrl *BusinessController) ListBusinesses(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	businesses, err := ctrl.businessService.ListBusinesses(userID)
	if err != nil {
		respondServiceError(c, err, "list businesses")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"businesses": businesses,
		"count":      len(businesses),
	})
}

// CreateBusiness creates a business owned by the caller
// POST /api/v1/businesses
func (ctrl *BusinessController) CreateBusiness(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req BusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	business, err := ctrl.businessService.CreateBusiness(userID, req.input())
	if err != nil {
		respondServiceError(c, err, "create business")
		return
	}

	log.Info("Business created", map[string]interface{}{
		"business_id": business.ID,
	})
	c.JSON(http.StatusCreated, gin.H{"business": business})
}

// GetBusiness
// GET /api/v1/businesses/:id
func (ctrl *BusinessController) GetBusiness(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	business, err := ctrl.businessService.GetBusiness(userID, id)
	if err != nil {
		respondServiceError(c, err, "business")
		return
	}

	c.JSON(http.StatusOK, gin.H{"business": business})
}

// UpdateBusiness
// PUT /api/v1/businesses/:id
func (ctrl *BusinessController) UpdateBusiness(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req BusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	business, err := ctrl.businessService.UpdateBusiness(userID, id, req.input())
	if err != nil {
		respondServiceError(c, err, "update business")
		return
	}

	c.JSON(http.StatusOK, gin.H{"business": business})
}
