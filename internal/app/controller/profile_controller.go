package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/replydesk-backend/internal/app/service"
	"github.com/ikkim/replydesk-backend/internal/middleware"
)

type ProfileController struct {
	profileService service.ProfileService
	quotaService   service.QuotaService
}

func NewProfileController(profileService service.ProfileService, quotaService service.QuotaService) *ProfileController {
	return &ProfileController{
		profileService: profileService,
		quotaService:   quotaService,
	}
}

type UpdateProfileRequest struct {
	Name                *string `json:"name" binding:"omitempty,max=100"`
	OnboardingCompleted *bool   `json:"onboarding_completed"`
}

// GetProfile returns the caller's profile, creating it on first access
// GET /api/v1/profile
func (ctrl *ProfileController) GetProfile(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	email, _ := middleware.GetUserEmail(c)

	profile, err := ctrl.profileService.GetProfile(userID, email)
	if err != nil {
		respondServiceError(c, err, "profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// PUT /api/v1/profile
func (ctrl *ProfileController) UpdateProfile(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	email, _ := middleware.GetUserEmail(c)

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	profile, err := ctrl.profileService.UpdateProfile(userID, email, service.ProfileUpdate{
		Name:                req.Name,
		OnboardingCompleted: req.OnboardingCompleted,
	})
	if err != nil {
		respondServiceError(c, err, "update profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// GET /api/v1/subscription
func (ctrl *ProfileController) GetSubscription(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	email, _ := middleware.GetUserEmail(c)

	sub, err := ctrl.profileService.GetSubscription(userID, email)
	if err != nil {
		respondServiceError(c, err, "subscription")
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscription": sub})
}

// GetUsage returns today's AI call usage
// GET /api/v1/usage
func (ctrl *ProfileController) GetUsage(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	usage, err := ctrl.quotaService.Usage(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "usage")
		return
	}
	c.JSON(http.StatusOK, usage)
}
