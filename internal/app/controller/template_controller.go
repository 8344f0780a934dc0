package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/replydesk-backend/internal/app/model"
	"github.com/ikkim/replydesk-backend/internal/app/service"
)

type TemplateController struct {
	templateService service.TemplateService
}

func NewTemplateController(templateService service.TemplateService) *TemplateController {
	return &TemplateController{templateService: templateService}
}

type TemplateRequest struct {
	Name         *string         `json:"name" binding:"omitempty,max=100"`
	TemplateText *string         `json:"template_text"`
	Tone         *model.ToneType `json:"tone" binding:"omitempty,tone"`
}

func (r TemplateRequest) input() service.TemplateInput {
	return service.TemplateInput{Name: r.Name, TemplateText: r.TemplateText, Tone: r.Tone}
}

// GET /api/v1/businesses/:id/templates
func (ctrl *TemplateController) ListTemplates(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	businessID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	templates, err := ctrl.templateService.ListTemplates(userID, businessID)
	if err != nil {
		respondServiceError(c, err, "list templates")
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates, "count": len(templates)})
}

// POST /api/v1/businesses/:id/templates
func (ctrl *TemplateController) CreateTemplate(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	businessID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	template, err := ctrl.templateService.CreateTemplate(userID, businessID, req.input())
	if err != nil {
		respondServiceError(c, err, "create template")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"template": template})
}

// PUT /api/v1/templates/:id
func (ctrl *TemplateController) UpdateTemplate(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	template, err := ctrl.templateService.UpdateTemplate(userID, id, req.input())
	if err != nil {
		respondServiceError(c, err, "update template")
		return
	}
	c.JSON(http.StatusOK, gin.H{"template": template})
}

// DELETE /api/v1/templates/:id
func (ctrl *TemplateController) DeleteTemplate(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.templateService.DeleteTemplate(userID, id); err != nil {
		respondServiceError(c, err, "delete template")
		return
	}
	c.Status(http.StatusNoContent)
}
