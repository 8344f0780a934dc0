package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ikkim/replydesk-backend/internal/app/model"
	"github.com/ikkim/replydesk-backend/internal/app/repository"
	"github.com/ikkim/replydesk-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrInvalidTemplate  = errors.New("invalid template")
)

type TemplateInput struct {
	Name         *string
	TemplateText *string
	Tone         *model.ToneType
}

type TemplateService interface {
	ListTemplates(ownerID, businessID uuid.UUID) ([]model.ReplyTemplate, error)
	CreateTemplate(ownerID, businessID uuid.UUID, input TemplateInput) (*model.ReplyTemplate, error)
	UpdateTemplate(ownerID, id uuid.UUID, input TemplateInput) (*model.ReplyTemplate, error)
	DeleteTemplate(ownerID, id uuid.UUID) error
}

type templateService struct {
	templateRepo    repository.TemplateRepository
	businessService BusinessService
}

func NewTemplateService(templateRepo repository.TemplateRepository, businessService BusinessService) TemplateService {
	return &templateService{
		templateRepo:    templateRepo,
		businessService: businessService,
	}
}

func (s *templateService) ListTemplates(ownerID, businessID uuid.UUID) ([]model.ReplyTemplate, error) {
	if _, err := s.businessService.GetBusiness(ownerID, businessID); err != nil {
		return nil, err
	}
	return s.templateRepo.ListByBusiness(businessID)
}

func (s *templateService) CreateTemplate(ownerID, businessID uuid.UUID, input TemplateInput) (*model.ReplyTemplate, error) {
	if _, err := s.businessService.GetBusiness(ownerID, businessID); err != nil {
		return nil, err
	}

	template := &model.ReplyTemplate{
		BusinessID: businessID,
		Tone:       model.ToneFriendly,
	}
	if err := applyTemplateInput(template, input); err != nil {
		return nil, err
	}

	if err := s.templateRepo.Create(template); err != nil {
		logger.Error("Failed to create template", err, map[string]interface{}{
			"business_id": businessID,
		})
		return nil, err
	}
	return template, nil
}

func (s *templateService) UpdateTemplate(ownerID, id uuid.UUID, input TemplateInput) (*model.ReplyTemplate, error) {
	template, err := s.findOwned(ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := applyTemplateInput(template, input); err != nil {
		return nil, err
	}
	if err := s.templateRepo.Update(template); err != nil {
		return nil, err
	}
	return template, nil
}

func (s *templateService) DeleteTemplate(ownerID, id uuid.UUID) error {
	if _, err := s.findOwned(ownerID, id); err != nil {
		return err
	}
	if err := s.templateRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTemplateNotFound
		}
		return err
	}
	return nil
}

func (s *templateService) findOwned(ownerID, id uuid.UUID) (*model.ReplyTemplate, error) {
	template, err := s.templateRepo.FindOwnedByID(ownerID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return template, nil
}

func applyTemplateInput(t *model.ReplyTemplate, in TemplateInput) error {
	if in.Name != nil {
		t.Name = strings.TrimSpace(*in.Name)
	}
	if in.TemplateText != nil {
		t.TemplateText = strings.TrimSpace(*in.TemplateText)
	}
	if in.Tone != nil {
		if !in.Tone.Valid() {
			return fmt.Errorf("%w: unknown tone %q", ErrInvalidTemplate, *in.Tone)
		}
		t.Tone = *in.Tone
	}
	if t.Name == "" || t.TemplateText == "" {
		return fmt.Errorf("%w: name and template_text are required", ErrInvalidTemplate)
	}
	return nil
}
