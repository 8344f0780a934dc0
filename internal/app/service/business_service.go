package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ikkim/replydesk-backend/internal/app/model"
	"github.com/ikkim/replydesk-backend/internal/app/repository"
	"github.com/ikkim/replydesk-backend/pkg/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrBusinessNotFound = errors.New("business not found")
	ErrInvalidBusiness  = errors.New("invalid business")
)

// BusinessInput carries the editable business fields. Nil pointers are left unchanged on update.
type BusinessInput struct {
	Name            *string
	Category        *string
	DefaultTone     *model.ToneType
	Facts           *[]string
	RefundPolicy    *string
	OpeningHours    *string
	ContactPhone    *string
	PrimaryLocation *string
}

type BusinessService interface {
	CreateBusiness(ownerID uuid.UUID, input BusinessInput) (*model.Business, error)
	ListBusinesses(ownerID uuid.UUID) ([]model.Business, error)
	GetBusiness(ownerID, id uuid.UUID) (*model.Business, error)
	UpdateBusiness(ownerID, id uuid.UUID, input BusinessInput) (*model.Business, error)
}

type businessService struct {
	businessRepo repository.BusinessRepository
}

func NewBusinessService(businessRepo repository.BusinessRepository) BusinessService {
	return &businessService{businessRepo: businessRepo}
}

func (s *businessService) CreateBusiness(ownerID uuid.UUID, input BusinessInput) (*model.Business, error) {
	business := &model.Business{
		OwnerUserID: ownerID,
		DefaultTone: model.ToneFriendly,
		Facts:       datatypes.NewJSONType([]string{}),
	}
	if err := applyBusinessInput(business, input); err != nil {
		return nil, err
	}
	if business.Name == "" || business.Category == "" {
		return nil, fmt.Errorf("%w: name and category are required", ErrInvalidBusiness)
	}

	if err := s.businessRepo.Create(business); err != nil {
		logger.Error("Failed to create business", err, map[string]interface{}{
			"owner_user_id": ownerID,
		})
		return nil, err
	}

	logger.Info("Business created", map[string]interface{}{
		"business_id":   business.ID,
		"owner_user_id": ownerID,
	})
	return business, nil
}

func (s *businessService) ListBusinesses(ownerID uuid.UUID) ([]model.Business, error) {
	return s.businessRepo.ListByOwner(ownerID)
}

func (s *businessService) GetBusiness(ownerID, id uuid.UUID) (*model.Business, error) {
	business, err := s.businessRepo.FindOwnedByID(ownerID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}
	return business, nil
}

func (s *businessService) UpdateBusiness(ownerID, id uuid.UUID, input BusinessInput) (*model.Business, error) {
	business, err := s.GetBusiness(ownerID, id)
	if err != nil {
		return nil, err
	}

	if err := applyBusinessInput(business, input); err != nil {
		return nil, err
	}
	if business.Name == "" || business.Category == "" {
		return nil, fmt.Errorf("%w: name and category cannot be empty", ErrInvalidBusiness)
	}

	if err := s.businessRepo.Update(business); err != nil {
		logger.Error("Failed to update business", err, map[string]interface{}{
			"business_id": id,
		})
		return nil, err
	}
	return business, nil
}

func applyBusinessInput(b *model.Business, in BusinessInput) error {
	if in.Name != nil {
		b.Name = strings.TrimSpace(*in.Name)
	}
	if in.Category != nil {
		b.Category = strings.TrimSpace(*in.Category)
	}
	if in.DefaultTone != nil {
		if !in.DefaultTone.Valid() {
			return fmt.Errorf("%w: unknown tone %q", ErrInvalidBusiness, *in.DefaultTone)
		}
		b.DefaultTone = *in.DefaultTone
	}
	if in.Facts != nil {
		b.Facts = datatypes.NewJSONType(nonEmpty(*in.Facts))
	}
	if in.RefundPolicy != nil {
		b.RefundPolicy = optionalString(*in.RefundPolicy)
	}
	if in.OpeningHours != nil {
		b.OpeningHours = optionalString(*in.OpeningHours)
	}
	if in.ContactPhone != nil {
		b.ContactPhone = optionalString(*in.ContactPhone)
	}
	if in.PrimaryLocation != nil {
		b.PrimaryLocation = optionalString(*in.PrimaryLocation)
	}
	return nil
}

// optionalString stores blank values as NULL.
func optionalString(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}
