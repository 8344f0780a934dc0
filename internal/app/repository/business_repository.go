package repository

import (
	"github.com/google/uuid"
	"github.com/ikkim/replydesk-backend/internal/app/model"
	"github.com/ikkim/replydesk-backend/pkg/logger"
	"gorm.io/gorm"
)

type BusinessRepository interface {
	Create(business *model.Business) error
	FindByID(id uuid.UUID) (*model.Business, error)
	FindOwnedByID(ownerID, id uuid.UUID) (*model.Business, error)
	ListByOwner(ownerID uuid.UUID) ([]model.Business, error)
	Update(business *model.Business) error
}

type businessRepository struct {
	db *gorm.DB
}

func NewBusinessRepository(db *gorm.DB) BusinessRepository {
	return &businessRepository{db: db}
}

func (r *businessRepository) Create(business *model.Business) error {
	logger.Debug("Creating business in database", map[string]interface{}{
		"owner_user_id": business.OwnerUserID,
		"name":          business.Name,
	})

	if err := r.db.Create(business).Error; err != nil {
		logger.Error("Failed to create business in database", err, map[string]interface{}{
			"owner_user_id": business.OwnerUserID,
		})
		return err
	}
	return nil
}

func (r *businessRepository) FindByID(id uuid.UUID) (*model.Business, error) {
	var business model.Business
	if err := r.db.First(&business, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

// FindOwnedByID returns the business only when ownerID owns it.
func (r *businessRepository) FindOwnedByID(ownerID, id uuid.UUID) (*model.Business, error) {
	var business model.Business
	err := r.db.Where("id = ? AND owner_user_id = ?", id, ownerID).First(&business).Error
	if err != nil {
		logger.Debug("Owned business lookup failed", map[string]interface{}{
			"business_id":   id,
			"owner_user_id": ownerID,
			"error":         err.Error(),
		})
		return nil, err
	}
	return &business, nil
}

func (r *businessRepository) ListByOwner(ownerID uuid.UUID) ([]model.Business, error) {
	var businesses []model.Business
	err := r.db.Where("owner_user_id = ?", ownerID).
		Order("created_at ASC").
		Find(&businesses).Error
	if err != nil {
		logger.Error("Failed to list businesses", err, map[string]interface{}{
			"owner_user_id": ownerID,
		})
		return nil, err
	}
	return businesses, nil
}

func (r *businessRepository) Update(business *model.Business) error {
	if err := r.db.Save(business).Error; err != nil {
		logger.Error("Failed to update business in database", err, map[string]interface{}{
			"business_id": business.ID,
		})
		return err
	}
	return nil
}
