package repository

import (
	"github.com/google/uuid"
	"github.com/ikkim/replydesk-backend/internal/app/model"
	"gorm.io/gorm"
)

type TemplateRepository interface {
	Create(template *model.ReplyTemplate) error
	FindOwnedByID(ownerID, id uuid.UUID) (*model.ReplyTemplate, error)
	ListByBusiness(businessID uuid.UUID) ([]model.ReplyTemplate, error)
	Update(template *model.ReplyTemplate) error
	Delete(id uuid.UUID) error
}

type templateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) Create(template *model.ReplyTemplate) error {
	return r.db.Create(template).Error
}

func (r *templateRepository) FindOwnedByID(ownerID, id uuid.UUID) (*model.ReplyTemplate, error) {
	var template model.ReplyTemplate
	err := r.db.Where("id = ? AND business_id IN (?)", id,
		r.db.Model(&model.Business{}).Select("id").Where("owner_user_id = ?", ownerID)).
		First(&template).Error
	if err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *templateRepository) ListByBusiness(businessID uuid.UUID) ([]model.ReplyTemplate, error) {
	var templates []model.ReplyTemplate
	err := r.db.Where("business_id = ?", businessID).Order("name ASC").Find(&templates).Error
	return templates, err
}

func (r *templateRepository) Update(template *model.ReplyTemplate) error {
	return r.db.Save(template).Error
}

func (r *templateRepository) Delete(id uuid.UUID) error {
	result := r.db.Delete(&model.ReplyTemplate{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
