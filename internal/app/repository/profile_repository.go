package repository

import (
	"errors"

	"github.com/google/uuid"
	"github.com/ikkim/replydesk-backend/internal/app/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository interface {
	FindOrCreate(userID uuid.UUID, email string) (*model.Profile, error)
	Update(profile *model.Profile) error
	FindLatestSubscription(userID uuid.UUID) (*model.Subscription, error)
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// FindOrCreate returns the caller's profile, creating it on first access.
func (r *profileRepository) FindOrCreate(userID uuid.UUID, email string) (*model.Profile, error) {
	if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.Profile{
		UserID: userID,
		Email:  email,
	}).Error; err != nil {
		return nil, err
	}

	var profile model.Profile
	if err := r.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) Update(profile *model.Profile) error {
	return r.db.Save(profile).Error
}

// FindLatestSubscription returns nil without error when the user never subscribed.
func (r *profileRepository) FindLatestSubscription(userID uuid.UUID) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}
