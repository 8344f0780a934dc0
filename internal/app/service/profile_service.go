package service

import (
	"strings"

	"github.com/google/uuid"
	"github.com/ikkim/replydesk-backend/internal/app/model"
	"github.com/ikkim/replydesk-backend/internal/app/repository"
	"github.com/ikkim/replydesk-backend/pkg/logger"
)

type ProfileUpdate struct {
	Name                *string
	OnboardingCompleted *bool
}

type ProfileService interface {
	GetProfile(userID uuid.UUID, email string) (*model.Profile, error)
	UpdateProfile(userID uuid.UUID, email string, update ProfileUpdate) (*model.Profile, error)
	GetSubscription(userID uuid.UUID, email string) (*model.Subscription, error)
}

type profileService struct {
	profileRepo repository.ProfileRepository
}

func NewProfileService(profileRepo repository.ProfileRepository) ProfileService {
	return &profileService{profileRepo: profileRepo}
}

func (s *profileService) GetProfile(userID uuid.UUID, email string) (*model.Profile, error) {
	profile, err := s.profileRepo.FindOrCreate(userID, email)
	if err != nil {
		logger.Error("Failed to load profile", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return profile, nil
}

func (s *profileService) UpdateProfile(userID uuid.UUID, email string, update ProfileUpdate) (*model.Profile, error) {
	profile, err := s.GetProfile(userID, email)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		profile.Name = optionalString(*update.Name)
	}
	if update.OnboardingCompleted != nil {
		profile.OnboardingCompleted = *update.OnboardingCompleted
	}
	if profile.Email == "" && strings.TrimSpace(email) != "" {
		profile.Email = email
	}

	if err := s.profileRepo.Update(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// GetSubscription returns the latest subscription, or an unsaved trial row for users who never paid.
func (s *profileService) GetSubscription(userID uuid.UUID, email string) (*model.Subscription, error) {
	sub, err := s.profileRepo.FindLatestSubscription(userID)
	if err != nil {
		return nil, err
	}
	if sub != nil {
		return sub, nil
	}

	profile, err := s.GetProfile(userID, email)
	if err != nil {
		return nil, err
	}
	return &model.Subscription{
		UserID:   userID,
		PlanType: profile.PlanType,
		Status:   model.SubscriptionTrialing,
	}, nil
}
