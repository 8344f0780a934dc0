package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile holds per-user settings. UserID is the auth provider's subject.
type Profile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID              uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Email               string    `json:"email"`
	Name                *string   `json:"name,omitempty"`
	OnboardingCompleted bool      `gorm:"not null;default:false" json:"onboarding_completed"`
	PlanType            PlanType  `gorm:"type:varchar(20);not null;default:'trial'" json:"plan_type"`
	StripeCustomerID    *string   `json:"stripe_customer_id,omitempty"`
}

func (Profile) TableName() string {
	return "profiles"
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Subscription mirrors the billing provider's subscription state.
type Subscription struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID               uuid.UUID          `gorm:"type:uuid;not null;index" json:"user_id"`
	PlanType             PlanType           `gorm:"type:varchar(20);not null" json:"plan_type"`
	Status               SubscriptionStatus `gorm:"type:varchar(20);not null" json:"status"`
	StripeCustomerID     string             `json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID string             `json:"stripe_subscription_id,omitempty"`
	CurrentPeriodEnd     *time.Time         `json:"current_period_end,omitempty"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// UsageMetric counts billable activity of one user in one period.
type UsageMetric struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_usage_user_period" json:"user_id"`
	PeriodStart    time.Time `gorm:"not null;uniqueIndex:idx_usage_user_period" json:"period_start"`
	PeriodEnd      time.Time `gorm:"not null;index" json:"period_end"`
	AICallsUsed    int       `gorm:"not null;default:0" json:"ai_calls_used"`
	ReviewsCreated int       `gorm:"not null;default:0" json:"reviews_created"`
}

func (UsageMetric) TableName() string {
	return "usage_metrics"
}

func (u *UsageMetric) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
