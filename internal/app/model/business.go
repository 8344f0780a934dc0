package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Business is a business whose reviews are managed by its owner.
type Business struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OwnerUserID uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_user_id"`
	Name        string    `gorm:"not null" json:"name"`
	Category    string    `gorm:"not null" json:"category"`
	DefaultTone ToneType  `gorm:"type:varchar(20);not null;default:'friendly'" json:"default_tone"`

	// Free-form facts the replies may rely on (parking, specialities, ...).
	Facts datatypes.JSONType[[]string] `gorm:"not null;default:'[]'" json:"facts"`

	RefundPolicy    *string `gorm:"type:text" json:"refund_policy,omitempty"`
	OpeningHours    *string `json:"opening_hours,omitempty"`
	ContactPhone    *string `json:"contact_phone,omitempty"`
	PrimaryLocation *string `json:"primary_location,omitempty"`
}

func (Business) TableName() string {
	return "businesses"
}

func (b *Business) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// FactList returns the facts without empty entries.
func (b *Business) FactList() []string {
	facts := make([]string, 0, len(b.Facts.Data()))
	for _, f := range b.Facts.Data() {
		if f != "" {
			facts = append(facts, f)
		}
	}
	return facts
}

// Context converts the business into the context handed to the prompt builder.
func (b *Business) Context() *BusinessContext {
	ctx := &BusinessContext{
		Name:        b.Name,
		Category:    b.Category,
		DefaultTone: string(b.DefaultTone),
		Facts:       b.FactList(),
	}
	if b.RefundPolicy != nil {
		ctx.RefundPolicy = *b.RefundPolicy
	}
	if b.OpeningHours != nil {
		ctx.OpeningHours = *b.OpeningHours
	}
	return ctx
}
