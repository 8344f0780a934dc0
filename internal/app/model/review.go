package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Review is a customer review of a business. The analysis fields are
// derived and only written by the analysis pipeline.
type Review struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	BusinessID   uuid.UUID    `gorm:"type:uuid;not null;index" json:"business_id"`
	ReviewerName string       `gorm:"not null" json:"reviewer_name"`
	Rating       int          `gorm:"not null" json:"rating"`
	Text         string       `gorm:"type:text;not null" json:"text"`
	Source       ReviewSource `gorm:"type:varchar(20);not null;default:'manual'" json:"source"`
	Status       ReviewStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ReviewDate   time.Time    `gorm:"not null;index" json:"review_date"`

	// Derived analysis
	Sentiment           *Sentiment                   `gorm:"type:varchar(20);index" json:"sentiment,omitempty"`
	AnalysisUrgency     *UrgencyLevel                `gorm:"type:varchar(20)" json:"analysis_urgency,omitempty"`
	AnalysisCategory    *string                      `json:"analysis_category,omitempty"`
	AnalysisSummary     *string                      `gorm:"type:text" json:"analysis_summary,omitempty"`
	MissingInfoRequired bool                         `gorm:"not null;default:false" json:"missing_info_required"`
	MissingInfoFields   datatypes.JSONType[[]string] `gorm:"not null;default:'[]'" json:"missing_info_fields"`

	RepliedAt       *time.Time `json:"replied_at,omitempty"`
	ApprovedReplyID *uuid.UUID `gorm:"type:uuid" json:"approved_reply_id,omitempty"`

	Replies []Reply `gorm:"foreignKey:ReviewID" json:"replies,omitempty"`
}

func (Review) TableName() string {
	return "reviews"
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.ReviewDate.IsZero() {
		r.ReviewDate = time.Now().UTC()
	}
	return nil
}

// Reply is a reply draft or a user-authored reply to a review.
type Reply struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ReviewID   uuid.UUID    `gorm:"type:uuid;not null;index" json:"review_id"`
	Text       string       `gorm:"type:text;not null" json:"text"`
	Tone       ToneType     `gorm:"type:varchar(20);not null" json:"tone"`
	IsApproved bool         `gorm:"not null;default:false" json:"is_approved"`
	CreatedBy  ReplyCreator `gorm:"type:varchar(20);not null;default:'user'" json:"created_by"`
}

func (Reply) TableName() string {
	return "replies"
}

func (r *Reply) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ReplyTemplate is a reusable reply text saved per business.
type ReplyTemplate struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	BusinessID   uuid.UUID `gorm:"type:uuid;not null;index" json:"business_id"`
	Name         string    `gorm:"not null" json:"name"`
	TemplateText string    `gorm:"type:text;not null" json:"template_text"`
	Tone         ToneType  `gorm:"type:varchar(20);not null;default:'friendly'" json:"tone"`
}

func (ReplyTemplate) TableName() string {
	return "reply_templates"
}

func (t *ReplyTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
