package repository

import (
	"github.com/google/uuid"
	"github.com/ikkim/replydesk-backend/internal/app/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ReplyRepository interface {
	Create(reply *model.Reply) error
	ListByReview(reviewID uuid.UUID) ([]model.Reply, error)
}

type replyRepository struct {
	db *gorm.DB
}

func NewReplyRepository(db *gorm.DB) ReplyRepository {
	return &replyRepository{db: db}
}

func (r *replyRepository) Create(reply *model.Reply) error {
	return r.db.Create(reply).Error
}

func (r *replyRepository) ListByReview(reviewID uuid.UUID) ([]model.Reply, error) {
	var replies []model.Reply
	err := r.db.Where("review_id = ?", reviewID).Order("created_at DESC").Find(&replies).Error
	return replies, err
}

func jsonStrings(values []string) datatypes.JSONType[[]string] {
	if values == nil {
		values = []string{}
	}
	return datatypes.NewJSONType(values)
}
