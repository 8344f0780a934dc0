package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/ikkim/replydesk-backend/internal/app/model"
	"github.com/ikkim/replydesk-backend/pkg/logger"
	"gorm.io/gorm"
)

// ReviewFilter narrows a review listing
type ReviewFilter struct {
	Status    model.ReviewStatus
	Sentiment model.Sentiment
	Offset    int
	Limit     int
}

// AnalysisUpdate is the set of derived fields written by the analysis pipeline.
type AnalysisUpdate struct {
	Sentiment           model.Sentiment
	Urgency             model.UrgencyLevel
	Category            string
	Summary             string
	MissingInfoRequired bool
	MissingInfoFields   []string
}

type ReviewRepository interface {
	Create(review *model.Review) error
	CreateBatch(reviews []model.Review, batchSize int) error
	FindOwnedByID(ownerID, id uuid.UUID) (*model.Review, error)
	FindOwnedByIDWithReplies(ownerID, id uuid.UUID) (*model.Review, error)
	List(businessID uuid.UUID, filter ReviewFilter) ([]model.Review, int64, error)
	ListSince(businessID uuid.UUID, since time.Time) ([]model.Review, error)
	UpdateFields(id uuid.UUID, fields map[string]interface{}) error
	SaveAnalysis(reviewID uuid.UUID, analysis *AnalysisUpdate, drafts []model.Reply) error
	ApproveReply(reviewID, replyID uuid.UUID, at time.Time) error
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// ownedBy restricts a review query to businesses owned by ownerID.
func (r *reviewRepository) ownedBy(ownerID uuid.UUID) *gorm.DB {
	return r.db.Where("business_id IN (?)",
		r.db.Model(&model.Business{}).Select("id").Where("owner_user_id = ?", ownerID))
}

func (r *reviewRepository) Create(review *model.Review) error {
	logger.Debug("Creating review in database", map[string]interface{}{
		"business_id": review.BusinessID,
	})

	if err := r.db.Create(review).Error; err != nil {
		logger.Error("Failed to create review in database", err, map[string]interface{}{
			"business_id": review.BusinessID,
		})
		return err
	}
	return nil
}

func (r *reviewRepository) CreateBatch(reviews []model.Review, batchSize int) error {
	if len(reviews) == 0 {
		return nil
	}
	if err := r.db.CreateInBatches(reviews, batchSize).Error; err != nil {
		logger.Error("Failed to bulk insert reviews", err, map[string]interface{}{
			"count": len(reviews),
		})
		return err
	}
	return nil
}

func (r *reviewRepository) FindOwnedByID(ownerID, id uuid.UUID) (*model.Review, error) {
	var review model.Review
	if err := r.ownedBy(ownerID).Where("id = ?", id).First(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) FindOwnedByIDWithReplies(ownerID, id uuid.UUID) (*model.Review, error) {
	var review model.Review
	err := r.ownedBy(ownerID).
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Where("id = ?", id).
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) List(businessID uuid.UUID, filter ReviewFilter) ([]model.Review, int64, error) {
	var reviews []model.Review
	var total int64

	query := r.db.Model(&model.Review{}).Where("business_id = ?", businessID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Sentiment != "" {
		query = query.Where("sentiment = ?", filter.Sentiment)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	err := query.
		Order("review_date DESC").
		Offset(filter.Offset).
		Find(&reviews).Error
	if err != nil {
		logger.Error("Failed to list reviews", err, map[string]interface{}{
			"business_id": businessID,
		})
		return nil, 0, err
	}

	return reviews, total, nil
}

// ListSince returns reviews dated at or after since, newest first.
func (r *reviewRepository) ListSince(businessID uuid.UUID, since time.Time) ([]model.Review, error) {
	var reviews []model.Review
	err := r.db.Where("business_id = ? AND review_date >= ?", businessID, since).
		Order("review_date DESC").
		Find(&reviews).Error
	return reviews, err
}

func (r *reviewRepository) UpdateFields(id uuid.UUID, fields map[string]interface{}) error {
	result := r.db.Model(&model.Review{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		logger.Error("Failed to update review", result.Error, map[string]interface{}{
			"review_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SaveAnalysis writes derived fields and inserts AI drafts in one transaction.
// A nil analysis leaves the review's derived fields untouched.
func (r *reviewRepository) SaveAnalysis(reviewID uuid.UUID, analysis *AnalysisUpdate, drafts []model.Reply) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if analysis != nil {
			fields := map[string]interface{}{
				"sentiment":             analysis.Sentiment,
				"analysis_urgency":      analysis.Urgency,
				"analysis_category":     analysis.Category,
				"analysis_summary":      analysis.Summary,
				"missing_info_required": analysis.MissingInfoRequired,
				"missing_info_fields":   jsonStrings(analysis.MissingInfoFields),
			}
			result := tx.Model(&model.Review{}).Where("id = ?", reviewID).Updates(fields)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}

		for i := range drafts {
			drafts[i].ReviewID = reviewID
			drafts[i].IsApproved = false
			drafts[i].CreatedBy = model.ReplyCreatorSystemAI
		}
		if len(drafts) > 0 {
			if err := tx.Create(&drafts).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ApproveReply marks one reply approved, clears any other approval on the
// review, and moves the review to replied.
func (r *reviewRepository) ApproveReply(reviewID, replyID uuid.UUID, at time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Reply{}).
			Where("review_id = ? AND id <> ? AND is_approved = ?", reviewID, replyID, true).
			Update("is_approved", false).Error; err != nil {
			return err
		}

		result := tx.Model(&model.Reply{}).
			Where("id = ? AND review_id = ?", replyID, reviewID).
			Update("is_approved", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Model(&model.Review{}).Where("id = ?", reviewID).Updates(map[string]interface{}{
			"status":            model.ReviewStatusReplied,
			"replied_at":        at,
			"approved_reply_id": replyID,
		}).Error
	})
}
