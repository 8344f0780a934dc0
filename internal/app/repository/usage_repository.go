package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ikkim/replydesk-backend/internal/app/model"
	"github.com/ikkim/replydesk-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UsageRepository interface {
	// TryIncrementAICalls adds one AI call unless the period already holds limit calls.
	TryIncrementAICalls(userID uuid.UUID, periodStart, periodEnd time.Time, limit int) (bool, error)
	DecrementAICalls(userID uuid.UUID, periodStart time.Time) error
	IncrementReviewsCreated(userID uuid.UUID, periodStart, periodEnd time.Time, n int) error
	Find(userID uuid.UUID, periodStart time.Time) (*model.UsageMetric, error)
	DeleteEndedBefore(cutoff time.Time) (int64, error)
}

type usageRepository struct {
	db *gorm.DB
}

func NewUsageRepository(db *gorm.DB) UsageRepository {
	return &usageRepository{db: db}
}

// ensurePeriod creates the period row if it does not exist yet.
func (r *usageRepository) ensurePeriod(userID uuid.UUID, periodStart, periodEnd time.Time) error {
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.UsageMetric{
		UserID:      userID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
	}).Error
}

// TryIncrementAICalls is a single conditional UPDATE so concurrent callers can
// never push the counter past limit.
func (r *usageRepository) TryIncrementAICalls(userID uuid.UUID, periodStart, periodEnd time.Time, limit int) (bool, error) {
	if err := r.ensurePeriod(userID, periodStart, periodEnd); err != nil {
		logger.Error("Failed to create usage period", err, map[string]interface{}{
			"user_id": userID,
		})
		return false, err
	}

	result := r.db.Model(&model.UsageMetric{}).
		Where("user_id = ? AND period_start = ? AND ai_calls_used < ?", userID, periodStart, limit).
		UpdateColumn("ai_calls_used", gorm.Expr("ai_calls_used + ?", 1))
	if result.Error != nil {
		logger.Error("Failed to increment AI call usage", result.Error, map[string]interface{}{
			"user_id": userID,
		})
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

func (r *usageRepository) DecrementAICalls(userID uuid.UUID, periodStart time.Time) error {
	return r.db.Model(&model.UsageMetric{}).
		Where("user_id = ? AND period_start = ? AND ai_calls_used > 0", userID, periodStart).
		UpdateColumn("ai_calls_used", gorm.Expr("ai_calls_used - ?", 1)).Error
}

func (r *usageRepository) IncrementReviewsCreated(userID uuid.UUID, periodStart, periodEnd time.Time, n int) error {
	if err := r.ensurePeriod(userID, periodStart, periodEnd); err != nil {
		return err
	}
	return r.db.Model(&model.UsageMetric{}).
		Where("user_id = ? AND period_start = ?", userID, periodStart).
		UpdateColumn("reviews_created", gorm.Expr("reviews_created + ?", n)).Error
}

// Find returns the period row, or a zero row when none exists yet.
func (r *usageRepository) Find(userID uuid.UUID, periodStart time.Time) (*model.UsageMetric, error) {
	var usage model.UsageMetric
	err := r.db.Where("user_id = ? AND period_start = ?", userID, periodStart).First(&usage).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.UsageMetric{UserID: userID, PeriodStart: periodStart}, nil
	}
	if err != nil {
		return nil, err
	}
	return &usage, nil
}

func (r *usageRepository) DeleteEndedBefore(cutoff time.Time) (int64, error) {
	result := r.db.Where("period_end < ?", cutoff).Delete(&model.UsageMetric{})
	if result.Error != nil {
		logger.Error("Failed to delete expired usage rows", result.Error, map[string]interface{}{
			"cutoff": cutoff,
		})
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
