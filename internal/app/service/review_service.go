package service

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ikkim/replydesk-backend/internal/app/model"
	"github.com/ikkim/replydesk-backend/internal/app/repository"
	"github.com/ikkim/replydesk-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrReviewNotFound          = errors.New("review not found")
	ErrReplyNotFound           = errors.New("reply not found")
	ErrInvalidReview           = errors.New("invalid review")
	ErrInvalidReply            = errors.New("invalid reply")
	ErrInvalidStatusTransition = errors.New("invalid review status transition")
)

// StatsWindow is the period covered by dashboard stats.
const StatsWindow = 30 * 24 * time.Hour

const recentReviewsLimit = 5

type ReviewInput struct {
	ReviewerName string
	Rating       int
	Text         string
	Source       model.ReviewSource
	ReviewDate   *time.Time
}

// ReviewPatch holds the user-editable review fields. Derived fields are never patchable.
type ReviewPatch struct {
	ReviewerName *string
	Text         *string
	Rating       *int
	Status       *model.ReviewStatus
}

type ReplyInput struct {
	Text string
	Tone model.ToneType
}

type SentimentCounts struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

type DashboardStats struct {
	Total         int             `json:"total"`
	Replied       int             `json:"replied"`
	AvgRating     float64         `json:"avg_rating"`
	ResponseRate  int             `json:"response_rate"`
	Sentiment     SentimentCounts `json:"sentiment"`
	RecentReviews []model.Review  `json:"recent_reviews"`
}

type ReviewService interface {
	ListReviews(ownerID, businessID uuid.UUID, filter repository.ReviewFilter) ([]model.Review, int64, error)
	CreateReview(ownerID, businessID uuid.UUID, input ReviewInput) (*model.Review, error)
	GetReview(ownerID, id uuid.UUID) (*model.Review, error)
	UpdateReview(ownerID, id uuid.UUID, patch ReviewPatch) (*model.Review, error)
	AddReply(ownerID, reviewID uuid.UUID, input ReplyInput) (*model.Reply, error)
	ApproveReply(ownerID, reviewID, replyID uuid.UUID) (*model.Review, error)
	GetStats(ownerID, businessID uuid.UUID) (*DashboardStats, error)
}

type reviewService struct {
	reviewRepo      repository.ReviewRepository
	replyRepo       repository.ReplyRepository
	usageRepo       repository.UsageRepository
	businessService BusinessService
	notifier        EventNotifier
	now             func() time.Time
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	replyRepo repository.ReplyRepository,
	usageRepo repository.UsageRepository,
	businessService BusinessService,
	notifier EventNotifier,
) ReviewService {
	return &reviewService{
		reviewRepo:      reviewRepo,
		replyRepo:       replyRepo,
		usageRepo:       usageRepo,
		businessService: businessService,
		notifier:        notifier,
		now:             time.Now,
	}
}

func (s *reviewService) ListReviews(ownerID, businessID uuid.UUID, filter repository.ReviewFilter) ([]model.Review, int64, error) {
	if _, err := s.businessService.GetBusiness(ownerID, businessID); err != nil {
		return nil, 0, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", ErrInvalidReview, filter.Status)
	}
	if filter.Sentiment != "" && !filter.Sentiment.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown sentiment %q", ErrInvalidReview, filter.Sentiment)
	}
	return s.reviewRepo.List(businessID, filter)
}

// ValidateReviewInput normalizes input in place. An unknown source falls back to manual.
func ValidateReviewInput(input *ReviewInput) error {
	input.ReviewerName = strings.TrimSpace(input.ReviewerName)
	input.Text = strings.TrimSpace(input.Text)

	if input.Rating < 1 || input.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidReview)
	}
	if input.Text == "" {
		return fmt.Errorf("%w: text is required", ErrInvalidReview)
	}
	if input.ReviewerName == "" {
		input.ReviewerName = "Anonymous"
	}
	if !input.Source.Valid() {
		input.Source = model.ReviewSourceManual
	}
	return nil
}

func (s *reviewService) CreateReview(ownerID, businessID uuid.UUID, input ReviewInput) (*model.Review, error) {
	if _, err := s.businessService.GetBusiness(ownerID, businessID); err != nil {
		return nil, err
	}
	if err := ValidateReviewInput(&input); err != nil {
		return nil, err
	}

	review := &model.Review{
		BusinessID:   businessID,
		ReviewerName: input.ReviewerName,
		Rating:       input.Rating,
		Text:         input.Text,
		Source:       input.Source,
		Status:       model.ReviewStatusPending,
	}
	if input.ReviewDate != nil {
		review.ReviewDate = input.ReviewDate.UTC()
	}

	if err := s.reviewRepo.Create(review); err != nil {
		return nil, err
	}

	s.countReviews(ownerID, 1)
	return review, nil
}

// countReviews is best effort; usage stats never block review creation.
func (s *reviewService) countReviews(ownerID uuid.UUID, n int) {
	period := DailyPeriod(s.now())
	if err := s.usageRepo.IncrementReviewsCreated(ownerID, period.Start, period.End, n); err != nil {
		logger.Warn("Failed to count created reviews", map[string]interface{}{
			"user_id": ownerID,
			"error":   err.Error(),
		})
	}
}

func (s *reviewService) GetReview(ownerID, id uuid.UUID) (*model.Review, error) {
	review, err := s.reviewRepo.FindOwnedByIDWithReplies(ownerID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return review, nil
}

func (s *reviewService) UpdateReview(ownerID, id uuid.UUID, patch ReviewPatch) (*model.Review, error) {
	review, err := s.findOwned(ownerID, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if patch.ReviewerName != nil {
		name := strings.TrimSpace(*patch.ReviewerName)
		if name == "" {
			return nil, fmt.Errorf("%w: reviewer_name cannot be empty", ErrInvalidReview)
		}
		fields["reviewer_name"] = name
	}
	if patch.Text != nil {
		text := strings.TrimSpace(*patch.Text)
		if text == "" {
			return nil, fmt.Errorf("%w: text cannot be empty", ErrInvalidReview)
		}
		fields["text"] = text
	}
	if patch.Rating != nil {
		if *patch.Rating < 1 || *patch.Rating > 5 {
			return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidReview)
		}
		fields["rating"] = *patch.Rating
	}
	if patch.Status != nil && *patch.Status != review.Status {
		if !CanTransition(review.Status, *patch.Status) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, review.Status, *patch.Status)
		}
		fields["status"] = *patch.Status
	}

	if len(fields) > 0 {
		if err := s.reviewRepo.UpdateFields(id, fields); err != nil {
			return nil, err
		}
	}
	return s.GetReview(ownerID, id)
}

// CanTransition reports whether a PATCH may move a review between statuses.
// Replied is only reached by approving a reply.
func CanTransition(from, to model.ReviewStatus) bool {
	return from == model.ReviewStatusPending && to == model.ReviewStatusEscalated
}

func (s *reviewService) AddReply(ownerID, reviewID uuid.UUID, input ReplyInput) (*model.Reply, error) {
	if _, err := s.findOwned(ownerID, reviewID); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", ErrInvalidReply)
	}
	tone := input.Tone
	if tone == "" {
		tone = model.ToneFriendly
	}
	if !tone.Valid() {
		return nil, fmt.Errorf("%w: unknown tone %q", ErrInvalidReply, input.Tone)
	}

	reply := &model.Reply{
		ReviewID:  reviewID,
		Text:      text,
		Tone:      tone,
		CreatedBy: model.ReplyCreatorUser,
	}
	if err := s.replyRepo.Create(reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (s *reviewService) ApproveReply(ownerID, reviewID, replyID uuid.UUID) (*model.Review, error) {
	if _, err := s.findOwned(ownerID, reviewID); err != nil {
		return nil, err
	}

	if err := s.reviewRepo.ApproveReply(reviewID, replyID, s.now().UTC()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReplyNotFound
		}
		logger.Error("Failed to approve reply", err, map[string]interface{}{
			"review_id": reviewID,
			"reply_id":  replyID,
		})
		return nil, err
	}

	logger.Info("Reply approved", map[string]interface{}{
		"review_id": reviewID,
		"reply_id":  replyID,
	})
	if s.notifier != nil {
		s.notifier.NotifyUser(ownerID, EventReplyApproved, map[string]interface{}{
			"review_id": reviewID,
			"reply_id":  replyID,
		})
	}
	return s.GetReview(ownerID, reviewID)
}

func (s *reviewService) GetStats(ownerID, businessID uuid.UUID) (*DashboardStats, error) {
	if _, err := s.businessService.GetBusiness(ownerID, businessID); err != nil {
		return nil, err
	}

	reviews, err := s.reviewRepo.ListSince(businessID, s.now().UTC().Add(-StatsWindow))
	if err != nil {
		return nil, err
	}
	return ComputeStats(reviews), nil
}

// ComputeStats summarizes reviews that are already sorted newest first.
func ComputeStats(reviews []model.Review) *DashboardStats {
	stats := &DashboardStats{Total: len(reviews)}

	ratingSum := 0
	for _, r := range reviews {
		ratingSum += r.Rating
		if r.Status == model.ReviewStatusReplied {
			stats.Replied++
		}
		if r.Sentiment == nil {
			continue
		}
		switch *r.Sentiment {
		case model.SentimentPositive:
			stats.Sentiment.Positive++
		case model.SentimentNeutral:
			stats.Sentiment.Neutral++
		case model.SentimentNegative:
			stats.Sentiment.Negative++
		}
	}

	if stats.Total > 0 {
		stats.AvgRating = math.Round(float64(ratingSum)/float64(stats.Total)*10) / 10
		stats.ResponseRate = int(math.Round(float64(stats.Replied) / float64(stats.Total) * 100))
	}

	recent := reviews
	if len(recent) > recentReviewsLimit {
		recent = recent[:recentReviewsLimit]
	}
	stats.RecentReviews = append([]model.Review{}, recent...)
	return stats
}

func (s *reviewService) findOwned(ownerID, id uuid.UUID) (*model.Review, error) {
	review, err := s.reviewRepo.FindOwnedByID(ownerID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return review, nil
}
