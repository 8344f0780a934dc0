package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ikkim/replydesk-backend/internal/app/model"
	"github.com/ikkim/replydesk-backend/internal/app/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type reviewFixture struct {
	service  ReviewService
	notifier *fakeNotifier
	db       *gorm.DB
	ownerID  uuid.UUID
	business *model.Business
}

func setupReviewServiceTest(t *testing.T) *reviewFixture {
	testDB := setupServiceDB(t)
	businessService := NewBusinessService(repository.NewBusinessRepository(testDB))
	notifier := &fakeNotifier{}

	svc := NewReviewService(
		repository.NewReviewRepository(testDB),
		repository.NewReplyRepository(testDB),
		repository.NewUsageRepository(testDB),
		businessService,
		notifier,
	)

	ownerID := uuid.New()
	business, err := businessService.CreateBusiness(ownerID, BusinessInput{Name: ptr("Ace Dental"), Category: ptr("dentist")})
	require.NoError(t, err)

	return &reviewFixture{service: svc, notifier: notifier, db: testDB, ownerID: ownerID, business: business}
}

func (f *reviewFixture) createReview(t *testing.T, rating int) *model.Review {
	review, err := f.service.CreateReview(f.ownerID, f.business.ID, ReviewInput{
		ReviewerName: "Sam",
		Rating:       rating,
		Text:         "Terrible wait, 2 hours",
		Source:       model.ReviewSourceGoogle,
	})
	require.NoError(t, err)
	return review
}

func TestReviewService_CreateReview(t *testing.T) {
	f := setupReviewServiceTest(t)

	review := f.createReview(t, 1)
	assert.Equal(t, model.ReviewStatusPending, review.Status)
	assert.False(t, review.ReviewDate.IsZero())

	var usage model.UsageMetric
	require.NoError(t, f.db.Where("user_id = ?", f.ownerID).First(&usage).Error)
	assert.Equal(t, 1, usage.ReviewsCreated)
	assert.Equal(t, 0, usage.AICallsUsed)
}

func TestReviewService_CreateReviewValidation(t *testing.T) {
	f := setupReviewServiceTest(t)

	tests := []ReviewInput{
		{Rating: 0, Text: "ok"},
		{Rating: 6, Text: "ok"},
		{Rating: 3, Text: "   "},
	}
	for _, in := range tests {
		_, err := f.service.CreateReview(f.ownerID, f.business.ID, in)
		assert.ErrorIs(t, err, ErrInvalidReview)
	}

	review, err := f.service.CreateReview(f.ownerID, f.business.ID, ReviewInput{Rating: 4, Text: "Nice", Source: "tripadvisor"})
	require.NoError(t, err)
	assert.Equal(t, model.ReviewSourceManual, review.Source)
	assert.Equal(t, "Anonymous", review.ReviewerName)

	_, err = f.service.CreateReview(uuid.New(), f.business.ID, ReviewInput{Rating: 4, Text: "Nice"})
	assert.ErrorIs(t, err, ErrBusinessNotFound)
}

func TestReviewService_ListNewestFirst(t *testing.T) {
	f := setupReviewServiceTest(t)

	old := time.Now().Add(-48 * time.Hour)
	_, err := f.service.CreateReview(f.ownerID, f.business.ID, ReviewInput{Rating: 5, Text: "old", ReviewDate: &old})
	require.NoError(t, err)
	f.createReview(t, 1)

	reviews, total, err := f.service.ListReviews(f.ownerID, f.business.ID, repository.ReviewFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, "Terrible wait, 2 hours", reviews[0].Text)

	_, _, err = f.service.ListReviews(f.ownerID, f.business.ID, repository.ReviewFilter{Status: "archived"})
	assert.ErrorIs(t, err, ErrInvalidReview)
}

func TestReviewService_UpdateReviewStatus(t *testing.T) {
	f := setupReviewServiceTest(t)
	review := f.createReview(t, 1)

	escalated := model.ReviewStatusEscalated
	updated, err := f.service.UpdateReview(f.ownerID, review.ID, ReviewPatch{Status: &escalated, Text: ptr("Edited")})
	require.NoError(t, err)
	assert.Equal(t, model.ReviewStatusEscalated, updated.Status)
	assert.Equal(t, "Edited", updated.Text)

	pending := model.ReviewStatusPending
	_, err = f.service.UpdateReview(f.ownerID, review.ID, ReviewPatch{Status: &pending})
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	replied := model.ReviewStatusReplied
	_, err = f.service.UpdateReview(f.ownerID, review.ID, ReviewPatch{Status: &replied})
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	_, err = f.service.UpdateReview(uuid.New(), review.ID, ReviewPatch{Text: ptr("hijack")})
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(model.ReviewStatusPending, model.ReviewStatusEscalated))
	assert.False(t, CanTransition(model.ReviewStatusPending, model.ReviewStatusReplied))
	assert.False(t, CanTransition(model.ReviewStatusReplied, model.ReviewStatusPending))
	assert.False(t, CanTransition(model.ReviewStatusEscalated, model.ReviewStatusPending))
	assert.False(t, CanTransition(model.ReviewStatusReplied, model.ReviewStatusEscalated))
}

func TestReviewService_ApproveReply(t *testing.T) {
	f := setupReviewServiceTest(t)
	review := f.createReview(t, 1)

	first, err := f.service.AddReply(f.ownerID, review.ID, ReplyInput{Text: "Sorry, Sam."})
	require.NoError(t, err)
	assert.Equal(t, model.ReplyCreatorUser, first.CreatedBy)
	assert.Equal(t, model.ToneFriendly, first.Tone)

	second, err := f.service.AddReply(f.ownerID, review.ID, ReplyInput{Text: "We apologize.", Tone: model.ToneFormal})
	require.NoError(t, err)

	_, err = f.service.ApproveReply(f.ownerID, review.ID, first.ID)
	require.NoError(t, err)
	approved, err := f.service.ApproveReply(f.ownerID, review.ID, second.ID)
	require.NoError(t, err)

	assert.Equal(t, model.ReviewStatusReplied, approved.Status)
	require.NotNil(t, approved.RepliedAt)
	require.NotNil(t, approved.ApprovedReplyID)
	assert.Equal(t, second.ID, *approved.ApprovedReplyID)

	count := 0
	for _, r := range approved.Replies {
		if r.IsApproved {
			count++
			assert.Equal(t, second.ID, r.ID)
		}
	}
	assert.Equal(t, 1, count)

	require.Len(t, f.notifier.events, 2)
	assert.Equal(t, EventReplyApproved, f.notifier.events[1].eventType)

	_, err = f.service.ApproveReply(f.ownerID, review.ID, uuid.New())
	assert.ErrorIs(t, err, ErrReplyNotFound)
}

func TestReviewService_AddReplyValidation(t *testing.T) {
	f := setupReviewServiceTest(t)
	review := f.createReview(t, 1)

	_, err := f.service.AddReply(f.ownerID, review.ID, ReplyInput{Text: " "})
	assert.ErrorIs(t, err, ErrInvalidReply)

	_, err = f.service.AddReply(f.ownerID, review.ID, ReplyInput{Text: "hi", Tone: "sarcastic"})
	assert.ErrorIs(t, err, ErrInvalidReply)

	_, err = f.service.AddReply(uuid.New(), review.ID, ReplyInput{Text: "hi"})
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestReviewService_GetStats(t *testing.T) {
	f := setupReviewServiceTest(t)

	for _, rating := range []int{1, 4, 5} {
		f.createReview(t, rating)
	}
	old := time.Now().Add(-40 * 24 * time.Hour)
	_, err := f.service.CreateReview(f.ownerID, f.business.ID, ReviewInput{Rating: 1, Text: "ancient", ReviewDate: &old})
	require.NoError(t, err)

	stats, err := f.service.GetStats(f.ownerID, f.business.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 3.3, stats.AvgRating)
	assert.Equal(t, 0, stats.ResponseRate)
	assert.Len(t, stats.RecentReviews, 3)
}

func TestComputeStats(t *testing.T) {
	positive := model.SentimentPositive
	negative := model.SentimentNegative

	reviews := []model.Review{
		{Rating: 5, Status: model.ReviewStatusReplied, Sentiment: &positive},
		{Rating: 4, Status: model.ReviewStatusReplied, Sentiment: &positive},
		{Rating: 1, Status: model.ReviewStatusPending, Sentiment: &negative},
		{Rating: 3, Status: model.ReviewStatusEscalated},
		{Rating: 5, Status: model.ReviewStatusPending},
		{Rating: 2, Status: model.ReviewStatusPending},
	}

	stats := ComputeStats(reviews)
	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, 2, stats.Replied)
	assert.Equal(t, 3.3, stats.AvgRating)
	assert.Equal(t, 33, stats.ResponseRate)
	assert.Equal(t, SentimentCounts{Positive: 2, Negative: 1}, stats.Sentiment)
	assert.Len(t, stats.RecentReviews, 5)

	empty := ComputeStats(nil)
	assert.Zero(t, empty.AvgRating)
	assert.Zero(t, empty.ResponseRate)
	assert.NotNil(t, empty.RecentReviews)
}
