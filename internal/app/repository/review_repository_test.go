package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ikkim/replydesk-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestReviewRepository_FindOwnedByID(t *testing.T) {
	testDB := setupRepoTest(t)
	repo := NewReviewRepository(testDB)
	ownerID := uuid.New()
	business := createTestBusiness(t, testDB, ownerID)
	review := createTestReview(t, testDB, business.ID, 1)

	found, err := repo.FindOwnedByID(ownerID, review.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReviewStatusPending, found.Status)
	assert.Nil(t, found.Sentiment)

	_, err = repo.FindOwnedByID(uuid.New(), review.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestReviewRepository_SaveAnalysis(t *testing.T) {
	testDB := setupRepoTest(t)
	repo := NewReviewRepository(testDB)
	ownerID := uuid.New()
	business := createTestBusiness(t, testDB, ownerID)
	review := createTestReview(t, testDB, business.ID, 1)

	drafts := []model.Reply{
		{Tone: model.ToneFormal, Text: "We apologise for the wait."},
		{Tone: model.ToneFriendly, Text: "Sorry Sam!"},
		{Tone: model.ToneApologetic, Text: "We hear you."},
	}
	err := repo.SaveAnalysis(review.ID, &AnalysisUpdate{
		Sentiment:           model.SentimentNegative,
		Urgency:             model.UrgencyHigh,
		Category:            "wait time",
		Summary:             "Long wait",
		MissingInfoRequired: true,
		MissingInfoFields:   []string{"opening hours"},
	}, drafts)
	require.NoError(t, err)

	found, err := repo.FindOwnedByIDWithReplies(ownerID, review.ID)
	require.NoError(t, err)
	require.NotNil(t, found.Sentiment)
	assert.Equal(t, model.SentimentNegative, *found.Sentiment)
	assert.Equal(t, model.UrgencyHigh, *found.AnalysisUrgency)
	assert.Equal(t, "wait time", *found.AnalysisCategory)
	assert.True(t, found.MissingInfoRequired)
	assert.Equal(t, []string{"opening hours"}, found.MissingInfoFields.Data())
	assert.Equal(t, model.ReviewStatusPending, found.Status, "analysis never changes status")

	require.Len(t, found.Replies, 3)
	for _, reply := range found.Replies {
		assert.Equal(t, model.ReplyCreatorSystemAI, reply.CreatedBy)
		assert.False(t, reply.IsApproved)
	}
}

func TestReviewRepository_SaveAnalysis_RepliesOnly(t *testing.T) {
	testDB := setupRepoTest(t)
	repo := NewReviewRepository(testDB)
	ownerID := uuid.New()
	business := createTestBusiness(t, testDB, ownerID)
	review := createTestReview(t, testDB, business.ID, 4)

	require.NoError(t, repo.SaveAnalysis(review.ID, nil, []model.Reply{{Tone: model.ToneFriendly, Text: "Thanks!"}}))

	found, err := repo.FindOwnedByIDWithReplies(ownerID, review.ID)
	require.NoError(t, err)
	assert.Nil(t, found.Sentiment)
	assert.Len(t, found.Replies, 1)
}

func TestReviewRepository_SaveAnalysis_MissingReviewRollsBack(t *testing.T) {
	testDB := setupRepoTest(t)
	repo := NewReviewRepository(testDB)

	err := repo.SaveAnalysis(uuid.New(), &AnalysisUpdate{Sentiment: model.SentimentNeutral, Urgency: model.UrgencyMedium},
		[]model.Reply{{Tone: model.ToneFriendly, Text: "orphan"}})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var count int64
	testDB.Model(&model.Reply{}).Count(&count)
	assert.Zero(t, count)
}

func TestReviewRepository_ApproveReply(t *testing.T) {
	testDB := setupRepoTest(t)
	repo := NewReviewRepository(testDB)
	ownerID := uuid.New()
	business := createTestBusiness(t, testDB, ownerID)
	review := createTestReview(t, testDB, business.ID, 2)

	drafts := []model.Reply{{Tone: model.ToneFormal, Text: "a"}, {Tone: model.ToneFriendly, Text: "b"}}
	require.NoError(t, repo.SaveAnalysis(review.ID, nil, drafts))

	now := time.Now().UTC()
	require.NoError(t, repo.ApproveReply(review.ID, drafts[0].ID, now))
	require.NoError(t, repo.ApproveReply(review.ID, drafts[1].ID, now))

	found, err := repo.FindOwnedByIDWithReplies(ownerID, review.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReviewStatusReplied, found.Status)
	require.NotNil(t, found.ApprovedReplyID)
	assert.Equal(t, drafts[1].ID, *found.ApprovedReplyID)
	assert.NotNil(t, found.RepliedAt)

	approved := 0
	for _, reply := range found.Replies {
		if reply.IsApproved {
			approved++
			assert.Equal(t, drafts[1].ID, reply.ID)
		}
	}
	assert.Equal(t, 1, approved)

	err = repo.ApproveReply(review.ID, uuid.New(), now)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestReviewRepository_ListAndFilter(t *testing.T) {
	testDB := setupRepoTest(t)
	repo := NewReviewRepository(testDB)
	business := createTestBusiness(t, testDB, uuid.New())

	for i := 0; i < 5; i++ {
		review := &model.Review{
			BusinessID:   business.ID,
			ReviewerName: "R",
			Rating:       i + 1,
			Text:         "text",
			ReviewDate:   time.Now().UTC().AddDate(0, 0, -i),
		}
		require.NoError(t, repo.Create(review))
	}
	older := &model.Review{BusinessID: business.ID, ReviewerName: "Old", Rating: 3, Text: "old", ReviewDate: time.Now().UTC().AddDate(0, 0, -40)}
	require.NoError(t, repo.Create(older))
	require.NoError(t, repo.UpdateFields(older.ID, map[string]interface{}{"status": model.ReviewStatusEscalated}))

	reviews, total, err := repo.List(business.ID, ReviewFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)
	require.Len(t, reviews, 2)
	assert.Equal(t, 1, reviews[0].Rating, "newest first")

	reviews, total, err = repo.List(business.ID, ReviewFilter{Status: model.ReviewStatusEscalated})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Old", reviews[0].ReviewerName)

	recent, err := repo.ListSince(business.ID, time.Now().UTC().AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Len(t, recent, 5)
}

func TestReviewRepository_CreateBatch(t *testing.T) {
	testDB := setupRepoTest(t)
	repo := NewReviewRepository(testDB)
	business := createTestBusiness(t, testDB, uuid.New())

	batch := make([]model.Review, 0, 7)
	for i := 0; i < 7; i++ {
		batch = append(batch, model.Review{BusinessID: business.ID, ReviewerName: "x", Rating: 5, Text: "great"})
	}
	require.NoError(t, repo.CreateBatch(batch, 3))

	_, total, err := repo.List(business.ID, ReviewFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)
}
