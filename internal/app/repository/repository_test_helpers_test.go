package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/ikkim/replydesk-backend/internal/app/model"
	"github.com/ikkim/replydesk-backend/internal/db"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRepoTest(t *testing.T) *gorm.DB {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB
}

func createTestBusiness(t *testing.T, testDB *gorm.DB, ownerID uuid.UUID) *model.Business {
	business := &model.Business{
		OwnerUserID: ownerID,
		Name:        "Ace Dental",
		Category:    "Healthcare",
		DefaultTone: model.ToneFriendly,
	}
	require.NoError(t, testDB.Create(business).Error)
	return business
}

func createTestReview(t *testing.T, testDB *gorm.DB, businessID uuid.UUID, rating int) *model.Review {
	review := &model.Review{
		BusinessID:   businessID,
		ReviewerName: "Sam",
		Rating:       rating,
		Text:         "Terrible wait",
		Source:       model.ReviewSourceGoogle,
	}
	require.NoError(t, testDB.Create(review).Error)
	return review
}
