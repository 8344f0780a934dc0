package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/ikkim/replydesk-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestProfileRepository_FindOrCreate(t *testing.T) {
	testDB := setupRepoTest(t)
	repo := NewProfileRepository(testDB)
	userID := uuid.New()

	first, err := repo.FindOrCreate(userID, "owner@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.PlanTrial, first.PlanType)

	second, err := repo.FindOrCreate(userID, "owner@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	testDB.Model(&model.Profile{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestProfileRepository_FindLatestSubscription(t *testing.T) {
	testDB := setupRepoTest(t)
	repo := NewProfileRepository(testDB)
	userID := uuid.New()

	sub, err := repo.FindLatestSubscription(userID)
	require.NoError(t, err)
	assert.Nil(t, sub)

	require.NoError(t, testDB.Create(&model.Subscription{UserID: userID, PlanType: model.PlanPro, Status: model.SubscriptionActive}).Error)
	sub, err = repo.FindLatestSubscription(userID)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, model.PlanPro, sub.PlanType)
}

func TestTemplateRepository_Ownership(t *testing.T) {
	testDB := setupRepoTest(t)
	repo := NewTemplateRepository(testDB)
	ownerID := uuid.New()
	business := createTestBusiness(t, testDB, ownerID)

	template := &model.ReplyTemplate{BusinessID: business.ID, Name: "Thanks", TemplateText: "Thank you!", Tone: model.ToneFriendly}
	require.NoError(t, repo.Create(template))

	_, err := repo.FindOwnedByID(uuid.New(), template.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	found, err := repo.FindOwnedByID(ownerID, template.ID)
	require.NoError(t, err)
	assert.Equal(t, "Thanks", found.Name)

	require.NoError(t, repo.Delete(template.ID))
	assert.ErrorIs(t, repo.Delete(template.ID), gorm.ErrRecordNotFound)
}
