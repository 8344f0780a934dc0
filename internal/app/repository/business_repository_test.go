package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/ikkim/replydesk-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func TestBusinessRepository_CreateAndFind(t *testing.T) {
	testDB := setupRepoTest(t)
	repo := NewBusinessRepository(testDB)
	ownerID := uuid.New()

	business := &model.Business{
		OwnerUserID: ownerID,
		Name:        "Corner Cafe",
		Category:    "Restaurant",
		Facts:       datatypes.NewJSONType([]string{"Free parking", ""}),
	}
	require.NoError(t, repo.Create(business))
	assert.NotEqual(t, uuid.Nil, business.ID)

	found, err := repo.FindOwnedByID(ownerID, business.ID)
	require.NoError(t, err)
	assert.Equal(t, "Corner Cafe", found.Name)
	assert.Equal(t, model.ToneFriendly, found.DefaultTone)
	assert.Equal(t, []string{"Free parking"}, found.FactList())

	_, err = repo.FindOwnedByID(uuid.New(), business.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestBusinessRepository_ListByOwner(t *testing.T) {
	testDB := setupRepoTest(t)
	repo := NewBusinessRepository(testDB)
	ownerID := uuid.New()

	createTestBusiness(t, testDB, ownerID)
	createTestBusiness(t, testDB, ownerID)
	createTestBusiness(t, testDB, uuid.New())

	businesses, err := repo.ListByOwner(ownerID)
	require.NoError(t, err)
	assert.Len(t, businesses, 2)
}
