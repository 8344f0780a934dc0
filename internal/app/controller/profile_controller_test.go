package controller

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/ikkim/replydesk-backend/internal/app/repository"
	"github.com/ikkim/replydesk-backend/internal/app/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileController(t *testing.T) {
	testDB := setupControllerDB(t)
	usageRepo := repository.NewUsageRepository(testDB)
	quotaService := service.NewQuotaService(service.NewDatabaseQuotaStore(usageRepo), 50)
	ctrl := NewProfileController(service.NewProfileService(repository.NewProfileRepository(testDB)), quotaService)

	userID := uuid.New()
	router := newTestRouter(t, userID)
	router.GET("/profile", ctrl.GetProfile)
	router.PUT("/profile", ctrl.UpdateProfile)
	router.GET("/subscription", ctrl.GetSubscription)
	router.GET("/usage", ctrl.GetUsage)

	t.Run("created on first read", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/profile", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		profile := decodeBody(t, w)["profile"].(map[string]interface{})
		assert.Equal(t, "owner@example.com", profile["email"])
		assert.Equal(t, false, profile["onboarding_completed"])
	})

	t.Run("update", func(t *testing.T) {
		w := performRequest(router, http.MethodPut, "/profile", map[string]interface{}{
			"name":                 "Dr. Ace",
			"onboarding_completed": true,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		profile := decodeBody(t, w)["profile"].(map[string]interface{})
		assert.Equal(t, "Dr. Ace", profile["name"])
		assert.Equal(t, true, profile["onboarding_completed"])
	})

	t.Run("trial subscription", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/subscription", nil)
		require.Equal(t, http.StatusOK, w.Code)
		sub := decodeBody(t, w)["subscription"].(map[string]interface{})
		assert.Equal(t, "trialing", sub["status"])
	})

	t.Run("usage", func(t *testing.T) {
		_, err := quotaService.Reserve(context.Background(), userID)
		require.NoError(t, err)

		w := performRequest(router, http.MethodGet, "/usage", nil)
		require.Equal(t, http.StatusOK, w.Code)
		usage := decodeBody(t, w)
		assert.Equal(t, float64(1), usage["used"])
		assert.Equal(t, float64(50), usage["limit"])
		assert.Equal(t, float64(49), usage["remaining"])
	})
}
