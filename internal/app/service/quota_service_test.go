package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/ikkim/replydesk-backend/internal/app/repository"
	"github.com/ikkim/replydesk-backend/internal/db"
	"github.com/ikkim/replydesk-backend/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDatabaseQuota(t *testing.T, limit int) QuotaService {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	return NewQuotaService(NewDatabaseQuotaStore(repository.NewUsageRepository(testDB)), limit)
}

func newRedisQuota(t *testing.T, limit int) (QuotaService, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return NewQuotaService(NewRedisQuotaStore(redis.NewCounter(rdb)), limit), mr
}

func TestDailyPeriod(t *testing.T) {
	loc := time.FixedZone("KST", 9*3600)
	period := DailyPeriod(time.Date(2026, 3, 10, 2, 30, 0, 0, loc))

	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), period.Start)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), period.End)
}

func TestQuotaService_ReserveUntilLimit(t *testing.T) {
	backends := map[string]QuotaService{
		"database": newDatabaseQuota(t, 3),
	}
	redisQuota, _ := newRedisQuota(t, 3)
	backends["redis"] = redisQuota

	for name, quota := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			userID := uuid.New()

			for i := 0; i < 3; i++ {
				r, err := quota.Reserve(ctx, userID)
				require.NoError(t, err)
				assert.Equal(t, userID, r.UserID)
			}

			_, err := quota.Reserve(ctx, userID)
			assert.ErrorIs(t, err, ErrQuotaExceeded)

			usage, err := quota.Usage(ctx, userID)
			require.NoError(t, err)
			assert.Equal(t, 3, usage.Used)
			assert.Equal(t, 0, usage.Remaining)

			// Another user is unaffected.
			_, err = quota.Reserve(ctx, uuid.New())
			assert.NoError(t, err)
		})
	}
}

func TestQuotaService_Release(t *testing.T) {
	backends := map[string]QuotaService{
		"database": newDatabaseQuota(t, 1),
	}
	redisQuota, _ := newRedisQuota(t, 1)
	backends["redis"] = redisQuota

	for name, quota := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			userID := uuid.New()

			r, err := quota.Reserve(ctx, userID)
			require.NoError(t, err)
			quota.Release(ctx, r)

			usage, err := quota.Usage(ctx, userID)
			require.NoError(t, err)
			assert.Equal(t, 0, usage.Used)

			_, err = quota.Reserve(ctx, userID)
			assert.NoError(t, err)

			quota.Release(ctx, nil)
		})
	}
}

func TestQuotaService_ZeroLimitRejects(t *testing.T) {
	quota := newDatabaseQuota(t, 0)
	_, err := quota.Reserve(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestQuotaService_ConcurrentReserveNeverOvershoots(t *testing.T) {
	quota, _ := newRedisQuota(t, 50)
	userID := uuid.New()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)
	for i := 0; i < 80; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := quota.Reserve(context.Background(), userID); err == nil {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, granted)
}

func TestRedisQuotaStore_KeyExpires(t *testing.T) {
	quota, mr := newRedisQuota(t, 5)
	userID := uuid.New()

	_, err := quota.Reserve(context.Background(), userID)
	require.NoError(t, err)

	key := quotaKey(userID, DailyPeriod(time.Now()))
	assert.True(t, mr.Exists(key))
	assert.Equal(t, 25*time.Hour, mr.TTL(key))
}

func TestUsageRetentionService_Prune(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	usageRepo := repository.NewUsageRepository(testDB)
	userID := uuid.New()

	old := DailyPeriod(time.Now().AddDate(0, 0, -45))
	recent := DailyPeriod(time.Now().AddDate(0, 0, -3))
	_, err = usageRepo.TryIncrementAICalls(userID, old.Start, old.End, 50)
	require.NoError(t, err)
	_, err = usageRepo.TryIncrementAICalls(userID, recent.Start, recent.End, 50)
	require.NoError(t, err)

	deleted, err := NewUsageRetentionService(usageRepo, 30).Prune()
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	deleted, err = NewUsageRetentionService(usageRepo, 0).Prune()
	require.NoError(t, err)
	assert.Zero(t, deleted)
}
