package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ikkim/replydesk-backend/internal/app/repository"
	"github.com/ikkim/replydesk-backend/internal/monitoring"
	"github.com/ikkim/replydesk-backend/pkg/logger"
	"github.com/ikkim/replydesk-backend/pkg/redis"
)

// ErrQuotaExceeded is returned when the caller has used the whole daily allowance.
var ErrQuotaExceeded = errors.New("daily AI call quota exceeded")

// QuotaPeriod is a half-open usage window [Start, End).
type QuotaPeriod struct {
	Start time.Time
	End   time.Time
}

// DailyPeriod returns the UTC day containing now.
func DailyPeriod(now time.Time) QuotaPeriod {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return QuotaPeriod{Start: start, End: start.AddDate(0, 0, 1)}
}

// QuotaStore keeps per-user counters. Reserve must be atomic: it increments
// only while the counter is below limit.
type QuotaStore interface {
	Reserve(ctx context.Context, userID uuid.UUID, period QuotaPeriod, limit int) (bool, error)
	Release(ctx context.Context, userID uuid.UUID, period QuotaPeriod) error
	Used(ctx context.Context, userID uuid.UUID, period QuotaPeriod) (int, error)
}

// Database-backed store over usage_metrics.
type dbQuotaStore struct {
	usageRepo repository.UsageRepository
}

func NewDatabaseQuotaStore(usageRepo repository.UsageRepository) QuotaStore {
	return &dbQuotaStore{usageRepo: usageRepo}
}

func (s *dbQuotaStore) Reserve(_ context.Context, userID uuid.UUID, period QuotaPeriod, limit int) (bool, error) {
	return s.usageRepo.TryIncrementAICalls(userID, period.Start, period.End, limit)
}

func (s *dbQuotaStore) Release(_ context.Context, userID uuid.UUID, period QuotaPeriod) error {
	return s.usageRepo.DecrementAICalls(userID, period.Start)
}

func (s *dbQuotaStore) Used(_ context.Context, userID uuid.UUID, period QuotaPeriod) (int, error) {
	usage, err := s.usageRepo.Find(userID, period.Start)
	if err != nil {
		return 0, err
	}
	return usage.AICallsUsed, nil
}

// Redis-backed store; one key per user and period, expiring after the period.
type redisQuotaStore struct {
	counter *redis.Counter
}

func NewRedisQuotaStore(counter *redis.Counter) QuotaStore {
	return &redisQuotaStore{counter: counter}
}

func quotaKey(userID uuid.UUID, period QuotaPeriod) string {
	return fmt.Sprintf("quota:ai:%s:%s", userID, period.Start.Format("20060102"))
}

func (s *redisQuotaStore) Reserve(ctx context.Context, userID uuid.UUID, period QuotaPeriod, limit int) (bool, error) {
	ttl := period.End.Sub(period.Start) + time.Hour
	_, ok, err := s.counter.IncrementBelow(ctx, quotaKey(userID, period), int64(limit), ttl)
	return ok, err
}

func (s *redisQuotaStore) Release(ctx context.Context, userID uuid.UUID, period QuotaPeriod) error {
	return s.counter.Decrement(ctx, quotaKey(userID, period))
}

func (s *redisQuotaStore) Used(ctx context.Context, userID uuid.UUID, period QuotaPeriod) (int, error) {
	n, err := s.counter.Get(ctx, quotaKey(userID, period))
	return int(n), err
}

// Reservation is one counted AI call.
type Reservation struct {
	UserID uuid.UUID
	Period QuotaPeriod
}

// UsageSummary is the caller's consumption in the current period.
type UsageSummary struct {
	Used        int       `json:"used"`
	Limit       int       `json:"limit"`
	Remaining   int       `json:"remaining"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
}

type QuotaService interface {
	Reserve(ctx context.Context, userID uuid.UUID) (*Reservation, error)
	Release(ctx context.Context, r *Reservation)
	Usage(ctx context.Context, userID uuid.UUID) (*UsageSummary, error)
}

type quotaService struct {
	store QuotaStore
	limit int
	now   func() time.Time
}

func NewQuotaService(store QuotaStore, dailyLimit int) QuotaService {
	return &quotaService{
		store: store,
		limit: dailyLimit,
		now:   time.Now,
	}
}

// Reserve counts one call before it is made, or returns ErrQuotaExceeded.
func (s *quotaService) Reserve(ctx context.Context, userID uuid.UUID) (*Reservation, error) {
	period := DailyPeriod(s.now())

	ok, err := s.store.Reserve(ctx, userID, period, s.limit)
	if err != nil {
		return nil, fmt.Errorf("reserve quota: %w", err)
	}
	if !ok {
		monitoring.QuotaRejectionsTotal.Inc()
		logger.Warn("AI quota exceeded", map[string]interface{}{
			"user_id": userID,
			"limit":   s.limit,
		})
		return nil, ErrQuotaExceeded
	}
	return &Reservation{UserID: userID, Period: period}, nil
}

// Release gives a reserved call back. Failures are logged only.
func (s *quotaService) Release(ctx context.Context, r *Reservation) {
	if r == nil {
		return
	}
	if err := s.store.Release(ctx, r.UserID, r.Period); err != nil {
		logger.Error("Failed to release AI quota reservation", err, map[string]interface{}{
			"user_id": r.UserID,
		})
	}
}

func (s *quotaService) Usage(ctx context.Context, userID uuid.UUID) (*UsageSummary, error) {
	period := DailyPeriod(s.now())
	used, err := s.store.Used(ctx, userID, period)
	if err != nil {
		return nil, err
	}

	remaining := s.limit - used
	if remaining < 0 {
		remaining = 0
	}
	return &UsageSummary{
		Used:        used,
		Limit:       s.limit,
		Remaining:   remaining,
		PeriodStart: period.Start,
		PeriodEnd:   period.End,
	}, nil
}

// UsageRetentionService prunes usage rows older than the retention window.
type UsageRetentionService interface {
	Prune() (int64, error)
}

type usageRetentionService struct {
	usageRepo     repository.UsageRepository
	retentionDays int
	now           func() time.Time
}

func NewUsageRetentionService(usageRepo repository.UsageRepository, retentionDays int) UsageRetentionService {
	return &usageRetentionService{
		usageRepo:     usageRepo,
		retentionDays: retentionDays,
		now:           time.Now,
	}
}

func (s *usageRetentionService) Prune() (int64, error) {
	if s.retentionDays <= 0 {
		return 0, nil
	}
	cutoff := DailyPeriod(s.now()).Start.AddDate(0, 0, -s.retentionDays)
	return s.usageRepo.DeleteEndedBefore(cutoff)
}
