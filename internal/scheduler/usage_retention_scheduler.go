package scheduler

import (
	"time"

	"github.com/ikkim/replydesk-backend/internal/app/service"
	"github.com/ikkim/replydesk-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// DefaultRetentionSchedule runs shortly after the UTC day rolls over.
const DefaultRetentionSchedule = "15 0 * * *"

// UsageRetentionScheduler deletes expired usage periods once a day.
type UsageRetentionScheduler struct {
	cron      *cron.Cron
	schedule  string
	retention service.UsageRetentionService
}

func NewUsageRetentionScheduler(retention service.UsageRetentionService, schedule string) *UsageRetentionScheduler {
	if schedule == "" {
		schedule = DefaultRetentionSchedule
	}
	return &UsageRetentionScheduler{
		cron:      cron.New(cron.WithLocation(time.UTC)),
		schedule:  schedule,
		retention: retention,
	}
}

func (s *UsageRetentionScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.RunOnce); err != nil {
		logger.Error("Failed to add cron job for usage retention", err, map[string]interface{}{
			"schedule": s.schedule,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Usage retention scheduler started", map[string]interface{}{
		"schedule": s.schedule,
	})
	return nil
}

// RunOnce prunes expired usage rows immediately.
func (s *UsageRetentionScheduler) RunOnce() {
	deleted, err := s.retention.Prune()
	if err != nil {
		logger.Error("Failed to prune usage metrics", err)
		return
	}
	logger.Info("Pruned usage metrics", map[string]interface{}{
		"deleted": deleted,
	})
}

func (s *UsageRetentionScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Usage retention scheduler stopped")
}
