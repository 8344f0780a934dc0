package db

import (
	"github.com/ikkim/replydesk-backend/internal/app/model"
	"github.com/ikkim/replydesk-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every table owned by this service, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.Profile{},
		&model.Subscription{},
		&model.UsageMetric{},
		&model.Business{},
		&model.Review{},
		&model.Reply{},
		&model.ReplyTemplate{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	return MigrateDB(DB)
}

// MigrateDB runs AutoMigrate against the given connection
func MigrateDB(conn *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := conn.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}
