package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ikkim/replydesk-backend/config"
	appLogger "github.com/ikkim/replydesk-backend/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// queryLogWriter sends gorm's slow-query and error lines to the app logger.
type queryLogWriter struct{}

func (queryLogWriter) Printf(format string, args ...interface{}) {
	appLogger.Warn("Database query", map[string]interface{}{
		"detail": strings.TrimSpace(fmt.Sprintf(format, args...)),
	})
}

func newQueryLogger(cfg *config.DatabaseConfig) logger.Interface {
	return logger.New(queryLogWriter{}, logger.Config{
		SlowThreshold:             cfg.SlowQuery,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		ParameterizedQueries:      true,
	})
}

// Initialize opens the postgres pool that backs businesses, reviews and the daily usage ledger.
func Initialize(cfg *config.DatabaseConfig) error {
	appLogger.Info("Connecting to database", map[string]interface{}{
		"host":     cfg.Host,
		"port":     cfg.Port,
		"database": cfg.DBName,
		"user":     cfg.User,
	})

	conn, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: newQueryLogger(cfg),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	configurePool(sqlDB, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return fmt.Errorf("database did not answer ping: %w", err)
	}

	DB = conn
	appLogger.Info("Database connection established", map[string]interface{}{
		"max_open_conns":    cfg.MaxOpenConns,
		"max_idle_conns":    cfg.MaxIdleConns,
		"conn_max_lifetime": cfg.ConnMaxLifetime.String(),
		"slow_query":        cfg.SlowQuery.String(),
	})
	return nil
}

// configurePool sizes the pool. Analysis requests hold a connection only for the
// quota reservation and the persistence write, never across the model call.
func configurePool(sqlDB *sql.DB, cfg *config.DatabaseConfig) {
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
