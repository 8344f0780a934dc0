package db

import (
	"testing"
	"time"

	"github.com/ikkim/replydesk-backend/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestConfigurePool(t *testing.T) {
	conn, err := SetupTestDB()
	require.NoError(t, err)
	defer CleanupTestDB(conn)

	sqlDB, err := conn.DB()
	require.NoError(t, err)

	configurePool(sqlDB, &config.DatabaseConfig{
		MaxOpenConns:    7,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
	})

	assert.Equal(t, 7, sqlDB.Stats().MaxOpenConnections)
	require.NoError(t, sqlDB.Ping())
}

func TestQueryLoggerReportsSlowQueries(t *testing.T) {
	conn, err := SetupTestDB()
	require.NoError(t, err)
	defer CleanupTestDB(conn)

	// Every query counts as slow with a 1ns threshold.
	slow := conn.Session(&gorm.Session{Logger: newQueryLogger(&config.DatabaseConfig{SlowQuery: time.Nanosecond})})

	var count int64
	require.NoError(t, slow.Table("reviews").Count(&count).Error)
	assert.Zero(t, count)
}

func TestClose_WithoutInitialize(t *testing.T) {
	saved := DB
	DB = nil
	defer func() { DB = saved }()

	assert.NoError(t, Close())
}
