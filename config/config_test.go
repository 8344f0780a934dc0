package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SUPABASE_JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, AuthModeSecret, cfg.Auth.Mode)
	assert.Equal(t, AIProviderGemini, cfg.AI.Provider)
	assert.Equal(t, 30*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 50, cfg.Quota.DailyLimit)
	assert.True(t, cfg.Quota.CountFailedCalls)
	assert.Equal(t, QuotaBackendDatabase, cfg.Quota.Backend)
	assert.False(t, cfg.S3.Enabled())
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5, cfg.Database.MaxIdleConns)
	assert.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
}

func TestLoad_StoragePools(t *testing.T) {
	t.Setenv("SUPABASE_JWT_SECRET", "secret")
	t.Setenv("DB_MAX_OPEN_CONNS", "8")
	t.Setenv("DB_MAX_IDLE_CONNS", "20")
	t.Setenv("DB_CONNECT_TIMEOUT", "3s")
	t.Setenv("REDIS_POOL_SIZE", "4")
	t.Setenv("REDIS_READ_TIMEOUT", "250ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Database.MaxOpenConns)
	assert.Equal(t, 8, cfg.Database.MaxIdleConns)
	assert.Contains(t, cfg.Database.DSN(), "connect_timeout=3")
	assert.Equal(t, 4, cfg.Redis.PoolSize)
	assert.Equal(t, 250*time.Millisecond, cfg.Redis.ReadTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SUPABASE_JWT_SECRET", "secret")
	t.Setenv("AI_PROVIDER", "OpenAI")
	t.Setenv("AI_TIMEOUT", "5s")
	t.Setenv("QUOTA_DAILY_LIMIT", "10")
	t.Setenv("QUOTA_COUNT_FAILED_CALLS", "false")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, AIProviderOpenAI, cfg.AI.Provider)
	assert.Equal(t, 5*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 10, cfg.Quota.DailyLimit)
	assert.False(t, cfg.Quota.CountFailedCalls)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "secret mode without secret", env: map[string]string{}},
		{name: "jwks mode without url", env: map[string]string{"AUTH_MODE": "jwks"}},
		{name: "unknown provider", env: map[string]string{"SUPABASE_JWT_SECRET": "s", "AI_PROVIDER": "llama"}},
		{name: "redis quota without redis", env: map[string]string{"SUPABASE_JWT_SECRET": "s", "QUOTA_BACKEND": "redis"}},
		{name: "empty database pool", env: map[string]string{"SUPABASE_JWT_SECRET": "s", "DB_MAX_OPEN_CONNS": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
