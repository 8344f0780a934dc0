package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	CORS     CORSConfig
	AI       AIConfig
	Quota    QuotaConfig
	Log      LogConfig
	S3       S3Config
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnectTimeout  time.Duration
	SlowQuery       time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int

	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Auth modes for verifying access tokens issued by the external auth provider.
const (
	AuthModeSecret = "secret" // HS256 shared JWT secret
	AuthModeJWKS   = "jwks"   // asymmetric keys published at JWKSURL
	AuthModeRemote = "remote" // ask the GoTrue user endpoint
)

type AuthConfig struct {
	Mode            string
	JWTSecret       string
	JWKSURL         string
	SupabaseURL     string
	SupabaseAnonKey string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// AI provider names
const (
	AIProviderGemini = "gemini"
	AIProviderOpenAI = "openai"
)

type AIConfig struct {
	Provider        string
	APIKey          string
	Model           string
	BaseURL         string
	Timeout         time.Duration
	Temperature     float64
	MaxOutputTokens int
}

// Quota storage backends
const (
	QuotaBackendDatabase = "database"
	QuotaBackendRedis    = "redis"
)

type QuotaConfig struct {
	DailyLimit int
	// CountFailedCalls keeps the reservation when the model call or parsing fails.
	CountFailedCalls bool
	Backend          string
	RetentionDays    int
}

type LogConfig struct {
	Level    string
	Format   string
	FilePath string
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	BaseURL         string // CloudFront or S3 direct URL
	Endpoint        string // S3-compatible endpoint such as MinIO; path-style addressing
}

// Enabled reports whether exports should be uploaded to S3.
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "replydesk"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),

			MaxOpenConns:    parseInt(getEnv("DB_MAX_OPEN_CONNS", "25"), 25),
			MaxIdleConns:    parseInt(getEnv("DB_MAX_IDLE_CONNS", "5"), 5),
			ConnMaxLifetime: parseDuration(getEnv("DB_CONN_MAX_LIFETIME", "30m"), 30*time.Minute),
			ConnectTimeout:  parseDuration(getEnv("DB_CONNECT_TIMEOUT", "5s"), 5*time.Second),
			SlowQuery:       parseDuration(getEnv("DB_SLOW_QUERY", "500ms"), 500*time.Millisecond),
		},
		Redis: RedisConfig{
			Enabled:  parseBool(getEnv("REDIS_ENABLED", "false"), false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),

			PoolSize:     parseInt(getEnv("REDIS_POOL_SIZE", "10"), 10),
			DialTimeout:  parseDuration(getEnv("REDIS_DIAL_TIMEOUT", "3s"), 3*time.Second),
			ReadTimeout:  parseDuration(getEnv("REDIS_READ_TIMEOUT", "1s"), time.Second),
			WriteTimeout: parseDuration(getEnv("REDIS_WRITE_TIMEOUT", "1s"), time.Second),
		},
		Auth: AuthConfig{
			Mode:            strings.ToLower(getEnv("AUTH_MODE", AuthModeSecret)),
			JWTSecret:       getEnv("SUPABASE_JWT_SECRET", ""),
			JWKSURL:         getEnv("SUPABASE_JWKS_URL", ""),
			SupabaseURL:     getEnv("SUPABASE_URL", ""),
			SupabaseAnonKey: getEnv("SUPABASE_ANON_KEY", ""),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		},
		AI: AIConfig{
			Provider:        strings.ToLower(getEnv("AI_PROVIDER", AIProviderGemini)),
			APIKey:          getEnv("AI_API_KEY", os.Getenv("GEMINI_API_KEY")),
			Model:           getEnv("AI_MODEL", ""),
			BaseURL:         getEnv("AI_BASE_URL", ""),
			Timeout:         parseDuration(getEnv("AI_TIMEOUT", "30s"), 30*time.Second),
			Temperature:     parseFloat(getEnv("AI_TEMPERATURE", "0.7"), 0.7),
			MaxOutputTokens: parseInt(getEnv("AI_MAX_OUTPUT_TOKENS", "2048"), 2048),
		},
		Quota: QuotaConfig{
			DailyLimit:       parseInt(getEnv("QUOTA_DAILY_LIMIT", "50"), 50),
			CountFailedCalls: parseBool(getEnv("QUOTA_COUNT_FAILED_CALLS", "true"), true),
			Backend:          strings.ToLower(getEnv("QUOTA_BACKEND", QuotaBackendDatabase)),
			RetentionDays:    parseInt(getEnv("QUOTA_RETENTION_DAYS", "30"), 30),
		},
		Log: LogConfig{
			Level:    getEnv("LOG_LEVEL", ""),
			Format:   getEnv("LOG_FORMAT", "console"),
			FilePath: getEnv("LOG_FILE", ""),
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			Bucket:          getEnv("AWS_S3_BUCKET", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			BaseURL:         getEnv("AWS_S3_BASE_URL", ""),
			Endpoint:        getEnv("AWS_S3_ENDPOINT", ""),
		},
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.Auth.Mode {
	case AuthModeSecret:
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("SUPABASE_JWT_SECRET is required when AUTH_MODE=%s", AuthModeSecret)
		}
	case AuthModeJWKS:
		if c.Auth.JWKSURL == "" {
			return fmt.Errorf("SUPABASE_JWKS_URL is required when AUTH_MODE=%s", AuthModeJWKS)
		}
	case AuthModeRemote:
		if c.Auth.SupabaseURL == "" || c.Auth.SupabaseAnonKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_ANON_KEY are required when AUTH_MODE=%s", AuthModeRemote)
		}
	default:
		return fmt.Errorf("unknown AUTH_MODE %q", c.Auth.Mode)
	}

	switch c.AI.Provider {
	case AIProviderGemini, AIProviderOpenAI:
	default:
		return fmt.Errorf("unknown AI_PROVIDER %q", c.AI.Provider)
	}

	switch c.Quota.Backend {
	case QuotaBackendDatabase:
	case QuotaBackendRedis:
		if !c.Redis.Enabled {
			return fmt.Errorf("QUOTA_BACKEND=redis requires REDIS_ENABLED=true")
		}
	default:
		return fmt.Errorf("unknown QUOTA_BACKEND %q", c.Quota.Backend)
	}

	if c.Quota.DailyLimit < 0 {
		return fmt.Errorf("QUOTA_DAILY_LIMIT must not be negative")
	}
	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be at least 1")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		c.Database.MaxIdleConns = c.Database.MaxOpenConns
	}
	return nil
}

func (c *DatabaseConfig) DSN() string {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
	if secs := int(c.ConnectTimeout.Seconds()); secs > 0 {
		dsn += fmt.Sprintf(" connect_timeout=%d", secs)
	}
	return dsn
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return v
}

func parseFloat(s string, fallback float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		log.Printf("Invalid number %s, using default %v", s, fallback)
		return fallback
	}
	return v
}

func parseBool(s string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return v
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
