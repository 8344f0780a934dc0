package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ikkim/replydesk-backend/config"
	"github.com/ikkim/replydesk-backend/internal/app/controller"
	"github.com/ikkim/replydesk-backend/internal/app/repository"
	"github.com/ikkim/replydesk-backend/internal/app/service"
	"github.com/ikkim/replydesk-backend/internal/db"
	"github.com/ikkim/replydesk-backend/internal/middleware"
	"github.com/ikkim/replydesk-backend/internal/router"
	"github.com/ikkim/replydesk-backend/internal/scheduler"
	"github.com/ikkim/replydesk-backend/internal/storage"
	"github.com/ikkim/replydesk-backend/internal/websocket"
	"github.com/ikkim/replydesk-backend/pkg/auth"
	"github.com/ikkim/replydesk-backend/pkg/llm"
	"github.com/ikkim/replydesk-backend/pkg/logger"
	"github.com/ikkim/replydesk-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := cfg.Log.Level
	if logLevel == "" {
		logLevel = "info"
		if cfg.Server.Environment == "development" {
			logLevel = "debug"
		}
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      cfg.Log.Format,
		EnableColor: cfg.Log.Format == "console",
		FilePath:    cfg.Log.FilePath,
	})

	logger.Info("Starting ReplyDesk Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
		"ai_provider": cfg.AI.Provider,
		"quota":       cfg.Quota.Backend,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Fatal("Failed to initialize Redis", err)
		}
		defer redis.Close()
	}

	// Initialize repositories
	businessRepo := repository.NewBusinessRepository(db.GetDB())
	reviewRepo := repository.NewReviewRepository(db.GetDB())
	replyRepo := repository.NewReplyRepository(db.GetDB())
	templateRepo := repository.NewTemplateRepository(db.GetDB())
	usageRepo := repository.NewUsageRepository(db.GetDB())
	profileRepo := repository.NewProfileRepository(db.GetDB())

	// Realtime events
	hub := websocket.NewHub()
	go hub.Run(ctx)

	// Model provider. A missing key is reported per request as config_missing.
	provider, err := llm.New(llm.Config{
		Provider:        cfg.AI.Provider,
		APIKey:          cfg.AI.APIKey,
		BaseURL:         cfg.AI.BaseURL,
		Model:           cfg.AI.Model,
		Temperature:     cfg.AI.Temperature,
		MaxOutputTokens: cfg.AI.MaxOutputTokens,
	})
	if err != nil {
		logger.Fatal("Failed to create AI provider", err)
	}
	if !provider.Configured() {
		logger.Warn("AI provider has no API key; analysis requests will fail", map[string]interface{}{
			"provider": provider.Name(),
		})
	}

	var quotaStore service.QuotaStore
	switch cfg.Quota.Backend {
	case config.QuotaBackendRedis:
		quotaStore = service.NewRedisQuotaStore(redis.NewCounter(redis.GetClient()))
	default:
		quotaStore = service.NewDatabaseQuotaStore(usageRepo)
	}

	var exportStorage service.ExportStorage
	if cfg.S3.Enabled() {
		exportStorage = storage.NewS3Storage(cfg.S3)
	}

	// Initialize services
	quotaService := service.NewQuotaService(quotaStore, cfg.Quota.DailyLimit)
	businessService := service.NewBusinessService(businessRepo)
	analysisService := service.NewAnalysisService(
		provider,
		quotaService,
		reviewRepo,
		businessRepo,
		hub,
		service.AnalysisOptions{
			Timeout:          cfg.AI.Timeout,
			CountFailedCalls: cfg.Quota.CountFailedCalls,
		},
	)
	reviewService := service.NewReviewService(reviewRepo, replyRepo, usageRepo, businessService, hub)
	templateService := service.NewTemplateService(templateRepo, businessService)
	profileService := service.NewProfileService(profileRepo)
	importService := service.NewReviewImportService(reviewRepo, usageRepo)
	exportService := service.NewReviewExportService(reviewRepo, businessService, exportStorage)
	retentionService := service.NewUsageRetentionService(usageRepo, cfg.Quota.RetentionDays)

	// Initialize controllers
	analysisController := controller.NewAnalysisController(analysisService)
	businessController := controller.NewBusinessController(businessService)
	reviewController := controller.NewReviewController(reviewService, businessService, importService, exportService)
	templateController := controller.NewTemplateController(templateService)
	profileController := controller.NewProfileController(profileService, quotaService)
	realtimeController := controller.NewRealtimeController(hub, cfg.CORS.AllowedOrigins)

	// Initialize middleware
	verifier, err := auth.NewVerifier(ctx, cfg.Auth)
	if err != nil {
		logger.Fatal("Failed to create token verifier", err)
	}
	if closer, ok := verifier.(interface{ Close() }); ok {
		defer closer.Close()
	}
	authMiddleware := middleware.NewAuthMiddleware(verifier)

	// Setup router
	r := router.NewRouter(
		analysisController,
		businessController,
		reviewController,
		templateController,
		profileController,
		realtimeController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	retentionScheduler := scheduler.NewUsageRetentionScheduler(retentionService, scheduler.DefaultRetentionSchedule)
	if err := retentionScheduler.Start(); err != nil {
		logger.Fatal("Failed to start usage retention scheduler", err)
	}
	defer retentionScheduler.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	// In-flight model calls are bounded by the AI timeout.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.AI.Timeout+5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	cancel()

	logger.Info("Server stopped successfully")
}
