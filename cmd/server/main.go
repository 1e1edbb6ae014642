package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/unimatch/unimatch-backend/internal/config"
	"github.com/unimatch/unimatch-backend/internal/database"
	"github.com/unimatch/unimatch-backend/internal/handler"
	"github.com/unimatch/unimatch-backend/internal/logger"
	"github.com/unimatch/unimatch-backend/internal/repository"
	"github.com/unimatch/unimatch-backend/internal/router"
	"github.com/unimatch/unimatch-backend/internal/service"
	"github.com/unimatch/unimatch-backend/internal/validator"
	"github.com/unimatch/unimatch-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting UniMatch Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	institutionRepo := repository.NewInstitutionRepository(pool)
	analyticsRepo := repository.NewAnalyticsRepository(pool)
	preferenceRepo := repository.NewPreferenceRepository(pool)
	programRepo := repository.NewProgramRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	decisionRepo := repository.NewDecisionRepository(rdb)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg)
	analyticsService := service.NewAnalyticsService(analyticsRepo, rdb, cfg.ReportCacheTTL, log)
	recommendationService := service.NewRecommendationService(institutionRepo, preferenceRepo, log)
	feedService := service.NewFeedService(recommendationService, institutionRepo, decisionRepo, userRepo, cfg.FeedBatchSize, log)
	institutionService := service.NewInstitutionService(institutionRepo, preferenceRepo, log)
	preferenceService := service.NewPreferenceService(preferenceRepo, log)
	programService := service.NewProgramService(programRepo)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Institution: handler.NewInstitutionHandler(institutionService, recommendationService),
		Analytics:   handler.NewAnalyticsHandler(analyticsService, cfg.DefaultReportLimit),
		Preference:  handler.NewPreferenceHandler(preferenceService),
		Program:     handler.NewProgramHandler(programService),
		User:        handler.NewUserHandler(feedService),
		FeedWS:      handler.NewFeedWSHandler(feedService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	// The prewarm worker keeps the analytics report caches hot; its first
	// refresh starts immediately, alongside the HTTP server.
	workerCtx, workerCancel := context.WithCancel(context.Background())

	prewarmWorker := worker.NewPrewarmWorker(analyticsService, cfg.DefaultReportLimit, cfg.ReportCacheTTL, log)
	go prewarmWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers.
	workerCancel()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
