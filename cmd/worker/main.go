package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"mlb_edge/pipeline/internal/api"
	"mlb_edge/pipeline/internal/cache"
	"mlb_edge/pipeline/internal/config"
	"mlb_edge/pipeline/internal/feeds/book"
	"mlb_edge/pipeline/internal/feeds/espn"
	"mlb_edge/pipeline/internal/feeds/sportsdataio"
	"mlb_edge/pipeline/internal/models"
	"mlb_edge/pipeline/internal/pipeline"
	"mlb_edge/pipeline/internal/predictor"
	"mlb_edge/pipeline/internal/reconcile"
	"mlb_edge/pipeline/internal/repository"
	"mlb_edge/pipeline/internal/scheduler"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logger
	setupLogger()

	log.Info().Msg("Starting MLB Edge Reconciliation Worker")

	// Load configuration
	cfg := config.MustLoad()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Msg("Configuration loaded")

	// Create context that listens for cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	// Initialize database connection
	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Initialize Redis cache
	dayCache, err := cache.New(ctx, cfg.RedisAddr(), cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
		dayCache = nil
	} else {
		defer dayCache.Close()
	}

	// Initialize feed clients
	scoreboard := espn.NewClient(cfg.ScoreboardBaseURL, cfg.ScoreboardTimeout)
	oddsFeed := sportsdataio.NewClient(cfg.OddsBaseURL, cfg.OddsAPIKey, cfg.OddsTimeout)
	bookFeed := book.NewClient(cfg.BookSnapshotURL, cfg.BookSnapshotTimeout, cfg.BookRateLimit, cfg.BookRateBurst)
	log.Info().Msg("Feed clients initialized")

	// Model service is optional; without it the worker maintains history only
	var pred predictor.Predictor
	if cfg.ModelServiceURL != "" {
		pred = predictor.NewClient(cfg.ModelServiceURL, cfg.ModelServiceTimeout)
		log.Info().Str("url", cfg.ModelServiceURL).Msg("Model service client initialized")
	} else {
		log.Warn().Msg("MODEL_SERVICE_URL not set, pick generation disabled")
	}

	pipe := pipeline.New(pipeline.Options{
		Scoreboard: scoreboard,
		Odds:       oddsFeed,
		Book:       bookFeed,
		Predictor:  pred,
		Stores:     pipeline.NewStores(db),
		Cache:      dayCache,
		Clamp: reconcile.ClampBounds{
			SpreadMin: cfg.SpreadMin,
			SpreadMax: cfg.SpreadMax,
			TotalMin:  cfg.TotalMin,
			TotalMax:  cfg.TotalMax,
		},
		Picks: predictor.PickConfig{
			PerDay:        cfg.PicksPerDay,
			MinConfidence: models.Confidence(cfg.MinConfidence),
		},
		TTLScores: time.Duration(cfg.CacheTTLScores) * time.Second,
		TTLOdds:   time.Duration(cfg.CacheTTLOdds) * time.Second,
	})

	// Start metrics HTTP server
	if cfg.EnableMetrics {
		go startMetricsServer(cfg.MetricsPort)
	}

	// Start read API server
	apiServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.APIPort),
		Handler: api.New(db).Router(),
	}
	go func() {
		log.Info().Int("port", cfg.APIPort).Msg("Starting API server")
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("API server failed")
		}
	}()

	// Create and start scheduler
	sched := scheduler.NewScheduler(cfg, pipe)

	if cfg.EnableScheduler {
		log.Info().Msg("Starting scheduler...")
		if err := sched.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
	}

	// Keep running until context is cancelled
	<-ctx.Done()

	// Graceful shutdown
	log.Info().Msg("Shutting down scheduler...")
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("API server shutdown failed")
	}

	log.Info().Msg("Worker shutdown complete")
}

// setupLogger configures the zerolog logger
func setupLogger() {
	// Pretty console logging in development
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	// Set log level
	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}

// startMetricsServer starts the Prometheus metrics HTTP server
func startMetricsServer(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	log.Info().Int("port", port).Msg("Starting metrics server")

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("Metrics server failed")
	}
}
