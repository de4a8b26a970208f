package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"iclvault/internal/adapters/config"
	"iclvault/internal/adapters/errors/noop"
	"iclvault/internal/adapters/errors/sentry"
	"iclvault/internal/api"
	"iclvault/internal/api/health"
	"iclvault/internal/metrics"
	"iclvault/internal/predict"
	"iclvault/internal/registry"
	"iclvault/pkg/errors"
	"iclvault/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	// Initialize error tracker
	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	// Register Prometheus metrics
	metrics.Init()

	// Discover model artifacts
	reg := registry.New(cfg.Registry.Root, log)
	if reg.Len() == 0 {
		log.Fatalf("No model artifacts found under %s: %v", cfg.Registry.Root, errors.ErrRegistryEmpty)
	}
	metrics.RegistryArtifacts.Set(float64(reg.Len()))
	log.Infof("Model registry ready: %v", reg.Tags())

	// Scoring service
	router := predict.Router{
		FoundationTag: cfg.Routing.FoundationTag,
		SpecialistTag: cfg.Routing.SpecialistTag,
	}
	service := predict.NewService(reg, router, cfg.Compare.MaxConcurrency, cfg.Compare.ArtifactTimeout, log)

	// HTTP server
	predictHandler := api.NewPredictHandler(service, log)
	healthHandler := health.New(log, reg, cfg.App.Name, cfg.App.Version)
	server := api.NewServer(api.ServerConfig{
		Port:         cfg.Server.Port,
		ServiceName:  cfg.App.Name,
		Version:      cfg.App.Version,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		RateLimit:    cfg.Server.RateLimit,
		RateBurst:    cfg.Server.RateBurst,
	}, predictHandler, healthHandler, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	log.Info("System initialized successfully")

	waitForShutdown(server, errorTracker, log)
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// waitForShutdown waits for shutdown signal and performs graceful shutdown
func waitForShutdown(server *api.Server, errorTracker errors.Tracker, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("HTTP server shutdown error: %v", err)
	}

	// Flush error tracker
	if errorTracker != nil {
		if err := errorTracker.Flush(ctx); err != nil {
			log.Warnf("Failed to flush error tracker: %v", err)
		}
	}

	log.Info("Shutdown complete")
}
