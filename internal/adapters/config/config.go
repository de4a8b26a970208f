package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"iclvault/pkg/errors"
)

type Config struct {
	App           AppConfig
	Server        ServerConfig
	Registry      RegistryConfig
	Routing       RoutingConfig
	Compare       CompareConfig
	ErrorTracking ErrorTrackingConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"iclvault"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Version  string `envconfig:"APP_VERSION" default:"dev"`
}

type ServerConfig struct {
	Port         int           `envconfig:"HTTP_PORT" default:"8080"`
	ReadTimeout  time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"10s"`
	WriteTimeout time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"30s"`
	// Requests per second across all prediction endpoints
	RateLimit float64 `envconfig:"HTTP_RATE_LIMIT" default:"50"`
	RateBurst int     `envconfig:"HTTP_RATE_BURST" default:"100"`
}

type RegistryConfig struct {
	// Root directory whose immediate subdirectories are candidate artifacts
	Root string `envconfig:"MODEL_REGISTRY_ROOT" default:"models/archives"`
}

// RoutingConfig names the two artifacts that participate in production
// routing. All other registered artifacts are reachable only through the
// comparison endpoint.
type RoutingConfig struct {
	FoundationTag string `envconfig:"ROUTING_FOUNDATION_TAG" default:"gestalt-24f-756c"`
	SpecialistTag string `envconfig:"ROUTING_SPECIALIST_TAG" default:"gestalt-27f-756c"`
}

type CompareConfig struct {
	// Max artifacts scored concurrently in comparison mode
	MaxConcurrency int `envconfig:"COMPARE_MAX_CONCURRENCY" default:"4"`
	// Deadline applied per artifact so one slow model cannot block the rest
	ArtifactTimeout time.Duration `envconfig:"COMPARE_ARTIFACT_TIMEOUT" default:"5s"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"false"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	return &cfg, nil
}
