package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Detection strategy names accepted in DETECTION_STRATEGY.
const (
	StrategyServerClock  = "server-clock"
	StrategyLedgerLength = "ledger-length"
)

// Config holds all configuration values for the service
type Config struct {
	// HTTP server
	Port       int
	AdminToken string

	// Remote game service
	TerraBaseURL string

	// Database
	DatabasePath string

	// Polling
	PollingIntervalSeconds int
	PollWorkers            int
	DetectionStrategy      string
	UpdateUnchanged        bool

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		AdminToken:        os.Getenv("ADMIN_TOKEN"),
		TerraBaseURL:      getEnvOrDefault("TERRA_BASE_URL", "https://terra.snellman.net"),
		DatabasePath:      getEnvOrDefault("DATABASE_PATH", "./data/terrabot.db"),
		DetectionStrategy: getEnvOrDefault("DETECTION_STRATEGY", StrategyServerClock),
		LogLevel:          getEnvOrDefault("LOG_LEVEL", "info"),
	}

	port, err := strconv.Atoi(getEnvOrDefault("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}
	cfg.Port = port

	// 0 disables the background poll loop; polling is then HTTP-triggered only
	interval, err := strconv.Atoi(getEnvOrDefault("POLLING_INTERVAL_SECONDS", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid POLLING_INTERVAL_SECONDS: %w", err)
	}
	cfg.PollingIntervalSeconds = interval

	workers, err := strconv.Atoi(getEnvOrDefault("POLL_WORKERS", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid POLL_WORKERS: %w", err)
	}
	if workers < 1 {
		return nil, fmt.Errorf("POLL_WORKERS must be at least 1")
	}
	cfg.PollWorkers = workers

	updateUnchanged, err := strconv.ParseBool(getEnvOrDefault("UPDATE_UNCHANGED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid UPDATE_UNCHANGED: %w", err)
	}
	cfg.UpdateUnchanged = updateUnchanged

	// Validate required fields
	if cfg.AdminToken == "" {
		return nil, fmt.Errorf("ADMIN_TOKEN is required")
	}
	if cfg.DetectionStrategy != StrategyServerClock && cfg.DetectionStrategy != StrategyLedgerLength {
		return nil, fmt.Errorf("invalid DETECTION_STRATEGY: %q", cfg.DetectionStrategy)
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
