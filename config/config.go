package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"optionTracker/internal/adapters/logger"
)

// Config holds all application configuration.
type Config struct {
	// Database
	DBPath string

	// Logging
	LogLevel      logger.LogLevel
	LogFile       string // Empty logs to stderr; set to write rotated JSON logs
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int

	// Monitor
	MonitorInterval time.Duration

	// HTTP
	HTTPAddr string
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string

	// Database
	cfg.DBPath = getEnv("DB_PATH", "./trade_history/trades.db")

	// Logging
	cfg.LogLevel = logger.ParseLevel(getEnv("LOG_LEVEL", "INFO"))
	cfg.LogFile = getEnv("LOG_FILE", "")

	cfg.LogMaxSizeMB, err = getEnvAsIntRequired("LOG_MAX_SIZE_MB", 100)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid LOG_MAX_SIZE_MB: %v", err))
	} else if cfg.LogMaxSizeMB <= 0 {
		errs = append(errs, "LOG_MAX_SIZE_MB must be positive")
	}
	cfg.LogMaxBackups, err = getEnvAsIntRequired("LOG_MAX_BACKUPS", 5)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid LOG_MAX_BACKUPS: %v", err))
	} else if cfg.LogMaxBackups < 0 {
		errs = append(errs, "LOG_MAX_BACKUPS cannot be negative")
	}
	cfg.LogMaxAgeDays, err = getEnvAsIntRequired("LOG_MAX_AGE_DAYS", 30)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid LOG_MAX_AGE_DAYS: %v", err))
	} else if cfg.LogMaxAgeDays < 0 {
		errs = append(errs, "LOG_MAX_AGE_DAYS cannot be negative")
	}

	// Monitor
	intervalSeconds, err := getEnvAsIntRequired("MONITOR_INTERVAL_SECONDS", 5)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MONITOR_INTERVAL_SECONDS: %v", err))
	} else if intervalSeconds <= 0 {
		errs = append(errs, "MONITOR_INTERVAL_SECONDS must be positive")
	}
	cfg.MonitorInterval = time.Duration(intervalSeconds) * time.Second

	// HTTP
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8000")

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}
