package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optionTracker/internal/adapters/logger"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"DB_PATH", "LOG_LEVEL", "LOG_FILE", "LOG_MAX_SIZE_MB", "LOG_MAX_BACKUPS", "LOG_MAX_AGE_DAYS", "MONITOR_INTERVAL_SECONDS", "HTTP_ADDR"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "./trade_history/trades.db", cfg.DBPath)
	assert.Equal(t, logger.LevelInfo, cfg.LogLevel)
	assert.Empty(t, cfg.LogFile)
	assert.Equal(t, 5*time.Second, cfg.MonitorInterval)
	assert.Equal(t, ":8000", cfg.HTTPAddr)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("DB_PATH", "/tmp/trades.db")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FILE", "/tmp/tracker.log")
	t.Setenv("MONITOR_INTERVAL_SECONDS", "2")
	t.Setenv("HTTP_ADDR", "127.0.0.1:9000")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/trades.db", cfg.DBPath)
	assert.Equal(t, logger.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "/tmp/tracker.log", cfg.LogFile)
	assert.Equal(t, 2*time.Second, cfg.MonitorInterval)
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTPAddr)
}

func TestLoadConfig_CollectsErrors(t *testing.T) {
	t.Setenv("MONITOR_INTERVAL_SECONDS", "0")
	t.Setenv("LOG_MAX_SIZE_MB", "big")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONITOR_INTERVAL_SECONDS must be positive")
	assert.Contains(t, err.Error(), "invalid LOG_MAX_SIZE_MB")
}
