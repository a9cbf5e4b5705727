package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun_ReturnsConfigurationError(t *testing.T) {
	t.Setenv("MONITOR_INTERVAL_SECONDS", "0")

	err := run()
	assert.ErrorContains(t, err, "failed to load configuration")
	assert.ErrorContains(t, err, "MONITOR_INTERVAL_SECONDS must be positive")
}
