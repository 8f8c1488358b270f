package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SufyanAli-7/Genix-AI/internal/provider"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(".env")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 12, cfg.Limits.FreeGenerations)
}

func TestWriteTimeoutCoversMusicPollingBudget(t *testing.T) {
	cfg, err := LoadConfig(".env")
	require.NoError(t, err)

	// A composition can legitimately take the whole polling budget;
	// the server must still be allowed to write the response.
	pollBudget := time.Duration(provider.DefaultMaxPollAttempts) * provider.DefaultPollInterval
	writeTimeout := time.Duration(cfg.App.WriteTimeout) * time.Second
	assert.Greater(t, writeTimeout, pollBudget)
}
