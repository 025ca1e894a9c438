package config_test

import (
	"log/slog"
	"testing"

	"github.com/irisqo/irisqo/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/irisqo")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "8102", cfg.Port)
	assert.Equal(t, "9090", cfg.MetricsPort)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 1000, cfg.WorkerPollInterval)
	assert.Equal(t, 8, cfg.Prefetch)
	assert.Equal(t, 3000, cfg.JobTimeout)
	assert.True(t, cfg.SchedulerEnabled)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/irisqo")
	t.Setenv("WORKERS", "32")
	t.Setenv("SCHEDULER_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.Workers)
	assert.False(t, cfg.SchedulerEnabled)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/irisqo")
	t.Setenv("WORKERS", "0")

	_, err := config.Load()
	assert.Error(t, err)
}
