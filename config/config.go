package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	Port        string `env:"PORT" envDefault:"8102" validate:"required"`
	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`

	// Worker pool
	Workers            int `env:"WORKERS" envDefault:"8" validate:"min=1,max=1024"`
	WorkerPollInterval int `env:"WORKER_POLL_INTERVAL_MS" envDefault:"1000" validate:"min=10,max=60000"`
	Prefetch           int `env:"PREFETCH" envDefault:"8" validate:"min=1,max=1000"`

	// Default outbound timeout for jobs that set none, in milliseconds.
	JobTimeout int `env:"JOB_TIMEOUT_MS" envDefault:"3000" validate:"min=1"`

	// SchedulerEnabled turns off the promoter loop on read-only replicas.
	SchedulerEnabled bool `env:"SCHEDULER_ENABLED" envDefault:"true"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
