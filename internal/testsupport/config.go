package testsupport

import (
	"path/filepath"
	"testing"

	"matinee/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.APIKey = "test"
	cfg.DataDir = filepath.Join(base, "data")
	cfg.LogDir = filepath.Join(base, "logs")
	cfg.MediaDir = filepath.Join(base, "movies")
	cfg.APIBind = "127.0.0.1:0"
	cfg.BackoffBaseMs = 1

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithWorkers sets the concurrency cap on the test config.
func WithWorkers(workers int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.MaxConcurrentWorkers = workers
	}
}

// WithRetryLimit sets the retry limit on the test config.
func WithRetryLimit(limit int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.RetryLimit = limit
	}
}
