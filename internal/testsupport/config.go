package testsupport

import (
	"path/filepath"
	"testing"

	"polilink/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithThresholds sets the broad-flow confidence bands on the test config.
func WithThresholds(auto, review float64) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Matching.AutoMatchThreshold = auto
		cfg.Matching.ReviewThreshold = review
	}
}

// WithFallback enables the fallback matcher pointed at the given base URL.
func WithFallback(baseURL, apiKey string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Fallback.Enabled = true
		cfg.Fallback.BaseURL = baseURL
		cfg.Fallback.APIKey = apiKey
	}
}
