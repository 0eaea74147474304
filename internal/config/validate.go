package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateFallback(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateMatching() error {
	thresholds := []struct {
		name  string
		value float64
	}{
		{"matching.confidence_threshold", c.Matching.ConfidenceThreshold},
		{"matching.auto_match_threshold", c.Matching.AutoMatchThreshold},
		{"matching.review_threshold", c.Matching.ReviewThreshold},
	}
	for _, threshold := range thresholds {
		if threshold.value < 0 || threshold.value > 1 {
			return fmt.Errorf("%s must be between 0 and 1", threshold.name)
		}
	}
	if c.Matching.ReviewThreshold > c.Matching.AutoMatchThreshold {
		return errors.New("matching.review_threshold must not exceed matching.auto_match_threshold")
	}
	if c.Matching.GoverningBodyID <= 0 {
		return errors.New("matching.governing_body_id must be positive")
	}
	return nil
}

func (c *Config) validateFallback() error {
	if !c.Fallback.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Fallback.APIKey) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/polilink/config.toml"
		}
		return fmt.Errorf("fallback.api_key is required when fallback.enabled is true. Edit %s (create with 'polilink config init')", defaultPath)
	}
	if c.Fallback.TimeoutSeconds <= 0 {
		return errors.New("fallback.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "console", "json", "":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
