package config

import (
	"fmt"
	"strings"
)

var (
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"text", "json"}
)

// ValidateConfig performs validation on the complete configuration
func ValidateConfig(config *Config) error {
	if err := config.Store.Validate(); err != nil {
		return fmt.Errorf("store validation failed: %w", err)
	}

	if err := config.Cache.Validate(); err != nil {
		return fmt.Errorf("cache validation failed: %w", err)
	}

	if err := config.Log.Validate(); err != nil {
		return fmt.Errorf("log validation failed: %w", err)
	}

	if config.Prove.Workers < 0 {
		return fmt.Errorf("prove validation failed: workers must not be negative, got %d", config.Prove.Workers)
	}

	return nil
}

// Validate performs validation on the log configuration
func (l *LogConfig) Validate() error {
	if !contains_slice(validLogLevels, strings.ToLower(l.Level)) {
		return fmt.Errorf("invalid log level: %s (valid options: %v)", l.Level, validLogLevels)
	}
	if !contains_slice(validLogFormats, strings.ToLower(l.Format)) {
		return fmt.Errorf("invalid log format: %s (valid options: %v)", l.Format, validLogFormats)
	}
	return nil
}
