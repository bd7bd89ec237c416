package config

import (
	"fmt"

	"github.com/rs/zerolog"
)

// LoggingConfig selects the level and output format of every component logger.
type LoggingConfig struct {
	Level string `json:"level"`
	// Format is "json" or "console".
	Format string `json:"format"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "json"
	}
}

// Validate checks the level name and the format.
func (c LoggingConfig) Validate() error {
	if _, err := zerolog.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("unknown logging format %s", c.Format)
	}
	return nil
}
