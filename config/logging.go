package config

import (
	"fmt"

	"github.com/gasotec/dispatch/infra/logger"
)

// LoggingConfig defines the log output settings.
type LoggingConfig struct {
	// Level is the minimum level emitted: "debug", "info", "warn" or
	// "error".
	Level string `json:"level"`
	// Pretty switches to human readable console output instead of JSON.
	Pretty bool `json:"pretty"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
}

// Build returns a logger for the component honouring these settings.
func (c LoggingConfig) Build(component string) logger.Logger {
	return logger.NewConfigured(component, c.Level, c.Pretty)
}

// Validate checks the level is known.
func (c LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("unknown log level %s", c.Level)
	}
}
