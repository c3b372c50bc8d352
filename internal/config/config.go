package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config stores environment-driven settings for the server.
type Config struct {
	// ConfigPath is the YAML configuration file; empty selects the embedded default.
	ConfigPath string `env:"SAPSIM_CONFIG"`
	// LogLevel sets the logger level.
	LogLevel string `env:"SAPSIM_LOG_LEVEL" envDefault:"info"`
	// Lang selects message language (en, es).
	Lang string `env:"SAPSIM_LANG" envDefault:"en"`
	// ShutdownTimeout overrides server.shutdown_timeout when set.
	ShutdownTimeout time.Duration `env:"SAPSIM_SHUTDOWN_TIMEOUT"`
	// GUIMode overrides gui.mode when set (auto, gui, headless).
	GUIMode string `env:"SAPSIM_GUI_MODE"`
}

// Load parses environment variables into Config.
func Load() (Config, error) {
	return env.ParseAs[Config]()
}
