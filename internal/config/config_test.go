package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SAPSIM_CONFIG", "")
	t.Setenv("SAPSIM_GUI_MODE", "")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "en", cfg.Lang)
	assert.Zero(t, cfg.ShutdownTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SAPSIM_CONFIG", "/etc/sapsim.yaml")
	t.Setenv("SAPSIM_LOG_LEVEL", "debug")
	t.Setenv("SAPSIM_LANG", "es")
	t.Setenv("SAPSIM_SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("SAPSIM_GUI_MODE", "headless")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, Config{
		ConfigPath:      "/etc/sapsim.yaml",
		LogLevel:        "debug",
		Lang:            "es",
		ShutdownTimeout: 3 * time.Second,
		GUIMode:         "headless",
	}, cfg)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("SAPSIM_SHUTDOWN_TIMEOUT", "soon")
	_, err := Load()
	assert.Error(t, err)
}
