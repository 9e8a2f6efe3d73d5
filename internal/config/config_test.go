package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "events.db", cfg.DatabasePath)
	assert.Equal(t, 120, cfg.Reminder1OffsetMinutes)
	assert.Equal(t, 2880, cfg.Reminder2OffsetMinutes)
	assert.Equal(t, 5, cfg.PollIntervalMinutes)
	assert.Equal(t, 0.8, cfg.ConfidenceThreshold)
	assert.Equal(t, 30, cfg.MaxChatHistory)
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfigFile(t, `
database_path: /var/lib/bot/events.db
poll_interval_minutes: 1
confidence_threshold: 0.9
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/bot/events.db", cfg.DatabasePath)
	assert.Equal(t, 1, cfg.PollIntervalMinutes)
	assert.Equal(t, 0.9, cfg.ConfidenceThreshold)
	// Unset keys keep their defaults.
	assert.Equal(t, 30, cfg.MaxChatHistory)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfigFile(t, "poll_interval_minutes: 10\n")

	t.Setenv("POLL_INTERVAL_MINUTES", "2")
	t.Setenv("DATABASE_PATH", "/tmp/override.db")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.PollIntervalMinutes)
	assert.Equal(t, "/tmp/override.db", cfg.DatabasePath)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty database path", func(c *Config) { c.DatabasePath = "" }},
		{"zero poll interval", func(c *Config) { c.PollIntervalMinutes = 0 }},
		{"threshold above one", func(c *Config) { c.ConfidenceThreshold = 1.5 }},
		{"negative threshold", func(c *Config) { c.ConfidenceThreshold = -0.1 }},
		{"zero history", func(c *Config) { c.MaxChatHistory = 0 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, Default().Validate())
}
