package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the application settings. File values are the baseline;
// environment variables of the same name override them so deployments can
// tune a single knob without editing the file.
type Config struct {
	DatabasePath            string  `yaml:"database_path"`
	Reminder1OffsetMinutes  int     `yaml:"reminder_1_offset_minutes"`
	Reminder2OffsetMinutes  int     `yaml:"reminder_2_offset_minutes"`
	PollIntervalMinutes     int     `yaml:"poll_interval_minutes"`
	ConfidenceThreshold     float64 `yaml:"confidence_threshold"`
	MaxChatHistory          int     `yaml:"max_chat_history"`
}

// Default returns the built-in configuration used when no file is given.
func Default() *Config {
	return &Config{
		DatabasePath:           "events.db",
		Reminder1OffsetMinutes: 120,
		Reminder2OffsetMinutes: 2880,
		PollIntervalMinutes:    5,
		ConfidenceThreshold:    0.8,
		MaxChatHistory:         30,
	}
}

// Load reads the config file at path, falling back to defaults when the
// file does not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing YAML config: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		c.DatabasePath = v
	}
	overrideInt("REMINDER_1_OFFSET_MINUTES", &c.Reminder1OffsetMinutes)
	overrideInt("REMINDER_2_OFFSET_MINUTES", &c.Reminder2OffsetMinutes)
	overrideInt("POLL_INTERVAL_MINUTES", &c.PollIntervalMinutes)
	overrideInt("MAX_CHAT_HISTORY", &c.MaxChatHistory)

	if v := os.Getenv("CONFIDENCE_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.ConfidenceThreshold = f
		}
	}
}

func overrideInt(name string, target *int) {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*target = n
		}
	}
}

// Validate rejects settings the rest of the system cannot run with.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path is required")
	}
	if c.PollIntervalMinutes <= 0 {
		return fmt.Errorf("poll_interval_minutes must be positive, got %d", c.PollIntervalMinutes)
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence_threshold must be between 0 and 1, got %.2f", c.ConfidenceThreshold)
	}
	if c.MaxChatHistory <= 0 {
		return fmt.Errorf("max_chat_history must be positive, got %d", c.MaxChatHistory)
	}
	return nil
}
