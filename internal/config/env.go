package config

import (
	"os"
	"strconv"
	"time"
)

// LoadFromEnv loads configuration from environment variables
// Environment variables override default values
func LoadFromEnv(cfg *Config) {
	// Database configuration
	if dbPath := os.Getenv("APPUSAGE_DB_PATH"); dbPath != "" {
		cfg.Database.Path = dbPath
	}

	// Tracker configuration
	if pollInterval := os.Getenv("APPUSAGE_POLL_INTERVAL"); pollInterval != "" {
		if seconds, err := strconv.Atoi(pollInterval); err == nil && seconds > 0 {
			interval := time.Duration(seconds) * time.Second
			if interval >= cfg.Tracker.MinPollInterval && interval <= cfg.Tracker.MaxPollInterval {
				cfg.Tracker.PollInterval = interval
			}
		}
	}

	if idleThreshold := os.Getenv("APPUSAGE_IDLE_THRESHOLD"); idleThreshold != "" {
		if seconds, err := strconv.Atoi(idleThreshold); err == nil && seconds > 0 {
			cfg.Tracker.IdleThreshold = time.Duration(seconds) * time.Second
		}
	}

	if retention := os.Getenv("APPUSAGE_RETENTION"); retention != "" {
		if d, err := time.ParseDuration(retention); err == nil && d >= 0 {
			cfg.Tracker.Retention = d
		}
	}

	// Daemon configuration
	if pidFile := os.Getenv("APPUSAGE_PID_FILE"); pidFile != "" {
		cfg.Daemon.PIDFile = pidFile
	}

	// Report configuration
	if window := os.Getenv("APPUSAGE_WINDOW"); window != "" {
		if d, err := time.ParseDuration(window); err == nil && d >= 0 {
			cfg.Report.Window = d
		}
	}

	// Catalog configuration
	if source := os.Getenv("APPUSAGE_CATALOG_SOURCE"); source != "" {
		cfg.Catalog.Source = source
	}

	if locale := os.Getenv("APPUSAGE_LOCALE"); locale != "" {
		cfg.Catalog.Locale = locale
	}

	// Log configuration
	if level := os.Getenv("APPUSAGE_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	if file := os.Getenv("APPUSAGE_LOG_FILE"); file != "" {
		cfg.Log.File = file
	}
}

// New creates a new Config with default values, then applies the config
// file and the environment
func New() (*Config, error) {
	return Load("")
}

// Load is New with an explicit config file path. An empty path means the
// default location; a missing default file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if err := LoadFile(cfg, path); err != nil {
		return nil, err
	}
	LoadFromEnv(cfg)
	return cfg, nil
}
