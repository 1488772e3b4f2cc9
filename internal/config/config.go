package config

import (
	"fmt"
	"os"
	"time"

	"github.com/actionsum/appusage/internal/catalog"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// Tracker configuration
	Tracker TrackerConfig

	// Daemon configuration
	Daemon DaemonConfig

	// Report configuration
	Report ReportConfig

	// Catalog configuration
	Catalog CatalogConfig

	// Access configuration
	Access AccessConfig

	// Log configuration
	Log LogConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path string // Path to SQLite database file
}

// TrackerConfig holds tracking behavior configuration
type TrackerConfig struct {
	PollInterval    time.Duration // How often to check focused window
	MinPollInterval time.Duration // Minimum allowed poll interval
	MaxPollInterval time.Duration // Maximum allowed poll interval
	IdleThreshold   time.Duration // Time before considering user idle
	Retention       time.Duration // Events older than this are pruned; 0 keeps everything
}

// DaemonConfig holds daemon process configuration
type DaemonConfig struct {
	PIDFile string // Path to PID file for daemon management
}

// ReportConfig holds report generation configuration
type ReportConfig struct {
	Window time.Duration // Lookback window of a usage report
}

// CatalogConfig selects how launchable applications are enumerated
type CatalogConfig struct {
	Source string // "auto", "xdg" or "legacy"
	Locale string // Overrides LC_ALL/LC_MESSAGES/LANG when set
}

// AccessConfig identifies this program in the operation-mode table
type AccessConfig struct {
	Package string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string // debug, info, warn, error
	File       string // Daemon log file
	MaxSizeMB  int
	MaxBackups int
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "", // Empty means use default $XDG_DATA_HOME/appusage/usage.db
		},
		Tracker: TrackerConfig{
			PollInterval:    10 * time.Second,
			MinPollInterval: 1 * time.Second,
			MaxPollInterval: 300 * time.Second,
			IdleThreshold:   300 * time.Second,
			Retention:       90 * 24 * time.Hour,
		},
		Daemon: DaemonConfig{
			PIDFile: fmt.Sprintf("/tmp/appusage-%d.pid", os.Getuid()),
		},
		Report: ReportConfig{
			Window: time.Hour,
		},
		Catalog: CatalogConfig{
			Source: catalog.KindAuto,
		},
		Access: AccessConfig{
			Package: "appusage",
		},
		Log: LogConfig{
			Level:      "info",
			File:       fmt.Sprintf("/tmp/appusage-%d.log", os.Getuid()),
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate tracker intervals
	if c.Tracker.PollInterval < c.Tracker.MinPollInterval {
		return fmt.Errorf("poll interval (%v) cannot be less than minimum (%v)",
			c.Tracker.PollInterval, c.Tracker.MinPollInterval)
	}

	if c.Tracker.PollInterval > c.Tracker.MaxPollInterval {
		return fmt.Errorf("poll interval (%v) cannot be greater than maximum (%v)",
			c.Tracker.PollInterval, c.Tracker.MaxPollInterval)
	}

	if c.Tracker.IdleThreshold < 0 {
		return fmt.Errorf("idle threshold cannot be negative")
	}

	if c.Tracker.Retention < 0 {
		return fmt.Errorf("retention cannot be negative")
	}

	if c.Report.Window < 0 {
		return fmt.Errorf("report window cannot be negative")
	}

	switch c.Catalog.Source {
	case catalog.KindAuto, catalog.KindXDG, catalog.KindLegacy:
	default:
		return fmt.Errorf("catalog source must be one of auto, xdg, legacy, got %q", c.Catalog.Source)
	}

	if c.Access.Package == "" {
		return fmt.Errorf("access package cannot be empty")
	}

	// Validate daemon config
	if c.Daemon.PIDFile == "" {
		return fmt.Errorf("PID file path cannot be empty")
	}

	return nil
}

// SetPollInterval sets the poll interval with validation
func (c *Config) SetPollInterval(interval time.Duration) error {
	if interval < c.Tracker.MinPollInterval {
		return fmt.Errorf("poll interval cannot be less than %v", c.Tracker.MinPollInterval)
	}
	if interval > c.Tracker.MaxPollInterval {
		return fmt.Errorf("poll interval cannot be greater than %v", c.Tracker.MaxPollInterval)
	}
	c.Tracker.PollInterval = interval
	return nil
}

// SetWindow sets the report window with validation
func (c *Config) SetWindow(window time.Duration) error {
	if window < 0 {
		return fmt.Errorf("report window cannot be negative, got %v", window)
	}
	c.Report.Window = window
	return nil
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(`Configuration:
  Database:
    Path: %s
  Tracker:
    Poll Interval: %v
    Idle Threshold: %v
    Retention: %v
  Daemon:
    PID File: %s
  Report:
    Window: %v
  Catalog:
    Source: %s
    Locale: %s
  Log:
    Level: %s
    File: %s`,
		c.Database.Path,
		c.Tracker.PollInterval,
		c.Tracker.IdleThreshold,
		c.Tracker.Retention,
		c.Daemon.PIDFile,
		c.Report.Window,
		c.Catalog.Source,
		c.Catalog.Locale,
		c.Log.Level,
		c.Log.File,
	)
}
