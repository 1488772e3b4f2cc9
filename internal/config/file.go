package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the YAML config file. Durations use Go syntax ("90m").
type fileConfig struct {
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Tracker struct {
		PollInterval  string `yaml:"poll_interval"`
		IdleThreshold string `yaml:"idle_threshold"`
		Retention     string `yaml:"retention"`
	} `yaml:"tracker"`
	Daemon struct {
		PIDFile string `yaml:"pid_file"`
	} `yaml:"daemon"`
	Report struct {
		Window string `yaml:"window"`
	} `yaml:"report"`
	Catalog struct {
		Source string `yaml:"source"`
		Locale string `yaml:"locale"`
	} `yaml:"catalog"`
	Access struct {
		Package string `yaml:"package"`
	} `yaml:"access"`
	Log struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
	} `yaml:"log"`
}

// DefaultFilePath returns $XDG_CONFIG_HOME/appusage/config.yaml.
func DefaultFilePath() string {
	return filepath.Join(xdg.ConfigHome, "appusage", "config.yaml")
}

// LoadFile applies the YAML file at path to cfg. Only keys present in the
// file change cfg.
func LoadFile(cfg *Config, path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultFilePath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	setString(&cfg.Database.Path, fc.Database.Path)
	setString(&cfg.Daemon.PIDFile, fc.Daemon.PIDFile)
	setString(&cfg.Catalog.Source, fc.Catalog.Source)
	setString(&cfg.Catalog.Locale, fc.Catalog.Locale)
	setString(&cfg.Access.Package, fc.Access.Package)
	setString(&cfg.Log.Level, fc.Log.Level)
	setString(&cfg.Log.File, fc.Log.File)
	if fc.Log.MaxSizeMB > 0 {
		cfg.Log.MaxSizeMB = fc.Log.MaxSizeMB
	}
	if fc.Log.MaxBackups > 0 {
		cfg.Log.MaxBackups = fc.Log.MaxBackups
	}

	durations := []struct {
		key   string
		value string
		dst   *time.Duration
	}{
		{"tracker.poll_interval", fc.Tracker.PollInterval, &cfg.Tracker.PollInterval},
		{"tracker.idle_threshold", fc.Tracker.IdleThreshold, &cfg.Tracker.IdleThreshold},
		{"tracker.retention", fc.Tracker.Retention, &cfg.Tracker.Retention},
		{"report.window", fc.Report.Window, &cfg.Report.Window},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", d.key, d.value, err)
		}
		*d.dst = parsed
	}

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
