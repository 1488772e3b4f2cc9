package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/actionsum/appusage/internal/catalog"
	"github.com/actionsum/appusage/internal/config"
	"github.com/actionsum/appusage/internal/database"
)

// loadConfig loads the config file and environment, then applies the global
// flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyWindow overrides the configured report window when the flag was set.
func applyWindow(cmd *cobra.Command, cfg *config.Config, name string, window time.Duration) error {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return cfg.SetWindow(window)
}

// openStore connects to and migrates the usage store.
func openStore(cfg *config.Config) (*database.DB, *database.Repository, error) {
	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Initialize(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, database.NewRepository(db), nil
}

// newResolver builds the catalog resolver selected by cfg.
func newResolver(cfg *config.Config, logger *zap.Logger) (*catalog.Resolver, error) {
	dirs := catalog.DefaultDirs()
	source, err := catalog.New(cfg.Catalog.Source, dirs, cfg.Catalog.Locale, logger)
	if err != nil {
		return nil, err
	}
	return catalog.NewResolver(source, catalog.NewIconTheme(dirs), logger), nil
}

// confirm asks a yes/no question on out and reads the answer from in.
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s (yes/no): ", prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
