package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/actionsum/appusage/internal/access"
	"github.com/actionsum/appusage/internal/logging"
	"github.com/actionsum/appusage/internal/presenter"
	"github.com/actionsum/appusage/internal/tui"
	"github.com/actionsum/appusage/internal/usage"
)

var showWindow time.Duration

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Open the usage screen",
	Long: `Open the interactive usage screen.

Without usage access the screen offers to open the access settings. The
permission is checked again and the list rebuilt whenever the screen
returns to the foreground: on start, on regaining terminal focus, after
ctrl+z and after the settings close. Press r to refresh by hand.`,
	Example: `  # Show the last hour
  appusage show

  # Show the last day
  appusage show --window 24h`,
	RunE: runShow,
}

func init() {
	showCmd.Flags().DurationVarP(&showWindow, "window", "w", 0, "lookback window (default from config, 1h)")
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyWindow(cmd, cfg, "window", showWindow); err != nil {
		return err
	}

	// The screen owns the terminal, so logs go to the log file.
	logger := logging.NewDaemon(cfg.Log)
	defer logger.Sync()

	db, repo, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	resolver, err := newResolver(cfg, logger)
	if err != nil {
		return err
	}

	settings, err := settingsCommand()
	if err != nil {
		return err
	}

	gate := access.NewGate(repo, settings, access.CurrentIdentity(cfg.Access.Package), logger)
	aggregator := usage.NewAggregator(repo, resolver, usage.WithLogger(logger))

	screen := presenter.NewScreen(cmd.Context(), gate, aggregator, resolver, cfg.Report.Window, logger)
	host := presenter.NewHost()
	detach := screen.Attach(host)
	defer detach()

	return tui.Run(cmd.Context(), screen, host, settings, logger)
}

// settingsCommand runs 'appusage access grant' with the same global flags.
func settingsCommand() (*tui.ExecSettings, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to locate executable: %w", err)
	}
	args := []string{"access", "grant"}
	if dbPath != "" {
		args = append(args, "--db", dbPath)
	}
	if configPath != "" {
		args = append(args, "--config", configPath)
	}
	return &tui.ExecSettings{Path: exe, Args: args}, nil
}
