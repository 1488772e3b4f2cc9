// Package cli implements the appusage command line.
package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var (
	dbPath     string
	configPath string
	verbose    bool

	// RootCmd is the root command for appusage
	RootCmd = &cobra.Command{
		Use:   "appusage",
		Short: "Per-application foreground usage over a lookback window",
		Long: `appusage shows how long each installed, launchable application has
been in the foreground over a recent window, longest first.

Reading usage needs explicit usage access. The screen asks for it and
checks again every time it comes back to the foreground.

IMPORTANT: Usage is recorded by the tracker. Run 'appusage start' to
begin recording focus samples.

Examples:
  # Start recording usage
  appusage start

  # Grant usage access
  appusage access grant

  # Open the usage screen (default command)
  appusage

  # Print the last 8 hours as JSON
  appusage report --window 8h --json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runShow,
	}
)

func init() {
	// Global flags
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default: $XDG_DATA_HOME/appusage/usage.db)")
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/appusage/config.yaml)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	RootCmd.Flags().DurationVarP(&showWindow, "window", "w", 0, "lookback window (default from config, 1h)")

	RootCmd.SuggestionsMinimumDistance = 2

	RootCmd.AddCommand(showCmd)
	RootCmd.AddCommand(reportCmd)
	RootCmd.AddCommand(accessCmd)
	RootCmd.AddCommand(startCmd)
	RootCmd.AddCommand(stopCmd)
	RootCmd.AddCommand(statusCmd)
	RootCmd.AddCommand(clearCmd)
	RootCmd.AddCommand(versionCmd)
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return RootCmd.ExecuteContext(ctx)
}
