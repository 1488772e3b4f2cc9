package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/actionsum/appusage/internal/access"
	"github.com/actionsum/appusage/internal/logging"
	"github.com/actionsum/appusage/internal/reporter"
	"github.com/actionsum/appusage/internal/usage"
)

// ErrAccessDenied is returned when a command needs usage access it lacks.
var ErrAccessDenied = errors.New("usage access not granted")

var (
	reportWindow time.Duration
	reportJSON   bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print foreground time per application",
	Long: `Print the foreground time of every launchable application over the
lookback window ending now, longest first. Applications that were never in
the foreground, and packages without a launcher entry, are left out.

Requires usage access (see 'appusage access grant').`,
	Example: `  # Last hour as a table
  appusage report

  # Last 8 hours as JSON
  appusage report --window 8h --json`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().DurationVarP(&reportWindow, "window", "w", 0, "lookback window (default from config, 1h)")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "print JSON")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyWindow(cmd, cfg, "window", reportWindow); err != nil {
		return err
	}

	logger := logging.NewCLI(verbose)
	defer logger.Sync()

	db, repo, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	gate := access.NewGate(repo, access.HintSettings{Out: cmd.ErrOrStderr()}, access.CurrentIdentity(cfg.Access.Package), logger)
	granted, err := gate.HasUsageAccess(ctx)
	if err != nil {
		return fmt.Errorf("failed to check usage access: %w", err)
	}
	if !granted {
		_ = gate.RequestUsageAccess(ctx)
		return ErrAccessDenied
	}

	resolver, err := newResolver(cfg, logger)
	if err != nil {
		return err
	}

	report, err := usage.NewAggregator(repo, resolver, usage.WithLogger(logger)).UsageReport(ctx, cfg.Report.Window)
	if errors.Is(err, usage.ErrUnsupportedPlatform) {
		return fmt.Errorf("%w: the store predates aggregated usage, remove it and restart the tracker", err)
	}
	if err != nil {
		return err
	}

	if !reportJSON {
		return reporter.FormatText(cmd.OutOrStdout(), report)
	}

	icons, err := resolver.Icons(ctx, report.PackageIDs())
	if err != nil {
		logger.Debug("icon lookup failed", zap.Error(err))
	}
	data, err := reporter.FormatJSON(report, icons)
	if err != nil {
		return fmt.Errorf("failed to format JSON: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
