package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/actionsum/appusage/internal/access"
	"github.com/actionsum/appusage/internal/config"
	"github.com/actionsum/appusage/internal/daemon"
	"github.com/actionsum/appusage/internal/logging"
	"github.com/actionsum/appusage/internal/tracker"
	"github.com/actionsum/appusage/pkg/detector"
	"github.com/actionsum/appusage/pkg/utils"
)

var startForeground bool

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the tracker",
	Long: `Start the tracker that samples the focused window and records foreground
time per application. By default it detaches and logs to the configured
log file.`,
	Example: `  appusage start
  appusage start --foreground --verbose`,
	RunE: runStart,
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the tracker",
	RunE:  runStop,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show tracker status and the current focused app",
	RunE:  runStatus,
}

func init() {
	startCmd.Flags().BoolVar(&startForeground, "foreground", false, "run in the foreground")
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dm := daemon.New(cfg.Daemon.PIDFile)
	running, pid, err := dm.IsRunning()
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}
	if running {
		return fmt.Errorf("tracker is already running (PID: %d)", pid)
	}

	if !startForeground && !daemon.IsChild() {
		childArgs := []string{"start"}
		if dbPath != "" {
			childArgs = append(childArgs, "--db", dbPath)
		}
		if configPath != "" {
			childArgs = append(childArgs, "--config", configPath)
		}
		childPID, err := daemon.Spawn(childArgs)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Tracker started successfully (PID: %d)\n", childPID)
		fmt.Fprintf(cmd.OutOrStdout(), "Logs: %s\n", cfg.Log.File)
		return nil
	}

	logger := logging.NewDaemon(cfg.Log)
	if startForeground {
		logger = logging.NewCLI(verbose)
	}
	defer logger.Sync()

	return runTracker(cmd.Context(), cfg, dm, logger)
}

func runTracker(ctx context.Context, cfg *config.Config, dm *daemon.Daemon, logger *zap.Logger) error {
	db, repo, err := openStore(cfg)
	if err != nil {
		logger.Error("failed to open store", zap.Error(err))
		return err
	}
	defer db.Close()

	det, err := detector.New(cfg.Tracker.IdleThreshold)
	if err != nil {
		logger.Error("failed to initialize window detector", zap.Error(err))
		return fmt.Errorf("failed to initialize window detector: %w", err)
	}
	defer det.Close()

	logger.Info("window detector initialized", zap.String("display_server", det.GetDisplayServer()))

	if err := dm.WritePID(); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	defer dm.RemovePID()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := tracker.NewService(cfg, repo, det, logger)
	logger.Debug("configuration", zap.String("config", cfg.String()))

	if err := svc.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("tracker error", zap.Error(err))
		return err
	}

	logger.Info("tracker stopped successfully")
	return nil
}

func runStop(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dm := daemon.New(cfg.Daemon.PIDFile)

	running, pid, err := dm.IsRunning()
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}
	if !running {
		fmt.Fprintln(cmd.OutOrStdout(), "Tracker is not running")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Stopping tracker (PID: %d)...\n", pid)
	if err := dm.Stop(5 * time.Second); err != nil {
		return fmt.Errorf("failed to stop tracker: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Tracker stopped successfully")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	dm := daemon.New(cfg.Daemon.PIDFile)

	running, pid, err := dm.IsRunning()
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}
	if running {
		fmt.Fprintf(out, "Tracker: Running (PID: %d)\n", pid)
	} else {
		fmt.Fprintln(out, "Tracker: Not running")
	}
	fmt.Fprintf(out, "Poll Interval: %v\n", cfg.Tracker.PollInterval)

	db, repo, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if level, err := repo.APILevel(cmd.Context()); err == nil {
		fmt.Fprintf(out, "Store API Level: %d\n", level)
	}

	id := access.CurrentIdentity(cfg.Access.Package)
	if mode, err := repo.CheckOpNoThrow(cmd.Context(), access.OpGetUsageStats, id.UID, id.Package); err == nil {
		fmt.Fprintf(out, "Usage Access: %s\n", mode)
	}

	if latest, err := repo.GetLatest(); err == nil && latest != nil {
		ago := time.Since(latest.Timestamp).Round(time.Second)
		fmt.Fprintf(out, "Last Sample: %s (%s ago)\n", latest.PackageID, utils.FormatDuration(ago))
	}

	// Still show current window detection even when not running
	det, err := detector.New(cfg.Tracker.IdleThreshold)
	if err != nil {
		fmt.Fprintf(out, "\nCould not detect current window: %v\n", err)
		return nil
	}
	defer det.Close()

	svc := tracker.NewService(cfg, repo, det, nil)
	windowInfo, idleInfo, err := svc.GetCurrentWindow()
	if err != nil {
		fmt.Fprintf(out, "\nCould not detect current window: %v\n", err)
		return nil
	}

	fmt.Fprintf(out, "\nCurrent Window:\n")
	fmt.Fprintf(out, "  Package: %s\n", windowInfo.PackageID())
	fmt.Fprintf(out, "  Title: %s\n", windowInfo.WindowTitle)
	fmt.Fprintf(out, "  Display: %s\n", windowInfo.DisplayServer)

	fmt.Fprintf(out, "\nSystem State:\n")
	fmt.Fprintf(out, "  Idle: %v\n", idleInfo.IsIdle)
	fmt.Fprintf(out, "  Locked: %v\n", idleInfo.IsLocked)
	if idleInfo.IdleTime > 0 {
		fmt.Fprintf(out, "  Idle Time: %s\n", utils.FormatRoundedUnit(idleInfo.IdleTime))
	}
	return nil
}
