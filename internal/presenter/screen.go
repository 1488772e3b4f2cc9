// Package presenter holds the usage screen's state machine. It decides what
// to show; rendering lives with the terminal front end.
package presenter

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/actionsum/appusage/internal/catalog"
	"github.com/actionsum/appusage/internal/usage"
)

// State is what the screen currently shows.
type State int

const (
	// AwaitingPermission asks the user to grant usage access.
	AwaitingPermission State = iota
	// ShowingReport lists usage per application.
	ShowingReport
	// Unsupported explains that the usage service cannot aggregate.
	Unsupported
)

func (s State) String() string {
	switch s {
	case AwaitingPermission:
		return "awaiting-permission"
	case ShowingReport:
		return "showing-report"
	case Unsupported:
		return "unsupported"
	}
	return "unknown"
}

// Gate is the permission gate.
type Gate interface {
	HasUsageAccess(ctx context.Context) (bool, error)
	RequestUsageAccess(ctx context.Context) error
}

// Reporter builds usage reports.
type Reporter interface {
	UsageReport(ctx context.Context, window time.Duration) (usage.Report, error)
}

// IconLoader resolves application icons.
type IconLoader interface {
	Icons(ctx context.Context, packageIDs []string) (map[string]catalog.Icon, error)
}

// View is an immutable snapshot of the screen.
type View struct {
	State  State
	Window time.Duration
	Report usage.Report
	Icons  map[string]catalog.Icon
	// Err is the last failure of a permission check or report query.
	Err error
}

// Screen is the usage screen. It only changes state on resume.
type Screen struct {
	ctx      context.Context
	gate     Gate
	reporter Reporter
	icons    IconLoader
	window   time.Duration
	logger   *zap.Logger

	view View
}

// NewScreen creates a screen in AwaitingPermission. icons may be nil.
func NewScreen(ctx context.Context, gate Gate, reporter Reporter, icons IconLoader, window time.Duration, logger *zap.Logger) *Screen {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Screen{
		ctx:      ctx,
		gate:     gate,
		reporter: reporter,
		icons:    icons,
		window:   window,
		logger:   logger,
		view:     View{State: AwaitingPermission, Window: window},
	}
}

// Attach subscribes the screen to host's resume events.
func (s *Screen) Attach(host *Host) (detach func()) {
	return host.Subscribe(func(e Event) {
		if e == EventResume {
			s.OnResume()
		}
	})
}

// OnResume re-checks permission and, when granted, builds a fresh report.
// A revoked permission is only noticed here.
func (s *Screen) OnResume() {
	granted, err := s.gate.HasUsageAccess(s.ctx)
	if err != nil {
		s.logger.Warn("usage access check failed", zap.Error(err))
		s.view = View{State: AwaitingPermission, Window: s.window, Err: err}
		return
	}
	if !granted {
		s.view = View{State: AwaitingPermission, Window: s.window}
		return
	}

	report, err := s.reporter.UsageReport(s.ctx, s.window)
	if errors.Is(err, usage.ErrUnsupportedPlatform) {
		s.view = View{State: Unsupported, Window: s.window, Err: err}
		return
	}
	if err != nil {
		s.logger.Warn("usage report failed", zap.Error(err))
		s.view = View{State: ShowingReport, Window: s.window, Err: err}
		return
	}

	s.view = View{
		State:  ShowingReport,
		Window: s.window,
		Report: report,
		Icons:  s.loadIcons(report),
	}
}

func (s *Screen) loadIcons(report usage.Report) map[string]catalog.Icon {
	if s.icons == nil || len(report.Records) == 0 {
		return nil
	}
	icons, err := s.icons.Icons(s.ctx, report.PackageIDs())
	if err != nil {
		s.logger.Debug("icon lookup failed", zap.Error(err))
		return nil
	}
	return icons
}

// RequestAccess opens the settings surface. The screen keeps its state until
// the next resume.
func (s *Screen) RequestAccess() error {
	return s.gate.RequestUsageAccess(s.ctx)
}

// View returns the current snapshot.
func (s *Screen) View() View {
	return s.view
}
