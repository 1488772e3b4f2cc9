// Package access implements the usage-access permission gate.
//
// Reading usage statistics needs an explicit grant recorded in the
// operation-mode table. The grant is never requested inline: the gate only
// checks it, and hands the user off to the settings surface to change it.
package access

import (
	"context"
	"errors"
	"os"

	"go.uber.org/zap"
)

// OpGetUsageStats is the operation checked before reading usage statistics.
const OpGetUsageStats = "get_usage_stats"

// DefaultPackage identifies this program in the operation-mode table.
const DefaultPackage = "appusage"

// Mode is the recorded decision for an operation.
type Mode int

const (
	ModeAllowed Mode = iota
	ModeIgnored
	ModeErrored
	ModeDefault
)

func (m Mode) String() string {
	switch m {
	case ModeAllowed:
		return "allowed"
	case ModeIgnored:
		return "ignored"
	case ModeErrored:
		return "errored"
	case ModeDefault:
		return "default"
	}
	return "unknown"
}

// ErrPlatformServiceUnavailable is returned when the gate has no
// operation-mode service to ask.
var ErrPlatformServiceUnavailable = errors.New("operation-mode service unavailable")

// ModeChecker is the operation-mode service.
type ModeChecker interface {
	CheckOpNoThrow(ctx context.Context, op string, uid int, pkg string) (Mode, error)
}

// Settings opens the surface where the user grants usage access.
// Implementations must not wait for the user.
type Settings interface {
	OpenUsageAccess(ctx context.Context) error
}

// Identity is the caller checked against the operation-mode table.
type Identity struct {
	UID     int
	Package string
}

// CurrentIdentity returns the identity of this process.
func CurrentIdentity(pkg string) Identity {
	if pkg == "" {
		pkg = DefaultPackage
	}
	return Identity{UID: os.Getuid(), Package: pkg}
}

// Gate answers whether usage statistics may be read.
type Gate struct {
	modes    ModeChecker
	settings Settings
	identity Identity
	logger   *zap.Logger
}

// NewGate creates a gate for the given identity.
func NewGate(modes ModeChecker, settings Settings, identity Identity, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{
		modes:    modes,
		settings: settings,
		identity: identity,
		logger:   logger,
	}
}

// HasUsageAccess reports whether the identity holds ModeAllowed.
func (g *Gate) HasUsageAccess(ctx context.Context) (bool, error) {
	if g == nil || g.modes == nil {
		return false, ErrPlatformServiceUnavailable
	}

	mode, err := g.modes.CheckOpNoThrow(ctx, OpGetUsageStats, g.identity.UID, g.identity.Package)
	if err != nil {
		return false, err
	}

	g.logger.Debug("usage access checked",
		zap.Int("uid", g.identity.UID),
		zap.String("package", g.identity.Package),
		zap.Stringer("mode", mode))

	return mode == ModeAllowed, nil
}

// RequestUsageAccess opens the settings surface. The outcome is only visible
// to a later HasUsageAccess call.
func (g *Gate) RequestUsageAccess(ctx context.Context) error {
	if g == nil || g.settings == nil {
		return ErrPlatformServiceUnavailable
	}
	g.logger.Info("opening usage access settings")
	return g.settings.OpenUsageAccess(ctx)
}

// Identity returns the identity the gate checks.
func (g *Gate) Identity() Identity {
	return g.identity
}
