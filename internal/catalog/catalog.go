// Package catalog resolves the launchable applications installed for the user.
//
// An application is launchable when a desktop entry shows it in the launcher.
// Two entry layouts are supported, one per desktop-entry generation, behind
// the CatalogSource interface; callers only see the resulting Catalog.
package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"go.uber.org/zap"
)

// Source kinds accepted by New.
const (
	KindAuto   = "auto"
	KindXDG    = "xdg"
	KindLegacy = "legacy"
)

// Activity is one launcher entry as reported by a CatalogSource.
type Activity struct {
	PackageID string
	Label     string
	IconName  string
	// DesktopID is the entry's desktop-file id, e.g. "org.gnome.Nautilus.desktop".
	DesktopID string
}

// CatalogSource enumerates launcher entries.
type CatalogSource interface {
	QueryLaunchable(ctx context.Context) ([]Activity, error)
	Kind() string
}

// App is an installed, launchable application.
type App struct {
	PackageID   string `json:"package_id"`
	DisplayName string `json:"display_name"`
	IconName    string `json:"icon_name,omitempty"`
}

// Catalog maps package ids to applications. It is a snapshot of one query.
type Catalog map[string]App

// Names returns the package id to display name mapping.
func (c Catalog) Names() map[string]string {
	names := make(map[string]string, len(c))
	for id, app := range c {
		names[id] = app.DisplayName
	}
	return names
}

// Resolver turns a CatalogSource into catalogs and icons.
type Resolver struct {
	source CatalogSource
	icons  *IconTheme
	logger *zap.Logger
}

// NewResolver creates a resolver over source. icons may be nil, in which case
// icons are reported by name only.
func NewResolver(source CatalogSource, icons *IconTheme, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{source: source, icons: icons, logger: logger}
}

// LaunchableApps enumerates the source once and keys the result by package
// id. When two entries share a package id the later one wins.
func (r *Resolver) LaunchableApps(ctx context.Context) (Catalog, error) {
	if r == nil || r.source == nil {
		return nil, ErrSourceUnavailable
	}

	activities, err := r.source.QueryLaunchable(ctx)
	if err != nil {
		return nil, err
	}

	apps := make(Catalog, len(activities))
	for _, a := range activities {
		apps[a.PackageID] = App{
			PackageID:   a.PackageID,
			DisplayName: a.Label,
			IconName:    a.IconName,
		}
	}

	r.logger.Debug("launchable apps resolved",
		zap.String("source", r.source.Kind()),
		zap.Int("entries", len(activities)),
		zap.Int("apps", len(apps)))

	return apps, nil
}

// Icons resolves the icon of every requested package in a single
// enumeration. Unknown packages are left out of the result.
func (r *Resolver) Icons(ctx context.Context, packageIDs []string) (map[string]Icon, error) {
	apps, err := r.LaunchableApps(ctx)
	if err != nil {
		return nil, err
	}

	icons := make(map[string]Icon, len(packageIDs))
	for _, id := range packageIDs {
		app, ok := apps[id]
		if !ok {
			continue
		}
		icons[id] = r.icons.Lookup(app.IconName)
	}
	return icons, nil
}

// Dirs lists the data directories a source searches, highest precedence first.
type Dirs []string

// DefaultDirs returns $XDG_DATA_HOME followed by $XDG_DATA_DIRS.
func DefaultDirs() Dirs {
	return append(Dirs{xdg.DataHome}, xdg.DataDirs...)
}

// New selects the source for kind. KindAuto prefers the XDG layout whenever
// one of dirs has an applications directory.
func New(kind string, dirs Dirs, locale string, logger *zap.Logger) (CatalogSource, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if locale == "" {
		locale = LocaleFromEnv()
	}

	switch kind {
	case KindXDG:
		return NewXDGSource(dirs, locale, logger), nil
	case KindLegacy:
		return NewLegacySource(dirs, locale, logger), nil
	case KindAuto, "":
		for _, dir := range dirs {
			if info, err := os.Stat(filepath.Join(dir, "applications")); err == nil && info.IsDir() {
				return NewXDGSource(dirs, locale, logger), nil
			}
		}
		logger.Info("no XDG applications directory found, using legacy catalog")
		return NewLegacySource(dirs, locale, logger), nil
	}

	return nil, fmt.Errorf("unknown catalog source %q (valid: auto, xdg, legacy)", kind)
}
