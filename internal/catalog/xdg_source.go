package catalog

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// XDGSource reads freedesktop desktop entries from
// <datadir>/applications/**/*.desktop, where the desktop-file
// id joins subdirectories with '-'. Earlier data dirs shadow later ones.
type XDGSource struct {
	dirs     Dirs
	locale   string
	desktops []string
	logger   *zap.Logger
}

// NewXDGSource creates a source over dirs, highest precedence first.
func NewXDGSource(dirs Dirs, locale string, logger *zap.Logger) *XDGSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &XDGSource{
		dirs:     dirs,
		locale:   locale,
		desktops: CurrentDesktops(),
		logger:   logger,
	}
}

func (s *XDGSource) Kind() string { return KindXDG }

// QueryLaunchable returns the launchable entries in enumeration order.
func (s *XDGSource) QueryLaunchable(ctx context.Context) ([]Activity, error) {
	seen := make(map[string]bool)
	var activities []Activity

	for _, dir := range s.dirs {
		root := filepath.Join(dir, "applications")
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == root {
					return fs.SkipDir
				}
				return nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if d.IsDir() || !strings.HasSuffix(path, ".desktop") {
				return nil
			}

			rel, err := filepath.Rel(root, path)
			if err != nil {
				return nil
			}
			desktopID := strings.ReplaceAll(filepath.ToSlash(rel), "/", "-")
			if seen[desktopID] {
				return nil
			}
			seen[desktopID] = true

			entry, err := parseEntry(path, []string{groupDesktopEntry}, s.locale)
			if err != nil {
				s.logger.Debug("skipping desktop entry", zap.String("path", path), zap.Error(err))
				return nil
			}
			if !entry.launchable(s.desktops) {
				return nil
			}

			activities = append(activities, Activity{
				PackageID: entry.packageID(desktopID),
				Label:     entry.Name,
				IconName:  entry.Icon,
				DesktopID: desktopID,
			})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return activities, nil
}
