package catalog

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// LegacySource reads pre-standard KDE "applnk" trees: .kdelnk or .desktop
// files under <datadir>/applnk whose entry group is [KDE Desktop Entry].
// Only the top level of each applnk category directory is read, matching
// how those launchers populated their menus.
type LegacySource struct {
	dirs     Dirs
	locale   string
	desktops []string
	logger   *zap.Logger
}

// NewLegacySource creates a legacy source. ~/.kde/share is searched before
// dirs when a home directory is available.
func NewLegacySource(dirs Dirs, locale string, logger *zap.Logger) *LegacySource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LegacySource{
		dirs:     dirs,
		locale:   locale,
		desktops: CurrentDesktops(),
		logger:   logger,
	}
}

func (s *LegacySource) Kind() string { return KindLegacy }

func (s *LegacySource) roots() []string {
	var roots []string
	if home, err := os.UserHomeDir(); err == nil {
		roots = append(roots, filepath.Join(home, ".kde", "share", "applnk"))
	}
	for _, dir := range s.dirs {
		roots = append(roots, filepath.Join(dir, "applnk"))
	}
	return roots
}

// QueryLaunchable returns the launchable entries in enumeration order.
func (s *LegacySource) QueryLaunchable(ctx context.Context) ([]Activity, error) {
	seen := make(map[string]bool)
	var activities []Activity

	for _, root := range s.roots() {
		files, err := legacyFiles(root)
		if err != nil {
			continue
		}
		for _, path := range files {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			desktopID := filepath.Base(path)
			if seen[desktopID] {
				continue
			}
			seen[desktopID] = true

			entry, err := parseEntry(path, []string{groupKDEDesktopEntry, groupDesktopEntry}, s.locale)
			if err != nil {
				s.logger.Debug("skipping applnk entry", zap.String("path", path), zap.Error(err))
				continue
			}
			if !entry.launchable(s.desktops) {
				continue
			}

			activities = append(activities, Activity{
				PackageID: entry.packageID(desktopID),
				Label:     entry.Name,
				IconName:  entry.Icon,
				DesktopID: desktopID,
			})
		}
	}

	return activities, nil
}

// legacyFiles lists entry files in root and its immediate category dirs.
func legacyFiles(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		path := filepath.Join(root, e.Name())
		if !e.IsDir() {
			if isLegacyEntry(e.Name()) {
				files = append(files, path)
			}
			continue
		}
		sub, err := os.ReadDir(path)
		if err != nil {
			continue
		}
		for _, se := range sub {
			if !se.IsDir() && isLegacyEntry(se.Name()) {
				files = append(files, filepath.Join(path, se.Name()))
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

func isLegacyEntry(name string) bool {
	return strings.HasSuffix(name, ".kdelnk") || strings.HasSuffix(name, ".desktop")
}
