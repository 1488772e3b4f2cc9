package catalog

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/ini.v1"
)

const (
	groupDesktopEntry    = "Desktop Entry"
	groupKDEDesktopEntry = "KDE Desktop Entry"
)

// ErrSourceUnavailable is returned when no catalog source is configured.
var ErrSourceUnavailable = errors.New("application catalog source unavailable")

var errNoEntryGroup = errors.New("no desktop entry group")

type desktopEntry struct {
	Type           string
	Name           string
	Icon           string
	StartupWMClass string
	NoDisplay      bool
	Hidden         bool
	OnlyShowIn     []string
	NotShowIn      []string
}

var entryLoadOptions = ini.LoadOptions{
	IgnoreInlineComment:     true,
	KeyValueDelimiters:      "=",
	SkipUnrecognizableLines: true,
	AllowShadows:            false,
}

// parseEntry reads the first of groups present in the file at path and
// resolves localized keys for locale.
func parseEntry(path string, groups []string, locale string) (*desktopEntry, error) {
	f, err := ini.LoadSources(entryLoadOptions, path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}

	var sec *ini.Section
	for _, group := range groups {
		if s, err := f.GetSection(group); err == nil {
			sec = s
			break
		}
	}
	if sec == nil {
		return nil, errNoEntryGroup
	}

	entry := &desktopEntry{
		Type:           sec.Key("Type").String(),
		Name:           localized(sec, "Name", locale),
		Icon:           sec.Key("Icon").String(),
		StartupWMClass: sec.Key("StartupWMClass").String(),
		NoDisplay:      sec.Key("NoDisplay").MustBool(false),
		Hidden:         sec.Key("Hidden").MustBool(false),
		OnlyShowIn:     splitList(sec.Key("OnlyShowIn").String()),
		NotShowIn:      splitList(sec.Key("NotShowIn").String()),
	}
	return entry, nil
}

// launchable reports whether the entry shows up in a launcher running under
// any of desktops.
func (e *desktopEntry) launchable(desktops []string) bool {
	if e.Type != "Application" || e.NoDisplay || e.Hidden || e.Name == "" {
		return false
	}
	if len(e.OnlyShowIn) > 0 && !intersects(e.OnlyShowIn, desktops) {
		return false
	}
	if intersects(e.NotShowIn, desktops) {
		return false
	}
	return true
}

// packageID keys the entry the same way the tracker keys windows: by the
// lower-cased WM class when the entry declares one.
func (e *desktopEntry) packageID(desktopID string) string {
	if e.StartupWMClass != "" {
		return strings.ToLower(e.StartupWMClass)
	}
	id := desktopID
	for _, ext := range []string{".desktop", ".kdelnk"} {
		id = strings.TrimSuffix(id, ext)
	}
	return strings.ToLower(id)
}

func localized(sec *ini.Section, key, locale string) string {
	for _, candidate := range localeKeys(key, locale) {
		if sec.HasKey(candidate) {
			if v := sec.Key(candidate).String(); v != "" {
				return v
			}
		}
	}
	return ""
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if strings.EqualFold(x, y) {
				return true
			}
		}
	}
	return false
}

// CurrentDesktops returns $XDG_CURRENT_DESKTOP split on ':'.
func CurrentDesktops() []string {
	var out []string
	for _, d := range strings.Split(os.Getenv("XDG_CURRENT_DESKTOP"), ":") {
		if d != "" {
			out = append(out, d)
		}
	}
	return out
}
