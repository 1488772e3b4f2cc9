package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CURRENT_DESKTOP", "GNOME")
}

func TestXDGSource_Launchable(t *testing.T) {
	isolate(t)
	data := t.TempDir()
	apps := filepath.Join(data, "applications")

	writeFile(t, filepath.Join(apps, "firefox.desktop"), `[Desktop Entry]
Type=Application
Name=Firefox
Name[de]=Firefox Webbrowser
Icon=firefox
StartupWMClass=Firefox
`)
	writeFile(t, filepath.Join(apps, "org.gnome.Nautilus.desktop"), `[Desktop Entry]
Type=Application
Name=Files
Icon=org.gnome.Nautilus
`)
	writeFile(t, filepath.Join(apps, "hidden.desktop"), `[Desktop Entry]
Type=Application
Name=Hidden
NoDisplay=true
`)
	writeFile(t, filepath.Join(apps, "link.desktop"), `[Desktop Entry]
Type=Link
Name=Website
URL=https://example.com
`)
	writeFile(t, filepath.Join(apps, "kde-only.desktop"), `[Desktop Entry]
Type=Application
Name=KDE Thing
OnlyShowIn=KDE;
`)
	writeFile(t, filepath.Join(apps, "not-gnome.desktop"), `[Desktop Entry]
Type=Application
Name=Not Here
NotShowIn=GNOME;Unity;
`)
	writeFile(t, filepath.Join(apps, "README"), "not an entry")

	src := NewXDGSource(Dirs{data}, "de_DE.UTF-8", nil)
	assert.Equal(t, KindXDG, src.Kind())

	activities, err := src.QueryLaunchable(context.Background())
	require.NoError(t, err)

	byID := map[string]Activity{}
	for _, a := range activities {
		byID[a.PackageID] = a
	}
	assert.Len(t, byID, 2)
	assert.Equal(t, "Firefox Webbrowser", byID["firefox"].Label)
	assert.Equal(t, "firefox.desktop", byID["firefox"].DesktopID)
	assert.Equal(t, "Files", byID["org.gnome.nautilus"].Label)
}

func TestXDGSource_SubdirsAndShadowing(t *testing.T) {
	isolate(t)
	home := t.TempDir()
	system := t.TempDir()

	writeFile(t, filepath.Join(home, "applications", "editor.desktop"), `[Desktop Entry]
Type=Application
Name=My Editor
`)
	writeFile(t, filepath.Join(system, "applications", "editor.desktop"), `[Desktop Entry]
Type=Application
Name=System Editor
`)
	writeFile(t, filepath.Join(system, "applications", "kde", "konsole.desktop"), `[Desktop Entry]
Type=Application
Name=Konsole
`)

	activities, err := NewXDGSource(Dirs{home, system}, "", nil).QueryLaunchable(context.Background())
	require.NoError(t, err)

	labels := map[string]string{}
	for _, a := range activities {
		labels[a.DesktopID] = a.Label
	}
	assert.Equal(t, map[string]string{
		"editor.desktop":      "My Editor",
		"kde-konsole.desktop": "Konsole",
	}, labels)
}

func TestXDGSource_MissingDirs(t *testing.T) {
	isolate(t)
	activities, err := NewXDGSource(Dirs{filepath.Join(t.TempDir(), "nope")}, "", nil).QueryLaunchable(context.Background())
	require.NoError(t, err)
	assert.Empty(t, activities)
}

func TestLegacySource(t *testing.T) {
	isolate(t)
	data := t.TempDir()
	applnk := filepath.Join(data, "applnk")

	writeFile(t, filepath.Join(applnk, "Utilities", "kedit.kdelnk"), `# KDE Config File
[KDE Desktop Entry]
Type=Application
Name=KEdit
Icon=kedit.xpm
`)
	writeFile(t, filepath.Join(applnk, "konqueror.desktop"), `[Desktop Entry]
Type=Application
Name=Konqueror
`)
	writeFile(t, filepath.Join(applnk, "Games", "Deep", "deep.kdelnk"), `[KDE Desktop Entry]
Type=Application
Name=Too Deep
`)
	writeFile(t, filepath.Join(applnk, "Utilities", ".directory"), `[KDE Desktop Entry]
Name=Utilities
`)

	src := NewLegacySource(Dirs{data}, "", nil)
	assert.Equal(t, KindLegacy, src.Kind())

	activities, err := src.QueryLaunchable(context.Background())
	require.NoError(t, err)

	ids := map[string]string{}
	for _, a := range activities {
		ids[a.PackageID] = a.Label
	}
	assert.Equal(t, map[string]string{"kedit": "KEdit", "konqueror": "Konqueror"}, ids)
}

func TestResolver_LaunchableApps(t *testing.T) {
	src := &staticSource{activities: []Activity{
		{PackageID: "a", Label: "Alpha", IconName: "alpha"},
		{PackageID: "b", Label: "Beta"},
		{PackageID: "a", Label: "Alpha Two"},
	}}

	apps, err := NewResolver(src, nil, nil).LaunchableApps(context.Background())
	require.NoError(t, err)
	assert.Len(t, apps, 2)
	assert.Equal(t, "Alpha Two", apps["a"].DisplayName)
	assert.Equal(t, map[string]string{"a": "Alpha Two", "b": "Beta"}, apps.Names())
}

func TestResolver_Unavailable(t *testing.T) {
	_, err := NewResolver(nil, nil, nil).LaunchableApps(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestResolver_Icons(t *testing.T) {
	data := t.TempDir()
	writeFile(t, filepath.Join(data, "icons", "hicolor", "48x48", "apps", "alpha.png"), "png")
	writeFile(t, filepath.Join(data, "pixmaps", "beta.xpm"), "xpm")

	src := &staticSource{activities: []Activity{
		{PackageID: "a", Label: "Alpha", IconName: "alpha"},
		{PackageID: "b", Label: "Beta", IconName: "beta"},
		{PackageID: "c", Label: "Gamma", IconName: "gamma"},
	}}
	r := NewResolver(src, NewIconTheme(Dirs{data}), nil)

	icons, err := r.Icons(context.Background(), []string{"a", "b", "c", "unknown"})
	require.NoError(t, err)
	assert.Len(t, icons, 3)
	assert.Equal(t, filepath.Join(data, "icons", "hicolor", "48x48", "apps", "alpha.png"), icons["a"].Path)
	assert.Equal(t, filepath.Join(data, "pixmaps", "beta.xpm"), icons["b"].Path)
	assert.Empty(t, icons["c"].Path)
	assert.Equal(t, "gamma", icons["c"].Name)
}

func TestNew(t *testing.T) {
	isolate(t)
	withApps := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(withApps, "applications"), 0o755))
	bare := t.TempDir()

	src, err := New(KindAuto, Dirs{bare, withApps}, "C", nil)
	require.NoError(t, err)
	assert.Equal(t, KindXDG, src.Kind())

	src, err = New(KindAuto, Dirs{bare}, "C", nil)
	require.NoError(t, err)
	assert.Equal(t, KindLegacy, src.Kind())

	src, err = New(KindLegacy, Dirs{withApps}, "C", nil)
	require.NoError(t, err)
	assert.Equal(t, KindLegacy, src.Kind())

	_, err = New("snap", nil, "C", nil)
	assert.Error(t, err)
}

func TestLocaleKeys(t *testing.T) {
	tests := []struct {
		locale string
		want   []string
	}{
		{"", []string{"Name"}},
		{"C", []string{"Name"}},
		{"de", []string{"Name[de]", "Name"}},
		{"de_DE.UTF-8", []string{"Name[de_DE]", "Name[de]", "Name"}},
		{"sr_RS@latin", []string{"Name[sr_RS@latin]", "Name[sr_RS]", "Name[sr@latin]", "Name[sr]", "Name"}},
	}

	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			assert.Equal(t, tt.want, localeKeys("Name", tt.locale))
		})
	}
}

type staticSource struct {
	activities []Activity
}

func (s *staticSource) QueryLaunchable(ctx context.Context) ([]Activity, error) {
	return s.activities, nil
}

func (s *staticSource) Kind() string { return "static" }
