package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actionsum/appusage/internal/database"
	"github.com/actionsum/appusage/internal/models"
)

type testEnv struct {
	dbPath     string
	configPath string
	dataHome   string
}

// setupEnv points every path the CLI touches into temp dirs.
func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Cleanup(xdg.Reload)

	root := t.TempDir()
	env := &testEnv{
		dbPath:     filepath.Join(root, "usage.db"),
		configPath: filepath.Join(root, "config.yaml"),
		dataHome:   filepath.Join(root, "data"),
	}
	require.NoError(t, os.WriteFile(env.configPath, []byte("report:\n  window: 1h\n"), 0o644))

	t.Setenv("HOME", root)
	t.Setenv("XDG_DATA_HOME", env.dataHome)
	t.Setenv("XDG_DATA_DIRS", filepath.Join(root, "system"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv("XDG_CURRENT_DESKTOP", "GNOME")
	t.Setenv("APPUSAGE_PID_FILE", filepath.Join(root, "appusage.pid"))
	t.Setenv("APPUSAGE_LOG_FILE", filepath.Join(root, "appusage.log"))
	xdg.Reload()

	return env
}

func (e *testEnv) desktopEntry(t *testing.T, name, content string) {
	t.Helper()
	path := filepath.Join(e.dataHome, "applications", name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func (e *testEnv) record(t *testing.T, events ...*models.FocusEvent) {
	t.Helper()
	db, err := database.Connect(e.dbPath)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Initialize())

	repo := database.NewRepository(db)
	for _, ev := range events {
		require.NoError(t, repo.Create(ev))
	}
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// run executes the CLI with the test env's database and config.
func (e *testEnv) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(RootCmd)

	var stdout, stderr bytes.Buffer
	RootCmd.SetIn(strings.NewReader(stdin))
	RootCmd.SetOut(&stdout)
	RootCmd.SetErr(&stderr)
	RootCmd.SetArgs(append(args, "--db", e.dbPath, "--config", e.configPath))

	err := RootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommand(t *testing.T) {
	if RootCmd.Use != "appusage" {
		t.Errorf("expected Use to be 'appusage', got '%s'", RootCmd.Use)
	}

	expected := []string{"show", "report", "access", "start", "stop", "status", "clear", "version"}
	found := map[string]bool{}
	for _, cmd := range RootCmd.Commands() {
		found[cmd.Name()] = true
	}
	for _, name := range expected {
		if !found[name] {
			t.Errorf("expected command '%s' to be registered", name)
		}
	}

	for _, name := range []string{"db", "config", "verbose"} {
		if RootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("expected --%s flag to be registered", name)
		}
	}
}

func TestReport_RequiresAccess(t *testing.T) {
	env := setupEnv(t)

	_, stderr, err := env.run(t, "", "report")
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Contains(t, stderr, "appusage access grant")
}

func TestAccess_GrantStatusRevoke(t *testing.T) {
	env := setupEnv(t)

	out, _, err := env.run(t, "", "access", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "default")

	out, _, err = env.run(t, "no\n", "access", "grant")
	require.NoError(t, err)
	assert.Contains(t, out, "Usage access unchanged")

	out, _, err = env.run(t, "yes\n", "access", "grant")
	require.NoError(t, err)
	assert.Contains(t, out, "allowed")

	out, _, err = env.run(t, "", "access", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "allowed")

	_, _, err = env.run(t, "", "access", "revoke")
	require.NoError(t, err)

	_, _, err = env.run(t, "", "report")
	assert.ErrorIs(t, err, ErrAccessDenied)

	out, _, err = env.run(t, "", "access", "grant", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "allowed")

	_, _, err = env.run(t, "", "report")
	assert.NoError(t, err)
}

func TestReport_JSON(t *testing.T) {
	env := setupEnv(t)
	env.desktopEntry(t, "firefox.desktop", "[Desktop Entry]\nType=Application\nName=Firefox\nStartupWMClass=Firefox\n")
	env.desktopEntry(t, "code.desktop", "[Desktop Entry]\nType=Application\nName=Code\n")

	now := time.Now()
	env.record(t,
		&models.FocusEvent{Timestamp: now.Add(-20 * time.Minute), PackageID: "firefox", DurationMs: 10000, DisplayServer: "x11"},
		&models.FocusEvent{Timestamp: now.Add(-10 * time.Minute), PackageID: "firefox", DurationMs: 10000, DisplayServer: "x11"},
		&models.FocusEvent{Timestamp: now.Add(-5 * time.Minute), PackageID: "code", DurationMs: 10000, DisplayServer: "x11"},
		&models.FocusEvent{Timestamp: now.Add(-5 * time.Minute), PackageID: "gnome-shell", DurationMs: 90000, DisplayServer: "x11"},
		&models.FocusEvent{Timestamp: now.Add(-3 * time.Hour), PackageID: "code", DurationMs: 90000, DisplayServer: "x11"},
	)

	_, _, err := env.run(t, "", "access", "grant", "--yes")
	require.NoError(t, err)

	out, _, err := env.run(t, "", "report", "--json")
	require.NoError(t, err)

	var decoded struct {
		WindowMs int64 `json:"window_ms"`
		Records  []struct {
			PackageID            string `json:"package_id"`
			DisplayName          string `json:"display_name"`
			ForegroundDurationMs int64  `json:"foreground_duration_ms"`
		} `json:"records"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))

	assert.Equal(t, int64(time.Hour/time.Millisecond), decoded.WindowMs)
	require.Len(t, decoded.Records, 2)
	assert.Equal(t, "firefox", decoded.Records[0].PackageID)
	assert.Equal(t, "Firefox", decoded.Records[0].DisplayName)
	assert.Equal(t, int64(20000), decoded.Records[0].ForegroundDurationMs)
	assert.Equal(t, "code", decoded.Records[1].PackageID)
	assert.Equal(t, int64(10000), decoded.Records[1].ForegroundDurationMs)
}

func TestReport_WindowFlag(t *testing.T) {
	env := setupEnv(t)
	env.desktopEntry(t, "code.desktop", "[Desktop Entry]\nType=Application\nName=Code\n")
	env.record(t, &models.FocusEvent{Timestamp: time.Now().Add(-3 * time.Hour), PackageID: "code", DurationMs: 5000, DisplayServer: "x11"})

	_, _, err := env.run(t, "", "access", "grant", "--yes")
	require.NoError(t, err)

	out, _, err := env.run(t, "", "report")
	require.NoError(t, err)
	assert.Contains(t, out, "No usage recorded")

	out, _, err = env.run(t, "", "report", "--window", "4h")
	require.NoError(t, err)
	assert.Contains(t, out, "Code")
	assert.Contains(t, out, "100.0%")

	_, _, err = env.run(t, "", "report", "--window=-1h")
	assert.Error(t, err)
}

func TestClear(t *testing.T) {
	env := setupEnv(t)
	env.record(t, &models.FocusEvent{Timestamp: time.Now(), PackageID: "code", DurationMs: 5000, DisplayServer: "x11"})

	out, _, err := env.run(t, "n\n", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Operation cancelled")

	out, _, err = env.run(t, "", "clear", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Database cleared successfully")

	db, err := database.Connect(env.dbPath)
	require.NoError(t, err)
	defer db.Close()
	latest, err := database.NewRepository(db).GetLatest()
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestStop_NotRunning(t *testing.T) {
	env := setupEnv(t)
	out, _, err := env.run(t, "", "stop")
	require.NoError(t, err)
	assert.Contains(t, out, "Tracker is not running")
}

func TestVersion(t *testing.T) {
	env := setupEnv(t)
	out, _, err := env.run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "appusage version "+Version)
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"yes\n", true},
		{"Y\n", true},
		{"  yes  \n", true},
		{"no\n", false},
		{"\n", false},
		{"", false},
		{"yes", true},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		if got := confirm(strings.NewReader(tt.input), &out, "Proceed?"); got != tt.want {
			t.Errorf("confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if !strings.Contains(out.String(), "Proceed? (yes/no)") {
			t.Errorf("prompt not written, got %q", out.String())
		}
	}
}
