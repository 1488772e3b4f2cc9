package detector

import (
	"fmt"
	"os"
	"time"

	"github.com/actionsum/appusage/pkg/integrations/wayland"
	"github.com/actionsum/appusage/pkg/integrations/x11"
	"github.com/actionsum/appusage/pkg/window"
)

// New returns the detector for the current session. Wayland sessions use the
// compositor's IPC when it is Sway or Hyprland and fall back to XWayland when
// DISPLAY is set.
func New(idleThreshold time.Duration) (window.Detector, error) {
	server := DetectDisplayServer()
	if server == "wayland" {
		if d := wayland.NewDetector(); d.IsAvailable() {
			return d, nil
		}
	}
	if os.Getenv("DISPLAY") == "" {
		return nil, fmt.Errorf("no X display available (session: %s, compositor: %s)", server, wayland.DetectCompositor())
	}
	return x11.NewDetector(idleThreshold)
}

func DetectDisplayServer() string {
	sessionType := os.Getenv("XDG_SESSION_TYPE")
	waylandDisplay := os.Getenv("WAYLAND_DISPLAY")
	x11Display := os.Getenv("DISPLAY")

	if sessionType == "wayland" || waylandDisplay != "" {
		return "wayland"
	}

	if sessionType == "x11" || x11Display != "" {
		return "x11"
	}

	return "unknown"
}
