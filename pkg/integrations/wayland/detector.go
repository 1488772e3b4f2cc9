// Package wayland detects the focused window on wlroots compositors that
// expose their window tree over IPC.
package wayland

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/actionsum/appusage/pkg/window"
)

const (
	Sway     = "sway"
	Hyprland = "hyprland"
)

var lockers = []string{
	"swaylock",
	"waylock",
	"gtklock",
	"hyprlock",
}

type runFunc func(name string, args ...string) ([]byte, error)

func execOutput(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}

// Detector implements window.Detector for Sway and Hyprland.
type Detector struct {
	compositor string
	run        runFunc
	locked     func() bool
}

// NewDetector creates a detector for the running compositor.
func NewDetector() *Detector {
	return &Detector{
		compositor: DetectCompositor(),
		run:        execOutput,
		locked:     screenLocked,
	}
}

// DetectCompositor names the compositor from the session environment.
func DetectCompositor() string {
	switch {
	case os.Getenv("SWAYSOCK") != "":
		return Sway
	case os.Getenv("HYPRLAND_INSTANCE_SIGNATURE") != "":
		return Hyprland
	}
	return "unknown"
}

// IsAvailable reports whether the compositor's IPC client is installed.
func (d *Detector) IsAvailable() bool {
	switch d.compositor {
	case Sway:
		return commandExists("swaymsg")
	case Hyprland:
		return commandExists("hyprctl")
	}
	return false
}

func commandExists(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}

// GetDisplayServer returns "wayland"
func (d *Detector) GetDisplayServer() string {
	return "wayland"
}

// GetFocusedWindow returns information about the currently focused window
func (d *Detector) GetFocusedWindow() (*window.WindowInfo, error) {
	var (
		info *window.WindowInfo
		err  error
	)
	switch d.compositor {
	case Sway:
		out, runErr := d.run("swaymsg", "-t", "get_tree", "-r")
		if runErr != nil {
			return nil, fmt.Errorf("failed to execute swaymsg: %w", runErr)
		}
		info, err = parseSwayTree(out)
	case Hyprland:
		out, runErr := d.run("hyprctl", "activewindow", "-j")
		if runErr != nil {
			return nil, fmt.Errorf("failed to execute hyprctl: %w", runErr)
		}
		info, err = parseHyprlandWindow(out)
	default:
		return nil, fmt.Errorf("unsupported wayland compositor: %s", d.compositor)
	}
	if err != nil {
		return nil, err
	}

	info.DisplayServer = "wayland"
	if info.PID > 0 {
		if p, err := process.NewProcess(info.PID); err == nil {
			if name, err := p.Name(); err == nil {
				info.ProcessName = name
			}
		}
	}
	return info, nil
}

type swayNode struct {
	Focused          bool   `json:"focused"`
	Name             string `json:"name"`
	AppID            string `json:"app_id"`
	PID              int32  `json:"pid"`
	WindowProperties *struct {
		Class    string `json:"class"`
		Instance string `json:"instance"`
	} `json:"window_properties"`
	Nodes         []swayNode `json:"nodes"`
	FloatingNodes []swayNode `json:"floating_nodes"`
}

func (n *swayNode) focused() *swayNode {
	if n.Focused {
		return n
	}
	for _, children := range [][]swayNode{n.Nodes, n.FloatingNodes} {
		for i := range children {
			if f := children[i].focused(); f != nil {
				return f
			}
		}
	}
	return nil
}

// parseSwayTree finds the focused view in `swaymsg -t get_tree` output.
// Native views carry app_id, XWayland views carry WM_CLASS.
func parseSwayTree(data []byte) (*window.WindowInfo, error) {
	var root swayNode
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse sway tree: %w", err)
	}

	node := root.focused()
	if node == nil || node.PID == 0 {
		return nil, fmt.Errorf("no focused window")
	}

	class := node.AppID
	if class == "" && node.WindowProperties != nil {
		class = node.WindowProperties.Class
		if class == "" {
			class = node.WindowProperties.Instance
		}
	}

	return &window.WindowInfo{
		WMClass:     class,
		WindowTitle: node.Name,
		PID:         node.PID,
	}, nil
}

type hyprlandWindow struct {
	Class string `json:"class"`
	Title string `json:"title"`
	PID   int32  `json:"pid"`
}

// parseHyprlandWindow reads `hyprctl activewindow -j` output. Hyprland prints
// an empty object when nothing has focus.
func parseHyprlandWindow(data []byte) (*window.WindowInfo, error) {
	var w hyprlandWindow
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to parse hyprland window: %w", err)
	}
	if w.PID <= 0 && w.Class == "" {
		return nil, fmt.Errorf("no focused window")
	}
	return &window.WindowInfo{
		WMClass:     w.Class,
		WindowTitle: w.Title,
		PID:         w.PID,
	}, nil
}

// GetIdleInfo reports the lock state. Neither compositor exposes input idle
// time over IPC, so IdleTime stays zero.
func (d *Detector) GetIdleInfo() (*window.IdleInfo, error) {
	locked := d.locked()
	return &window.IdleInfo{
		IsIdle:   locked,
		IsLocked: locked,
	}, nil
}

func screenLocked() bool {
	if procs, err := process.Processes(); err == nil {
		for _, p := range procs {
			name, err := p.Name()
			if err != nil {
				continue
			}
			for _, locker := range lockers {
				if name == locker {
					return true
				}
			}
		}
	}

	out, err := exec.Command("loginctl", "show-session", "auto", "-p", "LockedHint").Output()
	return err == nil && strings.Contains(string(out), "LockedHint=yes")
}

// Close cleans up resources
func (d *Detector) Close() error {
	return nil
}
