package window

import "strings"

// WindowInfo describes the window that holds input focus.
type WindowInfo struct {
	// WMClass is the class half of WM_CLASS, e.g. "Firefox".
	WMClass       string
	WindowTitle   string
	ProcessName   string
	PID           int32
	DisplayServer string // "x11" or "wayland"
}

// PackageID returns the key usage is recorded under. Desktop entries name
// the same key through StartupWMClass.
func (w *WindowInfo) PackageID() string {
	if w == nil {
		return ""
	}
	if w.WMClass != "" {
		return strings.ToLower(w.WMClass)
	}
	return strings.ToLower(w.ProcessName)
}

// IdleInfo represents system idle/lock state
type IdleInfo struct {
	IsIdle   bool
	IsLocked bool
	IdleTime int64 // Idle time in seconds
}

// Detector is the interface that all window detection implementations must satisfy
type Detector interface {
	// GetFocusedWindow returns information about the currently focused window
	GetFocusedWindow() (*WindowInfo, error)

	// GetIdleInfo returns information about system idle/lock state
	GetIdleInfo() (*IdleInfo, error)

	// IsAvailable checks if this detector can run on the current system
	IsAvailable() bool

	// GetDisplayServer returns the display server type
	GetDisplayServer() string

	// Close cleans up any resources used by the detector
	Close() error
}
