package x11

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/screensaver"
	"github.com/jezek/xgb/xproto"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/actionsum/appusage/pkg/window"
)

// DefaultIdleThreshold is how long without input counts as idle.
const DefaultIdleThreshold = 5 * time.Minute

var atomNames = []string{
	"_NET_ACTIVE_WINDOW",
	"_NET_WM_NAME",
	"_NET_WM_PID",
	"WM_NAME",
	"WM_CLASS",
	"UTF8_STRING",
}

// lockers are screen lockers that do not activate the X screensaver.
var lockers = []string{
	"gnome-screensaver-dialog",
	"kscreenlocker_greet",
	"i3lock",
	"slock",
	"xsecurelock",
	"light-locker",
}

// Detector implements window.Detector over a single X connection.
type Detector struct {
	mu            sync.Mutex
	conn          *xgb.Conn
	root          xproto.Window
	atoms         map[string]xproto.Atom
	hasSaver      bool
	idleThreshold time.Duration
}

// NewDetector connects to $DISPLAY.
func NewDetector(idleThreshold time.Duration) (*Detector, error) {
	if idleThreshold <= 0 {
		idleThreshold = DefaultIdleThreshold
	}

	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	d := &Detector{
		conn:          conn,
		root:          xproto.Setup(conn).DefaultScreen(conn).Root,
		atoms:         make(map[string]xproto.Atom, len(atomNames)),
		idleThreshold: idleThreshold,
	}

	for _, name := range atomNames {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to intern atom %s: %w", name, err)
		}
		d.atoms[name] = reply.Atom
	}

	d.hasSaver = screensaver.Init(conn) == nil

	return d, nil
}

// IsAvailable reports whether the X connection is open.
func (d *Detector) IsAvailable() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conn != nil
}

// GetDisplayServer returns "x11"
func (d *Detector) GetDisplayServer() string {
	return "x11"
}

// GetFocusedWindow returns information about the currently focused window
func (d *Detector) GetFocusedWindow() (*window.WindowInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn == nil {
		return nil, fmt.Errorf("x11 detector is closed")
	}

	win, err := d.activeWindow()
	if err != nil {
		return nil, err
	}

	_, class := parseWMClass(d.property(win, d.atoms["WM_CLASS"], xproto.AtomString, 256))
	info := &window.WindowInfo{
		WMClass:       class,
		WindowTitle:   d.windowName(win),
		DisplayServer: "x11",
	}

	if data := d.property(win, d.atoms["_NET_WM_PID"], xproto.AtomCardinal, 1); len(data) >= 4 {
		info.PID = int32(xgb.Get32(data))
		if p, err := process.NewProcess(info.PID); err == nil {
			info.ProcessName, _ = p.Name()
		}
	}

	if info.WMClass == "" && info.ProcessName == "" {
		return nil, fmt.Errorf("focused window 0x%x has no class or process", uint32(win))
	}
	return info, nil
}

func (d *Detector) property(win xproto.Window, atom, typ xproto.Atom, length uint32) []byte {
	reply, err := xproto.GetProperty(d.conn, false, win, atom, typ, 0, length).Reply()
	if err != nil || reply == nil {
		return nil
	}
	return reply.Value
}

func (d *Detector) activeWindow() (xproto.Window, error) {
	if data := d.property(d.root, d.atoms["_NET_ACTIVE_WINDOW"], xproto.AtomWindow, 1); len(data) >= 4 {
		if win := xproto.Window(xgb.Get32(data)); win != 0 {
			return win, nil
		}
	}

	focus, err := xproto.GetInputFocus(d.conn).Reply()
	if err != nil {
		return 0, fmt.Errorf("failed to get input focus: %w", err)
	}
	if focus.Focus == 0 || focus.Focus == d.root {
		return 0, fmt.Errorf("no window has input focus")
	}
	return d.topLevel(focus.Focus), nil
}

func (d *Detector) topLevel(win xproto.Window) xproto.Window {
	for {
		tree, err := xproto.QueryTree(d.conn, win).Reply()
		if err != nil || tree.Parent == d.root || tree.Parent == 0 {
			return win
		}
		win = tree.Parent
	}
}

func (d *Detector) windowName(win xproto.Window) string {
	if data := d.property(win, d.atoms["_NET_WM_NAME"], d.atoms["UTF8_STRING"], 256); len(data) > 0 {
		return strings.TrimRight(string(data), "\x00")
	}
	return strings.TrimRight(string(d.property(win, d.atoms["WM_NAME"], xproto.AtomString, 256)), "\x00")
}

// parseWMClass splits a raw WM_CLASS value into its instance and class.
func parseWMClass(data []byte) (instance, class string) {
	parts := strings.Split(strings.TrimRight(string(data), "\x00"), "\x00")
	if len(parts) >= 1 {
		instance = parts[0]
	}
	if len(parts) >= 2 {
		class = parts[1]
	}
	if class == "" {
		class = instance
	}
	return instance, class
}

// GetIdleInfo returns system idle/lock information
func (d *Detector) GetIdleInfo() (*window.IdleInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn == nil {
		return nil, fmt.Errorf("x11 detector is closed")
	}

	var idle time.Duration
	saverOn := false
	if d.hasSaver {
		reply, err := screensaver.QueryInfo(d.conn, xproto.Drawable(d.root)).Reply()
		if err != nil {
			return nil, fmt.Errorf("failed to query screensaver: %w", err)
		}
		idle = time.Duration(reply.MsSinceUserInput) * time.Millisecond
		saverOn = reply.State == screensaver.StateOn
	}

	return &window.IdleInfo{
		IsIdle:   isIdle(idle, d.idleThreshold),
		IsLocked: saverOn || lockerRunning(),
		IdleTime: int64(idle / time.Second),
	}, nil
}

func isIdle(idle, threshold time.Duration) bool {
	return idle > threshold
}

func lockerRunning() bool {
	procs, err := process.Processes()
	if err != nil {
		return false
	}
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
	return false
}

// Close cleans up resources
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn != nil {
		d.conn.Close()
		d.conn = nil
	}
	return nil
}
