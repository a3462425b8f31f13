package driver

import (
	"time"

	"github.com/tabman-dev/tabman/internal/platform"
)

// Mode describes what kind of launch produced a session.
type Mode string

const (
	// ModeTerminal is a tab/window/pane in a real terminal, closed via a Driver.
	ModeTerminal Mode = "terminal"
	// ModePty is an embedded pty launch, closed directly by its owner.
	ModePty Mode = "pty"
	// ModeBackground is a plain background process.
	ModeBackground Mode = "background"
)

// TerminalSession is the persisted record identifying one opened
// tab/window/pane so it can be closed later, usually by a different
// process invocation. At most one or two addressing fields are set,
// depending on which driver created the session; PID is the universal
// fallback.
type TerminalSession struct {
	DriverName string                   `json:"driver"`
	Platform   platform.SessionPlatform `json:"platform"`
	Mode       Mode                     `json:"mode"`

	// Addressing fields, populated per driver.
	SessionID string `json:"session_id,omitempty"` // iTerm2 session GUID
	WindowID  string `json:"window_id,omitempty"`  // Terminal.app / kitty window id
	TabID     string `json:"tab_id,omitempty"`
	PaneID    string `json:"pane_id,omitempty"`   // tmux / wezterm pane id
	DBusPath  string `json:"dbus_path,omitempty"` // Konsole session object path
	PID       int    `json:"pid,omitempty"`
	PtyID     string `json:"pty_id,omitempty"`

	// Metadata for diagnostics and listing.
	Branch    string    `json:"branch,omitempty"`
	Label     string    `json:"label,omitempty"`
	WorkDir   string    `json:"work_dir,omitempty"`
	StartedAt time.Time `json:"started_at,omitempty"`
}

// Closable reports whether the session carries enough addressing to be
// worth a close attempt. A session with no addressing and no PID is a
// no-op on close.
func (s *TerminalSession) Closable() bool {
	if s == nil {
		return false
	}
	return s.SessionID != "" || s.WindowID != "" || s.TabID != "" ||
		s.PaneID != "" || s.DBusPath != "" || s.PID > 0
}

// OpenOptions carries everything a driver needs to open a tab.
type OpenOptions struct {
	// WorkDir is the directory the new tab starts in.
	WorkDir string

	// Command is the argv to run in the tab. Empty means an interactive shell.
	Command []string

	// Label is the human-readable tab/window title.
	Label string

	// Branch is recorded on the session for diagnostics.
	Branch string
}
