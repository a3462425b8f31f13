// Package driver opens and closes terminal tabs across heterogeneous
// terminal families: tmux windows, AppleScript-automated macOS terminal
// apps, remote-control sockets of cross-platform emulators, Konsole's
// session bus, and a spawn-and-capture-PID fallback. Each family is a
// stateless Driver; the Registry holds them in detection order.
package driver

import (
	"context"
	"strings"
	"time"

	"github.com/tabman-dev/tabman/internal/execx"
	"github.com/tabman-dev/tabman/internal/logging"
)

var log = logging.ForComponent(logging.CompDriver)

// Subprocess entry points are package vars so tests can script probe
// failures and degraded spawns without real terminal binaries.
var (
	killPID       = execx.KillPID
	runCmd        = execx.Run
	tryRun        = execx.TryRun
	spawnDetached = execx.SpawnDetached
	binAvailable  = execx.Available
)

// Driver is the per-terminal-family strategy: cheap env-based detection,
// open with degraded fallback, and a close that never errors.
type Driver interface {
	// Name is the unique identifier persisted in session records.
	Name() string

	// Detect answers "is this the active environment right now?" from
	// environment variables only. Cheap and side-effect-free; called on
	// every detection pass.
	Detect() bool

	// OpenTab creates a new tab/window/pane running opts.Command and
	// returns the addressing fields it could capture. Drivers must try
	// a degraded path (typically a detached spawn with PID capture)
	// before reporting failure.
	OpenTab(ctx context.Context, opts OpenOptions) (*TerminalSession, error)

	// CloseTab closes the tab a previous OpenTab returned. A missing or
	// already-closed target is a normal outcome reported as false, never
	// an error. Drivers fall back to killing the session PID when the
	// family-specific close fails.
	CloseTab(ctx context.Context, sess *TerminalSession) bool
}

// Timeouts bounds the external calls drivers make. Remote-control
// probes get the short timeout; open and close get the longer ones.
type Timeouts struct {
	Probe time.Duration
	Open  time.Duration
	Close time.Duration
}

// DefaultTimeouts returns conservative bounds for driver IPC.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Probe: 3 * time.Second,
		Open:  10 * time.Second,
		Close: 10 * time.Second,
	}
}

// shellQuote renders an argv as a POSIX shell command line with each
// argument single-quoted. Tab contents are typed into a shell (tmux
// new-window, AppleScript "write text"), so worktree paths and
// arguments from the caller must never be interpretable as shell syntax.
func shellQuote(argv []string) string {
	quoted := make([]string, 0, len(argv))
	for _, a := range argv {
		quoted = append(quoted, "'"+strings.ReplaceAll(a, "'", `'\''`)+"'")
	}
	return strings.Join(quoted, " ")
}

// shellCommand builds the command line a tab should run: cd into the
// worktree, then exec the caller's argv. An empty argv leaves the user
// in a shell at the worktree.
func shellCommand(opts OpenOptions) string {
	var b strings.Builder
	if opts.WorkDir != "" {
		b.WriteString("cd ")
		b.WriteString(shellQuote([]string{opts.WorkDir}))
	}
	if len(opts.Command) > 0 {
		if b.Len() > 0 {
			b.WriteString(" && ")
		}
		b.WriteString(shellQuote(opts.Command))
	}
	return b.String()
}

// closeByPID is the shared last-resort close path.
func closeByPID(sess *TerminalSession) bool {
	if sess == nil || sess.PID <= 0 {
		return false
	}
	return killPID(sess.PID)
}
