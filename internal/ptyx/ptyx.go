// Package ptyx runs a task on a pseudo-terminal instead of a visible
// terminal tab. Used when the caller wants terminal semantics (colors,
// line discipline, TUI-capable programs) without opening a window, and
// as the richer sibling of plain detached spawning.
package ptyx

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/creack/pty"

	"github.com/tabman-dev/tabman/internal/driver"
	"github.com/tabman-dev/tabman/internal/logging"
	"github.com/tabman-dev/tabman/internal/platform"
)

var ptyLog = logging.ForComponent(logging.CompExec)

// Proc is a task running on a pty. The caller owns both the pty file
// and the process; Close releases the file and the process keeps
// running (teardown goes through the recorded PID).
type Proc struct {
	File *os.File
	PID  int
}

// Close releases the pty master. The child process is unaffected.
func (p *Proc) Close() error {
	if p.File == nil {
		return nil
	}
	return p.File.Close()
}

// Start launches opts.Command on a new pty in opts.WorkDir and returns
// the running process plus the session record to persist. The record
// carries Mode=pty, the pty name as the addressing handle, and the PID
// for teardown.
func Start(opts driver.OpenOptions) (*Proc, *driver.TerminalSession, error) {
	if len(opts.Command) == 0 {
		return nil, nil, fmt.Errorf("pty start: empty command")
	}

	cmd := exec.Command(opts.Command[0], opts.Command[1:]...)
	cmd.Dir = opts.WorkDir
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")

	f, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: 40, Cols: 120})
	if err != nil {
		return nil, nil, fmt.Errorf("pty start: %w", err)
	}

	// Reap the child when it exits on its own so it does not linger as
	// a zombie for the life of this process.
	go func() { _ = cmd.Wait() }()

	pid := cmd.Process.Pid
	ptyLog.Info("pty_started",
		slog.Int("pid", pid),
		slog.String("pty", f.Name()),
		slog.String("workdir", opts.WorkDir))

	sess := &driver.TerminalSession{
		DriverName: "pty",
		Platform:   platform.ForSession(),
		Mode:       driver.ModePty,
		PtyID:      f.Name(),
		PID:        pid,
		Branch:     opts.Branch,
		Label:      opts.Label,
		WorkDir:    opts.WorkDir,
		StartedAt:  time.Now().UTC(),
	}
	return &Proc{File: f, PID: pid}, sess, nil
}

// Resize adjusts the pty window size, for callers that proxy a live
// terminal onto the pty.
func (p *Proc) Resize(rows, cols uint16) error {
	if err := pty.Setsize(p.File, &pty.Winsize{Rows: rows, Cols: cols}); err != nil {
		return fmt.Errorf("pty resize to %dx%d: %w", rows, cols, err)
	}
	return nil
}
