package driver

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/tabman-dev/tabman/internal/platform"
)

// tmuxDriver controls tabs as tmux windows. It must sit first in the
// registry: a tmux session nested inside any terminal emulator is
// controlled at the multiplexer level, where killing the surrounding
// terminal window would be the wrong granularity.
type tmuxDriver struct {
	timeouts Timeouts
}

func newTmuxDriver(t Timeouts) *tmuxDriver {
	return &tmuxDriver{timeouts: t}
}

func (d *tmuxDriver) Name() string { return "tmux" }

// Detect: tmux exports $TMUX into every client shell.
func (d *tmuxDriver) Detect() bool {
	return os.Getenv("TMUX") != ""
}

func (d *tmuxDriver) OpenTab(ctx context.Context, opts OpenOptions) (*TerminalSession, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeouts.Open)
	defer cancel()

	args := []string{"new-window", "-c", opts.WorkDir}
	if opts.Label != "" {
		args = append(args, "-n", opts.Label)
	}

	// -P -F prints the new pane id so we can kill exactly that pane later
	withCapture := append(append([]string{}, args...), "-P", "-F", "#{pane_id}")
	if cmd := shellCommand(opts); cmd != "" {
		withCapture = append(withCapture, cmd)
	}

	if paneID, err := runCmd(ctx, "tmux", withCapture...); err == nil {
		return &TerminalSession{
			DriverName: d.Name(),
			Platform:   platform.ForSession(),
			Mode:       ModeTerminal,
			PaneID:     paneID,
			StartedAt:  time.Now(),
		}, nil
	} else {
		log.Debug("tmux_new_window_capture_failed", slog.String("error", err.Error()))
	}

	// Older tmux binaries reject -P -F on new-window; create without capture
	plain := args
	if cmd := shellCommand(opts); cmd != "" {
		plain = append(plain, cmd)
	}
	if _, err := runCmd(ctx, "tmux", plain...); err != nil {
		return nil, err
	}
	return &TerminalSession{
		DriverName: d.Name(),
		Platform:   platform.ForSession(),
		Mode:       ModeTerminal,
		StartedAt:  time.Now(),
	}, nil
}

func (d *tmuxDriver) CloseTab(ctx context.Context, sess *TerminalSession) bool {
	ctx, cancel := context.WithTimeout(ctx, d.timeouts.Close)
	defer cancel()

	if sess.PaneID != "" {
		if _, ok := tryRun(ctx, "tmux", "kill-pane", "-t", sess.PaneID); ok {
			return true
		}
	}
	return closeByPID(sess)
}
