package driver

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tabman-dev/tabman/internal/platform"
)

// weztermDriver drives WezTerm through `wezterm cli`. The CLI talks to
// the running mux server when invoked from inside a WezTerm pane; when
// that channel is unavailable the driver degrades to `wezterm start` as
// a detached process.
type weztermDriver struct {
	timeouts Timeouts
}

func newWeztermDriver(t Timeouts) *weztermDriver {
	return &weztermDriver{timeouts: t}
}

func (d *weztermDriver) Name() string { return "wezterm" }

func (d *weztermDriver) Detect() bool {
	return os.Getenv("WEZTERM_PANE") != "" || os.Getenv("TERM_PROGRAM") == "WezTerm"
}

func (d *weztermDriver) cliAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, d.timeouts.Probe)
	defer cancel()
	_, ok := tryRun(ctx, "wezterm", "cli", "list")
	return ok
}

func (d *weztermDriver) OpenTab(ctx context.Context, opts OpenOptions) (*TerminalSession, error) {
	if d.cliAvailable(ctx) {
		openCtx, cancel := context.WithTimeout(ctx, d.timeouts.Open)
		defer cancel()

		// spawn prints the new pane id on stdout
		args := []string{"cli", "spawn", "--cwd", opts.WorkDir}
		if len(opts.Command) > 0 {
			args = append(args, "--")
			args = append(args, opts.Command...)
		}

		if paneID, err := runCmd(openCtx, "wezterm", args...); err == nil {
			return &TerminalSession{
				DriverName: d.Name(),
				Platform:   platform.ForSession(),
				Mode:       ModeTerminal,
				PaneID:     paneID,
				StartedAt:  time.Now(),
			}, nil
		} else {
			log.Debug("wezterm_spawn_failed", slog.String("error", err.Error()))
		}
	}

	args := []string{"start", "--cwd", opts.WorkDir}
	if len(opts.Command) > 0 {
		args = append(args, "--")
		args = append(args, opts.Command...)
	}
	pid, err := spawnDetached(opts.WorkDir, "wezterm", args...)
	if err != nil {
		return nil, fmt.Errorf("wezterm cli unavailable and spawn failed: %w", err)
	}
	return &TerminalSession{
		DriverName: d.Name(),
		Platform:   platform.ForSession(),
		Mode:       ModeTerminal,
		PID:        pid,
		StartedAt:  time.Now(),
	}, nil
}

func (d *weztermDriver) CloseTab(ctx context.Context, sess *TerminalSession) bool {
	ctx, cancel := context.WithTimeout(ctx, d.timeouts.Close)
	defer cancel()

	if sess.PaneID != "" {
		if _, ok := tryRun(ctx, "wezterm", "cli", "kill-pane", "--pane-id", sess.PaneID); ok {
			return true
		}
	}
	return closeByPID(sess)
}
