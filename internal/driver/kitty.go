package driver

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tabman-dev/tabman/internal/platform"
)

// kittyDriver drives kitty over its remote-control protocol. Remote
// control is opt-in configuration (allow_remote_control), so every open
// starts with a cheap probe and degrades to spawning a new top-level
// kitty window when the channel is unavailable.
type kittyDriver struct {
	timeouts Timeouts
}

func newKittyDriver(t Timeouts) *kittyDriver {
	return &kittyDriver{timeouts: t}
}

func (d *kittyDriver) Name() string { return "kitty" }

func (d *kittyDriver) Detect() bool {
	return os.Getenv("KITTY_WINDOW_ID") != "" || os.Getenv("TERM") == "xterm-kitty"
}

// remoteControlAvailable probes `kitty @ ls` with a short timeout.
func (d *kittyDriver) remoteControlAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, d.timeouts.Probe)
	defer cancel()
	_, ok := tryRun(ctx, "kitty", "@", "ls")
	return ok
}

func (d *kittyDriver) OpenTab(ctx context.Context, opts OpenOptions) (*TerminalSession, error) {
	if d.remoteControlAvailable(ctx) {
		openCtx, cancel := context.WithTimeout(ctx, d.timeouts.Open)
		defer cancel()

		args := []string{"@", "launch", "--type=tab", "--cwd", opts.WorkDir}
		if opts.Label != "" {
			args = append(args, "--tab-title", opts.Label)
		}
		if len(opts.Command) > 0 {
			args = append(args, "--")
			args = append(args, opts.Command...)
		}

		if wid, err := runCmd(openCtx, "kitty", args...); err == nil {
			return &TerminalSession{
				DriverName: d.Name(),
				Platform:   platform.ForSession(),
				Mode:       ModeTerminal,
				WindowID:   wid,
				StartedAt:  time.Now(),
			}, nil
		} else {
			log.Debug("kitty_launch_failed", slog.String("error", err.Error()))
		}
	}

	// Remote control off: spawn a new top-level window and own its PID
	args := []string{"--directory", opts.WorkDir}
	if opts.Label != "" {
		args = append(args, "--title", opts.Label)
	}
	args = append(args, opts.Command...)

	pid, err := spawnDetached(opts.WorkDir, "kitty", args...)
	if err != nil {
		return nil, fmt.Errorf("kitty remote control unavailable and spawn failed: %w", err)
	}
	return &TerminalSession{
		DriverName: d.Name(),
		Platform:   platform.ForSession(),
		Mode:       ModeTerminal,
		PID:        pid,
		StartedAt:  time.Now(),
	}, nil
}

func (d *kittyDriver) CloseTab(ctx context.Context, sess *TerminalSession) bool {
	ctx, cancel := context.WithTimeout(ctx, d.timeouts.Close)
	defer cancel()

	if sess.WindowID != "" {
		if _, ok := tryRun(ctx, "kitty", "@", "close-window", "--match", "id:"+sess.WindowID); ok {
			return true
		}
	}
	return closeByPID(sess)
}
