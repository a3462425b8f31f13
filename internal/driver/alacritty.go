package driver

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/tabman-dev/tabman/internal/platform"
)

// alacrittyDriver drives Alacritty. `alacritty msg create-window` opens
// a window in the running instance but returns no handle, so an
// IPC-created window is not individually addressable and its close
// degrades to a PID kill (or a no-op when the IPC path owned no
// process). The spawn fallback owns a PID and closes cleanly.
type alacrittyDriver struct {
	timeouts Timeouts
}

func newAlacrittyDriver(t Timeouts) *alacrittyDriver {
	return &alacrittyDriver{timeouts: t}
}

func (d *alacrittyDriver) Name() string { return "alacritty" }

func (d *alacrittyDriver) Detect() bool {
	return os.Getenv("ALACRITTY_SOCKET") != "" ||
		os.Getenv("ALACRITTY_WINDOW_ID") != "" ||
		os.Getenv("ALACRITTY_LOG") != ""
}

// ipcAvailable: the msg socket only exists when an instance runs with
// IPC enabled (on by default unless --socket is disabled).
func (d *alacrittyDriver) ipcAvailable() bool {
	return os.Getenv("ALACRITTY_SOCKET") != "" && binAvailable("alacritty")
}

func (d *alacrittyDriver) OpenTab(ctx context.Context, opts OpenOptions) (*TerminalSession, error) {
	if d.ipcAvailable() {
		openCtx, cancel := context.WithTimeout(ctx, d.timeouts.Open)
		defer cancel()

		args := []string{"msg", "create-window", "--working-directory", opts.WorkDir}
		if opts.Label != "" {
			args = append(args, "-T", opts.Label)
		}
		if len(opts.Command) > 0 {
			args = append(args, "-e")
			args = append(args, opts.Command...)
		}

		if _, ok := tryRun(openCtx, "alacritty", args...); ok {
			return &TerminalSession{
				DriverName: d.Name(),
				Platform:   platform.ForSession(),
				Mode:       ModeTerminal,
				StartedAt:  time.Now(),
			}, nil
		}
	}

	args := []string{"--working-directory", opts.WorkDir}
	if opts.Label != "" {
		args = append(args, "-T", opts.Label)
	}
	if len(opts.Command) > 0 {
		args = append(args, "-e")
		args = append(args, opts.Command...)
	}
	pid, err := spawnDetached(opts.WorkDir, "alacritty", args...)
	if err != nil {
		return nil, fmt.Errorf("alacritty spawn failed: %w", err)
	}
	return &TerminalSession{
		DriverName: d.Name(),
		Platform:   platform.ForSession(),
		Mode:       ModeTerminal,
		PID:        pid,
		StartedAt:  time.Now(),
	}, nil
}

func (d *alacrittyDriver) CloseTab(ctx context.Context, sess *TerminalSession) bool {
	return closeByPID(sess)
}
