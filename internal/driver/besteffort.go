package driver

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/tabman-dev/tabman/internal/platform"
)

// spawnCandidate is one plausible way to start a terminal window on the
// current platform.
type spawnCandidate struct {
	bin  string
	args func(opts OpenOptions) []string
}

// spawnCandidates lists terminal launch commands in preference order
// for the current platform. First binary that exists and starts wins.
// WSL tries Windows Terminal before the Linux emulators: a WSL distro
// rarely has an X terminal installed but wt.exe is on PATH.
func spawnCandidates() []spawnCandidate {
	switch {
	case platform.IsMacOS():
		return darwinCandidates()
	case runtime.GOOS == "windows":
		return windowsCandidates()
	case platform.IsWSL():
		return append(windowsCandidates(), linuxCandidates()...)
	default:
		return linuxCandidates()
	}
}

func darwinCandidates() []spawnCandidate {
	return []spawnCandidate{
		{"open", func(o OpenOptions) []string { return []string{"-a", "Terminal", o.WorkDir} }},
		{"open", func(o OpenOptions) []string { return []string{"-a", "iTerm", o.WorkDir} }},
	}
}

func windowsCandidates() []spawnCandidate {
	return []spawnCandidate{
		{"wt.exe", func(o OpenOptions) []string {
			args := []string{"-d", o.WorkDir}
			return append(args, o.Command...)
		}},
		{"cmd", func(o OpenOptions) []string {
			args := []string{"/c", "start", "/d", o.WorkDir, "cmd"}
			if len(o.Command) > 0 {
				args = append(args, "/k")
				args = append(args, o.Command...)
			}
			return args
		}},
	}
}

func linuxCandidates() []spawnCandidate {
	return []spawnCandidate{
		{"x-terminal-emulator", func(o OpenOptions) []string { return appendExec(nil, "-e", o) }},
		{"gnome-terminal", func(o OpenOptions) []string {
			return appendExec([]string{"--working-directory=" + o.WorkDir}, "--", o)
		}},
		{"konsole", func(o OpenOptions) []string {
			return appendExec([]string{"--workdir", o.WorkDir}, "-e", o)
		}},
		{"xfce4-terminal", func(o OpenOptions) []string {
			return appendExec([]string{"--working-directory", o.WorkDir}, "-x", o)
		}},
		{"xterm", func(o OpenOptions) []string {
			args := []string{}
			if o.Label != "" {
				args = append(args, "-T", o.Label)
			}
			return appendExec(args, "-e", o)
		}},
	}
}

func appendExec(args []string, execFlag string, opts OpenOptions) []string {
	if len(opts.Command) == 0 {
		return args
	}
	args = append(args, execFlag)
	return append(args, opts.Command...)
}

// bestEffortDriver spawns whichever terminal it can find. It is never
// consulted for live detection; it exists so PID-only sessions opened
// through the spawn list still carry a resolvable driver name, and as
// the open path shared with the catch-all fallback driver.
type bestEffortDriver struct{}

func (d *bestEffortDriver) Name() string { return "best-effort" }

func (d *bestEffortDriver) Detect() bool { return false }

func (d *bestEffortDriver) OpenTab(ctx context.Context, opts OpenOptions) (*TerminalSession, error) {
	return openBestEffort(d.Name(), opts)
}

func (d *bestEffortDriver) CloseTab(ctx context.Context, sess *TerminalSession) bool {
	return closeByPID(sess)
}

func openBestEffort(name string, opts OpenOptions) (*TerminalSession, error) {
	var lastErr error
	for _, c := range spawnCandidates() {
		if !binAvailable(c.bin) {
			continue
		}
		pid, err := spawnDetached(opts.WorkDir, c.bin, c.args(opts)...)
		if err != nil {
			lastErr = err
			log.Debug("best_effort_spawn_failed",
				slog.String("bin", c.bin),
				slog.String("error", err.Error()))
			continue
		}
		return &TerminalSession{
			DriverName: name,
			Platform:   platform.ForSession(),
			Mode:       ModeTerminal,
			PID:        pid,
			StartedAt:  time.Now(),
		}, nil
	}
	if lastErr != nil {
		return nil, fmt.Errorf("no terminal could be started (run the command manually): %w", lastErr)
	}
	return nil, fmt.Errorf("no known terminal emulator found on PATH for %s (run the command manually)", platform.Detect().String())
}

// fallbackDriver always detects. Registered last so every other driver
// gets first refusal; it guarantees live detection terminates with some
// driver.
type fallbackDriver struct{}

func (d *fallbackDriver) Name() string { return "fallback" }

func (d *fallbackDriver) Detect() bool { return true }

func (d *fallbackDriver) OpenTab(ctx context.Context, opts OpenOptions) (*TerminalSession, error) {
	return openBestEffort(d.Name(), opts)
}

func (d *fallbackDriver) CloseTab(ctx context.Context, sess *TerminalSession) bool {
	return closeByPID(sess)
}
