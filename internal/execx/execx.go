// Package execx runs external commands for the terminal drivers: bounded
// synchronous invocations, non-throwing probes, and detached spawns with
// PID capture. Commands are argv-based; no shell is ever involved.
package execx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/tabman-dev/tabman/internal/logging"
)

var execLog = logging.ForComponent(logging.CompExec)

// ErrTimeout is returned when a command exceeds its context deadline.
var ErrTimeout = errors.New("command timed out")

// Run executes name with args and returns trimmed stdout.
// The context bounds the whole invocation; on deadline the process is
// killed and ErrTimeout is returned.
func Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			execLog.Warn("command_timeout", slog.String("cmd", name))
			return "", fmt.Errorf("%s: %w", name, ErrTimeout)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("%s: %s: %w", name, msg, err)
		}
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// RunTimeout is Run with an explicit timeout instead of a caller context.
func RunTimeout(timeout time.Duration, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return Run(ctx, name, args...)
}

// TryRun executes name with args and reports success without surfacing
// an error. Used for probes and best-effort close paths where failure
// is a normal outcome.
func TryRun(ctx context.Context, name string, args ...string) (string, bool) {
	out, err := Run(ctx, name, args...)
	if err != nil {
		execLog.Debug("try_run_failed",
			slog.String("cmd", name),
			slog.String("error", err.Error()))
		return "", false
	}
	return out, true
}

// Available reports whether name resolves on PATH.
func Available(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
