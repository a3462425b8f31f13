//go:build !windows

package execx

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"syscall"
	"time"
)

// SpawnDetached starts name with args in dir as a fire-and-forget child
// and returns its PID. The child gets its own session so it survives the
// caller and is killable as a process group.
func SpawnDetached(dir, name string, args ...string) (int, error) {
	cmd := exec.Command(name, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("spawn %s: %w", name, err)
	}

	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		execLog.Debug("process_release_failed",
			slog.Int("pid", pid),
			slog.String("error", err.Error()))
	}

	execLog.Debug("spawned_detached", slog.String("cmd", name), slog.Int("pid", pid))
	return pid, nil
}

// KillPID terminates pid: SIGTERM first, then SIGKILL after a short
// grace period if the process is still around. Returns false when the
// process was already gone.
func KillPID(pid int) bool {
	if pid <= 0 {
		return false
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	// Signal 0 probes existence without affecting the process
	if err := proc.Signal(syscall.Signal(0)); err != nil {
		return false
	}

	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return false
	}

	// Grace period before escalating
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if err := proc.Signal(syscall.Signal(0)); err != nil {
			return true // exited
		}
		time.Sleep(50 * time.Millisecond)
	}

	_ = proc.Signal(syscall.SIGKILL)
	execLog.Debug("pid_killed", slog.Int("pid", pid))
	return true
}
