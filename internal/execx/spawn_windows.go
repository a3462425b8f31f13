//go:build windows

package execx

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
)

// SpawnDetached starts name with args in dir as a fire-and-forget child
// and returns its PID.
func SpawnDetached(dir, name string, args ...string) (int, error) {
	cmd := exec.Command(name, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("spawn %s: %w", name, err)
	}

	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		execLog.Debug("process_release_failed",
			slog.Int("pid", pid),
			slog.String("error", err.Error()))
	}
	return pid, nil
}

// KillPID terminates pid. Returns false when the process was already gone.
func KillPID(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	if err := proc.Kill(); err != nil {
		return false
	}
	return true
}
