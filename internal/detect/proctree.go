//go:build !windows

package detect

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tabman-dev/tabman/internal/execx"
)

// processInfo returns pid's parent PID and executable name via a
// read-only ps query. Works on both darwin and linux.
func processInfo(ctx context.Context, pid int) (ppid int, name string, ok bool) {
	out, ok := execx.TryRun(ctx, "ps", "-o", "ppid=,comm=", "-p", strconv.Itoa(pid))
	if !ok || out == "" {
		return 0, "", false
	}

	fields := strings.SplitN(strings.TrimSpace(out), " ", 2)
	if len(fields) < 2 {
		return 0, "", false
	}

	ppid, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return 0, "", false
	}

	// comm may be a full path (macOS reports e.g.
	// /Applications/iTerm.app/Contents/MacOS/iTerm2)
	name = filepath.Base(strings.TrimSpace(fields[1]))
	return ppid, name, true
}

// walkParentDrivers walks up the parent chain from this process, at
// most maxDepth levels, and returns the first ancestor that is a known
// terminal emulator. IDE host processes are skipped, never matched.
func walkParentDrivers(ctx context.Context, maxDepth int) (driverName, procName string, ok bool) {
	// Start at our own parent; our own name is never interesting
	pid := os.Getppid()
	for depth := 0; depth < maxDepth && pid > 1; depth++ {
		ppid, name, found := processInfo(ctx, pid)
		if !found {
			return "", "", false
		}
		if d, match := lookupProcessDriver(name); match {
			return d, name, true
		}
		pid = ppid
	}
	return "", "", false
}
