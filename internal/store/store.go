// Package store persists one terminal session record per worktree
// directory: a single JSON document under the worktree's hidden state
// directory. The record is written once at open time and read once at
// close time, usually by a different process invocation.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tabman-dev/tabman/internal/driver"
	"github.com/tabman-dev/tabman/internal/logging"
)

var storeLog = logging.ForComponent(logging.CompStore)

const (
	// StateDirName is the hidden per-worktree state directory.
	StateDirName = ".tabman"

	// SessionFileName is the session record inside StateDirName.
	SessionFileName = "session.json"
)

// SessionPath returns the session file path for a worktree directory.
func SessionPath(dir string) string {
	return filepath.Join(dir, StateDirName, SessionFileName)
}

// Save writes the session record for dir, atomically: the document is
// written to a temp file in the same directory and renamed into place
// so a concurrent reader never observes a half-written record.
func Save(dir string, sess *driver.TerminalSession) error {
	stateDir := filepath.Join(dir, StateDirName)
	if err := os.MkdirAll(stateDir, 0700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	target := filepath.Join(stateDir, SessionFileName)
	tmp, err := os.CreateTemp(stateDir, SessionFileName+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmpPath != "" {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, target); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	tmpPath = ""

	storeLog.Debug("session_saved",
		slog.String("dir", dir),
		slog.String("driver", sess.DriverName))
	return nil
}

// Load reads the session record for dir. A missing, unreadable or
// corrupt file yields (nil, false), never an error: a stale or damaged
// record must not block worktree teardown.
func Load(dir string) (*driver.TerminalSession, bool) {
	data, err := os.ReadFile(SessionPath(dir))
	if err != nil {
		return nil, false
	}

	var sess driver.TerminalSession
	if err := json.Unmarshal(data, &sess); err != nil {
		storeLog.Warn("session_file_corrupt",
			slog.String("dir", dir),
			slog.String("error", err.Error()))
		return nil, false
	}
	return &sess, true
}

// Clear removes the session record for dir. Missing files are fine.
func Clear(dir string) {
	if err := os.Remove(SessionPath(dir)); err != nil && !os.IsNotExist(err) {
		storeLog.Debug("session_clear_failed",
			slog.String("dir", dir),
			slog.String("error", err.Error()))
	}
}
