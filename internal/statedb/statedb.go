// Package statedb keeps a global SQLite index of open terminal
// sessions across all worktrees, for `tabman list`. The per-worktree
// JSON record remains the close path's source of truth; rows here are
// diagnostic and failures to maintain them are logged, never fatal.
package statedb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SchemaVersion tracks the current database schema version.
// Bump this when adding migrations.
const SchemaVersion = 1

// StateDB wraps a SQLite database for the session index.
// Thread-safe for concurrent use from multiple goroutines within one
// process; multiple OS processes share it via WAL mode + busy timeout.
type StateDB struct {
	db *sql.DB
}

// SessionRow is one open session as recorded in the index.
type SessionRow struct {
	Worktree  string
	Driver    string
	Label     string
	Branch    string
	PID       int
	Mode      string
	StartedAt time.Time
}

// Open creates or opens the database at dbPath with WAL mode and a busy
// timeout, and ensures the schema exists.
func Open(dbPath string) (*StateDB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("statedb: mkdir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("statedb: open: %w", err)
	}

	// WAL mode: allows concurrent readers while writing
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("statedb: wal mode: %w", err)
	}

	// Busy timeout: wait up to 5s if another process holds a lock
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("statedb: busy timeout: %w", err)
	}

	s := &StateDB{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *StateDB) migrate() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_info (
			version INTEGER NOT NULL
		)`); err != nil {
		return fmt.Errorf("statedb: create schema_info: %w", err)
	}

	var version int
	err := s.db.QueryRow(`SELECT version FROM schema_info`).Scan(&version)
	if err == sql.ErrNoRows {
		if _, err := s.db.Exec(`INSERT INTO schema_info (version) VALUES (?)`, SchemaVersion); err != nil {
			return fmt.Errorf("statedb: init schema version: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("statedb: read schema version: %w", err)
	}

	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			worktree   TEXT PRIMARY KEY,
			driver     TEXT NOT NULL,
			label      TEXT NOT NULL DEFAULT '',
			branch     TEXT NOT NULL DEFAULT '',
			pid        INTEGER NOT NULL DEFAULT 0,
			mode       TEXT NOT NULL DEFAULT 'terminal',
			started_at TEXT NOT NULL
		)`); err != nil {
		return fmt.Errorf("statedb: create sessions: %w", err)
	}
	return nil
}

// Close checkpoints WAL and closes the database.
func (s *StateDB) Close() error {
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return s.db.Close()
}

// Record upserts the row for a worktree. One session per worktree.
func (s *StateDB) Record(row SessionRow) error {
	_, err := s.db.Exec(`
		INSERT INTO sessions (worktree, driver, label, branch, pid, mode, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(worktree) DO UPDATE SET
			driver = excluded.driver,
			label = excluded.label,
			branch = excluded.branch,
			pid = excluded.pid,
			mode = excluded.mode,
			started_at = excluded.started_at`,
		row.Worktree, row.Driver, row.Label, row.Branch, row.PID, row.Mode,
		row.StartedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("statedb: record: %w", err)
	}
	return nil
}

// Remove deletes the row for a worktree. Removing an absent row is fine.
func (s *StateDB) Remove(worktree string) error {
	if _, err := s.db.Exec(`DELETE FROM sessions WHERE worktree = ?`, worktree); err != nil {
		return fmt.Errorf("statedb: remove: %w", err)
	}
	return nil
}

// List returns all recorded sessions, newest first.
func (s *StateDB) List() ([]SessionRow, error) {
	rows, err := s.db.Query(`
		SELECT worktree, driver, label, branch, pid, mode, started_at
		FROM sessions ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("statedb: list: %w", err)
	}
	defer rows.Close()

	var out []SessionRow
	for rows.Next() {
		var r SessionRow
		var started string
		if err := rows.Scan(&r.Worktree, &r.Driver, &r.Label, &r.Branch, &r.PID, &r.Mode, &started); err != nil {
			return nil, fmt.Errorf("statedb: scan: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, started); err == nil {
			r.StartedAt = t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
