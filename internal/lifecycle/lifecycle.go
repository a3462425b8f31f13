// Package lifecycle orchestrates the two halves of a session's life:
// open a tab for a worktree and record how to find it again, then close
// it when the worktree is torn down. Open failures are real errors (the
// caller wanted a terminal and did not get one); close is best-effort
// and never blocks teardown.
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tabman-dev/tabman/internal/detect"
	"github.com/tabman-dev/tabman/internal/driver"
	"github.com/tabman-dev/tabman/internal/execx"
	"github.com/tabman-dev/tabman/internal/git"
	"github.com/tabman-dev/tabman/internal/logging"
	"github.com/tabman-dev/tabman/internal/platform"
	"github.com/tabman-dev/tabman/internal/ptyx"
	"github.com/tabman-dev/tabman/internal/statedb"
	"github.com/tabman-dev/tabman/internal/store"
)

var log = logging.ForComponent(logging.CompLifecycle)

// killPID is swappable in tests so close paths don't signal real processes.
var killPID = execx.KillPID

// Resolver picks the driver for the current environment.
type Resolver interface {
	Resolve(ctx context.Context) detect.Result
}

// Lookup maps a persisted driver name back to a driver, usually in a
// different process invocation than the one that opened the session.
type Lookup interface {
	Lookup(name string) (driver.Driver, bool)
}

// Orchestrator runs session opens and closes. The statedb index is
// optional; when present it mirrors open sessions for `tabman list`,
// and failures to maintain it are logged, never surfaced.
type Orchestrator struct {
	resolver Resolver
	lookup   Lookup
	index    *statedb.StateDB
}

// New builds an orchestrator. index may be nil.
func New(resolver Resolver, lookup Lookup, index *statedb.StateDB) *Orchestrator {
	return &Orchestrator{resolver: resolver, lookup: lookup, index: index}
}

// Open resolves the active terminal, opens a tab running opts.Command,
// and persists the session record at the worktree root so a later Close
// can find it. The returned session is the persisted record.
func (o *Orchestrator) Open(ctx context.Context, opts driver.OpenOptions) (*driver.TerminalSession, error) {
	root := git.WorktreeRoot(ctx, opts.WorkDir)
	opts.WorkDir = root
	if opts.Branch == "" {
		opts.Branch = git.CurrentBranch(ctx, root)
	}

	res := o.resolver.Resolve(ctx)
	log.Info("opening_tab",
		slog.String("driver", res.Driver.Name()),
		slog.String("strategy", string(res.Strategy)),
		slog.String("workdir", root))

	sess, err := res.Driver.OpenTab(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("open tab via %s: %w", res.Driver.Name(), err)
	}

	o.finishSession(sess, opts)
	if err := store.Save(root, sess); err != nil {
		// The tab is up but untracked; surface that so the caller knows
		// teardown will not find it.
		return sess, fmt.Errorf("tab opened but session record not saved: %w", err)
	}
	o.recordIndex(root, sess)
	return sess, nil
}

// OpenPty runs opts.Command on a pseudo-terminal instead of a visible
// tab, persisting the same kind of record. The returned Proc owns the
// pty master; the caller decides whether to proxy or release it.
func (o *Orchestrator) OpenPty(ctx context.Context, opts driver.OpenOptions) (*ptyx.Proc, *driver.TerminalSession, error) {
	root := git.WorktreeRoot(ctx, opts.WorkDir)
	opts.WorkDir = root
	if opts.Branch == "" {
		opts.Branch = git.CurrentBranch(ctx, root)
	}

	proc, sess, err := ptyx.Start(opts)
	if err != nil {
		return nil, nil, err
	}

	o.finishSession(sess, opts)
	if err := store.Save(root, sess); err != nil {
		return proc, sess, fmt.Errorf("pty started but session record not saved: %w", err)
	}
	o.recordIndex(root, sess)
	return proc, sess, nil
}

// Close tears down the session recorded for dir, if any. It reports
// whether a live target was actually closed and never returns an error:
// a stale record, an unknown driver name, or a tab the user closed by
// hand must not block worktree teardown. The record is cleared in every
// case.
func (o *Orchestrator) Close(ctx context.Context, dir string) bool {
	root := git.WorktreeRoot(ctx, dir)

	sess, ok := store.Load(root)
	if !ok {
		log.Debug("close_no_record", slog.String("dir", root))
		o.removeIndex(root)
		return false
	}

	closed := o.closeSession(ctx, sess)

	store.Clear(root)
	o.removeIndex(root)
	log.Info("session_closed",
		slog.String("dir", root),
		slog.String("driver", sess.DriverName),
		slog.Bool("closed", closed))
	return closed
}

func (o *Orchestrator) closeSession(ctx context.Context, sess *driver.TerminalSession) bool {
	d, found := o.lookup.Lookup(sess.DriverName)
	if !found {
		// A record written by a newer or older build. The PID is the
		// only thing we can still act on.
		log.Warn("unknown_driver_in_record", slog.String("driver", sess.DriverName))
		if sess.PID > 0 {
			return killPID(sess.PID)
		}
		return false
	}

	if d.CloseTab(ctx, sess) {
		return true
	}
	if sess.PID > 0 {
		return killPID(sess.PID)
	}
	return false
}

// finishSession backfills record fields drivers leave to the
// orchestrator.
func (o *Orchestrator) finishSession(sess *driver.TerminalSession, opts driver.OpenOptions) {
	if sess.Platform == "" {
		sess.Platform = platform.ForSession()
	}
	if sess.Mode == "" {
		sess.Mode = driver.ModeTerminal
	}
	if sess.Label == "" {
		sess.Label = opts.Label
	}
	if sess.Branch == "" {
		sess.Branch = opts.Branch
	}
	if sess.WorkDir == "" {
		sess.WorkDir = opts.WorkDir
	}
	if sess.StartedAt.IsZero() {
		sess.StartedAt = time.Now().UTC()
	}
}

func (o *Orchestrator) recordIndex(root string, sess *driver.TerminalSession) {
	if o.index == nil {
		return
	}
	err := o.index.Record(statedb.SessionRow{
		Worktree:  root,
		Driver:    sess.DriverName,
		Label:     sess.Label,
		Branch:    sess.Branch,
		PID:       sess.PID,
		Mode:      string(sess.Mode),
		StartedAt: sess.StartedAt,
	})
	if err != nil {
		log.Warn("index_record_failed", slog.String("error", err.Error()))
	}
}

func (o *Orchestrator) removeIndex(root string) {
	if o.index == nil {
		return
	}
	if err := o.index.Remove(root); err != nil {
		log.Warn("index_remove_failed", slog.String("error", err.Error()))
	}
}
