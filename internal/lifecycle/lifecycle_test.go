package lifecycle

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabman-dev/tabman/internal/detect"
	"github.com/tabman-dev/tabman/internal/driver"
	"github.com/tabman-dev/tabman/internal/statedb"
	"github.com/tabman-dev/tabman/internal/store"
)

// fakeDriver scripts OpenTab/CloseTab outcomes.
type fakeDriver struct {
	name      string
	openSess  *driver.TerminalSession
	openErr   error
	closeOK   bool
	closeSeen *driver.TerminalSession
}

func (f *fakeDriver) Name() string { return f.name }
func (f *fakeDriver) Detect() bool { return true }

func (f *fakeDriver) OpenTab(ctx context.Context, opts driver.OpenOptions) (*driver.TerminalSession, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	s := *f.openSess
	return &s, nil
}

func (f *fakeDriver) CloseTab(ctx context.Context, sess *driver.TerminalSession) bool {
	f.closeSeen = sess
	return f.closeOK
}

type fakeResolver struct{ d driver.Driver }

func (r fakeResolver) Resolve(ctx context.Context) detect.Result {
	return detect.Result{Driver: r.d, Strategy: detect.StrategyEnv}
}

type fakeLookup map[string]driver.Driver

func (l fakeLookup) Lookup(name string) (driver.Driver, bool) {
	d, ok := l[name]
	return d, ok
}

func swapKillPID(t *testing.T, fn func(int) bool) *[]int {
	t.Helper()
	var calls []int
	orig := killPID
	killPID = func(pid int) bool {
		calls = append(calls, pid)
		return fn(pid)
	}
	t.Cleanup(func() { killPID = orig })
	return &calls
}

func testIndex(t *testing.T) *statedb.StateDB {
	t.Helper()
	db, err := statedb.Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenPersistsRecordAndIndex(t *testing.T) {
	dir := t.TempDir()
	fd := &fakeDriver{
		name: "tmux",
		openSess: &driver.TerminalSession{
			DriverName: "tmux",
			Mode:       driver.ModeTerminal,
			PaneID:     "%5",
		},
	}
	idx := testIndex(t)
	o := New(fakeResolver{fd}, fakeLookup{"tmux": fd}, idx)

	sess, err := o.Open(context.Background(), driver.OpenOptions{
		WorkDir: dir,
		Command: []string{"make", "watch"},
		Label:   "watcher",
	})
	require.NoError(t, err)

	assert.Equal(t, "watcher", sess.Label)
	assert.Equal(t, dir, sess.WorkDir)
	assert.False(t, sess.StartedAt.IsZero())
	assert.NotEmpty(t, sess.Platform)

	got, ok := store.Load(dir)
	require.True(t, ok)
	assert.Equal(t, "%5", got.PaneID)

	rows, err := idx.List()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, dir, rows[0].Worktree)
	assert.Equal(t, "tmux", rows[0].Driver)
}

func TestOpenDriverFailureIsAnError(t *testing.T) {
	dir := t.TempDir()
	fd := &fakeDriver{name: "tmux", openErr: errors.New("tmux server gone")}
	o := New(fakeResolver{fd}, fakeLookup{"tmux": fd}, nil)

	_, err := o.Open(context.Background(), driver.OpenOptions{WorkDir: dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tmux server gone")

	_, ok := store.Load(dir)
	assert.False(t, ok, "no record for a tab that never opened")
}

func TestCloseHappyPath(t *testing.T) {
	dir := t.TempDir()
	fd := &fakeDriver{name: "tmux", closeOK: true}
	o := New(fakeResolver{fd}, fakeLookup{"tmux": fd}, testIndex(t))

	require.NoError(t, store.Save(dir, &driver.TerminalSession{
		DriverName: "tmux", PaneID: "%5",
	}))

	assert.True(t, o.Close(context.Background(), dir))
	require.NotNil(t, fd.closeSeen)
	assert.Equal(t, "%5", fd.closeSeen.PaneID)

	_, ok := store.Load(dir)
	assert.False(t, ok, "record cleared after close")
}

func TestCloseFallsBackToPIDKill(t *testing.T) {
	dir := t.TempDir()
	fd := &fakeDriver{name: "kitty", closeOK: false}
	o := New(fakeResolver{fd}, fakeLookup{"kitty": fd}, nil)
	calls := swapKillPID(t, func(int) bool { return true })

	require.NoError(t, store.Save(dir, &driver.TerminalSession{
		DriverName: "kitty", WindowID: "3", PID: 4242,
	}))

	assert.True(t, o.Close(context.Background(), dir))
	assert.Equal(t, []int{4242}, *calls)
}

func TestCloseWithoutRecordIsANoOp(t *testing.T) {
	fd := &fakeDriver{name: "tmux"}
	o := New(fakeResolver{fd}, fakeLookup{"tmux": fd}, nil)

	assert.False(t, o.Close(context.Background(), t.TempDir()))
}

func TestCloseUnknownDriverUsesPID(t *testing.T) {
	dir := t.TempDir()
	o := New(fakeResolver{&fakeDriver{name: "tmux"}}, fakeLookup{}, nil)
	calls := swapKillPID(t, func(int) bool { return true })

	require.NoError(t, store.Save(dir, &driver.TerminalSession{
		DriverName: "from-the-future", PID: 777,
	}))

	assert.True(t, o.Close(context.Background(), dir))
	assert.Equal(t, []int{777}, *calls)

	_, ok := store.Load(dir)
	assert.False(t, ok)
}

func TestCloseUnknownDriverNoPIDIsSafe(t *testing.T) {
	dir := t.TempDir()
	o := New(fakeResolver{&fakeDriver{name: "tmux"}}, fakeLookup{}, nil)
	calls := swapKillPID(t, func(int) bool { return true })

	require.NoError(t, store.Save(dir, &driver.TerminalSession{
		DriverName: "from-the-future",
	}))

	assert.False(t, o.Close(context.Background(), dir))
	assert.Empty(t, *calls)

	_, ok := store.Load(dir)
	assert.False(t, ok, "stale record still cleared")
}

func TestCloseRemovesIndexRow(t *testing.T) {
	dir := t.TempDir()
	fd := &fakeDriver{name: "tmux", closeOK: true,
		openSess: &driver.TerminalSession{DriverName: "tmux", PaneID: "%1"}}
	idx := testIndex(t)
	o := New(fakeResolver{fd}, fakeLookup{"tmux": fd}, idx)

	_, err := o.Open(context.Background(), driver.OpenOptions{WorkDir: dir})
	require.NoError(t, err)
	o.Close(context.Background(), dir)

	rows, err := idx.List()
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestOpenPtyPersistsRecord(t *testing.T) {
	dir := t.TempDir()
	o := New(fakeResolver{&fakeDriver{name: "tmux"}}, fakeLookup{}, nil)

	proc, sess, err := o.OpenPty(context.Background(), driver.OpenOptions{
		WorkDir: dir,
		Command: []string{"sleep", "0.1"},
		Label:   "bg",
	})
	require.NoError(t, err)
	defer proc.Close()

	assert.Equal(t, driver.ModePty, sess.Mode)
	assert.NotZero(t, sess.PID)

	got, ok := store.Load(dir)
	require.True(t, ok)
	assert.Equal(t, "pty", got.DriverName)
}
