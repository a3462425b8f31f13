package driver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// detectionEnvVars are every signal the drivers inspect. Tests blank
// them all so the host environment can't leak into detection results.
var detectionEnvVars = []string{
	"TMUX",
	"TERM", "TERM_PROGRAM",
	"ITERM_SESSION_ID",
	"KITTY_WINDOW_ID",
	"WEZTERM_PANE",
	"ALACRITTY_SOCKET", "ALACRITTY_WINDOW_ID", "ALACRITTY_LOG",
	"KONSOLE_DBUS_SERVICE", "KONSOLE_DBUS_WINDOW", "KONSOLE_VERSION",
	"VSCODE_INJECTION", "VSCODE_PID",
}

func clearTerminalEnv(t *testing.T) {
	t.Helper()
	for _, v := range detectionEnvVars {
		t.Setenv(v, "")
	}
}

func TestDetectPerFamily(t *testing.T) {
	tests := []struct {
		name   string
		env    map[string]string
		driver string
	}{
		{"tmux", map[string]string{"TMUX": "/tmp/tmux-1000/default,1234,0"}, "tmux"},
		{"iterm via TERM_PROGRAM", map[string]string{"TERM_PROGRAM": "iTerm.app"}, "iterm2"},
		{"iterm via session id", map[string]string{"ITERM_SESSION_ID": "w0t0p0:GUID"}, "iterm2"},
		{"apple terminal", map[string]string{"TERM_PROGRAM": "Apple_Terminal"}, "apple-terminal"},
		{"kitty via window id", map[string]string{"KITTY_WINDOW_ID": "1"}, "kitty"},
		{"kitty via TERM", map[string]string{"TERM": "xterm-kitty"}, "kitty"},
		{"wezterm via pane", map[string]string{"WEZTERM_PANE": "0"}, "wezterm"},
		{"wezterm via TERM_PROGRAM", map[string]string{"TERM_PROGRAM": "WezTerm"}, "wezterm"},
		{"alacritty via socket", map[string]string{"ALACRITTY_SOCKET": "/tmp/alacritty.sock"}, "alacritty"},
		{"konsole via service", map[string]string{"KONSOLE_DBUS_SERVICE": ":1.99"}, "konsole"},
		{"konsole via version", map[string]string{"KONSOLE_VERSION": "230800"}, "konsole"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearTerminalEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			reg := NewRegistry(DefaultTimeouts())
			got := reg.DetectActive()
			assert.Equal(t, tt.driver, got.Name())
		})
	}
}

func TestDetectNoSignalsYieldsFallback(t *testing.T) {
	clearTerminalEnv(t)

	reg := NewRegistry(DefaultTimeouts())
	assert.Equal(t, "fallback", reg.DetectActive().Name())
}

func TestMultiplexerWinsOverEmulators(t *testing.T) {
	clearTerminalEnv(t)
	// tmux nested inside kitty: both signals present, tmux must win
	t.Setenv("TMUX", "/tmp/tmux-1000/default,1234,0")
	t.Setenv("KITTY_WINDOW_ID", "3")
	t.Setenv("TERM", "xterm-kitty")
	t.Setenv("TERM_PROGRAM", "WezTerm")

	reg := NewRegistry(DefaultTimeouts())
	assert.Equal(t, "tmux", reg.DetectActive().Name())
}

func TestRegistryOrdering(t *testing.T) {
	reg := NewRegistry(DefaultTimeouts())
	drivers := reg.Drivers()

	require.NotEmpty(t, drivers)
	assert.Equal(t, "tmux", drivers[0].Name(), "multiplexer must be checked first")
	assert.Equal(t, "fallback", drivers[len(drivers)-1].Name(), "catch-all must be last")
}

func TestLookup(t *testing.T) {
	reg := NewRegistry(DefaultTimeouts())

	for _, name := range []string{"tmux", "iterm2", "apple-terminal", "kitty", "wezterm", "alacritty", "konsole", "fallback", "best-effort"} {
		d, ok := reg.Lookup(name)
		require.True(t, ok, "driver %q must resolve", name)
		assert.Equal(t, name, d.Name())
	}

	_, ok := reg.Lookup("zellij")
	assert.False(t, ok, "unknown names resolve to not-found, not an error")
}

func TestBestEffortNotInDetectionOrder(t *testing.T) {
	reg := NewRegistry(DefaultTimeouts())
	for _, d := range reg.Drivers() {
		assert.NotEqual(t, "best-effort", d.Name())
	}
}

func TestCloseTabWithoutAddressingIsNoop(t *testing.T) {
	reg := NewRegistry(DefaultTimeouts())

	sess := &TerminalSession{DriverName: "alacritty"}
	assert.False(t, sess.Closable())

	for _, name := range []string{"tmux", "kitty", "wezterm", "alacritty", "best-effort", "fallback"} {
		d, ok := reg.Lookup(name)
		require.True(t, ok)
		assert.False(t, d.CloseTab(context.Background(), sess),
			"%s must report false for an unaddressable session", name)
	}
}

func TestCloseTabFallsBackToPIDKill(t *testing.T) {
	origKill := killPID
	defer func() { killPID = origKill }()

	var killed []int
	killPID = func(pid int) bool {
		killed = append(killed, pid)
		return true
	}

	d := &alacrittyDriver{timeouts: DefaultTimeouts()}
	sess := &TerminalSession{DriverName: "alacritty", PID: 4242}

	assert.True(t, d.CloseTab(context.Background(), sess))
	assert.Equal(t, []int{4242}, killed)
}

func TestCloseTabIdempotentOnDeadPID(t *testing.T) {
	origKill := killPID
	defer func() { killPID = origKill }()

	alive := true
	killPID = func(pid int) bool {
		if alive {
			alive = false
			return true
		}
		return false
	}

	d := &bestEffortDriver{}
	sess := &TerminalSession{DriverName: "best-effort", PID: 999}

	assert.True(t, d.CloseTab(context.Background(), sess))
	assert.False(t, d.CloseTab(context.Background(), sess),
		"second close of the same record reports not-found, never errors")
}

// stubDegradedExec fails every probe and remote-control invocation and
// scripts the detached spawn, returning the spawned binaries.
func stubDegradedExec(t *testing.T, pid int, spawnErr error) *[]string {
	t.Helper()
	origTry, origRun, origSpawn := tryRun, runCmd, spawnDetached
	t.Cleanup(func() { tryRun, runCmd, spawnDetached = origTry, origRun, origSpawn })

	var spawned []string
	tryRun = func(ctx context.Context, name string, args ...string) (string, bool) {
		return "", false
	}
	runCmd = func(ctx context.Context, name string, args ...string) (string, error) {
		return "", errors.New("remote control unavailable")
	}
	spawnDetached = func(dir, name string, args ...string) (int, error) {
		if spawnErr != nil {
			return 0, spawnErr
		}
		spawned = append(spawned, name)
		return pid, nil
	}
	return &spawned
}

func TestKittyDegradesToSpawnWhenProbeFails(t *testing.T) {
	spawned := stubDegradedExec(t, 5151, nil)
	d := newKittyDriver(DefaultTimeouts())

	sess, err := d.OpenTab(context.Background(), OpenOptions{
		WorkDir: "/work/feature-a",
		Command: []string{"make", "watch"},
		Label:   "watcher",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"kitty"}, *spawned)
	assert.Equal(t, ModeTerminal, sess.Mode)
	assert.Equal(t, 5151, sess.PID)
	assert.Empty(t, sess.WindowID, "degraded path carries no window addressing")
	assert.True(t, sess.Closable(), "the pid alone keeps the session closable")
}

func TestWeztermDegradesToSpawnWhenCLIFails(t *testing.T) {
	spawned := stubDegradedExec(t, 6161, nil)
	d := newWeztermDriver(DefaultTimeouts())

	sess, err := d.OpenTab(context.Background(), OpenOptions{
		WorkDir: "/work/feature-b",
		Command: []string{"npm", "run", "dev"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"wezterm"}, *spawned)
	assert.Equal(t, ModeTerminal, sess.Mode)
	assert.Equal(t, 6161, sess.PID)
	assert.Empty(t, sess.PaneID, "degraded path carries no pane addressing")
}

func TestKittyOpenFailsWhenSpawnAlsoFails(t *testing.T) {
	stubDegradedExec(t, 0, errors.New("kitty: not found"))
	d := newKittyDriver(DefaultTimeouts())

	_, err := d.OpenTab(context.Background(), OpenOptions{WorkDir: "/work"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestClosable(t *testing.T) {
	tests := []struct {
		name string
		sess *TerminalSession
		want bool
	}{
		{"nil", nil, false},
		{"empty", &TerminalSession{}, false},
		{"session id", &TerminalSession{SessionID: "guid"}, true},
		{"window id", &TerminalSession{WindowID: "12"}, true},
		{"pane id", &TerminalSession{PaneID: "%5"}, true},
		{"dbus path", &TerminalSession{DBusPath: "/Sessions/2"}, true},
		{"pid", &TerminalSession{PID: 123}, true},
		{"zero pid", &TerminalSession{PID: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sess.Closable())
		})
	}
}
