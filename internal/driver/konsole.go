package driver

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/tabman-dev/tabman/internal/platform"
)

// konsoleDriver controls KDE Konsole over the D-Bus session bus. Each
// Konsole instance registers its own bus name, exported through
// KONSOLE_DBUS_SERVICE, so the service name is resolved from the
// environment on every call rather than cached: it differs per instance
// and a stale name addresses the wrong (or no) process.
type konsoleDriver struct {
	timeouts Timeouts
}

func newKonsoleDriver(t Timeouts) *konsoleDriver {
	return &konsoleDriver{timeouts: t}
}

func (d *konsoleDriver) Name() string { return "konsole" }

func (d *konsoleDriver) Detect() bool {
	return os.Getenv("KONSOLE_DBUS_SERVICE") != "" || os.Getenv("KONSOLE_VERSION") != ""
}

// busService resolves the per-instance bus name at call time.
func (d *konsoleDriver) busService() string {
	if svc := os.Getenv("KONSOLE_DBUS_SERVICE"); svc != "" {
		return svc
	}
	return "org.kde.konsole"
}

func (d *konsoleDriver) busWindow() string {
	if w := os.Getenv("KONSOLE_DBUS_WINDOW"); w != "" {
		return w
	}
	return "/Windows/1"
}

func (d *konsoleDriver) OpenTab(ctx context.Context, opts OpenOptions) (*TerminalSession, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeouts.Open)
	defer cancel()

	if sess, err := d.openViaBus(ctx, opts); err == nil {
		return sess, nil
	} else {
		log.Debug("konsole_dbus_open_failed", slog.String("error", err.Error()))
	}

	// Session bus unavailable or call rejected: spawn a fresh window
	args := []string{"--new-tab", "--workdir", opts.WorkDir}
	if len(opts.Command) > 0 {
		args = append(args, "-e")
		args = append(args, opts.Command...)
	}
	pid, err := spawnDetached(opts.WorkDir, "konsole", args...)
	if err != nil {
		return nil, fmt.Errorf("konsole D-Bus unavailable and spawn failed: %w", err)
	}
	return &TerminalSession{
		DriverName: d.Name(),
		Platform:   platform.ForSession(),
		Mode:       ModeTerminal,
		PID:        pid,
		StartedAt:  time.Now(),
	}, nil
}

func (d *konsoleDriver) openViaBus(ctx context.Context, opts OpenOptions) (*TerminalSession, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("session bus: %w", err)
	}

	svc := d.busService()
	window := conn.Object(svc, dbus.ObjectPath(d.busWindow()))

	var sessionID int32
	if err := window.CallWithContext(ctx, "org.kde.konsole.Window.newSession", 0).Store(&sessionID); err != nil {
		return nil, fmt.Errorf("newSession on %s: %w", svc, err)
	}

	sessionPath := fmt.Sprintf("/Sessions/%d", sessionID)
	session := conn.Object(svc, dbus.ObjectPath(sessionPath))

	if opts.Label != "" {
		// context 1 = the tab title format for the local session
		if err := session.CallWithContext(ctx, "org.kde.konsole.Session.setTitle", 0, int32(1), opts.Label).Err; err != nil {
			log.Debug("konsole_set_title_failed", slog.String("error", err.Error()))
		}
	}

	if cmd := shellCommand(opts); cmd != "" {
		if err := session.CallWithContext(ctx, "org.kde.konsole.Session.runCommand", 0, cmd).Err; err != nil {
			return nil, fmt.Errorf("runCommand on %s: %w", sessionPath, err)
		}
	}

	return &TerminalSession{
		DriverName: d.Name(),
		Platform:   platform.ForSession(),
		Mode:       ModeTerminal,
		DBusPath:   sessionPath,
		StartedAt:  time.Now(),
	}, nil
}

func (d *konsoleDriver) CloseTab(ctx context.Context, sess *TerminalSession) bool {
	ctx, cancel := context.WithTimeout(ctx, d.timeouts.Close)
	defer cancel()

	if sess.DBusPath != "" {
		conn, err := dbus.SessionBus()
		if err == nil {
			// The Session interface exposes no close method; exiting the
			// shell closes the tab.
			obj := conn.Object(d.busService(), dbus.ObjectPath(sess.DBusPath))
			call := obj.CallWithContext(ctx, "org.kde.konsole.Session.sendText", 0, "exit\n")
			if call.Err == nil {
				return true
			}
			log.Debug("konsole_close_failed", slog.String("error", call.Err.Error()))
		}
	}
	return closeByPID(sess)
}
