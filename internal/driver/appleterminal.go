package driver

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/tabman-dev/tabman/internal/platform"
)

// appleTerminalDriver automates Terminal.app through AppleScript.
// Terminal.app addresses by window id: "do script" returns a tab whose
// window id the open script reads back; the close script finds that
// window and closes it without the save prompt.
type appleTerminalDriver struct {
	timeouts Timeouts
}

func newAppleTerminalDriver(t Timeouts) *appleTerminalDriver {
	return &appleTerminalDriver{timeouts: t}
}

func (d *appleTerminalDriver) Name() string { return "apple-terminal" }

func (d *appleTerminalDriver) Detect() bool {
	return os.Getenv("TERM_PROGRAM") == "Apple_Terminal"
}

func (d *appleTerminalDriver) OpenTab(ctx context.Context, opts OpenOptions) (*TerminalSession, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeouts.Open)
	defer cancel()

	script := scriptf(`tell application "Terminal"
	activate
	set newTab to do script %s
	set wid to id of first window whose tabs contains newTab
	set custom title of newTab to %s
	return wid
end tell`, asArg(shellCommand(opts)), asArg(opts.Label))

	wid, err := runOSAScript(ctx, script)
	if err != nil {
		return nil, fmt.Errorf("Terminal.app automation failed (open a tab manually and run the command there): %w", err)
	}

	return &TerminalSession{
		DriverName: d.Name(),
		Platform:   platform.ForSession(),
		Mode:       ModeTerminal,
		WindowID:   wid,
		StartedAt:  time.Now(),
	}, nil
}

func (d *appleTerminalDriver) CloseTab(ctx context.Context, sess *TerminalSession) bool {
	ctx, cancel := context.WithTimeout(ctx, d.timeouts.Close)
	defer cancel()

	if sess.WindowID != "" {
		script := scriptf(`tell application "Terminal"
	repeat with w in windows
		if (id of w as string) is %s then
			close w saving no
			return "closed"
		end if
	end repeat
	return "not-found"
end tell`, asArg(sess.WindowID))

		if out, err := runOSAScript(ctx, script); err == nil && out == "closed" {
			return true
		}
	}
	return closeByPID(sess)
}
