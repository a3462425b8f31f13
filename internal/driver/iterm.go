package driver

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/tabman-dev/tabman/internal/platform"
)

// itermDriver automates iTerm2 through AppleScript. The open script
// creates a tab, types the command into its session, and returns the
// session's unique id (a GUID); the close script walks every window,
// tab and session looking for that id.
type itermDriver struct {
	timeouts Timeouts
}

func newITermDriver(t Timeouts) *itermDriver {
	return &itermDriver{timeouts: t}
}

func (d *itermDriver) Name() string { return "iterm2" }

func (d *itermDriver) Detect() bool {
	return os.Getenv("TERM_PROGRAM") == "iTerm.app" || os.Getenv("ITERM_SESSION_ID") != ""
}

func (d *itermDriver) OpenTab(ctx context.Context, opts OpenOptions) (*TerminalSession, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeouts.Open)
	defer cancel()

	script := scriptf(`tell application "iTerm2"
	if (count of windows) is 0 then
		set newWindow to (create window with default profile)
		tell current session of newWindow
			set name to %s
			write text %s
			set sid to id
		end tell
	else
		tell current window
			set newTab to (create tab with default profile)
			tell current session of newTab
				set name to %s
				write text %s
				set sid to id
			end tell
		end tell
	end if
	return sid
end tell`,
		asArg(opts.Label), asArg(shellCommand(opts)),
		asArg(opts.Label), asArg(shellCommand(opts)))

	sid, err := runOSAScript(ctx, script)
	if err != nil {
		return nil, fmt.Errorf("iTerm2 automation failed (open a tab manually and run the command there): %w", err)
	}

	return &TerminalSession{
		DriverName: d.Name(),
		Platform:   platform.ForSession(),
		Mode:       ModeTerminal,
		SessionID:  sid,
		StartedAt:  time.Now(),
	}, nil
}

func (d *itermDriver) CloseTab(ctx context.Context, sess *TerminalSession) bool {
	ctx, cancel := context.WithTimeout(ctx, d.timeouts.Close)
	defer cancel()

	if sess.SessionID != "" {
		script := scriptf(`tell application "iTerm2"
	repeat with w in windows
		repeat with t in tabs of w
			repeat with s in sessions of t
				if id of s is %s then
					close s
					return "closed"
				end if
			end repeat
		end repeat
	end repeat
	return "not-found"
end tell`, asArg(sess.SessionID))

		if out, err := runOSAScript(ctx, script); err == nil && out == "closed" {
			return true
		}
	}
	return closeByPID(sess)
}
