//go:build darwin

package detect

import (
	"context"

	"github.com/tabman-dev/tabman/internal/execx"
)

// frontmostBundleID asks System Events for the bundle identifier of the
// frontmost GUI application. Read-only; empty when the query fails
// (e.g. automation permission not granted).
func frontmostBundleID(ctx context.Context) string {
	out, ok := execx.TryRun(ctx, "osascript", "-e",
		`tell application "System Events" to get bundle identifier of first application process whose frontmost is true`)
	if !ok {
		return ""
	}
	return out
}
