//go:build !darwin

package detect

import "context"

// The frontmost-application strategy only exists on macOS.
func frontmostBundleID(ctx context.Context) string {
	return ""
}
