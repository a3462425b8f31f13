//go:build windows

package detect

import "context"

// Process-tree inspection is not implemented on Windows; the chain
// falls through to the remaining strategies.
func walkParentDrivers(ctx context.Context, maxDepth int) (driverName, procName string, ok bool) {
	return "", "", false
}
