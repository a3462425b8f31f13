// Package git resolves worktree roots so session records written from a
// subdirectory land at the top of the worktree.
package git

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/tabman-dev/tabman/internal/execx"
)

// WorktreeRoot returns the top-level directory of the git worktree
// containing dir. Outside a repository (or if git itself is missing)
// it falls back to the input directory, cleaned and absolutized, so
// callers always get a usable scoping key.
func WorktreeRoot(ctx context.Context, dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = filepath.Clean(dir)
	}

	out, err := execx.Run(ctx, "git", "-C", abs, "rev-parse", "--show-toplevel")
	if err != nil {
		return abs
	}
	top := strings.TrimSpace(out)
	if top == "" {
		return abs
	}
	return top
}

// CurrentBranch returns the branch checked out in dir, or "" when it
// cannot be determined (detached HEAD, not a repo, git missing).
func CurrentBranch(ctx context.Context, dir string) string {
	out, err := execx.Run(ctx, "git", "-C", dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return ""
	}
	branch := strings.TrimSpace(out)
	if branch == "HEAD" {
		// detached
		return ""
	}
	return branch
}
