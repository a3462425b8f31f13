package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	cmd := exec.Command("git", "init", "-q", dir)
	require.NoError(t, cmd.Run())
	return dir
}

func TestWorktreeRootFromSubdirectory(t *testing.T) {
	repo := initRepo(t)
	sub := filepath.Join(repo, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0755))

	got := WorktreeRoot(context.Background(), sub)

	// macOS tempdirs may come back through /private symlinks; compare
	// resolved paths.
	want, err := filepath.EvalSymlinks(repo)
	require.NoError(t, err)
	gotResolved, err := filepath.EvalSymlinks(got)
	require.NoError(t, err)
	assert.Equal(t, want, gotResolved)
}

func TestWorktreeRootOutsideRepoFallsBack(t *testing.T) {
	dir := t.TempDir()
	got := WorktreeRoot(context.Background(), dir)
	assert.Equal(t, dir, got)
}

func TestCurrentBranchOutsideRepo(t *testing.T) {
	assert.Empty(t, CurrentBranch(context.Background(), t.TempDir()))
}
