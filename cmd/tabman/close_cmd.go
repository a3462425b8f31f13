package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// handleClose tears down the session recorded for a worktree. It always
// exits 0: close runs from worktree-removal hooks, and a missing or
// stale session must never abort the removal.
func handleClose(args []string) {
	fs := flag.NewFlagSet("close", flag.ExitOnError)
	dir := fs.String("dir", "", "worktree directory (default: cwd)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tabman close -dir <path>")
		fs.PrintDefaults()
	}
	_ = fs.Parse(args)

	workDir := *dir
	if workDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		workDir = cwd
	}

	a := newApp()
	defer a.shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.CloseTimeout())
	defer cancel()

	if a.orch.Close(ctx, workDir) {
		ok := lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
		fmt.Printf("%s closed session for %s\n", ok.Render("✓"), workDir)
		return
	}
	fmt.Printf("nothing to close for %s\n", workDir)
}
