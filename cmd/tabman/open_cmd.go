package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/tabman-dev/tabman/internal/driver"
	"github.com/tabman-dev/tabman/internal/ptyx"
)

// handleOpen opens a terminal tab (or pty) for a worktree and persists
// the session record.
func handleOpen(args []string) {
	fs := flag.NewFlagSet("open", flag.ExitOnError)
	dir := fs.String("dir", "", "worktree directory the tab belongs to (default: cwd)")
	label := fs.String("label", "", "tab title")
	branch := fs.String("branch", "", "branch name recorded on the session")
	usePty := fs.Bool("pty", false, "run on a pseudo-terminal instead of a visible tab")
	jsonOut := fs.Bool("json", false, "print the session record as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tabman open -dir <path> [-label <text>] [-branch <name>] [-pty] [--] <command...>")
		fs.PrintDefaults()
	}
	_ = fs.Parse(args)

	command := fs.Args()
	if len(command) > 0 && command[0] == "--" {
		command = command[1:]
	}

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

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.OpenTimeout())
	defer cancel()

	opts := driver.OpenOptions{
		WorkDir: workDir,
		Command: command,
		Label:   *label,
		Branch:  *branch,
	}

	var sess *driver.TerminalSession
	var err error
	if *usePty {
		var proc *ptyx.Proc
		proc, sess, err = a.orch.OpenPty(ctx, opts)
		if proc != nil {
			// The task keeps running; teardown goes through the PID.
			_ = proc.Close()
		}
	} else {
		sess, err = a.orch.Open(ctx, opts)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *jsonOut {
		out, _ := json.MarshalIndent(sess, "", "  ")
		fmt.Println(string(out))
		return
	}

	ok := lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	fmt.Printf("%s opened via %s (%s)\n",
		ok.Render("✓"), sess.DriverName, sess.WorkDir)
}
