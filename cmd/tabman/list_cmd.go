package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// handleList prints the open sessions recorded in the global index.
func handleList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	jsonOut := fs.Bool("json", false, "machine-readable output")
	_ = fs.Parse(args)

	a := newApp()
	defer a.shutdown()

	if a.index == nil {
		fmt.Fprintln(os.Stderr, "Error: session index unavailable")
		os.Exit(1)
	}

	rows, err := a.index.List()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *jsonOut {
		out, _ := json.MarshalIndent(rows, "", "  ")
		fmt.Println(string(out))
		return
	}

	if len(rows) == 0 {
		fmt.Println("No open sessions.")
		return
	}

	header := lipgloss.NewStyle().Bold(true)
	fmt.Printf("%s  %s  %s  %s  %s\n",
		header.Render(pad("DRIVER", tableColDriver)),
		header.Render(pad("LABEL", tableColLabel)),
		header.Render(pad("BRANCH", tableColBranch)),
		header.Render(pad("AGE", 8)),
		header.Render("WORKTREE"))

	for _, r := range rows {
		fmt.Printf("%s  %s  %s  %s  %s\n",
			pad(r.Driver, tableColDriver),
			pad(r.Label, tableColLabel),
			pad(r.Branch, tableColBranch),
			pad(age(r.StartedAt), 8),
			r.Worktree)
	}
}

// pad truncates or right-pads s to width.
func pad(s string, width int) string {
	if len(s) > width {
		if width > 1 {
			return s[:width-1] + "…"
		}
		return s[:width]
	}
	return fmt.Sprintf("%-*s", width, s)
}

// age renders a compact duration since t.
func age(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
