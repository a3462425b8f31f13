package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/tabman-dev/tabman/internal/config"
	"github.com/tabman-dev/tabman/internal/detect"
	"github.com/tabman-dev/tabman/internal/driver"
	"github.com/tabman-dev/tabman/internal/lifecycle"
	"github.com/tabman-dev/tabman/internal/logging"
	"github.com/tabman-dev/tabman/internal/statedb"
)

const Version = "0.1.0"

// Table column widths for list command output
const (
	tableColDriver = 10
	tableColLabel  = 20
	tableColBranch = 20
)

// init sets up color profile for consistent terminal colors across environments
func init() {
	initColorProfile()
}

// initColorProfile configures lipgloss color output based on terminal
// capabilities. TABMAN_COLOR overrides auto-detection.
func initColorProfile() {
	if colorEnv := os.Getenv("TABMAN_COLOR"); colorEnv != "" {
		switch strings.ToLower(colorEnv) {
		case "truecolor", "true", "24bit":
			lipgloss.SetColorProfile(termenv.TrueColor)
			return
		case "256", "ansi256":
			lipgloss.SetColorProfile(termenv.ANSI256)
			return
		case "16", "ansi", "basic":
			lipgloss.SetColorProfile(termenv.ANSI)
			return
		case "none", "off", "ascii":
			lipgloss.SetColorProfile(termenv.Ascii)
			return
		}
	}

	// Non-tty output (scripts, git hooks) gets no escape codes
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	colorTerm := os.Getenv("COLORTERM")
	if colorTerm == "truecolor" || colorTerm == "24bit" {
		lipgloss.SetColorProfile(termenv.TrueColor)
		return
	}
	lipgloss.SetColorProfile(termenv.ANSI256)
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		printHelp()
		return
	}

	switch args[0] {
	case "version", "--version", "-v":
		fmt.Printf("tabman v%s\n", Version)
		return
	case "help", "--help", "-h":
		printHelp()
		return
	case "open":
		handleOpen(args[1:])
		return
	case "close":
		handleClose(args[1:])
		return
	case "detect":
		handleDetect(args[1:])
		return
	case "list", "ls":
		handleList(args[1:])
		return
	}

	fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
	printHelp()
	os.Exit(1)
}

// app bundles everything a subcommand needs.
type app struct {
	cfg      config.Config
	resolver *detect.Resolver
	registry *driver.Registry
	orch     *lifecycle.Orchestrator
	index    *statedb.StateDB
}

// newApp loads config, wires logging, and builds the orchestrator. The
// session index is optional: if the database cannot be opened, commands
// still work, `list` just comes up empty.
func newApp() *app {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
	}

	if home, err := config.HomeDir(); err == nil {
		logging.Init(logging.Config{
			Debug:      cfg.Logging.Enabled || os.Getenv("TABMAN_DEBUG") != "",
			LogDir:     home,
			Level:      cfg.Logging.Level,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			Compress:   true,
		})
	}

	reg := driver.NewRegistry(driver.Timeouts{
		Probe: cfg.ProbeTimeout(),
		Open:  cfg.OpenTimeout(),
		Close: cfg.CloseTimeout(),
	})
	resolver := detect.NewResolver(reg, detect.Options{
		MaxTreeDepth: cfg.ProcessScanDepth,
		ProbeTimeout: cfg.ProbeTimeout(),
		Override:     cfg.Terminal,
	})

	var index *statedb.StateDB
	if home, err := config.HomeDir(); err == nil {
		if db, err := statedb.Open(filepath.Join(home, "state.db")); err == nil {
			index = db
		}
	}

	return &app{
		cfg:      cfg,
		resolver: resolver,
		registry: reg,
		orch:     lifecycle.New(resolver, reg, index),
		index:    index,
	}
}

// shutdown flushes logging and the index.
func (a *app) shutdown() {
	if a.index != nil {
		_ = a.index.Close()
	}
	logging.Shutdown()
}

func printHelp() {
	title := lipgloss.NewStyle().Bold(true)
	fmt.Printf(`%s — open and close terminal tabs for background tasks

Usage:
  tabman open -dir <path> [-label <text>] [-branch <name>] [-pty] [--] <command...>
  tabman close -dir <path>
  tabman detect [-json]
  tabman list [-json]
  tabman version

Commands:
  open     Open a tab in the active terminal running a command,
           recording how to close it later. -pty runs the command on a
           pseudo-terminal instead of a visible tab.
  close    Close the tab recorded for a worktree directory. Safe to run
           when nothing is open; never fails the caller.
  detect   Show which terminal driver would be used and why.
  list     Show open sessions across all worktrees.

Configuration lives at ~/.tabman/config.toml.
`, title.Render("tabman v"+Version))
}
