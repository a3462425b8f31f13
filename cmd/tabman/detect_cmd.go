package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// handleDetect reports which driver would handle an open right now.
func handleDetect(args []string) {
	fs := flag.NewFlagSet("detect", flag.ExitOnError)
	jsonOut := fs.Bool("json", false, "machine-readable output")
	_ = fs.Parse(args)

	a := newApp()
	defer a.shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ProbeTimeout()*3)
	defer cancel()

	res := a.resolver.Resolve(ctx)

	if *jsonOut {
		out, _ := json.MarshalIndent(struct {
			Driver   string `json:"driver"`
			Strategy string `json:"strategy"`
			Detail   string `json:"detail"`
		}{res.Driver.Name(), string(res.Strategy), res.Detail}, "", "  ")
		fmt.Println(string(out))
		return
	}

	name := lipgloss.NewStyle().Bold(true)
	fmt.Printf("%s (%s: %s)\n", name.Render(res.Driver.Name()), res.Strategy, res.Detail)
}
