package driver

import (
	"context"
	"fmt"
	"strings"
)

// scriptArg is a value safe to interpolate into an AppleScript string
// literal. Construction is the only way to get one, so escaping cannot
// be skipped: worktree paths and command lines come from the caller and
// the filesystem, and an unescaped quote would break out of the literal
// into script position.
type scriptArg string

// asArg escapes s for an AppleScript double-quoted string literal.
func asArg(s string) scriptArg {
	r := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"\n", `\n`,
		"\r", `\r`,
		"\t", `\t`,
	)
	return scriptArg(r.Replace(s))
}

// scriptf builds an AppleScript source string. All %s verbs must be
// scriptArg values; passing a raw string is a type error at the call site.
func scriptf(format string, args ...scriptArg) string {
	quoted := make([]any, len(args))
	for i, a := range args {
		quoted[i] = `"` + string(a) + `"`
	}
	return fmt.Sprintf(format, quoted...)
}

// runOSAScript executes script through osascript and returns its output.
func runOSAScript(ctx context.Context, script string) (string, error) {
	return runCmd(ctx, "osascript", "-e", script)
}
