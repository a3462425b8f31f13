package driver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsArgEscaping(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"double quote", `say "hi"`, `say \"hi\"`},
		{"backslash", `C:\path`, `C:\\path`},
		{"backslash then quote", `\"`, `\\\"`},
		{"newline", "a\nb", `a\nb`},
		{"tab", "a\tb", `a\tb`},
		{"script injection attempt", `" & do shell script "rm -rf ~" & "`, `\" & do shell script \"rm -rf ~\" & \"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(asArg(tt.in)))
		})
	}
}

func TestScriptfQuotesArgs(t *testing.T) {
	s := scriptf(`do script %s with title %s`, asArg(`echo "x"`), asArg("my tab"))
	assert.Equal(t, `do script "echo \"x\"" with title "my tab"`, s)
}

func TestScriptfHostilePathStaysInsideLiteral(t *testing.T) {
	// A worktree path crafted to break out of the string literal must
	// stay fully inside it after escaping.
	hostile := `/tmp/x" -- injected`
	s := scriptf(`set p to %s`, asArg(hostile))

	// No unescaped quote may terminate the literal early: strip the
	// escape sequences and confirm exactly two bare quotes remain.
	bare := strings.ReplaceAll(strings.ReplaceAll(s, `\\`, ""), `\"`, "")
	assert.Equal(t, 2, strings.Count(bare, `"`), "script: %s", s)
}

func TestShellQuote(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want string
	}{
		{"single word", []string{"ls"}, "'ls'"},
		{"spaces", []string{"my program", "-x"}, "'my program' '-x'"},
		{"single quote", []string{"it's"}, `'it'\''s'`},
		{"shell metacharacters", []string{"a;rm -rf /", "$(boom)"}, "'a;rm -rf /' '$(boom)'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shellQuote(tt.in))
		})
	}
}

func TestShellCommand(t *testing.T) {
	cmd := shellCommand(OpenOptions{
		WorkDir: "/work/my tree",
		Command: []string{"npm", "run", "dev"},
	})
	assert.Equal(t, `cd '/work/my tree' && 'npm' 'run' 'dev'`, cmd)

	// No command: just land a shell in the worktree
	cmd = shellCommand(OpenOptions{WorkDir: "/work/a"})
	assert.Equal(t, `cd '/work/a'`, cmd)

	// Nothing at all
	assert.Equal(t, "", shellCommand(OpenOptions{}))
}
