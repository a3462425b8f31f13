package detect

import "strings"

// knownProcessDrivers maps executable names seen while walking the
// parent process tree to driver names.
var knownProcessDrivers = map[string]string{
	"tmux":               "tmux",
	"tmux: server":       "tmux",
	"iTerm2":             "iterm2",
	"iTerm":              "iterm2",
	"Terminal":           "apple-terminal",
	"kitty":              "kitty",
	"wezterm":            "wezterm",
	"wezterm-gui":        "wezterm",
	"wezterm-mux-server": "wezterm",
	"alacritty":          "alacritty",
	"Alacritty":          "alacritty",
	"konsole":            "konsole",
}

// knownBundleDrivers maps macOS bundle identifiers of frontmost
// applications to driver names.
var knownBundleDrivers = map[string]string{
	"com.googlecode.iterm2":  "iterm2",
	"com.apple.Terminal":     "apple-terminal",
	"net.kovidgoyal.kitty":   "kitty",
	"com.github.wez.wezterm": "wezterm",
	"org.alacritty":          "alacritty",
	"io.alacritty":           "alacritty",
}

// ideProcessNames are executables of IDE/editor-embedded terminal
// hosts. IDE-embedded terminals are a disjoint detection concern: no
// strategy in this chain may ever resolve to one, even when their
// signals are present alongside a real terminal's.
var ideProcessNames = map[string]bool{
	"code":          true,
	"Code":          true,
	"code-insiders": true,
	"Code Helper":   true,
	"cursor":        true,
	"Cursor":        true,
	"windsurf":      true,
	"Windsurf":      true,
	"zed":           true,
	"electron":      true,
	"Electron":      true,
}

// ideBundlePrefixes match bundle ids of IDE hosts on macOS.
var ideBundlePrefixes = []string{
	"com.microsoft.VSCode",
	"com.todesktop.", // Cursor ships under a ToDesktop bundle id
	"com.exafunction.windsurf",
	"com.jetbrains.",
	"dev.zed.Zed",
}

func isIDEProcess(name string) bool {
	if ideProcessNames[name] {
		return true
	}
	// JetBrains launchers: idea, goland, webstorm, pycharm, clion, ...
	lower := strings.ToLower(name)
	for _, jb := range []string{"idea", "goland", "webstorm", "pycharm", "clion", "rider", "phpstorm", "rubymine", "datagrip"} {
		if strings.HasPrefix(lower, jb) {
			return true
		}
	}
	return false
}

// lookupProcessDriver maps an executable name to a driver name,
// refusing IDE hosts.
func lookupProcessDriver(name string) (string, bool) {
	if isIDEProcess(name) {
		return "", false
	}
	d, ok := knownProcessDrivers[name]
	return d, ok
}

func isIDEBundle(bundleID string) bool {
	for _, prefix := range ideBundlePrefixes {
		if strings.HasPrefix(bundleID, prefix) {
			return true
		}
	}
	return false
}
