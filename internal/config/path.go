package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ExpandPath replaces a leading "~" (alone, or followed by / or \) with the user's home directory and makes the result absolute. "" stays "".
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if rest, ok := cutHome(path); ok {
		if home, err := os.UserHomeDir(); err == nil && home != "" {
			path = filepath.Join(home, rest)
		}
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func cutHome(path string) (string, bool) {
	if path == "~" {
		return "", true
	}
	for _, prefix := range []string{"~/", `~\`} {
		if rest, ok := strings.CutPrefix(path, prefix); ok {
			return rest, true
		}
	}
	return "", false
}

// UserConfigPath returns the absolute path of name in cfgdiff's per-user config directory: ~/.cfgdiff, or %LOCALAPPDATA%\cfgdiff on Windows.
func UserConfigPath(name string) string {
	if runtime.GOOS == "windows" {
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return filepath.Join(dir, "cfgdiff", name)
		}
	}
	return filepath.Join(ExpandPath("~"), ".cfgdiff", name)
}
