package config

import (
	"path/filepath"

	"github.com/spf13/afero"
)

// EnvVars maps cfgdiff's environment variables to configuration keys.
var EnvVars = map[string]string{
	"CFGDIFF_INDENT":     "indent",
	"CFGDIFF_TABWIDTH":   "tabwidth",
	"CFGDIFF_COLOR":      "color",
	"CFGDIFF_FORMAT":     "format",
	"CFGDIFF_SKIP":       "skip",
	"CFGDIFF_IGNORE":     "ignore",
	"CFGDIFF_DUPLICATES": "duplicates",
	"CFGDIFF_ENCODING":   "encoding",
	"CFGDIFF_INCLUDE":    "include",
	"CFGDIFF_OUTDIR":     "outdir",
}

// ProjectFileNames are the per-project config files searched for by Standard, in preference order.
var ProjectFileNames = []string{".cfgdiff.yaml", ".cfgdiff.yml", ".cfgdiff.json"}

// Standard registers cfgdiff's built-in sources on l, for a process whose working directory is wd:
//   - user config files (config.json, then config.yaml, in UserConfigPath)
//   - the nearest project config file at or above wd
//   - wd/.env
//   - the process environment
func (l *Loader) Standard(wd string) *Loader {
	l.WithFile(UserConfigPath("config.json"))
	l.WithFile(UserConfigPath("config.yaml"))
	l.WithNearestFile(wd, ProjectFileNames...)
	if wd != "" {
		l.WithDotEnv(filepath.Join(wd, ".env"), EnvVars)
	}
	l.WithEnv(EnvVars)
	return l
}

// Load loads the standard configuration from fsys for working directory wd. Callers that layer flags on top validate the result themselves.
func Load(fsys afero.Fs, wd string) (Config, error) {
	return New().WithFs(fsys).Standard(wd).Load()
}
