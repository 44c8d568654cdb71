package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/codalotl/cfgdiff/internal/config"
)

// flagValues holds the parsed command-line flags. Flags that override configuration only take effect when set explicitly.
type flagValues struct {
	output   string
	outDir   string
	logLevel string

	format     string
	color      string
	indent     int
	tabWidth   int
	skip       []string
	ignore     []string
	duplicates string
	encoding   string
	include    string
}

func registerFlags(root *cobra.Command, f *flagValues) {
	pf := root.PersistentFlags()
	pf.StringVarP(&f.output, "output", "o", "", "Write the report to this file instead of stdout")
	pf.StringVar(&f.outDir, "out-dir", "", "Write the report to a dated file (diffConfig_YYYYMMDD_HHMMSS) in this directory")
	pf.StringVar(&f.logLevel, "log-level", "", "Log to stderr at this level (debug, info, warn, error)")

	pf.StringVarP(&f.format, "format", "f", "", "Report format: text, color, json, yaml, markdown, html")
	pf.StringVar(&f.color, "color", "", "Colorize text output: auto, always, never")
	pf.IntVar(&f.indent, "indent", 0, "Spaces per depth level in the report")
	pf.IntVar(&f.tabWidth, "tab-width", 0, "Indentation width of a tab in input documents (0 counts a tab as one column)")
	pf.StringArrayVar(&f.skip, "skip", nil, "Drop lines equal to this text (repeatable; replaces the configured list)")
	pf.StringArrayVar(&f.ignore, "ignore", nil, "Drop lines matching this regexp, with their nested blocks (repeatable)")
	pf.StringVar(&f.duplicates, "duplicates", "", "Repeated sibling lines: merge or replace")
	pf.StringVar(&f.encoding, "encoding", "", "Character set of input documents (ex: utf-8, latin1, utf-16le)")
}

// configFlags maps flag names to the configuration keys they override.
var configFlags = map[string]string{
	"format":     "format",
	"color":      "color",
	"indent":     "indent",
	"tab-width":  "tabwidth",
	"skip":       "skip",
	"ignore":     "ignore",
	"duplicates": "duplicates",
	"encoding":   "encoding",
	"include":    "include",
	"out-dir":    "outdir",
}

// applyFlags overwrites the fields of cfg whose flags were set, recording "flag" providence.
func applyFlags(cfg *config.Config, f *flagValues, changed func(name string) bool) {
	for name, key := range configFlags {
		if !changed(name) {
			continue
		}
		switch name {
		case "format":
			cfg.Format = f.format
		case "color":
			cfg.Color = f.color
		case "indent":
			cfg.Indent = f.indent
		case "tab-width":
			cfg.TabWidth = f.tabWidth
		case "skip":
			cfg.Skip = f.skip
		case "ignore":
			cfg.Ignore = f.ignore
		case "duplicates":
			cfg.Duplicates = f.duplicates
		case "encoding":
			cfg.Encoding = f.encoding
		case "include":
			cfg.Include = f.include
		case "out-dir":
			cfg.OutDir = f.outDir
		}
		cfg.SetSource(key, config.Providence{SourceType: "flag", SourceIdentifier: "--" + name})
	}
}

// loadConfig loads the standard configuration for dir and applies flags. A bad flag value is a UsageError; a bad value from any other source is a plain error.
func loadConfig(fs afero.Fs, dir string, f *flagValues, changed func(name string) bool) (config.Config, error) {
	flagsOnly := config.Defaults()
	applyFlags(&flagsOnly, f, changed)
	if err := config.Validate(flagsOnly); err != nil {
		return config.Config{}, UsageError{Err: err}
	}

	cfg, err := config.Load(fs, dir)
	if err != nil {
		return config.Config{}, fmt.Errorf("load configuration: %w", err)
	}
	applyFlags(&cfg, f, changed)
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// effectiveConfig is the `cfgdiff config` output.
type effectiveConfig struct {
	config.Config
	Sources map[string]config.Providence `json:"sources"`
}

func writeConfigJSON(w io.Writer, cfg config.Config) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(effectiveConfig{Config: cfg, Sources: cfg.Sources})
}
