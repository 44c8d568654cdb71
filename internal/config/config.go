package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/codalotl/cfgdiff/internal/cfgtree"
	"github.com/codalotl/cfgdiff/internal/docio"
	"github.com/codalotl/cfgdiff/internal/report"
)

// Config is cfgdiff's configuration.
type Config struct {
	// Indent is the number of spaces per depth level in rendered output.
	Indent int `yaml:"indent" json:"indent"`

	// TabWidth, if > 0, is the indentation width of a tab in input documents.
	TabWidth int `yaml:"tabwidth" json:"tabwidth"`

	Color  string `yaml:"color" json:"color"`   // auto, always, or never.
	Format string `yaml:"format" json:"format"` // See report.Formats.

	// Skip lists trimmed lines dropped from both documents (ex: "!").
	Skip []string `yaml:"skip" json:"skip"`

	// Ignore lists regular expressions; matching lines and their nested blocks are dropped from both documents.
	Ignore []string `yaml:"ignore" json:"ignore"`

	Duplicates string `yaml:"duplicates" json:"duplicates"` // merge or replace.
	Encoding   string `yaml:"encoding" json:"encoding"`     // IANA character set name of input documents.

	// Include is the doublestar glob selecting files in `cfgdiff dir`.
	Include string `yaml:"include" json:"include"`

	// OutDir, if set, makes cfgdiff write dated report files into this directory.
	OutDir string `yaml:"outdir" json:"outdir"`

	// Sources maps each key to where its value came from. Keys never set have no entry.
	Sources map[string]Providence `yaml:"-" json:"-"`
}

// Providence identifies the source of a configuration value.
type Providence struct {
	SourceType       string `json:"type"`                 // ex: "default", "env", "file", "flag"
	SourceIdentifier string `json:"identifier,omitempty"` // ex: "/path/to/.cfgdiff.yaml". "" for sources without identifiers.
}

// Default reports whether the value came from Defaults.
func (p Providence) Default() bool {
	return p.SourceType == "default"
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Indent:     2,
		Color:      "auto",
		Format:     string(report.FormatText),
		Skip:       []string{"!"},
		Duplicates: cfgtree.DuplicateMerge.String(),
		Encoding:   "utf-8",
		Include:    "**/*.{cfg,conf,txt}",
	}
}

// Keys returns the configuration keys in field order.
func Keys() []string {
	t := reflect.TypeOf(Config{})
	var keys []string
	for i := 0; i < t.NumField(); i++ {
		if k := fieldKey(t.Field(i)); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func fieldKey(f reflect.StructField) string {
	tag := f.Tag.Get("yaml")
	name := strings.TrimSpace(strings.Split(tag, ",")[0])
	if name == "-" {
		return ""
	}
	if name == "" {
		return strings.ToLower(f.Name)
	}
	return name
}

// SetSource records p as the source of key.
func (c *Config) SetSource(key string, p Providence) {
	if c.Sources == nil {
		c.Sources = map[string]Providence{}
	}
	c.Sources[key] = p
}

// Validate checks c's semantic constraints. Each check goes through the package that consumes the value, so the error matches what would fail later.
func Validate(c Config) error {
	if c.Indent <= 0 {
		return fmt.Errorf("invalid configuration: indent must be > 0 (got %d)", c.Indent)
	}
	if c.TabWidth < 0 {
		return fmt.Errorf("invalid configuration: tabwidth must be >= 0 (got %d)", c.TabWidth)
	}
	switch c.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("invalid configuration: color must be auto, always, or never (got %q)", c.Color)
	}
	if _, err := report.ParseFormat(c.Format); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := cfgtree.ParseDuplicatePolicy(c.Duplicates); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := cfgtree.CompileIgnore(c.Ignore); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := docio.LookupEncoding(c.Encoding); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Include != "" && !doublestar.ValidatePattern(c.Include) {
		return fmt.Errorf("invalid configuration: include is not a valid glob (got %q)", c.Include)
	}
	return nil
}

// BuildOptions converts c to cfgtree.BuildOptions. c must be valid.
func (c Config) BuildOptions() (cfgtree.BuildOptions, error) {
	dup, err := cfgtree.ParseDuplicatePolicy(c.Duplicates)
	if err != nil {
		return cfgtree.BuildOptions{}, err
	}
	ignore, err := cfgtree.CompileIgnore(c.Ignore)
	if err != nil {
		return cfgtree.BuildOptions{}, err
	}
	return cfgtree.BuildOptions{
		Skip:       c.Skip,
		Ignore:     ignore,
		TabWidth:   c.TabWidth,
		Duplicates: dup,
	}, nil
}
