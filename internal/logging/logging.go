// Package logging builds cfgdiff's zerolog logger. Logging is off unless asked for: CFGDIFF_LOG_FILE appends JSON lines to a file, and an explicit level without a file
// writes human-readable lines to stderr. Report output never goes through the logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// FileEnvVar names the environment variable holding a log file path.
const FileEnvVar = "CFGDIFF_LOG_FILE"

// Options configures New.
type Options struct {
	// Level is the minimum level, as accepted by ParseLevel. "" means debug when logging to File, and off otherwise.
	Level string

	// File, if set, is appended to with one JSON object per event. Usually os.Getenv(FileEnvVar).
	File string

	// Console receives human-readable output when Level is set and File is not. Defaults to os.Stderr.
	Console io.Writer
}

// ParseLevel parses a level name (case-insensitive): trace, debug, info, warn (or warning), error, or disabled (or off).
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "warning":
		return zerolog.WarnLevel, nil
	case "off":
		return zerolog.Disabled, nil
	case "":
		return zerolog.NoLevel, fmt.Errorf("empty log level")
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", s)
	}
	return lvl, nil
}

// New returns a logger per opts and a function that releases its resources. An invalid Level is an error. A File that can't be opened is not: the logger is silently a no-op,
// so a bad log path never stops a diff.
func New(opts Options) (zerolog.Logger, func() error, error) {
	noop := func() error { return nil }

	var lvl zerolog.Level
	if opts.Level != "" {
		var err error
		if lvl, err = ParseLevel(opts.Level); err != nil {
			return zerolog.Nop(), noop, err
		}
	}

	if opts.File != "" {
		if opts.Level == "" {
			lvl = zerolog.DebugLevel
		}
		f, err := os.OpenFile(opts.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Nop(), noop, nil
		}
		logger := zerolog.New(f).Level(lvl).With().Timestamp().Str("pid", fmt.Sprint(os.Getpid())).Logger()
		return logger, f.Close, nil
	}

	if opts.Level == "" {
		return zerolog.Nop(), noop, nil
	}

	out := opts.Console
	if out == nil {
		out = os.Stderr
	}
	console := zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly, NoColor: true}
	return zerolog.New(console).Level(lvl).With().Timestamp().Logger(), noop, nil
}
