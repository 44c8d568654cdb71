package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// source supplies a normalized map: lowercase top-level keys; values are whatever YAML/JSON decoding produced.
type source interface {
	// Name returns a human-readable label used in error messages.
	Name() string
	Providence() Providence
	ToMap(fsys afero.Fs) (map[string]any, error)
}

// Loader builds a prioritized cascade of sources on top of Defaults. Register sources in call order from lowest to highest priority using the With* methods, then call Load.
type Loader struct {
	fs      afero.Fs
	sources []source
}

// New returns a Loader that reads files from the OS filesystem.
func New() *Loader {
	return &Loader{fs: afero.NewOsFs()}
}

// WithFs makes l read files (config files and .env files) from fsys.
func (l *Loader) WithFs(fsys afero.Fs) *Loader {
	l.fs = fsys
	return l
}

// WithFile registers a YAML or JSON file. path is expanded with ExpandPath. The file is not read until Load.
func (l *Loader) WithFile(path string) *Loader {
	l.sources = append(l.sources, &sourceFile{path: ExpandPath(path)})
	return l
}

// WithNearestFile searches upward from startDir (or the working directory, if "") for the first non-empty file with one of names, and registers it. Earlier names win within a
// directory. If nothing is found, l is unchanged.
func (l *Loader) WithNearestFile(startDir string, names ...string) *Loader {
	if startDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return l
		}
		startDir = wd
	}

	for dir := startDir; ; dir = filepath.Dir(dir) {
		for _, name := range names {
			candidate := filepath.Join(dir, name)
			if data, err := afero.ReadFile(l.fs, candidate); err == nil && strings.TrimSpace(string(data)) != "" {
				l.sources = append(l.sources, &sourceFile{path: candidate})
				return l
			}
		}
		if parent := filepath.Dir(dir); parent == dir {
			break
		}
	}
	return l
}

// WithDotEnv registers a .env file (parsed with godotenv, not loaded into the process environment). envToKey maps env variable names to configuration keys.
func (l *Loader) WithDotEnv(path string, envToKey map[string]string) *Loader {
	l.sources = append(l.sources, &sourceDotEnv{path: path, envToKey: envToKey})
	return l
}

// WithEnv registers the process environment. envToKey maps env variable names to configuration keys. Missing and empty variables are ignored.
func (l *Loader) WithEnv(envToKey map[string]string) *Loader {
	l.sources = append(l.sources, &sourceEnv{lookup: os.LookupEnv, envToKey: envToKey})
	return l
}

// Load applies l's sources to Defaults and returns the result. It does not call Validate.
//
// Load fails fast: if a readable source cannot be parsed or sets a key to a value of the wrong type, the error names that source and later sources are not consulted.
func (l *Loader) Load() (Config, error) {
	cfg := Defaults()
	for _, key := range Keys() {
		cfg.SetSource(key, Providence{SourceType: "default"})
	}

	known := map[string]bool{}
	for _, key := range Keys() {
		known[key] = true
	}

	for _, src := range l.sources {
		m, err := src.ToMap(l.fs)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
				continue
			}
			return Config{}, fmt.Errorf("%s: %w", src.Name(), err)
		}
		if err := apply(&cfg, m); err != nil {
			return Config{}, fmt.Errorf("%s: %w", src.Name(), err)
		}
		for key := range m {
			if known[key] {
				cfg.SetSource(key, src.Providence())
			}
		}
	}
	return cfg, nil
}

// apply overwrites the fields of cfg named by m. m is round-tripped through YAML so values are type-checked against Config's fields.
func apply(cfg *Config, m map[string]any) error {
	if len(m) == 0 {
		return nil
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func lowerKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	return out
}

type sourceFile struct {
	path string
}

func (s *sourceFile) Name() string { return "config file " + s.path }

func (s *sourceFile) Providence() Providence {
	return Providence{SourceType: "file", SourceIdentifier: s.path}
}

func (s *sourceFile) ToMap(fsys afero.Fs) (map[string]any, error) {
	data, err := afero.ReadFile(fsys, s.path)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}

	var m map[string]any
	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(jsonc.ToJSON(data), &m); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	}
	return lowerKeys(m), nil
}

type sourceDotEnv struct {
	path     string
	envToKey map[string]string
}

func (s *sourceDotEnv) Name() string { return "env file " + s.path }

func (s *sourceDotEnv) Providence() Providence {
	return Providence{SourceType: "dotenv", SourceIdentifier: s.path}
}

func (s *sourceDotEnv) ToMap(fsys afero.Fs) (map[string]any, error) {
	f, err := fsys.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	vars, err := godotenv.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return envMap(s.envToKey, func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	})
}

type sourceEnv struct {
	lookup   func(string) (string, bool)
	envToKey map[string]string
}

func (s *sourceEnv) Name() string { return "environment" }

func (s *sourceEnv) Providence() Providence {
	return Providence{SourceType: "env"}
}

func (s *sourceEnv) ToMap(afero.Fs) (map[string]any, error) {
	return envMap(s.envToKey, s.lookup)
}

// envMap reads each variable in envToKey via lookup and coerces present, non-empty values to the kind of the field they set.
func envMap(envToKey map[string]string, lookup func(string) (string, bool)) (map[string]any, error) {
	out := map[string]any{}
	for envVar, key := range envToKey {
		raw, ok := lookup(envVar)
		if !ok || raw == "" {
			continue
		}
		key = strings.ToLower(key)
		v, err := coerceEnv(key, raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", envVar, err)
		}
		out[key] = v
	}
	return out, nil
}

// coerceEnv converts raw to an int for int fields and to a comma-separated list for slice fields. Everything else stays a string.
func coerceEnv(key string, raw string) (any, error) {
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if fieldKey(f) != key {
			continue
		}
		switch f.Type.Kind() {
		case reflect.Int:
			n, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return nil, fmt.Errorf("%s must be an integer (got %q)", key, raw)
			}
			return n, nil
		case reflect.Slice:
			var items []string
			for _, item := range strings.Split(raw, ",") {
				if item = strings.TrimSpace(item); item != "" {
					items = append(items, item)
				}
			}
			return items, nil
		}
		return raw, nil
	}
	return raw, nil
}
