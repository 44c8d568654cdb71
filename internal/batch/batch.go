// Package batch diffs two directory trees of configuration documents. Files are selected with a doublestar glob, paired by their path relative to each root, and diffed one pair
// at a time; a file present on only one side is diffed against an empty document.
package batch

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/codalotl/cfgdiff/internal/cfgtree"
	"github.com/codalotl/cfgdiff/internal/docio"
	"github.com/codalotl/cfgdiff/internal/treediff"
)

// Status classifies a compared file.
type Status int

const (
	StatusUnchanged Status = iota
	StatusChanged
	StatusRemoved // Only in the old directory.
	StatusAdded   // Only in the new directory.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusUnchanged:
		return "unchanged"
	case StatusChanged:
		return "changed"
	case StatusRemoved:
		return "removed"
	case StatusAdded:
		return "added"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Pair is one relative path and where it exists. OldPath or NewPath is "" when the file is missing on that side.
type Pair struct {
	Rel     string // Slash-separated path relative to both roots.
	OldPath string
	NewPath string
}

// FileResult is the outcome of diffing one Pair.
type FileResult struct {
	Pair
	Status Status
	Result treediff.Result
	Err    error // Set iff Status == StatusError.
}

// Options configures Compare.
type Options struct {
	// Include selects files, matched against slash-separated paths relative to each root. "" matches every file.
	Include string

	Build cfgtree.BuildOptions

	Logger *zerolog.Logger // nil disables logging.
}

func (o Options) logger() zerolog.Logger {
	if o.Logger == nil {
		return zerolog.Nop()
	}
	return *o.Logger
}

// Pairs lists the files under oldDir and newDir matching include, paired by relative path and sorted by it. Both roots must be directories.
func Pairs(fsys afero.Fs, oldDir, newDir string, include string) ([]Pair, error) {
	oldFiles, err := listFiles(fsys, oldDir, include)
	if err != nil {
		return nil, err
	}
	newFiles, err := listFiles(fsys, newDir, include)
	if err != nil {
		return nil, err
	}

	byRel := map[string]*Pair{}
	for rel, p := range oldFiles {
		byRel[rel] = &Pair{Rel: rel, OldPath: p}
	}
	for rel, p := range newFiles {
		if pair, ok := byRel[rel]; ok {
			pair.NewPath = p
		} else {
			byRel[rel] = &Pair{Rel: rel, NewPath: p}
		}
	}

	pairs := make([]Pair, 0, len(byRel))
	for _, p := range byRel {
		pairs = append(pairs, *p)
	}
	slices.SortFunc(pairs, func(a, b Pair) int { return strings.Compare(a.Rel, b.Rel) })
	return pairs, nil
}

// listFiles returns rel -> full path for regular files under root matching include.
func listFiles(fsys afero.Fs, root string, include string) (map[string]string, error) {
	info, err := fsys.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("read dir %s: not a directory", root)
	}

	files := map[string]string{}
	err = afero.Walk(fsys, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if include != "" {
			ok, err := doublestar.Match(include, rel)
			if err != nil {
				return fmt.Errorf("include %q: %w", include, err)
			}
			if !ok {
				return nil
			}
		}
		files[rel] = path
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", root, err)
	}
	return files, nil
}

// Compare diffs every pair under oldDir and newDir. A file that can't be read yields a StatusError result rather than failing the whole comparison; only listing errors
// are returned.
func Compare(r *docio.Reader, oldDir, newDir string, opts Options) ([]FileResult, error) {
	log := opts.logger()
	start := time.Now()

	pairs, err := Pairs(r.Fs, oldDir, newDir, opts.Include)
	if err != nil {
		return nil, err
	}

	results := make([]FileResult, 0, len(pairs))
	for _, p := range pairs {
		fr := comparePair(r, p, opts.Build)
		if fr.Err != nil {
			log.Warn().Str("file", p.Rel).Err(fr.Err).Msg("compare failed")
		} else {
			log.Debug().Str("file", p.Rel).Stringer("status", fr.Status).Int("lines", len(fr.Result.Lines)).Msg("compared")
		}
		results = append(results, fr)
	}

	log.Info().Int("files", len(results)).Dur("elapsed", time.Since(start)).Msg("compared directories")
	return results, nil
}

func comparePair(r *docio.Reader, p Pair, opts cfgtree.BuildOptions) FileResult {
	fr := FileResult{Pair: p}

	oldText, err := readOptional(r, p.OldPath)
	if err != nil {
		fr.Status, fr.Err = StatusError, err
		return fr
	}
	newText, err := readOptional(r, p.NewPath)
	if err != nil {
		fr.Status, fr.Err = StatusError, err
		return fr
	}

	fr.Result = treediff.Diff(cfgtree.Parse(oldText, opts), cfgtree.Parse(newText, opts))
	switch {
	case p.NewPath == "":
		fr.Status = StatusRemoved
	case p.OldPath == "":
		fr.Status = StatusAdded
	case fr.Result.HasChanges():
		fr.Status = StatusChanged
	default:
		fr.Status = StatusUnchanged
	}
	return fr
}

func readOptional(r *docio.Reader, path string) (string, error) {
	if path == "" {
		return "", nil
	}
	return r.Read(path)
}

// Changed reports whether any result differs or failed.
func Changed(results []FileResult) bool {
	for _, fr := range results {
		if fr.Status != StatusUnchanged {
			return true
		}
	}
	return false
}
