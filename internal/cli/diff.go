package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/codalotl/cfgdiff/internal/batch"
	"github.com/codalotl/cfgdiff/internal/cfgtree"
	"github.com/codalotl/cfgdiff/internal/docio"
	"github.com/codalotl/cfgdiff/internal/report"
	"github.com/codalotl/cfgdiff/internal/treediff"
	"github.com/codalotl/cfgdiff/internal/watch"
)

const stdinName = "<stdin>"

// runDiff diffs two documents and writes the report to the configured destination.
func runDiff(env *runEnv, oldPath, newPath string) error {
	if oldPath == docio.StdinPath && newPath == docio.StdinPath {
		return usageErrorf("only one of the documents can be read from stdin")
	}
	dest, err := resolveDestination(env)
	if err != nil {
		return err
	}

	res, err := diffFiles(env, oldPath, newPath)
	if err != nil {
		return err
	}

	var b bytes.Buffer
	opts := report.Options{
		Format:     resolveFormat(env, dest.stdout()),
		IndentUnit: indentUnit(env),
		OldName:    displayName(oldPath),
		NewName:    displayName(newPath),
	}
	if err := report.Write(&b, res, opts); err != nil {
		return err
	}
	return emit(env, dest, b.Bytes(), opts.Format)
}

// diffFiles reads, builds, and diffs two documents, logging timings.
func diffFiles(env *runEnv, oldPath, newPath string) (treediff.Result, error) {
	reader, buildOpts, err := newReader(env)
	if err != nil {
		return treediff.Result{}, err
	}

	start := time.Now()
	oldText, err := reader.Read(oldPath)
	if err != nil {
		return treediff.Result{}, err
	}
	newText, err := reader.Read(newPath)
	if err != nil {
		return treediff.Result{}, err
	}
	readDur := time.Since(start)

	start = time.Now()
	oldTree := cfgtree.Parse(oldText, buildOpts)
	newTree := cfgtree.Parse(newText, buildOpts)
	res := treediff.Diff(oldTree, newTree)
	stats := res.Stats()

	env.log.Info().
		Str("old", oldPath).
		Str("new", newPath).
		Int("old_nodes", oldTree.Count()).
		Int("new_nodes", newTree.Count()).
		Int("removed", stats.Removed).
		Int("added", stats.Added).
		Dur("read", readDur).
		Dur("diff", time.Since(start)).
		Msg("diffed")
	return res, nil
}

func newReader(env *runEnv) (*docio.Reader, cfgtree.BuildOptions, error) {
	reader, err := docio.NewReader(env.fs, env.cfg.Encoding)
	if err != nil {
		return nil, cfgtree.BuildOptions{}, err
	}
	reader.Stdin = env.in

	buildOpts, err := env.cfg.BuildOptions()
	if err != nil {
		return nil, cfgtree.BuildOptions{}, err
	}
	return reader, buildOpts, nil
}

// runDir diffs two directory trees and writes one combined report. Unreadable files are reported and make the command exit 1 after everything else is written.
func runDir(env *runEnv, oldDir, newDir string) error {
	dest, err := resolveDestination(env)
	if err != nil {
		return err
	}
	reader, buildOpts, err := newReader(env)
	if err != nil {
		return err
	}

	results, err := batch.Compare(reader, oldDir, newDir, batch.Options{Include: env.cfg.Include, Build: buildOpts, Logger: &env.log})
	if err != nil {
		return err
	}

	env.log.Info().Int("files", len(results)).Bool("changed", batch.Changed(results)).Msg("directories compared")

	files := make([]report.FileReport, 0, len(results))
	var failed int
	for _, fr := range results {
		if fr.Err != nil {
			failed++
		}
		files = append(files, report.FileReport{Name: fr.Rel, Status: fr.Status.String(), Err: fr.Err, Result: fr.Result})
	}

	format := resolveFormat(env, dest.stdout())
	var b bytes.Buffer
	if err := report.WriteFiles(&b, files, report.Options{Format: format, IndentUnit: indentUnit(env)}); err != nil {
		return err
	}
	if format == report.FormatText || format == report.FormatColor {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		if err := batch.WriteSummary(&b, results); err != nil {
			return err
		}
	}
	if err := emit(env, dest, b.Bytes(), format); err != nil {
		return err
	}

	if failed > 0 {
		return ExitError{Code: 1, Err: fmt.Errorf("%d file(s) could not be compared", failed)}
	}
	return nil
}

// runWatch renders the diff now and after every change to either file, until ctx is done.
func runWatch(ctx context.Context, env *runEnv, oldPath, newPath string) error {
	if oldPath == docio.StdinPath || newPath == docio.StdinPath {
		return usageErrorf("watch needs two files; stdin can't be watched")
	}
	dest, err := resolveDestination(env)
	if err != nil {
		return err
	}

	rerun := func() error {
		err := runDiff(env, oldPath, newPath)
		if err != nil {
			fmt.Fprintf(env.errW, "error: %v\n", err)
		}
		if dest.stdout() {
			fmt.Fprintf(env.out, "--- %s\n", time.Now().Format(time.TimeOnly))
		}
		return err
	}
	return watch.Run(ctx, []string{oldPath, newPath}, rerun, watch.Options{Logger: &env.log})
}

// destination is where a report goes. The zero value is stdout.
type destination struct {
	path   string // Explicit output file.
	outDir string // Directory for a dated file, named at write time so each watch rerun gets its own file.
}

func (d destination) stdout() bool {
	return d.path == "" && d.outDir == ""
}

// resolveDestination picks the report destination. An explicit -o wins over an out-dir from configuration; both as flags is a usage error.
func resolveDestination(env *runEnv) (destination, error) {
	outDirFromFlag := env.cfg.Sources["outdir"].SourceType == "flag"
	switch {
	case env.flags.output != "" && env.cfg.OutDir != "" && outDirFromFlag:
		return destination{}, usageErrorf("--output and --out-dir can't be used together")
	case env.flags.output != "":
		return destination{path: env.flags.output}, nil
	case env.cfg.OutDir != "":
		return destination{outDir: env.cfg.OutDir}, nil
	default:
		return destination{}, nil
	}
}

// emit writes data to dest. For out-dir destinations the chosen path is printed to stdout.
func emit(env *runEnv, dest destination, data []byte, format report.Format) error {
	if dest.stdout() {
		_, err := env.out.Write(data)
		return err
	}

	path := dest.path
	if path == "" {
		path = docio.DatedReportName(dest.outDir, time.Now(), format.Ext())
	}
	if err := docio.WriteReport(env.fs, path, string(data)); err != nil {
		return err
	}
	env.log.Info().Str("path", path).Msg("wrote report")
	if dest.path == "" {
		_, err := fmt.Fprintln(env.out, path)
		return err
	}
	return nil
}

// resolveFormat applies the color setting to the configured format. With color "auto", text becomes color only when writing to a terminal and NO_COLOR is unset.
func resolveFormat(env *runEnv, toStdout bool) report.Format {
	f, err := report.ParseFormat(env.cfg.Format)
	if err != nil {
		f = report.FormatText
	}
	switch env.cfg.Color {
	case "always":
		if f == report.FormatText {
			f = report.FormatColor
		}
	case "never":
		if f == report.FormatColor {
			f = report.FormatText
		}
	default:
		if f == report.FormatText && toStdout && isTerminal(env.out) && os.Getenv("NO_COLOR") == "" {
			f = report.FormatColor
		}
	}
	return f
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func indentUnit(env *runEnv) string {
	return strings.Repeat(" ", env.cfg.Indent)
}

func displayName(path string) string {
	if path == docio.StdinPath {
		return stdinName
	}
	return path
}
