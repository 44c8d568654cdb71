// Package report renders a treediff.Result in one of several output formats: plain text (the canonical report), ANSI-colored text, JSON, YAML, Markdown, and HTML.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"

	"github.com/codalotl/cfgdiff/internal/treediff"
)

// Format is an output format name.
type Format string

const (
	FormatText     Format = "text"
	FormatColor    Format = "color"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// Formats lists every supported Format.
var Formats = []Format{FormatText, FormatColor, FormatJSON, FormatYAML, FormatMarkdown, FormatHTML}

// ParseFormat parses a format name (case-insensitive). "" means FormatText; "md" is accepted for FormatMarkdown.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return FormatText, nil
	case "md":
		return FormatMarkdown, nil
	}
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return "", fmt.Errorf("unknown format %q (want one of %s)", s, strings.Join(names, ", "))
}

// Ext returns the file extension, with leading dot, for reports written in f.
func (f Format) Ext() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatYAML:
		return ".yaml"
	case FormatMarkdown:
		return ".md"
	case FormatHTML:
		return ".html"
	default:
		return ".txt"
	}
}

// Options controls Render.
type Options struct {
	Format     Format
	IndentUnit string // See treediff.RenderOptions. Used by the text-based formats.

	// OldName and NewName label the compared documents in formats that have headers (JSON, YAML, Markdown, HTML). Either may be "".
	OldName string
	NewName string
}

// Render returns res rendered per opts.
func Render(res treediff.Result, opts Options) (string, error) {
	var b bytes.Buffer
	if err := Write(&b, res, opts); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Write renders res per opts to w.
func Write(w io.Writer, res treediff.Result, opts Options) error {
	ropts := treediff.RenderOptions{IndentUnit: opts.IndentUnit}
	switch opts.Format {
	case FormatText, "":
		_, err := io.WriteString(w, res.Report(ropts))
		return err
	case FormatColor:
		_, err := io.WriteString(w, colorize(res, ropts))
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(newDocument(res, opts))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newDocument(res, opts)); err != nil {
			return err
		}
		return enc.Close()
	case FormatMarkdown:
		_, err := io.WriteString(w, markdown(res, opts))
		return err
	case FormatHTML:
		return writeHTML(w, res, opts)
	default:
		return fmt.Errorf("unknown format %q", opts.Format)
	}
}

// Summary is the per-document counts included in structured formats.
type Summary struct {
	Removed int `json:"removed" yaml:"removed"`
	Added   int `json:"added" yaml:"added"`
}

// document is the JSON/YAML shape of a report.
type document struct {
	Old     string            `json:"old,omitempty" yaml:"old,omitempty"`
	New     string            `json:"new,omitempty" yaml:"new,omitempty"`
	Summary Summary           `json:"summary" yaml:"summary"`
	Changes []treediff.Change `json:"changes" yaml:"changes"`
}

func newDocument(res treediff.Result, opts Options) document {
	stats := res.Stats()
	changes := res.Nest()
	if changes == nil {
		changes = []treediff.Change{}
	}
	return document{
		Old:     opts.OldName,
		New:     opts.NewName,
		Summary: Summary{Removed: stats.Removed, Added: stats.Added},
		Changes: changes,
	}
}

// colorize renders res like Result.Report, with removed lines red, added lines green, and context headers bold. Indentation is left uncolored.
func colorize(res treediff.Result, ropts treediff.RenderOptions) string {
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	bold := color.New(color.Bold)
	for _, c := range []*color.Color{red, green, bold} {
		c.EnableColor() // The caller already decided color is wanted; don't second-guess via NO_COLOR or TTY checks.
	}

	unit := ropts.IndentUnit
	if unit == "" {
		unit = treediff.DefaultIndentUnit
	}

	var b strings.Builder
	for _, ln := range res.Lines {
		b.WriteString(strings.Repeat(unit, ln.Depth))
		body := treediff.Line{Op: ln.Op, Text: ln.Text}.Render(ropts)
		switch ln.Op {
		case treediff.OpDelete:
			b.WriteString(red.Sprint(body))
		case treediff.OpInsert:
			b.WriteString(green.Sprint(body))
		default:
			b.WriteString(bold.Sprint(body))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// markdown renders res as a Markdown section: a heading naming the documents, a one-line summary, and the text report in a fenced diff block.
func markdown(res treediff.Result, opts Options) string {
	var b strings.Builder
	if h := heading(opts.OldName, opts.NewName); h != "" {
		fmt.Fprintf(&b, "## %s\n\n", h)
	}
	if len(res.Lines) == 0 {
		b.WriteString("_No differences._\n")
		return b.String()
	}

	stats := res.Stats()
	fmt.Fprintf(&b, "%d removed, %d added.\n\n", stats.Removed, stats.Added)

	text := res.Report(treediff.RenderOptions{IndentUnit: opts.IndentUnit})
	fence := strings.Repeat("`", max(3, longestRun(text, '`')+1))
	fmt.Fprintf(&b, "%sdiff\n%s%s\n", fence, text, fence)
	return b.String()
}

func heading(oldName, newName string) string {
	switch {
	case oldName == "" && newName == "":
		return ""
	case oldName == "":
		return newName
	case newName == "" || oldName == newName:
		return oldName
	default:
		return oldName + " -> " + newName
	}
}

func longestRun(s string, c byte) int {
	best, cur := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			cur++
			best = max(best, cur)
		} else {
			cur = 0
		}
	}
	return best
}

const htmlHead = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>cfgdiff</title>
<style>
code.language-diff { white-space: pre; }
</style>
</head>
<body>
`

const htmlTail = `</body>
</html>
`

func writeHTML(w io.Writer, res treediff.Result, opts Options) error {
	if _, err := io.WriteString(w, htmlHead); err != nil {
		return err
	}
	if err := goldmark.New().Convert([]byte(markdown(res, opts)), w); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	_, err := io.WriteString(w, htmlTail)
	return err
}
