package treediff

import (
	"strings"
)

// DefaultIndentUnit is the indent unit used when RenderOptions.IndentUnit is empty.
const DefaultIndentUnit = "  "

// RenderOptions controls Render and Report.
type RenderOptions struct {
	// IndentUnit is repeated Depth times before each line. Defaults to DefaultIndentUnit.
	IndentUnit string
}

func (o RenderOptions) indentUnit() string {
	if o.IndentUnit == "" {
		return DefaultIndentUnit
	}
	return o.IndentUnit
}

// Render returns ln as text, without a trailing newline. Ex: "  - ip address 1.1.1.1" for an OpDelete line at depth 1.
func (ln Line) Render(opts RenderOptions) string {
	var b strings.Builder
	writeLine(&b, ln, opts.indentUnit())
	return b.String()
}

func writeLine(b *strings.Builder, ln Line, unit string) {
	for i := 0; i < ln.Depth; i++ {
		b.WriteString(unit)
	}
	if p := ln.Op.Prefix(); p != "" {
		b.WriteString(p)
		b.WriteByte(' ')
	}
	b.WriteString(ln.Text)
}

// Render returns each line of r rendered per opts.
func (r Result) Render(opts RenderOptions) []string {
	out := make([]string, 0, len(r.Lines))
	for _, ln := range r.Lines {
		out = append(out, ln.Render(opts))
	}
	return out
}

// Report returns r's rendered lines joined with "\n", with a trailing "\n". It returns "" when r has no lines.
func (r Result) Report(opts RenderOptions) string {
	if len(r.Lines) == 0 {
		return ""
	}
	unit := opts.indentUnit()
	var b strings.Builder
	for _, ln := range r.Lines {
		writeLine(&b, ln, unit)
		b.WriteString(defaultEOL)
	}
	return b.String()
}

// defaultEOL is the EOL ('\n') for reports.
const defaultEOL = "\n"
