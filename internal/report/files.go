package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"

	"github.com/codalotl/cfgdiff/internal/treediff"
)

// FileReport is one entry of a multi-file report.
type FileReport struct {
	Name   string
	Status string // ex: "changed", "added", "unchanged", "error"
	Err    error  // If set, Result is ignored.
	Result treediff.Result
}

type fileDocument struct {
	File     string `json:"file" yaml:"file"`
	Status   string `json:"status" yaml:"status"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
	document `yaml:",inline"`
}

// WriteFiles renders files as one report in opts.Format. JSON and YAML produce a list with one document per file. The text-based formats print a header per file and omit
// files whose Result has no lines and no error. opts.OldName and opts.NewName are ignored.
func WriteFiles(w io.Writer, files []FileReport, opts Options) error {
	switch opts.Format {
	case FormatJSON, FormatYAML:
		docs := make([]fileDocument, 0, len(files))
		for _, f := range files {
			fd := fileDocument{File: f.Name, Status: f.Status, document: newDocument(f.Result, Options{})}
			if f.Err != nil {
				fd.Error = f.Err.Error()
				fd.document = newDocument(treediff.Result{}, Options{})
			}
			docs = append(docs, fd)
		}
		if opts.Format == FormatJSON {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(docs)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(docs); err != nil {
			return err
		}
		return enc.Close()

	case FormatMarkdown, FormatHTML:
		var md bytes.Buffer
		for _, f := range files {
			if !visible(f) {
				continue
			}
			if md.Len() > 0 {
				md.WriteByte('\n')
			}
			if f.Err != nil {
				fmt.Fprintf(&md, "## %s\n\n**error:** %s\n", f.Name, f.Err)
				continue
			}
			md.WriteString(markdown(f.Result, Options{IndentUnit: opts.IndentUnit, OldName: f.Name}))
		}
		if opts.Format == FormatMarkdown {
			_, err := w.Write(md.Bytes())
			return err
		}
		if _, err := io.WriteString(w, htmlHead); err != nil {
			return err
		}
		if err := goldmark.New().Convert(md.Bytes(), w); err != nil {
			return fmt.Errorf("render html: %w", err)
		}
		_, err := io.WriteString(w, htmlTail)
		return err

	case FormatText, FormatColor, "":
		for _, f := range files {
			if !visible(f) {
				continue
			}
			var body string
			if f.Err != nil {
				body = "error: " + f.Err.Error() + "\n"
			} else {
				var err error
				body, err = Render(f.Result, Options{Format: opts.Format, IndentUnit: opts.IndentUnit})
				if err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(w, "=== %s (%s)\n%s\n", f.Name, f.Status, strings.TrimSuffix(body, "\n")); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("unknown format %q", opts.Format)
	}
}

func visible(f FileReport) bool {
	return f.Err != nil || len(f.Result.Lines) > 0
}
