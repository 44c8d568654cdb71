// Package docio reads configuration documents into text and writes diff reports. All file access goes through an afero.Fs so callers (and tests) can substitute an in-memory
// filesystem. Bytes are decoded with golang.org/x/text: UTF-8 by default, with a leading byte order mark switching to the matching Unicode decoding, or any IANA-registered
// character set by name (ex: "ISO-8859-1", "windows-1252", "UTF-16LE").
package docio

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// StdinPath is the path that makes Reader.Read consume Reader.Stdin instead of a file.
const StdinPath = "-"

// ErrNotRegular is returned when a document path names a directory or other non-regular file.
var ErrNotRegular = errors.New("not a regular file")

// Reader reads configuration documents.
type Reader struct {
	Fs    afero.Fs
	Stdin io.Reader // Used when the path is StdinPath. May be nil if stdin is never requested.

	enc encoding.Encoding
}

// NewReader returns a Reader over fs that decodes with the named character set. An empty name means UTF-8.
func NewReader(fs afero.Fs, encodingName string) (*Reader, error) {
	enc, err := LookupEncoding(encodingName)
	if err != nil {
		return nil, err
	}
	return &Reader{Fs: fs, enc: enc}, nil
}

// LookupEncoding returns the encoding for an IANA character set name (case-insensitive; aliases allowed). "" and "utf-8" return UTF-8.
func LookupEncoding(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return unicode.UTF8, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	return enc, nil
}

// Read returns the decoded text at path. A path of StdinPath reads r.Stdin.
func (r *Reader) Read(path string) (string, error) {
	if path == StdinPath {
		if r.Stdin == nil {
			return "", fmt.Errorf("read %s: no stdin available", path)
		}
		data, err := io.ReadAll(r.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return r.decode(path, data)
	}

	fi, err := r.Fs.Stat(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if !fi.Mode().IsRegular() {
		return "", fmt.Errorf("read %s: %w", path, ErrNotRegular)
	}
	data, err := afero.ReadFile(r.Fs, path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return r.decode(path, data)
}

func (r *Reader) decode(path string, data []byte) (string, error) {
	text, err := Decode(data, r.enc)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}
	return text, nil
}

// Decode converts data to a string using enc (nil means UTF-8). A leading byte order mark overrides enc and is stripped.
func Decode(data []byte, enc encoding.Encoding) (string, error) {
	if enc == nil {
		enc = unicode.UTF8
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(enc.NewDecoder()), data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// WriteReport writes report to path, creating parent directories as needed.
func WriteReport(fs afero.Fs, path string, report string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	if err := afero.WriteFile(fs, path, []byte(report), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// DatedReportName returns dir/diffConfig_YYYYMMDD_HHMMSS<ext> for now. ext should include its leading dot (ex: ".txt").
func DatedReportName(dir string, now time.Time, ext string) string {
	return filepath.Join(dir, "diffConfig_"+now.Format("20060102_150405")+ext)
}
