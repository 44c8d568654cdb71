// Package cfgtesting provides helpers for tests that work with configuration text fixtures: Dedent lets multi-line fixtures be indented with the surrounding test code, and
// RequireText compares two texts and, on mismatch, fails the test with a line-level diff instead of two opaque quoted strings.
package cfgtesting

import (
	"strings"
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Dedent removes the common leading indentation from each non-blank line in s. Spaces and tabs both count as indentation; the smallest indent among non-blank lines
// is removed from all non-blank lines. Leading and trailing blank lines are trimmed, interior blank lines are kept, and the result ends with a single '\n'. Relative
// indentation survives, which is what matters for configuration fixtures.
func Dedent(s string) string {
	s = strings.Trim(s, "\n") // drop leading/trailing blank lines
	lines := strings.Split(s, "\n")

	min := -1 // smallest indent seen so far
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" { // whitespace-only lines count as blank
			lines[i] = ""
			continue
		}
		indent := len(line) - len(trimmed)
		if min == -1 || indent < min {
			min = indent
		}
	}

	if min > 0 { // nothing to do if min == 0 or no non-blank lines
		for i, line := range lines {
			if len(line) >= min {
				lines[i] = line[min:]
			}
		}
	}
	return strings.TrimRight(strings.Join(lines, "\n"), " \t\n") + "\n"
}

// RequireText fails t immediately if got != want, printing a line diff where "-" lines are expected and "+" lines are actual.
func RequireText(t testing.TB, want, got string) {
	t.Helper()
	if want == got {
		return
	}
	t.Fatalf("text mismatch (-want +got):\n%s", LineDiff(want, got))
}

// LineDiff returns a line-oriented rendering of the differences between a and b. Unchanged lines are prefixed with "  ", removed with "- ", added with "+ ".
func LineDiff(a, b string) string {
	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	var out strings.Builder
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		}
		for _, ln := range strings.SplitAfter(d.Text, "\n") {
			if ln == "" {
				continue
			}
			out.WriteString(prefix)
			out.WriteString(strings.TrimSuffix(ln, "\n"))
			out.WriteByte('\n')
		}
	}
	return out.String()
}
