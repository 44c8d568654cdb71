package cfgtree

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// DuplicatePolicy decides what happens when the same line text recurs among siblings.
type DuplicatePolicy int

const (
	DuplicateMerge   DuplicatePolicy = iota // Merge the later occurrence's children into the existing node.
	DuplicateReplace                        // Replace the existing node with the later occurrence, keeping its position.
)

// String returns "merge" or "replace".
func (p DuplicatePolicy) String() string {
	switch p {
	case DuplicateMerge:
		return "merge"
	case DuplicateReplace:
		return "replace"
	default:
		return fmt.Sprintf("DuplicatePolicy(%d)", int(p))
	}
}

// ParseDuplicatePolicy parses "merge" or "replace" (case-insensitive). "" means merge.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "merge":
		return DuplicateMerge, nil
	case "replace":
		return DuplicateReplace, nil
	default:
		return 0, fmt.Errorf("unknown duplicate policy %q (want merge or replace)", s)
	}
}

// BuildOptions tunes Build. The zero value skips only blank lines, counts each whitespace character as one column, and merges duplicate siblings.
type BuildOptions struct {
	// Skip lists trimmed lines that are dropped as if blank (ex: "!" section separators in Cisco configs). Lines nested under a skipped line are kept.
	Skip []string

	// Ignore holds patterns matched against trimmed line text. A matching line is dropped together with every line nested under it.
	Ignore []*regexp.Regexp

	// TabWidth, if > 0, is the indentation width of a tab character. Otherwise a tab counts as one column.
	TabWidth int

	Duplicates DuplicatePolicy
}

// CompileIgnore compiles patterns for BuildOptions.Ignore. It returns an error naming the first invalid pattern.
func CompileIgnore(patterns []string) ([]*regexp.Regexp, error) {
	var out []*regexp.Regexp
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

type frame struct {
	indent int
	node   *Node
}

// Build parses lines into a Tree. Blank lines (and lines in opts.Skip) contribute no node. Build never fails: malformed indentation just closes deeper blocks.
func Build(lines []string, opts BuildOptions) *Tree {
	t := NewTree()
	t.root.Indent = -1

	var stack []frame
	ignoreAbove := -1 // When >= 0, lines indented deeper than this belong to an ignored block.

	for _, line := range lines {
		text := strings.TrimSpace(line)
		if text == "" || opts.skipped(text) {
			continue
		}
		indent := indentWidth(line, opts.TabWidth)

		if ignoreAbove >= 0 {
			if indent > ignoreAbove {
				continue
			}
			ignoreAbove = -1
		}
		if opts.ignored(text) {
			ignoreAbove = indent
			continue
		}

		for len(stack) > 0 && stack[len(stack)-1].indent >= indent {
			stack = stack[:len(stack)-1]
		}

		parent := &t.root
		if len(stack) > 0 {
			parent = stack[len(stack)-1].node
		}
		node := parent.addChild(text, indent, opts.Duplicates)
		stack = append(stack, frame{indent: indent, node: node})
	}

	return t
}

// Parse splits text on '\n' (a trailing '\r' on each line is tolerated) and calls Build.
func Parse(text string, opts BuildOptions) *Tree {
	return Build(SplitLines(text), opts)
}

// SplitLines splits text into lines on '\n', dropping a trailing '\r' from each line. A final '\n' does not produce an extra empty line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimSuffix(ln, "\r")
	}
	return lines
}

func indentWidth(line string, tabWidth int) int {
	width := 0
	for _, r := range line {
		if !unicode.IsSpace(r) {
			break
		}
		if r == '\t' && tabWidth > 0 {
			width += tabWidth
		} else {
			width++
		}
	}
	return width
}

func (o BuildOptions) skipped(text string) bool {
	for _, s := range o.Skip {
		if text == s {
			return true
		}
	}
	return false
}

func (o BuildOptions) ignored(text string) bool {
	for _, re := range o.Ignore {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
