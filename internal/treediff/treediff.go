package treediff

import (
	"github.com/codalotl/cfgdiff/internal/cfgtree"
)

// Op is the kind of a diff line.
type Op int

const (
	OpContext Op = iota // Present on both sides; something beneath it changed.
	OpDelete            // Present only on the old side.
	OpInsert            // Present only on the new side.
)

// Prefix returns "-" for OpDelete, "+" for OpInsert, and "" for OpContext.
func (op Op) Prefix() string {
	switch op {
	case OpDelete:
		return "-"
	case OpInsert:
		return "+"
	default:
		return ""
	}
}

// String returns "context", "delete", or "insert".
func (op Op) String() string {
	switch op {
	case OpDelete:
		return "delete"
	case OpInsert:
		return "insert"
	default:
		return "context"
	}
}

// Line is one emitted diff line.
type Line struct {
	Op    Op
	Depth int    // Nesting depth of the source node; 0 for top-level nodes.
	Text  string // Trimmed line text of the source node.
}

// Result is the ordered output of Diff. See the package doc for ordering and invariants.
type Result struct {
	Lines []Line
}

// Stats counts the lines of a Result by Op.
type Stats struct {
	Removed int
	Added   int
	Context int
}

// Diff compares oldTree and newTree and returns their structural differences. Neither tree is modified. A nil tree is treated as empty.
func Diff(oldTree, newTree *cfgtree.Tree) Result {
	return Result{Lines: diffChildren(rootOf(oldTree), rootOf(newTree), 0)}
}

func rootOf(t *cfgtree.Tree) *cfgtree.Node {
	if t == nil {
		return nil
	}
	return t.Root()
}

// diffChildren compares the children of oldNode and newNode (either may be nil) at depth.
func diffChildren(oldNode, newNode *cfgtree.Node, depth int) []Line {
	var out []Line
	for _, o := range oldNode.Children() {
		n, ok := newNode.Child(o.Text)
		if !ok {
			out = appendSubtree(out, o, OpDelete, depth)
			continue
		}
		sub := diffChildren(o, n, depth+1)
		if len(sub) > 0 {
			out = append(out, Line{Op: OpContext, Depth: depth, Text: o.Text})
			out = append(out, sub...)
		}
	}
	for _, n := range newNode.Children() {
		if _, ok := oldNode.Child(n.Text); !ok {
			out = appendSubtree(out, n, OpInsert, depth)
		}
	}
	return out
}

func appendSubtree(out []Line, n *cfgtree.Node, op Op, depth int) []Line {
	out = append(out, Line{Op: op, Depth: depth, Text: n.Text})
	for _, child := range n.Children() {
		out = appendSubtree(out, child, op, depth+1)
	}
	return out
}

// HasChanges reports whether r contains any removed or added line.
func (r Result) HasChanges() bool {
	for _, ln := range r.Lines {
		if ln.Op != OpContext {
			return true
		}
	}
	return false
}

// Stats counts r's lines by Op. Every removed or added node counts, including descendants of removed or added blocks.
func (r Result) Stats() Stats {
	var s Stats
	for _, ln := range r.Lines {
		switch ln.Op {
		case OpDelete:
			s.Removed++
		case OpInsert:
			s.Added++
		default:
			s.Context++
		}
	}
	return s
}

// Invert returns a copy of r with OpDelete and OpInsert swapped.
func (r Result) Invert() Result {
	out := Result{Lines: make([]Line, len(r.Lines))}
	for i, ln := range r.Lines {
		switch ln.Op {
		case OpDelete:
			ln.Op = OpInsert
		case OpInsert:
			ln.Op = OpDelete
		}
		out.Lines[i] = ln
	}
	return out
}
