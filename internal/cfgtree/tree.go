package cfgtree

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Node is one configuration line at some depth, plus its ordered children.
type Node struct {
	Text   string // Trimmed line content. This is the node's key among its siblings.
	Indent int    // Leading whitespace width of the first occurrence of this line. Not part of node identity.

	children *orderedmap.OrderedMap[string, *Node] // nil until the first child is added.
}

// Tree is a parsed configuration document: an ordered mapping from top-level line text to *Node.
//
// The zero value is an empty tree, ready to use.
type Tree struct {
	root Node // Sentinel; its children are the top-level nodes.
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{}
}

// Children returns n's children in insertion order.
func (n *Node) Children() []*Node {
	if n == nil || n.children == nil {
		return nil
	}
	out := make([]*Node, 0, n.children.Len())
	for pair := n.children.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Child returns n's child keyed by text.
func (n *Node) Child(text string) (*Node, bool) {
	if n == nil || n.children == nil {
		return nil, false
	}
	return n.children.Get(text)
}

// Len returns the number of direct children of n.
func (n *Node) Len() int {
	if n == nil || n.children == nil {
		return 0
	}
	return n.children.Len()
}

// Keys returns the text of n's children in insertion order.
func (n *Node) Keys() []string {
	if n == nil || n.children == nil {
		return nil
	}
	out := make([]string, 0, n.children.Len())
	for pair := n.children.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// Equal reports whether n and o have the same text and structurally identical children: same keys, in the same order, with recursively identical subtrees. Indent is ignored.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	return n.Text == o.Text && childrenEqual(n, o)
}

func childrenEqual(a, b *Node) bool {
	if a.Len() != b.Len() {
		return false
	}
	if a.Len() == 0 {
		return true
	}
	pa, pb := a.children.Oldest(), b.children.Oldest()
	for pa != nil && pb != nil {
		if pa.Key != pb.Key || !childrenEqual(pa.Value, pb.Value) {
			return false
		}
		pa, pb = pa.Next(), pb.Next()
	}
	return pa == nil && pb == nil
}

// addChild inserts a child keyed by text per policy and returns the node that subsequent nested lines should attach to.
func (n *Node) addChild(text string, indent int, policy DuplicatePolicy) *Node {
	if n.children == nil {
		n.children = orderedmap.New[string, *Node]()
	}
	if existing, ok := n.children.Get(text); ok && policy == DuplicateMerge {
		return existing
	}
	child := &Node{Text: text, Indent: indent}
	n.children.Set(text, child) // Set on an existing key keeps its position.
	return child
}

// Root returns the sentinel node whose children are t's top-level nodes. Its Text is "".
func (t *Tree) Root() *Node {
	return &t.root
}

// Roots returns the top-level nodes in insertion order.
func (t *Tree) Roots() []*Node {
	return t.root.Children()
}

// Get returns the top-level node keyed by text.
func (t *Tree) Get(text string) (*Node, bool) {
	return t.root.Child(text)
}

// Keys returns the top-level keys in insertion order.
func (t *Tree) Keys() []string {
	return t.root.Keys()
}

// Len returns the number of top-level nodes.
func (t *Tree) Len() int {
	return t.root.Len()
}

// Empty reports whether t has no nodes.
func (t *Tree) Empty() bool {
	return t.Len() == 0
}

// Equal reports whether t and o are structurally identical.
func (t *Tree) Equal(o *Tree) bool {
	return childrenEqual(&t.root, &o.root)
}

// Walk visits every node depth-first in insertion order, passing its depth (0 for top-level nodes). If fn returns false, the node's descendants are skipped.
func (t *Tree) Walk(fn func(n *Node, depth int) bool) {
	walk(&t.root, 0, fn)
}

func walk(parent *Node, depth int, fn func(n *Node, depth int) bool) {
	for _, child := range parent.Children() {
		if fn(child, depth) {
			walk(child, depth+1, fn)
		}
	}
}

// Count returns the total number of nodes in t.
func (t *Tree) Count() int {
	count := 0
	t.Walk(func(*Node, int) bool {
		count++
		return true
	})
	return count
}

// String renders t with each node on its own line, indented two spaces per depth. Parsing the result yields an equal tree.
func (t *Tree) String() string {
	var b strings.Builder
	t.Walk(func(n *Node, depth int) bool {
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(n.Text)
		b.WriteByte('\n')
		return true
	})
	return b.String()
}
