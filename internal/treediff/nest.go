package treediff

// Change is a Line with its nested lines attached. It is the tree-shaped view of a Result, used by structured output formats.
type Change struct {
	Op       Op       `json:"-" yaml:"-"`
	Kind     string   `json:"op" yaml:"op"` // Op.String(); filled by Nest.
	Text     string   `json:"text" yaml:"text"`
	Children []Change `json:"children,omitempty" yaml:"children,omitempty"`
}

// Nest regroups r's flat lines into a forest of Changes using each line's Depth.
func (r Result) Nest() []Change {
	changes, _ := nest(r.Lines, 0, 0)
	return changes
}

// nest consumes lines starting at i while they are at depth, attaching deeper lines as children. It returns the changes and the index of the first unconsumed line.
func nest(lines []Line, i int, depth int) ([]Change, int) {
	var out []Change
	for i < len(lines) && lines[i].Depth == depth {
		ln := lines[i]
		c := Change{Op: ln.Op, Kind: ln.Op.String(), Text: ln.Text}
		i++
		if i < len(lines) && lines[i].Depth > depth {
			c.Children, i = nest(lines, i, depth+1)
		}
		out = append(out, c)
	}
	return out, i
}
