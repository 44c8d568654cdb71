package treediff

import "fmt"

// validate checks the Result invariants and returns an error on the first violation.
func (r Result) validate() error {
	// blockOp[d] is the Op of the open OpDelete/OpInsert ancestor at depth d, or OpContext if none.
	var blockOp []Op
	for i, ln := range r.Lines {
		if ln.Depth < 0 {
			return fmt.Errorf("line[%d]: negative depth %d", i, ln.Depth)
		}
		if i == 0 && ln.Depth != 0 {
			return fmt.Errorf("line[0]: depth must be 0, got %d", ln.Depth)
		}
		if i > 0 && ln.Depth > r.Lines[i-1].Depth+1 {
			return fmt.Errorf("line[%d]: depth %d jumps from %d", i, ln.Depth, r.Lines[i-1].Depth)
		}
		if i > 0 && r.Lines[i-1].Op == OpContext && ln.Depth != r.Lines[i-1].Depth+1 {
			return fmt.Errorf("line[%d]: context line %q has no nested lines", i-1, r.Lines[i-1].Text)
		}

		blockOp = blockOp[:ln.Depth]
		inherited := OpContext
		if ln.Depth > 0 {
			inherited = blockOp[ln.Depth-1]
		}
		if inherited != OpContext && ln.Op != inherited {
			return fmt.Errorf("line[%d]: %s line nested under a %s block", i, ln.Op, inherited)
		}
		blockOp = append(blockOp, ln.Op)
	}
	if n := len(r.Lines); n > 0 && r.Lines[n-1].Op == OpContext {
		return fmt.Errorf("line[%d]: trailing context line %q", n-1, r.Lines[n-1].Text)
	}
	return nil
}
