// Package treediff compares two configuration trees (see package cfgtree) and renders the structural differences.
//
// Representation: A Result holds an ordered slice of Lines. Each Line has an Op, a Depth, and the node Text:
//   - OpDelete: the node exists only in the old tree. Every descendant follows as OpDelete at increasing depth.
//   - OpInsert: the node exists only in the new tree. Every descendant follows as OpInsert.
//   - OpContext: the node exists in both trees and something beneath it changed. It is a header for the lines that follow at Depth+1.
//
// Ordering: At each level, old's keys are visited first in old's order (removed nodes, and common nodes with changes beneath them), then new's keys in new's order for keys old lacks
// (added nodes). Nodes present in both trees with structurally identical subtrees produce no lines. Sibling order changes alone produce no lines.
//
// Invariants:
//   - The first line (if any) has Depth 0, and each line's Depth is at most one more than the previous line's.
//   - An OpContext line is immediately followed by a line at Depth+1.
//   - Lines nested under an OpDelete (OpInsert) line are OpDelete (OpInsert).
//   - Diff(t, t) has no lines, for any t.
//   - Diff(b, a) equals Diff(a, b).Invert() up to the order of sibling lines.
//
// Rendering: Render emits each line as the indent unit repeated Depth times, then "- " or "+ " for changes (nothing for context), then the text. Depth is the nesting depth of the source
// node, not its raw indentation, so output indentation is normalized. Report joins rendered lines with "\n" and a trailing newline.
//
//	res := treediff.Diff(oldTree, newTree)
//	fmt.Print(res.Report(treediff.RenderOptions{}))
package treediff
