// Package cfgtree parses indentation-structured configuration text (ex: Cisco-style device configs) into an ordered tree.
//
// Representation: A Tree is an ordered mapping from top-level line text to *Node. Each Node owns an ordered mapping from child line text to child *Node. Keys are the trimmed line
// text; insertion order reflects source order and is preserved.
//
// Nesting: A line becomes a child of the nearest preceding open line whose indentation is strictly less than its own. Indentation is the count of leading whitespace characters (tabs
// count as one unless BuildOptions.TabWidth says otherwise). The builder is permissive: a line indented less than any prior sibling simply closes the deeper blocks.
//
// Duplicates: Sibling keys are unique. When the same text recurs among siblings, BuildOptions.Duplicates decides what happens:
//   - DuplicateMerge (default): the later occurrence's children are merged into the existing node.
//   - DuplicateReplace: the later occurrence replaces the existing node, keeping the original position.
//
// Getting a tree:
//
//	t := cfgtree.Parse(text, cfgtree.BuildOptions{Skip: []string{"!"}})
//	for _, n := range t.Roots() {
//		fmt.Println(n.Text)
//	}
//
// Trees are build-once and read-only afterward. Two trees never share nodes.
package cfgtree
