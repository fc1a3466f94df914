/*
Package tree implements the ordered, append-biased n-ary tree that backs a sequence.

Every node owns its children and keeps a single cursor (Index) into them. Following
the cursors from any node down to a leaf defines that node's current path, and the
leaves of the tree, read left to right, are the units of a sequence. Navigation
(Next, Prev, GoTo, Reset) moves the cursors so that the current path always ends on
a leaf.

Parent links are plain, non-owning pointers: ownership flows strictly from a parent
to its children, and Root is computed by walking the parent chain.

Example:

	root := tree.New("")
	a, _ := root.Push("A", nil)
	_, _ = a.Push("1", map[string]any{"color": "red"})
	_, _ = a.Push("2", map[string]any{"color": "blue"})
	_, _ = root.Push("B", nil)

	root.CurrentPathString() // "A/1"
	root.Next()              // A/2
	root.Next()              // B
	root.Next()              // nil, stays on B
*/
package tree
