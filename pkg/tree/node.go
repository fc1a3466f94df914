package tree

import (
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/aretw0/stepper/pkg/domain"
)

// Node is a single element of the tree.
type Node struct {
	id       string
	data     any
	children []*Node
	index    int
	depth    int
	shuffled bool
	parent   *Node // non-owning
}

// New creates a root node. An empty id becomes domain.RootID.
func New(id string) *Node {
	if id == "" {
		id = domain.RootID
	}
	return &Node{id: id}
}

func (n *Node) String() string {
	return fmt.Sprintf("(Node %s #ch=%d idx=%d)", n.PathString(), len(n.children), n.index)
}

// ID returns the node's id.
func (n *Node) ID() string { return n.id }

// Data returns the data attached to the node.
func (n *Node) Data() any { return n.data }

// SetData replaces the data attached to the node.
func (n *Node) SetData(data any) { n.data = data }

// Depth returns the distance from the root (0 for the root).
func (n *Node) Depth() int { return n.depth }

// Parent returns the parent node or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Root returns the top-most ancestor.
func (n *Node) Root() *Node {
	r := n
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool { return n.parent == nil }

// Shuffled reports whether the children were shuffled since the last ClearSubTree.
func (n *Node) Shuffled() bool { return n.shuffled }

// SetShuffled sets the shuffle marker.
func (n *Node) SetShuffled(v bool) { n.shuffled = v }

// Index returns the cursor into the children.
func (n *Node) Index() int { return n.index }

// SetIndex moves the cursor. i must address an existing child
// (0 is accepted for a node without children).
func (n *Node) SetIndex(i int) error {
	if i == 0 && len(n.children) == 0 {
		n.index = 0
		return nil
	}
	if i < 0 || i >= len(n.children) {
		return fmt.Errorf("%w: index %d must be between 0 and %d", domain.ErrInvalidArgument, i, len(n.children)-1)
	}
	n.index = i
	return nil
}

// Len returns the number of children.
func (n *Node) Len() int { return len(n.children) }

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.children) == 0 }

// Child returns the i-th child. Negative indices count from the end.
func (n *Node) Child(i int) (*Node, bool) {
	if i < 0 {
		i += len(n.children)
	}
	if i < 0 || i >= len(n.children) {
		return nil, false
	}
	return n.children[i], true
}

// ChildByID returns the child with the given id.
func (n *Node) ChildByID(id string) (*Node, bool) {
	for _, ch := range n.children {
		if ch.id == id {
			return ch, true
		}
	}
	return nil, false
}

// IndexOf returns the position of a direct child, or -1.
func (n *Node) IndexOf(ch *Node) int {
	for i, c := range n.children {
		if c == ch {
			return i
		}
	}
	return -1
}

// Children returns a copy of the children slice.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// All iterates over the children with their positions.
func (n *Node) All() iter.Seq2[int, *Node] {
	return func(yield func(int, *Node) bool) {
		for i, ch := range n.children {
			if !yield(i, ch) {
				return
			}
		}
	}
}

// RowsData returns the data of every child.
func (n *Node) RowsData() []any {
	out := make([]any, len(n.children))
	for i, ch := range n.children {
		out[i] = ch.data
	}
	return out
}

// TreeDepth returns the height of the subtree (0 for a leaf).
func (n *Node) TreeDepth() int {
	h := 0
	for _, ch := range n.children {
		if d := ch.TreeDepth() + 1; d > h {
			h = d
		}
	}
	return h
}

// Push appends a new child. It is Insert(id, -1, data).
func (n *Node) Push(id string, data any) (*Node, error) {
	return n.Insert(id, -1, data)
}

// Insert adds a new child at position index.
//
// Non-negative indices insert before that position, clamped to the number of
// children. Negative indices count from the end: -1 appends, -2 inserts before the
// last child, and values past the front clamp to 0. An empty id is replaced by the
// current number of children. The cursor keeps pointing at the same child.
func (n *Node) Insert(id string, index int, data any) (*Node, error) {
	if id == "" {
		id = strconv.Itoa(len(n.children))
	}
	if strings.Contains(id, domain.PathSeparator) {
		return nil, fmt.Errorf("%w: id cannot contain %q (id: %q)", domain.ErrInvalidID, domain.PathSeparator, id)
	}
	if _, exists := n.ChildByID(id); exists {
		return nil, fmt.Errorf("%w (id: %q)", domain.ErrDuplicateID, id)
	}

	pos := normalizeIndex(index, len(n.children))
	child := &Node{
		id:     id,
		data:   data,
		depth:  n.depth + 1,
		parent: n,
	}

	n.children = append(n.children, nil)
	copy(n.children[pos+1:], n.children[pos:])
	n.children[pos] = child

	if len(n.children) > 1 && pos <= n.index {
		n.index++
	}
	return child, nil
}

func normalizeIndex(index, length int) int {
	if index < 0 {
		index = length + index + 1
		if index < 0 {
			index = 0
		}
	}
	if index > length {
		index = length
	}
	return index
}

// Clear removes all children and the node's data.
func (n *Node) Clear() {
	n.ClearSubTree()
	n.ClearData()
}

// ClearData resets the node's data.
func (n *Node) ClearData() {
	n.data = nil
}

// ClearSubTree removes all children and resets the cursor and the shuffle marker.
// The node's own data is kept.
func (n *Node) ClearSubTree() {
	for _, ch := range n.children {
		ch.Clear()
		ch.parent = nil
	}
	n.children = nil
	n.index = 0
	n.shuffled = false
}

// Reorder replaces the order of the children with the given permutation of positions.
// The cursor follows the child it pointed at.
func (n *Node) Reorder(perm []int) error {
	if len(perm) != len(n.children) {
		return fmt.Errorf("%w: permutation has %d entries, node has %d children",
			domain.ErrInvalidArgument, len(perm), len(n.children))
	}
	seen := make([]bool, len(perm))
	next := make([]*Node, len(perm))
	for i, p := range perm {
		if p < 0 || p >= len(perm) || seen[p] {
			return fmt.Errorf("%w: invalid permutation entry %d", domain.ErrInvalidArgument, p)
		}
		seen[p] = true
		next[i] = n.children[p]
	}
	var current *Node
	if len(n.children) > 0 {
		current = n.children[n.index]
	}
	n.children = next
	if current != nil {
		n.index = n.IndexOf(current)
	}
	return nil
}

// Walk visits the subtree in depth-first pre-order. Returning false from fn
// skips the children of the visited node.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, ch := range n.children {
		ch.Walk(fn)
	}
}
