package tree

import (
	"github.com/aretw0/stepper/pkg/domain"
)

// cursorChain returns the nodes with children met while following the cursors
// from n downwards, n first.
func (n *Node) cursorChain() []*Node {
	var chain []*Node
	for cur := n; len(cur.children) > 0; cur = cur.children[cur.index] {
		chain = append(chain, cur)
	}
	return chain
}

// Next moves to the following leaf in left-to-right order and returns it.
// At the last leaf it returns nil and leaves the cursors unchanged.
func (n *Node) Next() *Node {
	chain := n.cursorChain()
	for i := len(chain) - 1; i >= 0; i-- {
		pivot := chain[i]
		if pivot.index < len(pivot.children)-1 {
			pivot.index++
			return descendFirst(pivot.children[pivot.index])
		}
	}
	return nil
}

// Prev moves to the preceding leaf and returns it.
// At the first leaf it returns nil and leaves the cursors unchanged.
func (n *Node) Prev() *Node {
	chain := n.cursorChain()
	for i := len(chain) - 1; i >= 0; i-- {
		pivot := chain[i]
		if pivot.index > 0 {
			pivot.index--
			return descendLast(pivot.children[pivot.index])
		}
	}
	return nil
}

// PeekNext returns the leaf Next would move to, without moving.
func (n *Node) PeekNext() *Node {
	chain := n.cursorChain()
	for i := len(chain) - 1; i >= 0; i-- {
		pivot := chain[i]
		if pivot.index < len(pivot.children)-1 {
			leaf := pivot.children[pivot.index+1]
			for len(leaf.children) > 0 {
				leaf = leaf.children[0]
			}
			return leaf
		}
	}
	return nil
}

// PeekPrev returns the leaf Prev would move to, without moving.
func (n *Node) PeekPrev() *Node {
	chain := n.cursorChain()
	for i := len(chain) - 1; i >= 0; i-- {
		pivot := chain[i]
		if pivot.index > 0 {
			leaf := pivot.children[pivot.index-1]
			for len(leaf.children) > 0 {
				leaf = leaf.children[len(leaf.children)-1]
			}
			return leaf
		}
	}
	return nil
}

// HasNext reports whether Next would move.
func (n *Node) HasNext() bool {
	return n.PeekNext() != nil
}

// HasPrev reports whether Prev would move.
func (n *Node) HasPrev() bool {
	return n.PeekPrev() != nil
}

// Reset zeroes every cursor in the subtree, selecting the leftmost leaf.
func (n *Node) Reset() {
	n.index = 0
	for _, ch := range n.children {
		ch.Reset()
	}
}

// GoTo selects the node addressed by a separator-joined path. When the target
// has children, the cursors continue down to its leftmost leaf. An unknown path
// fails with domain.ErrInvalidPath and leaves the cursors untouched.
func (n *Node) GoTo(path string) error {
	return n.GoToPath(SplitPath(path))
}

// GoToPath is GoTo for a list of ids.
func (n *Node) GoToPath(ids []string) error {
	if _, err := n.Resolve(ids); err != nil {
		return err
	}
	n.Reset()
	cur := n
	for _, id := range ids {
		if id == domain.RootID {
			continue
		}
		ch, _ := cur.ChildByID(id)
		cur.index = cur.IndexOf(ch)
		cur = ch
	}
	descendFirst(cur)
	return nil
}

func descendFirst(n *Node) *Node {
	cur := n
	for len(cur.children) > 0 {
		cur.index = 0
		cur = cur.children[0]
	}
	return cur
}

func descendLast(n *Node) *Node {
	cur := n
	for len(cur.children) > 0 {
		cur.index = len(cur.children) - 1
		cur = cur.children[cur.index]
	}
	return cur
}
