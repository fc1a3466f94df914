package tree

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/aretw0/stepper/pkg/domain"
)

// Path returns the ids from just below the root down to this node.
func (n *Node) Path() []string {
	var path []string
	for cur := n; cur != nil && cur.parent != nil; cur = cur.parent {
		path = append(path, cur.id)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// PathString returns Path joined with the separator.
func (n *Node) PathString() string {
	return strings.Join(n.Path(), domain.PathSeparator)
}

// SplitPath turns a path string into ids, ignoring empty segments.
func SplitPath(path string) []string {
	var ids []string
	for _, id := range strings.Split(path, domain.PathSeparator) {
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// CurrentLeaf follows the cursors from this node down to a leaf.
func (n *Node) CurrentLeaf() *Node {
	cur := n
	for len(cur.children) > 0 {
		cur = cur.children[cur.index]
	}
	return cur
}

// CurrentPath returns the ids visited when following the cursors from this node down to a leaf.
func (n *Node) CurrentPath() []string {
	path := []string{}
	cur := n
	for len(cur.children) > 0 {
		cur = cur.children[cur.index]
		path = append(path, cur.id)
	}
	return path
}

// CurrentPathString returns CurrentPath joined with the separator.
func (n *Node) CurrentPathString() string {
	return strings.Join(n.CurrentPath(), domain.PathSeparator)
}

// CurrentData returns the data of the current leaf, or this node's data when it has no children.
func (n *Node) CurrentData() any {
	return n.CurrentLeaf().data
}

// DataAlongPath collects the non-empty data of this node's ancestors (root excluded),
// of the node itself and of every node on its current path, outermost first.
func (n *Node) DataAlongPath() []any {
	out := []any{}
	var chain []*Node
	for cur := n; cur.parent != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		if !domain.IsEmpty(chain[i].data) {
			out = append(out, chain[i].data)
		}
	}
	cur := n
	for len(cur.children) > 0 {
		cur = cur.children[cur.index]
		if !domain.IsEmpty(cur.data) {
			out = append(out, cur.data)
		}
	}
	return out
}

// BlockIndex returns the position of the current leaf's parent among its siblings,
// or -1 when that parent is the root.
func (n *Node) BlockIndex() int {
	leaf := n.CurrentLeaf()
	if leaf.parent == nil || leaf.parent.parent == nil {
		return -1
	}
	return leaf.parent.parent.index
}

// BlockLength returns the number of siblings of the current leaf (itself included).
func (n *Node) BlockLength() int {
	leaf := n.CurrentLeaf()
	if leaf.parent == nil {
		return 0
	}
	return len(leaf.parent.children)
}

// Resolve returns the descendant addressed by ids, relative to this node.
func (n *Node) Resolve(ids []string) (*Node, error) {
	cur := n
	for _, id := range ids {
		if id == domain.RootID {
			continue
		}
		ch, ok := cur.ChildByID(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s (could not find child with id %q in node %q)",
				domain.ErrInvalidPath, strings.Join(ids, domain.PathSeparator), id, cur.id)
		}
		cur = ch
	}
	return cur, nil
}

// SetDataAtPath replaces the data of the descendant addressed by path.
// data must be a map or a struct (or a pointer to one).
func (n *Node) SetDataAtPath(path string, data any) error {
	if !isObject(data) {
		return fmt.Errorf("%w: data must be an object", domain.ErrInvalidArgument)
	}
	target, err := n.Resolve(SplitPath(path))
	if err != nil {
		return err
	}
	target.data = data
	return nil
}

func isObject(data any) bool {
	if data == nil {
		return false
	}
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return false
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Map:
		return !v.IsNil()
	case reflect.Struct:
		return true
	}
	return false
}

// LeafNodes returns the path strings of every leaf below this node, left to right.
func (n *Node) LeafNodes() []string {
	var leaves []string
	n.Walk(func(cur *Node) bool {
		if len(cur.children) == 0 {
			leaves = append(leaves, cur.PathString())
		}
		return true
	})
	return leaves
}

// CountLeafNodes returns len(LeafNodes()).
func (n *Node) CountLeafNodes() int {
	count := 0
	n.Walk(func(cur *Node) bool {
		if len(cur.children) == 0 {
			count++
		}
		return true
	})
	return count
}

// ExistingPaths returns the path strings of every node below this node, in traversal order.
func (n *Node) ExistingPaths() []string {
	var paths []string
	n.Walk(func(cur *Node) bool {
		if cur != n {
			paths = append(paths, cur.PathString())
		}
		return true
	})
	return paths
}

// IsFirstLeaf reports whether this node is the leftmost leaf of its tree.
func (n *Node) IsFirstLeaf() bool {
	if len(n.children) > 0 {
		return false
	}
	leftmost := n.Root()
	for len(leftmost.children) > 0 {
		leftmost = leftmost.children[0]
	}
	return leftmost == n
}
