package tree

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/stepper/pkg/domain"
)

// Snapshot is the serializable form of a node and its subtree.
// Parent links are not stored; they are re-established on Restore.
type Snapshot struct {
	ID       string     `json:"id"`
	Index    int        `json:"index"`
	Depth    int        `json:"depth"`
	Shuffled bool       `json:"shuffled"`
	Data     any        `json:"data,omitempty"`
	Children []Snapshot `json:"children"`
}

// Snapshot captures the subtree. Data values that cannot be encoded are dropped.
func (n *Node) Snapshot() Snapshot {
	s := Snapshot{
		ID:       n.id,
		Index:    n.index,
		Depth:    n.depth,
		Shuffled: n.shuffled,
		Children: make([]Snapshot, len(n.children)),
	}
	if data, ok := domain.Sanitize(n.data); ok {
		s.Data = data
	}
	for i, ch := range n.children {
		s.Children[i] = ch.Snapshot()
	}
	return s
}

// Restore replaces this node's id, cursor, data and subtree with the snapshot.
// The node keeps its position in its own parent.
func (n *Node) Restore(s Snapshot) error {
	if err := validate(s); err != nil {
		return fmt.Errorf("failed to restore tree: %w", err)
	}
	n.ClearSubTree()
	n.load(s)
	return nil
}

func (n *Node) load(s Snapshot) {
	n.id = s.ID
	n.index = s.Index
	n.shuffled = s.Shuffled
	n.data = s.Data
	if n.parent == nil {
		n.depth = s.Depth
	}
	n.children = make([]*Node, 0, len(s.Children))
	for _, cs := range s.Children {
		ch := &Node{parent: n, depth: n.depth + 1}
		ch.load(cs)
		n.children = append(n.children, ch)
	}
}

func validate(s Snapshot) error {
	if s.ID == "" {
		return fmt.Errorf("%w: missing id", domain.ErrInvalidArgument)
	}
	if len(s.Children) == 0 && s.Index != 0 {
		return fmt.Errorf("%w: index %d on node %q without children", domain.ErrInvalidArgument, s.Index, s.ID)
	}
	if len(s.Children) > 0 && (s.Index < 0 || s.Index >= len(s.Children)) {
		return fmt.Errorf("%w: index %d out of range on node %q", domain.ErrInvalidArgument, s.Index, s.ID)
	}
	seen := make(map[string]bool, len(s.Children))
	for _, cs := range s.Children {
		if seen[cs.ID] {
			return fmt.Errorf("%w (id: %q)", domain.ErrDuplicateID, cs.ID)
		}
		seen[cs.ID] = true
		if err := validate(cs); err != nil {
			return err
		}
	}
	return nil
}

// FromSnapshot builds a new root node from a snapshot.
func FromSnapshot(s Snapshot) (*Node, error) {
	n := New(s.ID)
	if err := n.Restore(s); err != nil {
		return nil, err
	}
	return n, nil
}

// MarshalJSON encodes the subtree as a Snapshot.
func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.Snapshot())
}

// LoadFromJSON restores the subtree from data produced by MarshalJSON.
func (n *Node) LoadFromJSON(data []byte) error {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to unmarshal tree: %w", err)
	}
	return n.Restore(s)
}
