package sequencer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/stepper/pkg/domain"
	"github.com/aretw0/stepper/pkg/rng"
	"github.com/aretw0/stepper/pkg/table"
	"github.com/aretw0/stepper/pkg/tree"
)

// Block authors content directly under one node of a sequence.
// At the top level new units go just before the end sentinel, and the sentinels
// are never visited, counted or shuffled.
type Block struct {
	seq  *Sequencer
	node *tree.Node
}

// ShuffleOptions configures Block.Shuffle.
type ShuffleOptions struct {
	Seed string
	// Force reshuffles even when the node was already shuffled with Seed.
	Force bool
	// Source is used when Seed is empty.
	Source *rng.Source
}

// At returns a Block authoring under n, which must belong to this sequence.
func (s *Sequencer) At(n *tree.Node) *Block {
	return &Block{seq: s, node: n}
}

// Node returns the node the block authors under.
func (b *Block) Node() *tree.Node { return b.node }

// Child returns a Block for the content child with the given id.
func (b *Block) Child(id string) (*Block, bool) {
	if b.isTop() && domain.IsSentinel(id) {
		return nil, false
	}
	ch, ok := b.node.ChildByID(id)
	if !ok {
		return nil, false
	}
	return b.seq.At(ch), true
}

func (b *Block) isTop() bool {
	return b.node == b.seq.root
}

// Len returns the number of content children.
func (b *Block) Len() int {
	if b.isTop() {
		return b.node.Len() - 2
	}
	return b.node.Len()
}

// content returns the children that may be visited, counted or shuffled.
func (b *Block) content() []*tree.Node {
	children := b.node.Children()
	if b.isTop() {
		return children[1 : len(children)-1]
	}
	return children
}

// Append adds one unit per item. Items that are maps carrying a "path" field use
// it as their id; the others are numbered. Items whose path already exists are
// skipped.
func (b *Block) Append(items ...any) (*Block, error) {
	if err := domain.CheckCapacity("append", b.Len()+len(items), b.seq.MaxRows()); err != nil {
		return b, err
	}
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = domain.IDFromData(item, domain.KeyPath)
		if strings.Contains(ids[i], domain.PathSeparator) {
			return b, fmt.Errorf("%w: id cannot contain %q (id: %q)", domain.ErrInvalidID, domain.PathSeparator, ids[i])
		}
	}
	for i, item := range items {
		b.add(ids[i], domain.Clone(item))
	}
	return b, nil
}

// add inserts a single child, skipping duplicates. It returns nil when skipped.
func (b *Block) add(id string, data any) *tree.Node {
	if id == "" {
		id = strconv.Itoa(b.Len())
	}
	if _, exists := b.node.ChildByID(id); exists || (b.isTop() && domain.IsSentinel(id)) {
		b.seq.logger.Debug("skipping duplicate path",
			"sequence", b.seq.name, "path", joinPath(b.node.PathString(), id))
		return nil
	}
	index := -1
	if b.isTop() {
		index = -2
	}
	n, err := b.node.Insert(id, index, data)
	if err != nil {
		b.seq.logger.Debug("skipping item", "sequence", b.seq.name, "id", id, "err", err)
		return nil
	}
	return n
}

func joinPath(parent, id string) string {
	if parent == "" {
		return id
	}
	return parent + domain.PathSeparator + id
}

// Zip appends the zipped rows of cols. See table.Table.Zip.
func (b *Block) Zip(cols *table.Columns, opts table.ZipOptions) (*Block, error) {
	rows := table.New(table.WithMaxRows(b.seq.MaxRows()))
	if _, err := rows.Zip(cols, opts); err != nil {
		return b, err
	}
	if err := domain.CheckCapacity("zip", b.Len()+rows.Len(), b.seq.MaxRows()); err != nil {
		return b, err
	}
	return b.Append(rows.RowsData()...)
}

// Outer appends the Cartesian product of cols, first column varying slowest.
func (b *Block) Outer(cols *table.Columns) (*Block, error) {
	rows := table.New(table.WithMaxRows(b.seq.MaxRows()))
	if _, err := rows.Outer(cols); err != nil {
		return b, err
	}
	if err := domain.CheckCapacity("outer", b.Len()+rows.Len(), b.seq.MaxRows()); err != nil {
		return b, err
	}
	return b.Append(rows.RowsData()...)
}

// Shuffle permutes the content children with Fisher-Yates. Shuffling again with
// the same seed does nothing unless opts.Force is set; clearing the node's subtree
// forgets the previous shuffle. The cursor stays on the same child.
func (b *Block) Shuffle(opts ShuffleOptions) (*Block, error) {
	key := b.node.PathString()
	if prev, ok := b.seq.shuffles[key]; ok && b.node.Shuffled() && prev == opts.Seed && !opts.Force {
		b.seq.logger.Debug("shuffle skipped", "sequence", b.seq.name, "path", key, "seed", opts.Seed)
		return b, nil
	}

	src := opts.Source
	if opts.Seed != "" || src == nil {
		src = rng.Or(opts.Seed, b.seq.Source())
	}
	content := len(b.content())
	offset := 0
	if b.isTop() {
		offset = 1
	}
	perm := make([]int, b.node.Len())
	for i := range perm {
		perm[i] = i
	}
	rng.Shuffle(src, perm[offset:offset+content])
	if err := b.node.Reorder(perm); err != nil {
		return b, err
	}
	b.node.SetShuffled(true)
	b.seq.shuffles[key] = opts.Seed
	return b, nil
}

// ForEach calls fn for every content child, with its position among the content.
// The first error stops the iteration.
func (b *Block) ForEach(fn func(i int, n *tree.Node) error) (*Block, error) {
	for i, ch := range b.content() {
		if err := fn(i, ch); err != nil {
			return b, fmt.Errorf("forEach %s: %w", ch.PathString(), err)
		}
	}
	return b, nil
}

// ClearSubTree removes the node's children (keeping the sentinels at the top level)
// and forgets its shuffle.
func (b *Block) ClearSubTree() {
	key := b.node.PathString()
	for k := range b.seq.shuffles {
		if k == key || strings.HasPrefix(k, key+domain.PathSeparator) || key == "" {
			delete(b.seq.shuffles, k)
		}
	}
	b.node.ClearSubTree()
	if b.isTop() {
		b.seq.initSentinels()
	}
}
