package table

import (
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/aretw0/stepper/pkg/domain"
	"github.com/aretw0/stepper/pkg/rng"
	"github.com/google/uuid"
)

// Table is a node of the row builder. The root of a structure is created with New;
// every row is a Table owned by its parent.
type Table struct {
	data     any
	items    []*Table
	parent   *Table // non-owning
	base     *Table
	id       uuid.UUID
	readOnly bool

	// root-only settings
	maxRows int
	source  *rng.Source
}

// Option configures a root Table.
type Option func(*Table)

// WithMaxRows sets the row safety limit. Non-positive values use domain.DefaultMaxRows.
func WithMaxRows(n int) Option {
	return func(t *Table) {
		t.maxRows = n
	}
}

// WithSource sets the random source used when Shuffle or Sample get no seed.
func WithSource(src *rng.Source) Option {
	return func(t *Table) {
		t.source = src
	}
}

// WithData sets the root's own data.
func WithData(data any) Option {
	return func(t *Table) {
		t.data = data
	}
}

// New creates an empty root table.
func New(opts ...Option) *Table {
	t := &Table{id: uuid.New()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Table) newRow(data any) *Table {
	return &Table{data: data, parent: t, id: uuid.New()}
}

// copyRow deep-copies src and its subtree under parent.
func copyRow(src, parent *Table) *Table {
	row := parent.newRow(domain.Clone(src.data))
	row.items = make([]*Table, len(src.items))
	for i, it := range src.items {
		row.items[i] = copyRow(it, row)
	}
	return row
}

func (t *Table) String() string {
	return fmt.Sprintf("(Table %s #rows=%d ro=%t)", t.PathString(), len(t.items), t.IsReadOnly())
}

// ID returns the identity token of this node. Copies never share it.
func (t *Table) ID() string { return t.id.String() }

// Data returns the node's own data.
func (t *Table) Data() any { return t.data }

// SetData replaces the node's own data.
func (t *Table) SetData(data any) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	t.data = data
	return nil
}

// Parent returns the owning table, or nil for a root.
func (t *Table) Parent() *Table { return t.parent }

// Root returns the top-most table.
func (t *Table) Root() *Table {
	r := t
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.items) }

// At returns the i-th row, or nil when out of range. Negative indices count from the end.
func (t *Table) At(i int) *Table {
	if i < 0 {
		i += len(t.items)
	}
	if i < 0 || i >= len(t.items) {
		return nil
	}
	return t.items[i]
}

// Rows returns a copy of the row slice. The rows themselves are shared.
func (t *Table) Rows() []*Table {
	out := make([]*Table, len(t.items))
	copy(out, t.items)
	return out
}

// RowsData returns the data of every row.
func (t *Table) RowsData() []any {
	out := make([]any, len(t.items))
	for i, it := range t.items {
		out[i] = it.data
	}
	return out
}

// All iterates over the rows with their positions.
func (t *Table) All() iter.Seq2[int, *Table] {
	return func(yield func(int, *Table) bool) {
		for i, it := range t.items {
			if !yield(i, it) {
				return
			}
		}
	}
}

// Path returns the row indices leading from the root to this node.
func (t *Table) Path() []int {
	var path []int
	for cur := t; cur.parent != nil; cur = cur.parent {
		path = append(path, cur.parent.indexOfRow(cur))
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// PathString returns Path joined with "-".
func (t *Table) PathString() string {
	return joinPath(t.Path())
}

func joinPath(path []int) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, "-")
}

func (t *Table) indexOfRow(row *Table) int {
	for i, it := range t.items {
		if it == row {
			return i
		}
	}
	return -1
}

// Base returns the table RelPath is computed against: the one set with Rebase,
// otherwise the root.
func (t *Table) Base() *Table {
	if t.base != nil {
		return t.base
	}
	return t.Root()
}

// Rebase makes RelPath relative to base, which must be t itself or one of its ancestors.
func (t *Table) Rebase(base *Table) error {
	for cur := t; cur != nil; cur = cur.parent {
		if cur == base {
			t.base = base
			return nil
		}
	}
	return fmt.Errorf("%w: base must be the table itself or one of its ancestors", domain.ErrInvalidArgument)
}

// RelPath returns the part of Path below Base.
func (t *Table) RelPath() []int {
	return t.Path()[len(t.Base().Path()):]
}

// PathData returns the non-nil data from the root down to this node.
func (t *Table) PathData() []any {
	var chain []*Table
	for cur := t; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	out := []any{}
	for i := len(chain) - 1; i >= 0; i-- {
		if chain[i].data != nil {
			out = append(out, chain[i].data)
		}
	}
	return out
}

// SubtreeData returns the non-nil data of this node and all its descendants, depth first.
func (t *Table) SubtreeData() []any {
	out := []any{}
	var walk func(*Table)
	walk = func(n *Table) {
		if n.data != nil {
			out = append(out, n.data)
		}
		for _, it := range n.items {
			walk(it)
		}
	}
	walk(t)
	return out
}

// IndexOf returns the position of the first row whose data equals v, or -1.
// Numbers compare by value, so 1 and 1.0 match.
func (t *Table) IndexOf(v any) int {
	want := canonical(v)
	for i, it := range t.items {
		if canonical(it.data) == want {
			return i
		}
	}
	return -1
}

// HasNested reports whether any row owns rows of its own.
func (t *Table) HasNested() bool {
	for _, it := range t.items {
		if len(it.items) > 0 {
			return true
		}
	}
	return false
}

// IsReadOnly reports whether this node or one of its ancestors is locked.
func (t *Table) IsReadOnly() bool {
	for cur := t; cur != nil; cur = cur.parent {
		if cur.readOnly {
			return true
		}
	}
	return false
}

// SetReadOnly locks the node and, through it, every descendant.
// Locking a node that is already locked, directly or through an ancestor, fails.
func (t *Table) SetReadOnly() (*Table, error) {
	if t.IsReadOnly() {
		return t, domain.ErrAlreadyReadOnly
	}
	t.readOnly = true
	return t, nil
}

func (t *Table) checkWritable() error {
	if t.IsReadOnly() {
		return domain.ErrReadOnly
	}
	return nil
}

func (t *Table) limit() int {
	if n := t.Root().maxRows; n > 0 {
		return n
	}
	return domain.DefaultMaxRows
}

// MaxRows returns the effective safety limit.
func (t *Table) MaxRows() int { return t.limit() }

func (t *Table) checkCapacity(op string, rows int) error {
	return domain.CheckCapacity(op, rows, t.limit())
}

func (t *Table) sourceFor(seed string) *rng.Source {
	return rng.Or(seed, t.Root().source)
}

// ForEach calls fn for every row in order. fn may modify the row through its methods;
// the first error stops the iteration and is returned.
func (t *Table) ForEach(fn func(i int, row *Table) error) (*Table, error) {
	if err := t.checkWritable(); err != nil {
		return t, err
	}
	for i, it := range t.items {
		if err := fn(i, it); err != nil {
			return t, fmt.Errorf("forEach row %d: %w", i, err)
		}
	}
	return t, nil
}

// Pop removes and returns the last row. It returns nil for an empty table.
func (t *Table) Pop() (*Table, error) {
	if err := t.checkWritable(); err != nil {
		return nil, err
	}
	if len(t.items) == 0 {
		return nil, nil
	}
	last := t.items[len(t.items)-1]
	t.items = t.items[:len(t.items)-1]
	last.parent = nil
	return last, nil
}
