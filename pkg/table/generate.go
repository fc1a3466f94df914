package table

import (
	"fmt"
	"reflect"

	"github.com/aretw0/stepper/pkg/domain"
)

// ZipMethod selects how Zip handles columns of unequal length.
type ZipMethod string

const (
	// ZipLoop reuses a short column cyclically.
	ZipLoop ZipMethod = "loop"
	// ZipPad fills a short column with ZipOptions.PadValue.
	ZipPad ZipMethod = "pad"
	// ZipLast repeats the final element of a short column.
	ZipLast ZipMethod = "last"
)

// ZipOptions configures Zip. The zero value requires equal column lengths.
type ZipOptions struct {
	Method   ZipMethod `mapstructure:"method" yaml:"method"`
	PadValue any       `mapstructure:"pad_value" yaml:"pad_value"`
	// HasPad marks PadValue as set, so that nil is a valid pad value.
	HasPad bool `mapstructure:"has_pad" yaml:"has_pad"`
}

// Append adds rows. v may be a single value, a slice (one row per element) or
// another *Table, whose rows and nested rows are deep-copied.
func (t *Table) Append(v any) (*Table, error) {
	if err := t.checkWritable(); err != nil {
		return t, err
	}
	if src, ok := v.(*Table); ok {
		if src == nil {
			return t, fmt.Errorf("%w: append() got a nil table", domain.ErrInvalidArgument)
		}
		if err := t.checkCapacity("append", len(t.items)+len(src.items)); err != nil {
			return t, err
		}
		rows := make([]*Table, len(src.items))
		for i, it := range src.items {
			rows[i] = copyRow(it, t)
		}
		t.items = append(t.items, rows...)
		return t, nil
	}

	values, ok := asSlice(v)
	if !ok {
		values = []any{v}
	}
	if err := t.checkCapacity("append", len(t.items)+len(values)); err != nil {
		return t, err
	}
	for _, val := range values {
		t.items = append(t.items, t.newRow(domain.Clone(val)))
	}
	return t, nil
}

// Range replaces the rows with n rows {field: i} for i in [0, n).
// An empty field name defaults to "range".
func (t *Table) Range(n int, field string) (*Table, error) {
	if err := t.checkWritable(); err != nil {
		return t, err
	}
	if n <= 0 {
		return t, fmt.Errorf("%w: range() must be called with a positive integer", domain.ErrInvalidArgument)
	}
	if err := t.checkCapacity("range", n); err != nil {
		return t, err
	}
	if field == "" {
		field = "range"
	}
	t.items = make([]*Table, 0, n)
	for i := 0; i < n; i++ {
		t.items = append(t.items, t.newRow(map[string]any{field: i}))
	}
	return t, nil
}

// Repeat appends n-1 deep copies of the current rows, nested rows included.
// n <= 0 and empty tables are left unchanged.
func (t *Table) Repeat(n int) (*Table, error) {
	if err := t.checkWritable(); err != nil {
		return t, err
	}
	if n <= 0 || len(t.items) == 0 {
		return t, nil
	}
	if err := t.checkCapacity("repeat", domain.MulRows(len(t.items), n)); err != nil {
		return t, err
	}
	original := t.Rows()
	for i := 1; i < n; i++ {
		for _, it := range original {
			t.items = append(t.items, copyRow(it, t))
		}
	}
	return t, nil
}

// Zip appends one row per position across the columns: row i holds the i-th value
// of every column. Unequal lengths fail unless opts.Method says how to extend the
// shorter columns.
func (t *Table) Zip(cols *Columns, opts ZipOptions) (*Table, error) {
	if err := t.checkWritable(); err != nil {
		return t, err
	}
	if cols.Len() == 0 {
		return t, fmt.Errorf("%w: zip() requires at least one column", domain.ErrInvalidArgument)
	}
	columns := cols.expand()
	maxLen := 0
	for _, c := range columns {
		maxLen = max(maxLen, len(c.values))
	}
	if err := t.checkCapacity("zip", len(t.items)+maxLen); err != nil {
		return t, err
	}

	for i, c := range columns {
		if len(c.values) == maxLen {
			continue
		}
		if len(c.values) == 0 && opts.Method != ZipPad {
			return t, fmt.Errorf("%w: column %q is empty", domain.ErrInvalidArgument, c.key)
		}
		switch opts.Method {
		case "":
			return t, fmt.Errorf("%w: all columns must have the same length when using zip(); "+
				"specify a method (loop, pad, last) to handle different lengths", domain.ErrInvalidArgument)
		case ZipLoop:
			columns[i].values = extend(c.values, maxLen, func(j int) any { return c.values[j%len(c.values)] })
		case ZipPad:
			if !opts.HasPad {
				return t, fmt.Errorf("%w: a pad value is required when using the pad method", domain.ErrInvalidArgument)
			}
			columns[i].values = extend(c.values, maxLen, func(int) any { return opts.PadValue })
		case ZipLast:
			last := c.values[len(c.values)-1]
			columns[i].values = extend(c.values, maxLen, func(int) any { return last })
		default:
			return t, fmt.Errorf("%w: invalid method %q, must be one of: loop, pad, last",
				domain.ErrInvalidArgument, opts.Method)
		}
	}

	for i := 0; i < maxLen; i++ {
		row := make(map[string]any, len(columns))
		for _, c := range columns {
			row[c.key] = domain.Clone(c.values[i])
		}
		t.items = append(t.items, t.newRow(row))
	}
	return t, nil
}

func extend(values []any, n int, fill func(j int) any) []any {
	out := make([]any, n)
	copy(out, values)
	for j := len(values); j < n; j++ {
		out[j] = fill(j)
	}
	return out
}

// Outer appends the Cartesian product of the columns. The first declared column
// varies slowest.
func (t *Table) Outer(cols *Columns) (*Table, error) {
	if err := t.checkWritable(); err != nil {
		return t, err
	}
	if cols.Len() == 0 {
		return t, fmt.Errorf("%w: outer() requires at least one column", domain.ErrInvalidArgument)
	}
	columns := cols.expand()
	total := 1
	for _, c := range columns {
		if len(c.values) == 0 {
			total = 0
			break
		}
	}
	for _, c := range columns {
		if total == 0 || total > t.limit() {
			break
		}
		total = domain.MulRows(total, len(c.values))
	}
	if err := t.checkCapacity("outer", total); err != nil {
		return t, err
	}
	if err := t.checkCapacity("outer", len(t.items)+total); err != nil {
		return t, err
	}

	combo := make([]int, len(columns))
	for n := 0; n < total; n++ {
		row := make(map[string]any, len(columns))
		for i, c := range columns {
			row[c.key] = domain.Clone(c.values[combo[i]])
		}
		t.items = append(t.items, t.newRow(row))
		// odometer: the last column turns fastest
		for i := len(columns) - 1; i >= 0; i-- {
			combo[i]++
			if combo[i] < len(columns[i].values) {
				break
			}
			combo[i] = 0
		}
	}
	return t, nil
}

// Interleave merges input into the rows, alternating one existing row and one new
// row until the shorter side runs out. input may be a slice, a *Table (deep-copied)
// or a single map or struct.
func (t *Table) Interleave(input any) (*Table, error) {
	if err := t.checkWritable(); err != nil {
		return t, err
	}
	var incoming []*Table
	switch in := input.(type) {
	case *Table:
		if in == nil {
			return t, fmt.Errorf("%w: interleave() got a nil table", domain.ErrInvalidArgument)
		}
		for _, it := range in.items {
			incoming = append(incoming, copyRow(it, t))
		}
	default:
		if values, ok := asSlice(input); ok {
			for _, v := range values {
				incoming = append(incoming, t.newRow(domain.Clone(v)))
			}
		} else if isObject(input) {
			incoming = []*Table{t.newRow(domain.Clone(input))}
		} else {
			return t, fmt.Errorf("%w: interleave() requires a slice, table, or object as input", domain.ErrInvalidArgument)
		}
	}
	if err := t.checkCapacity("interleave", len(t.items)+len(incoming)); err != nil {
		return t, err
	}

	merged := make([]*Table, 0, len(t.items)+len(incoming))
	for i := 0; i < max(len(t.items), len(incoming)); i++ {
		if i < len(t.items) {
			merged = append(merged, t.items[i])
		}
		if i < len(incoming) {
			merged = append(merged, incoming[i])
		}
	}
	t.items = merged
	return t, nil
}

func isObject(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	return rv.Kind() == reflect.Map || rv.Kind() == reflect.Struct
}

// Partition splits the rows into n equal contiguous groups. The table ends up
// with n rows {partition: i}, each owning one group. n == 1 and empty tables are
// left unchanged.
func (t *Table) Partition(n int) (*Table, error) {
	if err := t.checkWritable(); err != nil {
		return t, err
	}
	if n <= 0 {
		return t, fmt.Errorf("%w: partition() must be called with a positive integer", domain.ErrInvalidArgument)
	}
	if len(t.items) == 0 || n == 1 {
		return t, nil
	}
	if len(t.items)%n != 0 {
		return t, fmt.Errorf("%w: table size (%d) is not divisible by %d", domain.ErrUnevenPartition, len(t.items), n)
	}

	per := len(t.items) / n
	original := t.items
	t.items = make([]*Table, 0, n)
	for i := 0; i < n; i++ {
		group := t.newRow(map[string]any{"partition": i})
		group.items = make([]*Table, 0, per)
		for _, it := range original[i*per : (i+1)*per] {
			it.parent = group
			group.items = append(group.items, it)
		}
		t.items = append(t.items, group)
	}
	return t, nil
}
