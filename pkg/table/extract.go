package table

import (
	"fmt"

	"github.com/aretw0/stepper/pkg/domain"
)

// Head returns the data of the first n rows.
func (t *Table) Head(n int) ([]any, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: head() must be called with a positive integer", domain.ErrInvalidArgument)
	}
	return t.Slice(0, min(n, len(t.items))), nil
}

// Tail returns the data of the last n rows.
func (t *Table) Tail(n int) ([]any, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: tail() must be called with a positive integer", domain.ErrInvalidArgument)
	}
	return t.Slice(max(len(t.items)-n, 0), len(t.items)), nil
}

// Slice returns the data of rows [start, end). Negative bounds count from the end;
// out-of-range bounds are clamped.
func (t *Table) Slice(start, end int) []any {
	n := len(t.items)
	if start < 0 {
		start = max(n+start, 0)
	}
	if end < 0 {
		end = max(n+end, 0)
	}
	end = min(end, n)
	if start >= end {
		return []any{}
	}
	out := make([]any, 0, end-start)
	for _, it := range t.items[start:end] {
		out = append(out, it.data)
	}
	return out
}
