package domain

import (
	"errors"
	"fmt"
	"math"
)

// ErrCapacity is the class of errors raised when a safety limit would be exceeded.
// Use errors.As with *CapacityError to read the attempted and allowed counts.
var ErrCapacity = errors.New("safety limit exceeded")

// ErrInvalidArgument is returned when an option is missing, has the wrong type or is out of range.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrDuplicateID is returned when a sibling with the same id already exists.
var ErrDuplicateID = errors.New("id already exists at this node")

// ErrInvalidID is returned when an id contains the path separator.
var ErrInvalidID = errors.New("invalid id")

// ErrInvalidPath is returned when a path cannot be resolved.
var ErrInvalidPath = errors.New("invalid path")

// ErrUnevenPartition is returned when rows cannot be split into equal groups.
var ErrUnevenPartition = errors.New("uneven partition")

// ErrReadOnly is returned when a read-only table is mutated.
var ErrReadOnly = errors.New("Table is read-only")

// ErrAlreadyReadOnly is returned when a read-only table (or a descendant of one) is locked again.
var ErrAlreadyReadOnly = errors.New("table is already read-only")

// ErrSessionNotFound is returned when a sequence name cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// CapacityError reports an operation whose result would exceed the configured limit.
type CapacityError struct {
	Op        string
	Attempted int
	Limit     int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s() would generate %d rows, which exceeds the safety limit of %d",
		e.Op, e.Attempted, e.Limit)
}

// Unwrap allows errors.Is(err, ErrCapacity).
func (e *CapacityError) Unwrap() error {
	return ErrCapacity
}

// CheckCapacity returns a *CapacityError when attempted exceeds limit.
// A non-positive limit falls back to DefaultMaxRows.
func CheckCapacity(op string, attempted, limit int) error {
	if limit <= 0 {
		limit = DefaultMaxRows
	}
	if attempted > limit {
		return &CapacityError{Op: op, Attempted: attempted, Limit: limit}
	}
	return nil
}

// MulRows multiplies two non-negative row counts, saturating at math.MaxInt
// instead of wrapping, so the product can be passed to CheckCapacity.
func MulRows(a, b int) int {
	if a <= 0 || b <= 0 {
		return 0
	}
	if a > math.MaxInt/b {
		return math.MaxInt
	}
	return a * b
}
