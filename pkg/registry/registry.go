// Package registry names custom sampling functions so design files can refer to them.
package registry

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/aretw0/stepper/pkg/domain"
)

// SampleFunc reorders or selects row indices. It receives the indices of the
// table's rows and a seeded generator.
type SampleFunc func(indices []int, r *rand.Rand) []int

// Registry manages the available sampling functions.
type Registry struct {
	mu  sync.RWMutex
	fns map[string]SampleFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		fns: make(map[string]SampleFunc),
	}
}

// Register adds fn under name, replacing any previous one.
func (r *Registry) Register(name string, fn SampleFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fns[name] = fn
}

// Lookup returns the function registered under name.
func (r *Registry) Lookup(name string) (SampleFunc, error) {
	r.mu.RLock()
	fn, ok := r.fns[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: sampling function not found: %s", domain.ErrInvalidArgument, name)
	}
	return fn, nil
}

// Names returns the registered names in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.fns))
	for name := range r.fns {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Builtin returns a registry holding the stock functions:
//
//	reverse     rows in reverse order
//	odd-first   rows at odd positions, then even ones
//	first-half  the first half of the rows, shuffled
func Builtin() *Registry {
	r := NewRegistry()
	r.Register("reverse", func(indices []int, _ *rand.Rand) []int {
		out := slices.Clone(indices)
		slices.Reverse(out)
		return out
	})
	r.Register("odd-first", func(indices []int, _ *rand.Rand) []int {
		out := make([]int, 0, len(indices))
		for pass := 1; pass >= 0; pass-- {
			for i := pass; i < len(indices); i += 2 {
				out = append(out, indices[i])
			}
		}
		return out
	})
	r.Register("first-half", func(indices []int, rnd *rand.Rand) []int {
		out := slices.Clone(indices[:len(indices)/2])
		rnd.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		return out
	})
	return r
}
