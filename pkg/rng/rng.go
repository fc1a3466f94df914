// Package rng provides seeded pseudo-random sources for shuffling and sampling.
//
// Sources are always passed explicitly. Only the outermost API boundary (the
// stepper facade and the CLI) falls back to Default.
package rng

import (
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Source wraps a deterministic generator derived from a string seed.
type Source struct {
	seed string
	r    *rand.Rand
}

// New returns a source seeded from seed. Equal seeds yield equal sequences.
func New(seed string) *Source {
	hi := xxhash.Sum64String(seed)
	lo := xxhash.Sum64String("stepper:" + seed)
	return &Source{seed: seed, r: rand.New(rand.NewPCG(hi, lo))}
}

// Seed returns the seed the source was created with.
func (s *Source) Seed() string {
	return s.seed
}

// Rand exposes the underlying generator.
func (s *Source) Rand() *rand.Rand {
	return s.r
}

// Float64 returns a value in [0, 1).
func (s *Source) Float64() float64 {
	return s.r.Float64()
}

// IntN returns a value in [0, n).
func (s *Source) IntN(n int) int {
	return s.r.IntN(n)
}

// Permutation returns a Fisher-Yates shuffled copy of [0, n).
func (s *Source) Permutation(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	Shuffle(s, idx)
	return idx
}

// Shuffle permutes xs in place with the Fisher-Yates algorithm, walking from the end.
func Shuffle[T any](s *Source, xs []T) {
	for i := len(xs) - 1; i > 0; i-- {
		j := s.IntN(i + 1)
		xs[i], xs[j] = xs[j], xs[i]
	}
}

// Weighted draws an index according to weights, which need not be normalized.
// A zero total falls back to a uniform draw.
func (s *Source) Weighted(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return s.IntN(len(weights))
	}
	x := s.Float64() * total
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		x -= w
		if x < 0 {
			return i
		}
	}
	// rounding left x at zero: take the last positive weight
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return i
		}
	}
	return len(weights) - 1
}

var (
	defaultOnce sync.Once
	defaultSrc  *Source
	defaultMu   sync.Mutex
)

// Default returns the process-level source, seeded from the clock on first use.
func Default() *Source {
	defaultOnce.Do(func() {
		defaultSrc = New(time.Now().Format(time.RFC3339Nano))
	})
	return defaultSrc
}

// Fresh derives an independent source from Default. Safe for concurrent use.
func Fresh() *Source {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	d := Default()
	return New(strconv.FormatUint(d.r.Uint64(), 36))
}

// Or returns New(seed) when seed is set, otherwise fallback (or a fresh source when nil).
func Or(seed string, fallback *Source) *Source {
	if seed != "" {
		return New(seed)
	}
	if fallback != nil {
		return fallback
	}
	return Fresh()
}
