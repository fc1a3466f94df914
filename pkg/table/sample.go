package table

import (
	"fmt"
	"math/rand/v2"

	"github.com/aretw0/stepper/pkg/domain"
	"github.com/aretw0/stepper/pkg/rng"
)

// SampleType selects a Sample strategy.
type SampleType string

const (
	WithReplacement    SampleType = "with-replacement"
	WithoutReplacement SampleType = "without-replacement"
	FixedRepetitions   SampleType = "fixed-repetitions"
	AlternateGroups    SampleType = "alternate-groups"
	Custom             SampleType = "custom"
)

// SampleOptions configures Sample. Type defaults to WithoutReplacement.
type SampleOptions struct {
	Type    SampleType `mapstructure:"type" yaml:"type"`
	Size    int        `mapstructure:"size" yaml:"size"`
	Weights []float64  `mapstructure:"weights" yaml:"weights"`
	Groups  [][]int    `mapstructure:"groups" yaml:"groups"`
	// RandomizeGroupOrder shuffles the order in which AlternateGroups visits the groups.
	RandomizeGroupOrder bool `mapstructure:"randomize_group_order" yaml:"randomize_group_order"`
	// Fn maps the current row indices to the sampled ones. Required by Custom.
	Fn   func(indices []int, r *rand.Rand) []int `mapstructure:"-" yaml:"-"`
	Seed string                                  `mapstructure:"seed" yaml:"seed"`
	// Source is used when Seed is empty.
	Source *rng.Source `mapstructure:"-" yaml:"-"`
}

// Shuffle permutes the rows with Fisher-Yates. An empty seed uses the table's source.
func (t *Table) Shuffle(seed string) (*Table, error) {
	return t.ShuffleWith(t.sourceFor(seed))
}

// ShuffleWith permutes the rows using src.
func (t *Table) ShuffleWith(src *rng.Source) (*Table, error) {
	if err := t.checkWritable(); err != nil {
		return t, err
	}
	if len(t.items) <= 1 {
		return t, nil
	}
	rng.Shuffle(src, t.items)
	return t, nil
}

// Sample replaces the rows with deep copies chosen by the configured strategy.
// Options are validated and the resulting size is checked against the safety limit
// before any row changes. An empty table is left unchanged.
func (t *Table) Sample(opts SampleOptions) (*Table, error) {
	if err := t.checkWritable(); err != nil {
		return t, err
	}
	if len(t.items) == 0 {
		return t, nil
	}
	src := opts.Source
	if opts.Seed != "" || src == nil {
		src = t.sourceFor(opts.Seed)
	}

	indices, err := t.sampleIndices(opts, src)
	if err != nil {
		return t, err
	}
	if err := t.checkCapacity("sample", len(indices)); err != nil {
		return t, err
	}

	sampled := make([]*Table, len(indices))
	for i, idx := range indices {
		sampled[i] = copyRow(t.items[idx], t)
	}
	t.items = sampled
	return t, nil
}

func (t *Table) sampleIndices(opts SampleOptions, src *rng.Source) ([]int, error) {
	n := len(t.items)
	typ := opts.Type
	if typ == "" {
		typ = WithoutReplacement
	}

	switch typ {
	case WithReplacement:
		if opts.Size <= 0 {
			return nil, fmt.Errorf("%w: size is required for with-replacement sampling", domain.ErrInvalidArgument)
		}
		if err := t.checkCapacity("sample", opts.Size); err != nil {
			return nil, err
		}
		if opts.Weights != nil {
			if len(opts.Weights) != n {
				return nil, fmt.Errorf("%w: weights has %d entries but the table has %d rows",
					domain.ErrInvalidArgument, len(opts.Weights), n)
			}
			for i, w := range opts.Weights {
				if w < 0 {
					return nil, fmt.Errorf("%w: negative weight %v at %d", domain.ErrInvalidArgument, w, i)
				}
			}
		}
		out := make([]int, opts.Size)
		for i := range out {
			if opts.Weights != nil {
				out[i] = src.Weighted(opts.Weights)
			} else {
				out[i] = src.IntN(n)
			}
		}
		return out, nil

	case WithoutReplacement:
		if opts.Size <= 0 {
			return nil, fmt.Errorf("%w: size is required for without-replacement sampling", domain.ErrInvalidArgument)
		}
		if opts.Size > n {
			return nil, fmt.Errorf("%w: sample size %d cannot be larger than the number of available rows (%d)",
				domain.ErrInvalidArgument, opts.Size, n)
		}
		return src.Permutation(n)[:opts.Size], nil

	case FixedRepetitions:
		if opts.Size <= 0 {
			return nil, fmt.Errorf("%w: size is required for fixed-repetitions sampling", domain.ErrInvalidArgument)
		}
		if err := t.checkCapacity("sample", domain.MulRows(n, opts.Size)); err != nil {
			return nil, err
		}
		out := make([]int, 0, n*opts.Size)
		for i := 0; i < n; i++ {
			for j := 0; j < opts.Size; j++ {
				out = append(out, i)
			}
		}
		rng.Shuffle(src, out)
		return out, nil

	case AlternateGroups:
		if len(opts.Groups) < 2 {
			return nil, fmt.Errorf("%w: groups must contain at least two groups", domain.ErrInvalidArgument)
		}
		longest := 0
		for g, group := range opts.Groups {
			for _, idx := range group {
				if idx < 0 || idx >= n {
					return nil, fmt.Errorf("%w: invalid index %d in group %d", domain.ErrInvalidArgument, idx, g)
				}
			}
			longest = max(longest, len(group))
		}
		order := make([]int, len(opts.Groups))
		for i := range order {
			order[i] = i
		}
		if opts.RandomizeGroupOrder {
			rng.Shuffle(src, order)
		}
		var out []int
		for i := 0; i < longest; i++ {
			for _, g := range order {
				if i < len(opts.Groups[g]) {
					out = append(out, opts.Groups[g][i])
				}
			}
		}
		return out, nil

	case Custom:
		if opts.Fn == nil {
			return nil, fmt.Errorf("%w: fn is required for custom sampling", domain.ErrInvalidArgument)
		}
		current := make([]int, n)
		for i := range current {
			current[i] = i
		}
		out := opts.Fn(current, src.Rand())
		if out == nil {
			return nil, fmt.Errorf("%w: custom sampling function must return a slice", domain.ErrInvalidArgument)
		}
		for _, idx := range out {
			if idx < 0 || idx >= n {
				return nil, fmt.Errorf("%w: invalid index %d returned by custom sampling function",
					domain.ErrInvalidArgument, idx)
			}
		}
		return out, nil
	}

	return nil, fmt.Errorf("%w: invalid sampling type %q, must be one of: with-replacement, "+
		"without-replacement, fixed-repetitions, alternate-groups, custom", domain.ErrInvalidArgument, typ)
}
