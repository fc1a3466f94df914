package rng_test

import (
	"testing"

	"github.com/aretw0/stepper/pkg/rng"
	"github.com/stretchr/testify/assert"
)

func TestNew_Deterministic(t *testing.T) {
	a := rng.New("test-seed-123").Permutation(20)
	b := rng.New("test-seed-123").Permutation(20)
	assert.Equal(t, a, b)

	c := rng.New("test-seed-456").Permutation(20)
	assert.NotEqual(t, a, c)
}

func TestPermutation_IsPermutation(t *testing.T) {
	p := rng.New("perm").Permutation(50)
	seen := make(map[int]bool)
	for _, v := range p {
		assert.False(t, seen[v], "duplicate %d", v)
		seen[v] = true
	}
	assert.Len(t, seen, 50)
}

func TestWeighted_SingleNonZero(t *testing.T) {
	s := rng.New("w")
	for i := 0; i < 100; i++ {
		assert.Equal(t, 0, s.Weighted([]float64{1, 0, 0}))
		assert.Equal(t, 2, s.Weighted([]float64{0, 0, 5}))
	}
}

func TestOr(t *testing.T) {
	fallback := rng.New("fallback")
	assert.Same(t, fallback, rng.Or("", fallback))
	assert.Equal(t, "x", rng.Or("x", fallback).Seed())
	assert.NotNil(t, rng.Or("", nil))
}
