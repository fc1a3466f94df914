package table_test

import (
	"math/rand/v2"
	"testing"

	"github.com/aretw0/stepper/pkg/domain"
	"github.com/aretw0/stepper/pkg/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func letters(t *testing.T, values ...string) *table.Table {
	t.Helper()
	tb := table.New()
	_, err := tb.Append(values)
	require.NoError(t, err)
	return tb
}

func TestSample_AlternateGroups(t *testing.T) {
	tb := letters(t, "a", "b", "c", "d", "e")
	_, err := tb.Sample(table.SampleOptions{
		Type:   table.AlternateGroups,
		Groups: [][]int{{0, 1}, {2, 3, 4}},
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "c", "b", "d", "e"}, tb.RowsData())
}

func TestSample_AlternateGroupsRandomOrder(t *testing.T) {
	tb := letters(t, "a", "b", "c", "d", "e")
	_, err := tb.Sample(table.SampleOptions{
		Type:                table.AlternateGroups,
		Groups:              [][]int{{0, 1}, {2, 3, 4}},
		RandomizeGroupOrder: true,
		Seed:                "order",
	})
	require.NoError(t, err)

	got := tb.RowsData()
	ok := assert.ObjectsAreEqual([]any{"a", "c", "b", "d", "e"}, got) ||
		assert.ObjectsAreEqual([]any{"c", "a", "d", "b", "e"}, got)
	assert.True(t, ok, "unexpected order %v", got)
}

func TestSample_AlternateGroupsInvalid(t *testing.T) {
	tb := letters(t, "a", "b", "c")
	_, err := tb.Sample(table.SampleOptions{Type: table.AlternateGroups, Groups: [][]int{{0, 1}}})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = tb.Sample(table.SampleOptions{Type: table.AlternateGroups, Groups: [][]int{{0}, {1, 7}}})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "invalid index 7 in group 1")
	assert.Equal(t, []any{"a", "b", "c"}, tb.RowsData())
}

func TestSample_WithoutReplacement(t *testing.T) {
	for _, seed := range []string{"s1", "s2", "s3", "s4"} {
		tb := letters(t, "a", "b", "c", "d", "e", "f")
		_, err := tb.Sample(table.SampleOptions{Size: 4, Seed: seed})
		require.NoError(t, err)

		seen := map[any]bool{}
		for _, d := range tb.RowsData() {
			assert.False(t, seen[d], "row %v sampled twice", d)
			seen[d] = true
		}
		assert.Equal(t, 4, tb.Len())
	}

	tb := letters(t, "a", "b")
	_, err := tb.Sample(table.SampleOptions{Type: table.WithoutReplacement, Size: 3})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = tb.Sample(table.SampleOptions{Type: table.WithoutReplacement})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestSample_WithReplacementWeights(t *testing.T) {
	tb := letters(t, "a", "b", "c")
	_, err := tb.Sample(table.SampleOptions{
		Type:    table.WithReplacement,
		Size:    20,
		Weights: []float64{1, 0, 0},
		Seed:    "w",
	})
	require.NoError(t, err)
	require.Equal(t, 20, tb.Len())
	for _, d := range tb.RowsData() {
		assert.Equal(t, "a", d)
	}

	_, err = tb.Sample(table.SampleOptions{Type: table.WithReplacement, Size: 2, Weights: []float64{1}})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = tb.Sample(table.SampleOptions{Type: table.WithReplacement})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestSample_FixedRepetitions(t *testing.T) {
	tb := table.New()
	_, _ = tb.Range(3, "id")
	_, err := tb.Sample(table.SampleOptions{Type: table.FixedRepetitions, Size: 4, Seed: "fr"})
	require.NoError(t, err)
	require.Equal(t, 12, tb.Len())

	counts := map[any]int{}
	for _, d := range tb.RowsData() {
		counts[d.(map[string]any)["id"]]++
	}
	assert.Equal(t, map[any]int{0: 4, 1: 4, 2: 4}, counts)
}

func TestSample_Custom(t *testing.T) {
	tb := letters(t, "a", "b", "c")
	_, err := tb.Sample(table.SampleOptions{
		Type: table.Custom,
		Fn: func(idx []int, _ *rand.Rand) []int {
			return []int{idx[2], idx[2], idx[0]}
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"c", "c", "a"}, tb.RowsData())

	_, err = tb.Sample(table.SampleOptions{Type: table.Custom})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = tb.Sample(table.SampleOptions{
		Type: table.Custom,
		Fn:   func([]int, *rand.Rand) []int { return []int{5} },
	})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Equal(t, []any{"c", "c", "a"}, tb.RowsData())
}

func TestSample_UnknownType(t *testing.T) {
	tb := letters(t, "a")
	_, err := tb.Sample(table.SampleOptions{Type: "stratified", Size: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestSample_EmptyTableNoop(t *testing.T) {
	tb := table.New()
	_, err := tb.Sample(table.SampleOptions{Type: "anything"})
	assert.NoError(t, err)
	assert.Equal(t, 0, tb.Len())
}

func TestSample_DeterministicBySeed(t *testing.T) {
	a := letters(t, "a", "b", "c", "d", "e", "f", "g")
	b := letters(t, "a", "b", "c", "d", "e", "f", "g")
	_, _ = a.Sample(table.SampleOptions{Size: 5, Seed: "same"})
	_, _ = b.Sample(table.SampleOptions{Size: 5, Seed: "same"})
	assert.Equal(t, a.RowsData(), b.RowsData())
}

func TestShuffle(t *testing.T) {
	a := table.New()
	_, _ = a.Range(20, "i")
	b := table.New()
	_, _ = b.Range(20, "i")

	_, err := a.Shuffle("seed")
	require.NoError(t, err)
	_, err = b.Shuffle("seed")
	require.NoError(t, err)
	assert.Equal(t, a.RowsData(), b.RowsData())

	counts := map[any]int{}
	for _, d := range a.RowsData() {
		counts[d.(map[string]any)["i"]]++
	}
	assert.Len(t, counts, 20)

	c := table.New()
	_, _ = c.Range(20, "i")
	_, _ = c.Shuffle("other")
	assert.NotEqual(t, a.RowsData(), c.RowsData())
}
