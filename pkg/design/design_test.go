package design_test

import (
	"context"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/stepper/pkg/design"
	"github.com/aretw0/stepper/pkg/domain"
	"github.com/aretw0/stepper/pkg/registry"
	"github.com/aretw0/stepper/pkg/sequencer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stroop = `
name: stroop
seed: pilot
tables:
  - name: intro
    steps:
      - append: [{path: consent}, {path: instructions}]
  - name: trials
    schema: {color: string, word: string}
    steps:
      - outer: {color: [red, green], word: [RED, GREEN]}
      - repeat: 2
      - shuffle: s1
      - partition: 2
      - each:
          - sample: {type: without-replacement, size: 2}
`

func parse(t *testing.T, doc string) *design.Design {
	t.Helper()
	d, err := design.ParseBytes([]byte(doc))
	require.NoError(t, err)
	return d
}

func TestApply_Stroop(t *testing.T) {
	d := parse(t, stroop)
	assert.Equal(t, "stroop", d.Name)
	require.Len(t, d.Tables, 2)

	seq := sequencer.New()
	ctx := context.Background()
	results, err := d.Apply(ctx, seq)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.False(t, results[0].Skipped)
	assert.Equal(t, 2, results[0].Added)
	assert.Equal(t, 2+4, results[1].Added)

	assert.Equal(t, []string{
		"SOS", "consent", "instructions",
		"2/0", "2/1", "3/0", "3/1",
		"EOS",
	}, seq.Tree().LeafNodes())

	require.NoError(t, seq.GoTo(ctx, "3/1"))
	step := seq.Current()
	merged := step.Merged()
	assert.Equal(t, 1, merged["partition"])
	assert.Contains(t, []any{"red", "green"}, merged["color"])

	again, err := d.Apply(ctx, seq)
	require.NoError(t, err)
	for _, r := range again {
		assert.True(t, r.Skipped, "a seeded design builds identical tables")
		assert.Equal(t, sequencer.ReasonDuplicate, r.Reason)
	}
	assert.Len(t, seq.TransactionLog(), 2)
}

func TestBuild_Steps(t *testing.T) {
	d := parse(t, `
seed: x
tables:
  - name: ranged
    steps:
      - range: {n: 3, field: trial}
  - name: zipped
    steps:
      - zip:
          columns: {a: [1, 2, 3], b: [x]}
          method: pad
          pad_value: none
  - name: interleaved
    steps:
      - append: [{k: 1}, {k: 2}]
      - interleave: {fixation: true}
  - name: reversed
    steps:
      - range: 4
      - sample: {fn: reverse}
  - name: grouped
    steps:
      - append: [a, b, c, d, e]
      - sample: {type: alternate-groups, groups: [[0, 1], [2, 3, 4]]}
  - name: weighted
    steps:
      - append: [a, b]
      - sample: {type: with-replacement, size: 4, weights: [0, 1]}
`)
	b := d.NewBuilder()
	tables, err := b.Tables(d)
	require.NoError(t, err)
	require.Len(t, tables, 6)

	assert.Equal(t, []any{
		map[string]any{"trial": 0}, map[string]any{"trial": 1}, map[string]any{"trial": 2},
	}, tables[0].RowsData())

	assert.Equal(t, []any{
		map[string]any{"a": 1, "b": "x"},
		map[string]any{"a": 2, "b": "none"},
		map[string]any{"a": 3, "b": "none"},
	}, tables[1].RowsData())

	assert.Equal(t, []any{
		map[string]any{"k": 1}, map[string]any{"fixation": true}, map[string]any{"k": 2},
	}, tables[2].RowsData())

	assert.Equal(t, []any{
		map[string]any{"range": 3}, map[string]any{"range": 2},
		map[string]any{"range": 1}, map[string]any{"range": 0},
	}, tables[3].RowsData())

	assert.Equal(t, []any{"a", "c", "b", "d", "e"}, tables[4].RowsData())
	assert.Equal(t, []any{"b", "b", "b", "b"}, tables[5].RowsData())
}

func TestBuild_SchemaChecksLeavesOfGroups(t *testing.T) {
	d := parse(t, "tables:\n  - name: t\n    schema: {word: string}\n    steps:\n      - append: [{word: a}, {word: b}, {word: c}, {word: d}]\n      - partition: 2\n")
	tables, err := d.NewBuilder().Tables(d)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, 2, tables[0].Len())
}

func TestBuild_CustomRegistry(t *testing.T) {
	d := parse(t, "tables:\n  - steps:\n      - append: [a, b, c]\n      - sample: {fn: last}\n")
	r := registry.NewRegistry()
	r.Register("last", func(indices []int, _ *rand.Rand) []int { return indices[len(indices)-1:] })

	tables, err := d.NewBuilder(design.WithRegistry(r)).Tables(d)
	require.NoError(t, err)
	assert.Equal(t, []any{"c"}, tables[0].RowsData())

	_, err = d.NewBuilder(design.WithRegistry(registry.NewRegistry())).Tables(d)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		is   error
		msg  string
	}{
		{
			name: "schema violation",
			doc:  "tables:\n  - name: t\n    schema: {word: string}\n    steps:\n      - append: [{word: 1}]\n",
			is:   domain.ErrInvalidArgument,
			msg:  `table t: row 0: field "word"`,
		},
		{
			name: "nested schema violation",
			doc:  "tables:\n  - name: t\n    schema: {word: string}\n    steps:\n      - append: [{word: a}, {word: b}, {word: c}, {word: 4}]\n      - partition: 2\n",
			is:   domain.ErrInvalidArgument,
			msg:  `table t: row 1-1: field "word"`,
		},
		{
			name: "bad repeat",
			doc:  "tables:\n  - steps:\n      - repeat: many\n",
			is:   domain.ErrInvalidArgument,
			msg:  "line 3: repeat",
		},
		{
			name: "unknown sample option",
			doc:  "tables:\n  - steps:\n      - append: [a]\n      - sample: {size: 1, colour: red}\n",
			is:   domain.ErrInvalidArgument,
		},
		{
			name: "zip without columns",
			doc:  "tables:\n  - steps:\n      - zip: {method: loop}\n",
			is:   domain.ErrInvalidArgument,
		},
		{
			name: "uneven partition",
			doc:  "tables:\n  - steps:\n      - range: 3\n      - partition: 2\n",
			is:   domain.ErrUnevenPartition,
		},
		{
			name: "safety limit",
			doc:  "max_rows: 5\ntables:\n  - steps:\n      - range: 6\n",
			is:   domain.ErrCapacity,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := parse(t, tt.doc)
			_, err := d.NewBuilder().Tables(d)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.is)
			if tt.msg != "" {
				assert.Contains(t, err.Error(), tt.msg)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown step":    "tables:\n  - steps:\n      - explode: 1\n",
		"two ops in step": "tables:\n  - steps:\n      - {range: 1, repeat: 2}\n",
		"unknown field":   "tabels: []\n",
		"bad schema":      "tables:\n  - schema: {a: text}\n",
		"empty":           "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := design.ParseBytes([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestApply_CommitFailureStops(t *testing.T) {
	d := parse(t, "tables:\n  - steps:\n      - append: [{path: a/b}]\n  - steps:\n      - append: [c]\n")
	seq := sequencer.New()
	results, err := d.Apply(context.Background(), seq)
	assert.ErrorIs(t, err, domain.ErrInvalidID)
	assert.Empty(t, results)
	assert.Equal(t, 0, seq.ContentLen())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Replace(stroop, "name: stroop\n", "", 1)), 0644))

	d, err := design.Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, d.Name, "the file name names an unnamed design")

	_, err = design.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
