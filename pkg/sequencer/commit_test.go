package sequencer_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/stepper/pkg/domain"
	"github.com/aretw0/stepper/pkg/sequencer"
	"github.com/aretw0/stepper/pkg/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trials(t *testing.T, words ...string) *table.Table {
	t.Helper()
	tb := table.New()
	_, err := tb.Zip(table.NewColumns().Set("word", words), table.ZipOptions{})
	require.NoError(t, err)
	return tb
}

func TestCommit_Idempotent(t *testing.T) {
	ctx := context.Background()
	seq := sequencer.New()

	first, err := seq.Commit(ctx, trials(t, "red", "green", "blue"))
	require.NoError(t, err)
	assert.False(t, first.Skipped)
	assert.Equal(t, 3, first.Added)

	// same structure built again, e.g. after a reload
	second, err := seq.Commit(ctx, trials(t, "red", "green", "blue"))
	require.NoError(t, err)
	assert.True(t, second.Skipped)
	assert.Equal(t, sequencer.ReasonDuplicate, second.Reason)

	assert.Len(t, seq.TransactionLog(), 1)
	assert.Equal(t, 3, seq.ContentLen())

	// same shape, different values
	third, err := seq.Commit(ctx, trials(t, "red", "green", "black"))
	require.NoError(t, err)
	assert.False(t, third.Skipped)
	assert.Len(t, seq.TransactionLog(), 2)
	assert.Equal(t, 6, seq.ContentLen())
}

func TestCommit_SameTableTwice(t *testing.T) {
	ctx := context.Background()
	seq := sequencer.New()
	tb := trials(t, "a", "b")

	_, err := seq.Commit(ctx, tb)
	require.NoError(t, err)
	assert.True(t, tb.IsReadOnly())

	res, err := seq.AddSpec(ctx, tb)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Len(t, seq.TransactionLog(), 1)
	assert.Equal(t, 2, seq.ContentLen())
}

func TestCommit_TransactionFormat(t *testing.T) {
	ctx := context.Background()
	seq := sequencer.New()
	tb := trials(t, "a")
	hash := tb.Hash()

	res, err := seq.Commit(ctx, tb)
	require.NoError(t, err)
	assert.Equal(t, hash+"-001g66v8", res.Transaction)

	res, err = seq.Commit(ctx, trials(t, "b"))
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f]{16}-0016bbv7$`, res.Transaction)
}

func TestCommit_SkipsKeepTransactionSequence(t *testing.T) {
	ctx := context.Background()
	seq := sequencer.New()

	_, err := seq.Commit(ctx, trials(t, "a"))
	require.NoError(t, err)
	for _, tb := range []*table.Table{trials(t, "a"), table.New()} {
		res, err := seq.Commit(ctx, tb)
		require.NoError(t, err)
		require.True(t, res.Skipped)
	}
	bad := table.New()
	_, err = bad.Append(map[string]any{"path": "x/y"})
	require.NoError(t, err)
	_, err = seq.Commit(ctx, bad)
	require.ErrorIs(t, err, domain.ErrInvalidID)

	res, err := seq.Commit(ctx, trials(t, "b"))
	require.NoError(t, err)
	assert.Regexp(t, `-0016bbv7$`, res.Transaction, "skipped and failed commits draw no suffix")
}

func TestStage_LeavesTableWritable(t *testing.T) {
	ctx := context.Background()
	seq := sequencer.New()
	tb := trials(t, "a", "b")

	res, err := seq.Stage(ctx, tb)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Added)
	assert.False(t, tb.IsReadOnly())

	again, err := seq.Stage(ctx, tb)
	require.NoError(t, err)
	assert.True(t, again.Skipped)
	assert.Len(t, seq.TransactionLog(), 1)
}

func TestCommit_ReadOnlyTable(t *testing.T) {
	tb := trials(t, "a")
	_, err := tb.SetReadOnly()
	require.NoError(t, err)

	seq := sequencer.New()
	_, err = seq.Commit(context.Background(), tb)
	assert.ErrorIs(t, err, domain.ErrReadOnly)
	assert.Empty(t, seq.TransactionLog())
	assert.Equal(t, 0, seq.ContentLen())
}

func TestCommit_EmptyTable(t *testing.T) {
	seq := sequencer.New()
	res, err := seq.Commit(context.Background(), table.New())
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, sequencer.ReasonEmpty, res.Reason)
	assert.Empty(t, seq.TransactionLog())
}

func TestCommit_NestedAndNamedRows(t *testing.T) {
	ctx := context.Background()
	seq := sequencer.New()
	_, _ = seq.Append(map[string]any{"path": "consent"})

	tb := table.New()
	_, err := tb.Append([]any{
		map[string]any{"path": "instructions"},
		map[string]any{"page": "task"},
	})
	require.NoError(t, err)
	_, err = tb.At(1).Range(2, "trial")
	require.NoError(t, err)

	res, err := seq.Commit(ctx, tb)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Added)
	assert.Equal(t, []string{"SOS", "consent", "instructions", "task/0", "task/1", "EOS"}, seq.Tree().LeafNodes())

	require.NoError(t, seq.GoTo(ctx, "task/1"))
	step := seq.Current()
	assert.Equal(t, []any{map[string]any{"page": "task"}, map[string]any{"trial": 1}}, step.Data)
	assert.Equal(t, map[string]any{"page": "task", "trial": 1}, step.Merged())
	assert.Equal(t, 1, step.Index)
	assert.Equal(t, 3, step.BlockIndex)
	assert.Equal(t, 2, step.BlockLength)
}

func TestCommit_NumbersAfterExistingContent(t *testing.T) {
	ctx := context.Background()
	seq := sequencer.New()
	_, err := seq.Commit(ctx, trials(t, "a", "b"))
	require.NoError(t, err)
	_, err = seq.Commit(ctx, trials(t, "c"))
	require.NoError(t, err)
	assert.Equal(t, []string{"SOS", "0", "1", "2", "EOS"}, seq.Tree().LeafNodes())
}

func TestCommit_RowsAreCopied(t *testing.T) {
	seq := sequencer.New()
	tb := trials(t, "a")
	_, err := seq.Commit(context.Background(), tb)
	require.NoError(t, err)

	tb.At(0).Data().(map[string]any)["word"] = "changed"
	assert.Equal(t, []any{map[string]any{"word": "a"}}, seq.Current().Data)
}

func TestCommit_MovesCursorOnFirstContent(t *testing.T) {
	seq := sequencer.New()
	require.True(t, seq.AtEnd())
	_, err := seq.Commit(context.Background(), trials(t, "a", "b"))
	require.NoError(t, err)
	assert.Equal(t, "0", seq.Current().PathString)

	// later commits leave the cursor alone
	seq.Next(context.Background())
	_, err = seq.Commit(context.Background(), trials(t, "c"))
	require.NoError(t, err)
	assert.Equal(t, "1", seq.Current().PathString)
}

func TestCommit_SafetyLimit(t *testing.T) {
	seq := sequencer.New(sequencer.WithMaxRows(3))
	_, err := seq.Commit(context.Background(), trials(t, "a", "b"))
	require.NoError(t, err)

	tb := trials(t, "c", "d")
	_, err = seq.Commit(context.Background(), tb)
	assert.ErrorIs(t, err, domain.ErrCapacity)
	assert.Equal(t, 2, seq.ContentLen())
	assert.Len(t, seq.TransactionLog(), 1)
	assert.False(t, tb.IsReadOnly())
}

func TestSnapshot_RoundTrip(t *testing.T) {
	ctx := context.Background()
	seq := sequencer.New(sequencer.WithName("round"))
	_, err := seq.Commit(ctx, trials(t, "a", "b", "c"))
	require.NoError(t, err)
	_, err = seq.Shuffle(sequencer.ShuffleOptions{Seed: "s"})
	require.NoError(t, err)
	seq.Next(ctx)
	before := seq.Current()

	raw, err := json.Marshal(seq)
	require.NoError(t, err)

	restored := sequencer.New()
	require.NoError(t, restored.LoadFromJSON(raw))
	assert.Equal(t, seq.Tree().LeafNodes(), restored.Tree().LeafNodes())
	assert.Equal(t, before.PathString, restored.Current().PathString)
	assert.Equal(t, seq.TransactionLog(), restored.TransactionLog())
	assert.Equal(t, "round", restored.Name())
	assert.True(t, restored.Tree().Shuffled())

	// the restored log still recognises the committed table
	res, err := restored.Commit(ctx, trials(t, "a", "b", "c"))
	require.NoError(t, err)
	assert.True(t, res.Skipped)

	// and the generator continues where it left off
	res, err = restored.Commit(ctx, trials(t, "z"))
	require.NoError(t, err)
	assert.Regexp(t, `-012kws2e$`, res.Transaction)

	// shuffle memory survives too
	order := restored.Tree().LeafNodes()
	_, err = restored.Shuffle(sequencer.ShuffleOptions{Seed: "s"})
	require.NoError(t, err)
	assert.Equal(t, order, restored.Tree().LeafNodes())
}

func TestRestore_RequiresSentinels(t *testing.T) {
	seq := sequencer.New()
	err := seq.LoadFromJSON([]byte(`{"tree":{"id":"/","index":0,"depth":0,"shuffled":false,"children":[{"id":"a","children":[]}]},"transactions":[]}`))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.True(t, seq.AtEnd())
}
