package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pilotDesign = `
name: pilot
tables:
  - steps:
      - append: [{path: consent}, {path: instructions}, {path: debrief}]
`

func memoryApp(t *testing.T) (*App, string) {
	t.Helper()
	dir := t.TempDir()
	writeConfig(t, dir, "store:\n  kind: memory\n")
	path := filepath.Join(dir, "pilot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(pilotDesign), 0644))
	return newTestApp(t, dir), path
}

func TestWalk_Interactive(t *testing.T) {
	app, designPath := memoryApp(t)
	var out bytes.Buffer

	opts := WalkOptions{Name: "p01", Design: designPath, Plain: true}
	err := walk(context.Background(), app, opts, strings.NewReader("n\nq\n"), &out)
	require.NoError(t, err)

	got := out.String()
	assert.Contains(t, got, ">>> Applied pilot to 'p01': 1 committed, 0 skipped.")
	assert.Contains(t, got, "## consent")
	assert.Contains(t, got, "## instructions")
	assert.Contains(t, got, ">>> Stopped at 'instructions'.")
}

func TestWalk_ResumesAndFresh(t *testing.T) {
	app, designPath := memoryApp(t)
	ctx := context.Background()
	opts := WalkOptions{Name: "p01", Design: designPath, Plain: true}

	require.NoError(t, walk(ctx, app, opts, strings.NewReader("n\nq\n"), io.Discard))

	var out bytes.Buffer
	require.NoError(t, walk(ctx, app, opts, strings.NewReader("q\n"), &out))
	assert.Contains(t, out.String(), "0 committed, 1 skipped")
	assert.Contains(t, out.String(), "Stopped at 'instructions'")

	out.Reset()
	opts.Fresh = true
	require.NoError(t, walk(ctx, app, opts, strings.NewReader("q\n"), &out))
	assert.Contains(t, out.String(), "1 committed, 0 skipped")
	assert.Contains(t, out.String(), "Stopped at 'consent'")
}

func TestWalk_Headless(t *testing.T) {
	app, designPath := memoryApp(t)
	var out bytes.Buffer
	opts := WalkOptions{Name: "p01", Design: designPath, Headless: true}
	require.NoError(t, walk(context.Background(), app, opts, strings.NewReader(""), &out))
	assert.Contains(t, out.String(), "End of sequence.")
	assert.NotContains(t, out.String(), "Stopped at")
}

func TestWalk_MissingSequence(t *testing.T) {
	app, _ := memoryApp(t)
	err := walk(context.Background(), app, WalkOptions{Name: "ghost", Plain: true}, strings.NewReader(""), io.Discard)
	assert.Error(t, err)
}

func TestWalk_BadDesign(t *testing.T) {
	app, _ := memoryApp(t)
	err := walk(context.Background(), app, WalkOptions{Name: "p01", Design: "nope.yaml"}, strings.NewReader(""), io.Discard)
	assert.Error(t, err)
}

func TestWalk_Cancelled(t *testing.T) {
	app, designPath := memoryApp(t)
	require.NoError(t, ApplyDesign(app, "p01", designPath, io.Discard))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := walk(ctx, app, WalkOptions{Name: "p01", Plain: true}, strings.NewReader("n\n"), io.Discard)
	assert.True(t, isInterrupted(err), "got %v", err)
	assert.NoError(t, handleExecutionError(err))
}

func TestInterruptibleReader(t *testing.T) {
	cancel := make(chan struct{})
	r := NewInterruptibleReader(strings.NewReader("abc"), cancel)
	buf := make([]byte, 3)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	close(cancel)
	_, err = r.Read(buf)
	assert.ErrorIs(t, err, ErrInterrupted)
}

func TestHandleExecutionError(t *testing.T) {
	assert.NoError(t, handleExecutionError(nil))
	assert.NoError(t, handleExecutionError(io.EOF))
	assert.NoError(t, handleExecutionError(context.Canceled))
	boom := errors.New("boom")
	assert.ErrorIs(t, handleExecutionError(boom), boom)
}
