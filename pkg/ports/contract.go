package ports

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aretw0/stepper/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	name := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		s := domain.NewSession(name)
		s.Cursor = "block/1"
		s.Committed = 2
		s.Sequence = json.RawMessage(`{"name":"contract","transactions":["abc-001g66v8"]}`)
		s.Metadata["condition"] = "A"

		require.NoError(t, store.Save(ctx, name, s), "Save should not return error")

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, name, loaded.ID)
		assert.Equal(t, "block/1", loaded.Cursor)
		assert.Equal(t, 2, loaded.Committed)
		assert.JSONEq(t, string(s.Sequence), string(loaded.Sequence))
		assert.Equal(t, "A", loaded.Metadata["condition"])
	})

	t.Run("Loaded copy is isolated", func(t *testing.T) {
		s := domain.NewSession(name)
		s.Metadata["k"] = "v"
		require.NoError(t, store.Save(ctx, name, s))
		s.Metadata["k"] = "changed"

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, "v", loaded.Metadata["k"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+name)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, domain.NewSession(name)))

		require.NoError(t, store.Delete(ctx, name), "Delete should not return error")

		_, err := store.Load(ctx, name)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, name), "Deleting twice should not fail")
	})

	t.Run("List", func(t *testing.T) {
		id1 := name + "-1"
		id2 := name + "-2"
		require.NoError(t, store.Save(ctx, id1, domain.NewSession(id1)))
		require.NoError(t, store.Save(ctx, id2, domain.NewSession(id2)))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
