package records

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/louisbranch/storefront/internal/services/storefront/storage/memory"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type note struct {
	Meta
	Text string `json:"text"`
}

func (n *note) Validate() error {
	if n.ID == "" {
		return errors.New("id is required")
	}
	if n.Text == "" {
		return errors.New("text is required")
	}
	return nil
}

func newNotes(t *testing.T, store *memory.Store, logger *zap.Logger) *Collection[note, *note] {
	t.Helper()
	seq := 0
	return NewCollection[note, *note](store, "storefront_notes_"+t.Name(), Options{
		Logger: logger,
		Clock:  func() time.Time { return time.Date(2026, time.April, 1, 9, 0, 0, 0, time.UTC) },
		NewID: func() (string, error) {
			seq++
			return fmt.Sprintf("id-%d", seq), nil
		},
	})
}

func TestCollectionAllMissingIsEmpty(t *testing.T) {
	t.Parallel()

	notes := newNotes(t, memory.New(), nil)
	items, err := notes.All(context.Background())
	require.NoError(t, err)
	require.NotNil(t, items)
	require.Empty(t, items)
}

func TestCollectionAddThenRemove(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	notes := newNotes(t, memory.New(), nil)

	added, err := notes.Add(ctx, note{Meta: Meta{ID: "caller-chosen"}, Text: "hello"})
	require.NoError(t, err)
	require.Equal(t, "id-1", added.ID)
	require.Equal(t, time.Date(2026, time.April, 1, 9, 0, 0, 0, time.UTC), added.CreatedAt)

	_, err = notes.Add(ctx, note{Text: "second"})
	require.NoError(t, err)

	items, err := notes.All(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "hello", items[0].Text)

	removed, err := notes.Remove(ctx, "id-1")
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = notes.Remove(ctx, "id-1")
	require.NoError(t, err)
	require.False(t, removed)

	items, err = notes.All(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "id-2", items[0].ID)
}

func TestCollectionAddRejectsInvalidRecord(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	notes := newNotes(t, memory.New(), nil)
	_, err := notes.Add(ctx, note{})
	require.Error(t, err)

	items, err := notes.All(ctx)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestCollectionUpdate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	notes := newNotes(t, memory.New(), nil)
	added, err := notes.Add(ctx, note{Text: "draft"})
	require.NoError(t, err)

	updated, found, err := notes.Update(ctx, added.ID, func(n *note) error {
		n.Text = "final"
		n.ID = "hijacked"
		return nil
	})
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "final", updated.Text)
	require.Equal(t, added.ID, updated.ID, "identity is preserved")

	_, found, err = notes.Update(ctx, "missing", func(*note) error { return nil })
	require.NoError(t, err)
	require.False(t, found)

	patchErr := errors.New("rejected")
	_, found, err = notes.Update(ctx, added.ID, func(n *note) error {
		n.Text = "ignored"
		return patchErr
	})
	require.ErrorIs(t, err, patchErr)
	require.True(t, found)

	got, found, err := notes.Get(ctx, added.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "final", got.Text)
}

func TestCollectionCorruptDataReadsEmptyAndWarns(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	core, logs := observer.New(zap.WarnLevel)
	store := memory.New()
	notes := newNotes(t, store, zap.New(core))

	require.NoError(t, store.PutCollection(ctx, notes.Key(), []byte(`{not json`)))
	items, err := notes.All(ctx)
	require.NoError(t, err)
	require.Empty(t, items)

	require.NoError(t, store.PutCollection(ctx, notes.Key(), []byte(`[{"id":"x","text":""}]`)))
	items, err = notes.All(ctx)
	require.NoError(t, err)
	require.Empty(t, items)

	require.Equal(t, 1, logs.FilterMessage("discarding corrupt collection").Len())
	require.Equal(t, 1, logs.FilterMessage("discarding invalid collection").Len())
}

func TestCollectionClear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	notes := newNotes(t, memory.New(), nil)
	_, err := notes.Add(ctx, note{Text: "gone soon"})
	require.NoError(t, err)
	require.NoError(t, notes.Clear(ctx))

	items, err := notes.All(ctx)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestCollectionPropagatesStoreFailure(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	notes := newNotes(t, memory.New(), nil)
	_, err := notes.All(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
