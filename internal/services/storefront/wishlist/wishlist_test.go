package wishlist

import (
	"context"
	"testing"

	"github.com/louisbranch/storefront/internal/platform/errors"
	"github.com/louisbranch/storefront/internal/services/storefront/records"
	"github.com/louisbranch/storefront/internal/services/storefront/storage/memory"
	"github.com/stretchr/testify/require"
)

func TestWishlistAddIsIdempotentPerProduct(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := NewService(memory.New(), records.Options{})
	list, err := svc.For("cust-1")
	require.NoError(t, err)

	first, err := list.Add(ctx, "shiro-miso")
	require.NoError(t, err)
	again, err := list.Add(ctx, "shiro-miso")
	require.NoError(t, err)
	require.Equal(t, first.ID, again.ID)

	_, err = list.Add(ctx, "aka-miso")
	require.NoError(t, err)

	entries, err := list.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	contains, err := list.Contains(ctx, "aka-miso")
	require.NoError(t, err)
	require.True(t, contains)
}

func TestWishlistRemove(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := NewService(memory.New(), records.Options{})
	list, err := svc.For("cust-1")
	require.NoError(t, err)

	entry, err := list.Add(ctx, "shiro-miso")
	require.NoError(t, err)
	_, err = list.Add(ctx, "aka-miso")
	require.NoError(t, err)

	removed, err := list.Remove(ctx, entry.ID)
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = list.RemoveProduct(ctx, "aka-miso")
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = list.RemoveProduct(ctx, "aka-miso")
	require.NoError(t, err)
	require.False(t, removed)

	entries, err := list.Entries(ctx)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestWishlistsArePerCustomer(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.New()
	svc := NewService(store, records.Options{})

	mine, err := svc.For("cust-1")
	require.NoError(t, err)
	theirs, err := svc.For("cust-2")
	require.NoError(t, err)

	_, err = mine.Add(ctx, "shiro-miso")
	require.NoError(t, err)

	contains, err := theirs.Contains(ctx, "shiro-miso")
	require.NoError(t, err)
	require.False(t, contains)

	infos, err := store.ListCollections(ctx, KeyPrefix)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	require.Equal(t, "storefront_wishlist_cust-1", infos[0].Key)
}

func TestWishlistRequiresCustomer(t *testing.T) {
	t.Parallel()

	_, err := NewService(memory.New(), records.Options{}).For(" ")
	require.True(t, errors.HasCode(err, errors.CodeWishlistInvalid), "err = %v", err)
}

func TestWishlistAddRejectsEmptyProduct(t *testing.T) {
	t.Parallel()

	list, err := NewService(memory.New(), records.Options{}).For("cust-1")
	require.NoError(t, err)
	_, err = list.Add(context.Background(), "")
	require.True(t, errors.HasCode(err, errors.CodeWishlistInvalid), "err = %v", err)
}
