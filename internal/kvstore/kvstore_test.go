package kvstore_test

import (
	"context"
	"github.com/myrjola/casefile/internal/kvstore"
	"github.com/myrjola/casefile/internal/testhelpers"
	"github.com/stretchr/testify/require"
	"io"
	"testing"
)

func newTestStore(t *testing.T) *kvstore.Store {
	t.Helper()
	return kvstore.New(testhelpers.NewDatabase(t, ":memory:"), testhelpers.NewLogger(io.Discard))
}

func TestStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)

	_, ok, err := store.Get(ctx, "theme")
	require.NoError(t, err)
	require.False(t, ok, "missing key should not be found")

	require.NoError(t, store.Set(ctx, "theme", "light"))
	require.NoError(t, store.Set(ctx, "theme", "dark"))
	value, ok, err := store.Get(ctx, "theme")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "dark", value)

	require.NoError(t, store.Set(ctx, "draft_b", "2"))
	require.NoError(t, store.Set(ctx, "draft_a", "1"))
	entries, err := store.List(ctx, "draft_")
	require.NoError(t, err)
	require.Equal(t, []kvstore.Entry{{Key: "draft_a", Value: "1"}, {Key: "draft_b", Value: "2"}}, entries)

	require.NoError(t, store.Delete(ctx, "theme"))
	require.NoError(t, store.Delete(ctx, "theme"))
	_, ok, err = store.Get(ctx, "theme")
	require.NoError(t, err)
	require.False(t, ok)
}
