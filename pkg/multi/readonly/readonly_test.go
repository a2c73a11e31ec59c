package readonly

import (
	"context"
	"log/slog"
	"testing"

	"stowage/pkg/storage"
	"stowage/pkg/storage/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadOnly(t *testing.T) {
	ctx := context.Background()
	inner := memory.New()
	require.NoError(t, storage.PutBytes(ctx, inner, "docs/a.txt", []byte("data")))
	ro := New(inner, slog.New(slog.DiscardHandler))

	t.Run("reads pass through", func(t *testing.T) {
		data, err := storage.GetBytes(ctx, ro, "docs/a.txt")
		require.NoError(t, err)
		assert.Equal(t, "data", string(data))

		ok, err := ro.FolderExists(ctx, "docs")
		require.NoError(t, err)
		assert.True(t, ok)

		ids, err := storage.Collect(ctx, ro, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"docs/a.txt"}, ids)
	})

	t.Run("put rejected", func(t *testing.T) {
		err := storage.PutBytes(ctx, ro, "b.txt", []byte("x"))
		assert.ErrorIs(t, err, storage.ErrPermissionDenied)
		assert.ErrorIs(t, err, ErrReadOnly)
		assert.Equal(t, 1, inner.Len())
	})

	t.Run("delete rejected", func(t *testing.T) {
		err := ro.Delete(ctx, "docs/a.txt")
		assert.ErrorIs(t, err, storage.ErrPermissionDenied)

		ok, err := ro.Exists(ctx, "docs/a.txt")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}
