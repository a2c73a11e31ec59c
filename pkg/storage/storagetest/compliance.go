// File: pkg/storage/storagetest/compliance.go
package storagetest

import (
	"bytes"
	"context"
	"testing"

	"stowage/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunCompliance exercises the behaviour every backend must share.
// newStorage must return an empty backend for each call
func RunCompliance(t *testing.T, newStorage func(t *testing.T) storage.Storage) {
	t.Helper()

	run := func(name string, fn func(t *testing.T, ctx context.Context, s storage.Storage)) {
		t.Run(name, func(t *testing.T) {
			s := newStorage(t)
			t.Cleanup(func() { s.Close() })
			fn(t, context.Background(), s)
		})
	}

	run("put and exists", func(t *testing.T, ctx context.Context, s storage.Storage) {
		ok, err := s.Exists(ctx, "test.txt")
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, storage.PutBytes(ctx, s, "test.txt", []byte("hello world")))

		ok, err = s.Exists(ctx, "test.txt")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	run("put and get", func(t *testing.T, ctx context.Context, s storage.Storage) {
		require.NoError(t, storage.PutBytes(ctx, s, "test.txt", []byte("hello world")))

		var buf bytes.Buffer
		n, err := s.GetInto(ctx, "test.txt", &buf)
		require.NoError(t, err)
		assert.Equal(t, int64(11), n)
		assert.Equal(t, "hello world", buf.String())
	})

	run("get missing", func(t *testing.T, ctx context.Context, s storage.Storage) {
		_, err := storage.GetBytes(ctx, s, "nonexistent.txt")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	run("delete existing", func(t *testing.T, ctx context.Context, s storage.Storage) {
		require.NoError(t, storage.PutBytes(ctx, s, "test.txt", []byte("data")))
		require.NoError(t, s.Delete(ctx, "test.txt"))

		ok, err := s.Exists(ctx, "test.txt")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	run("delete is idempotent", func(t *testing.T, ctx context.Context, s storage.Storage) {
		require.NoError(t, s.Delete(ctx, "never-existed.txt"))
		require.NoError(t, s.Delete(ctx, "never-existed.txt"))
	})

	run("overwrite", func(t *testing.T, ctx context.Context, s storage.Storage) {
		require.NoError(t, storage.PutBytes(ctx, s, "test.txt", []byte("first")))
		require.NoError(t, storage.PutBytes(ctx, s, "test.txt", []byte("second")))

		got, err := storage.GetBytes(ctx, s, "test.txt")
		require.NoError(t, err)
		assert.Equal(t, "second", string(got))
	})

	run("empty object", func(t *testing.T, ctx context.Context, s storage.Storage) {
		require.NoError(t, storage.PutBytes(ctx, s, "empty.txt", nil))

		got, err := storage.GetBytes(ctx, s, "empty.txt")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	run("binary object", func(t *testing.T, ctx context.Context, s storage.Storage) {
		data := make([]byte, 256*1024)
		for i := range data {
			data[i] = byte(i % 251)
		}
		require.NoError(t, storage.PutBytes(ctx, s, "blob.bin", data))

		got, err := storage.GetBytes(ctx, s, "blob.bin")
		require.NoError(t, err)
		assert.True(t, bytes.Equal(data, got))
	})

	run("folder exists", func(t *testing.T, ctx context.Context, s storage.Storage) {
		require.NoError(t, storage.PutBytes(ctx, s, "docs/nested/a.txt", []byte("a")))

		for _, folder := range []string{"docs", "docs/", "docs/nested"} {
			ok, err := s.FolderExists(ctx, folder)
			require.NoError(t, err)
			assert.True(t, ok, "folder %q", folder)
		}

		ok, err := s.FolderExists(ctx, "other")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	run("list with prefix", func(t *testing.T, ctx context.Context, s storage.Storage) {
		for _, id := range []string{"docs/a.txt", "docs/b.txt", "other.txt"} {
			require.NoError(t, storage.PutBytes(ctx, s, id, []byte(id)))
		}

		ids, err := storage.Collect(ctx, s, "docs/")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"docs/a.txt", "docs/b.txt"}, ids)

		all, err := storage.Collect(ctx, s, "")
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})
}
