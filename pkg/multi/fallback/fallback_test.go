package fallback

import (
	"context"
	"log/slog"
	"testing"

	"stowage/pkg/storage"
	"stowage/pkg/storage/memory"
	"stowage/pkg/storage/storagetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFallback(writeThrough bool) (*Fallback, *storagetest.Faulty, *storagetest.Faulty) {
	primary := storagetest.NewFaulty(memory.New())
	secondary := storagetest.NewFaulty(memory.New())
	f := New(primary, secondary).
		WithWriteThrough(writeThrough).
		WithLogger(slog.New(slog.DiscardHandler))
	return f, primary, secondary
}

func TestCompliance(t *testing.T) {
	storagetest.RunCompliance(t, func(t *testing.T) storage.Storage {
		f, _, _ := newFallback(true)
		return f
	})
}

func TestExists(t *testing.T) {
	ctx := context.Background()
	f, primary, secondary := newFallback(false)
	require.NoError(t, storage.PutBytes(ctx, primary.Inner(), "p.txt", []byte("p")))
	require.NoError(t, storage.PutBytes(ctx, secondary.Inner(), "s.txt", []byte("s")))

	ok, err := f.Exists(ctx, "p.txt")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, secondary.Calls(storagetest.OpExists), "primary hit is final")

	ok, err = f.Exists(ctx, "s.txt")
	require.NoError(t, err)
	assert.True(t, ok, "primary miss asks the secondary")

	primary.FailOn(storagetest.OpExists, storage.ErrConnection)
	ok, err = f.Exists(ctx, "s.txt")
	require.NoError(t, err)
	assert.True(t, ok, "primary error asks the secondary")

	ok, err = f.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFolderExistsUsesSecondary(t *testing.T) {
	ctx := context.Background()
	f, _, secondary := newFallback(false)
	require.NoError(t, storage.PutBytes(ctx, secondary.Inner(), "docs/a.txt", []byte("a")))

	ok, err := f.FolderExists(ctx, "docs")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPutDefaultWritesPrimaryOnly(t *testing.T) {
	ctx := context.Background()
	f, primary, secondary := newFallback(false)

	require.NoError(t, storage.PutBytes(ctx, f, "f.txt", []byte("data")))

	ok, _ := primary.Inner().Exists(ctx, "f.txt")
	assert.True(t, ok)
	assert.Zero(t, secondary.Calls(storagetest.OpPut))
}

func TestPutWriteThrough(t *testing.T) {
	ctx := context.Background()
	f, primary, secondary := newFallback(true)

	require.NoError(t, storage.PutBytes(ctx, f, "f.txt", []byte("data")))

	for _, s := range []storage.Storage{primary.Inner(), secondary.Inner()} {
		data, err := storage.GetBytes(ctx, s, "f.txt")
		require.NoError(t, err)
		assert.Equal(t, "data", string(data))
	}
}

func TestPutWriteThroughSecondaryFailureIsIgnored(t *testing.T) {
	f, _, secondary := newFallback(true)
	secondary.FailOn(storagetest.OpPut, nil)

	assert.NoError(t, storage.PutBytes(context.Background(), f, "f.txt", []byte("data")))
}

func TestPutWriteThroughPrimaryFailureIsReturned(t *testing.T) {
	ctx := context.Background()
	f, primary, secondary := newFallback(true)
	primary.FailOn(storagetest.OpPut, storage.ErrPermissionDenied)

	err := storage.PutBytes(ctx, f, "f.txt", []byte("data"))
	assert.ErrorIs(t, err, storage.ErrPermissionDenied)

	ok, _ := secondary.Inner().Exists(ctx, "f.txt")
	assert.True(t, ok, "secondary is still written")
}

func TestGetIntoPrimaryOnly(t *testing.T) {
	ctx := context.Background()
	f, _, secondary := newFallback(false)
	require.NoError(t, storage.PutBytes(ctx, secondary.Inner(), "s.txt", []byte("s")))

	_, err := storage.GetBytes(ctx, f, "s.txt")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("either succeeds", func(t *testing.T) {
		f, primary, secondary := newFallback(true)
		require.NoError(t, storage.PutBytes(ctx, f, "f.txt", []byte("data")))
		primary.FailOn(storagetest.OpDelete, nil)

		require.NoError(t, f.Delete(ctx, "f.txt"))
		ok, _ := secondary.Inner().Exists(ctx, "f.txt")
		assert.False(t, ok)
	})

	t.Run("both fail", func(t *testing.T) {
		f, primary, secondary := newFallback(false)
		primary.FailOn(storagetest.OpDelete, storage.ErrConnection)
		secondary.FailOn(storagetest.OpDelete, storage.ErrPermissionDenied)

		err := f.Delete(ctx, "f.txt")
		assert.ErrorIs(t, err, storage.ErrConnection)
	})
}
