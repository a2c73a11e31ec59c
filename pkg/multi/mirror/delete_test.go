package mirror

import (
	"context"
	"testing"

	"stowage/pkg/storage"
	"stowage/pkg/storage/storagetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeletePartialSuccess(t *testing.T) {
	ctx := context.Background()
	backends := newBackends(3)
	m := newMirror(t, backends, nil)
	require.NoError(t, storage.PutBytes(ctx, m, "f.txt", []byte("hi")))
	backends[1].FailOn(storagetest.OpDelete, storage.ErrConnection)

	require.NoError(t, m.Delete(ctx, "f.txt"))

	assert.False(t, contains(t, backends[0], "f.txt"))
	assert.True(t, contains(t, backends[1], "f.txt"))
	assert.False(t, contains(t, backends[2], "f.txt"))
}

func TestDeleteAllFail(t *testing.T) {
	backends := newBackends(2)
	backends[0].FailOn(storagetest.OpDelete, storage.ErrPermissionDenied)
	backends[1].FailOn(storagetest.OpDelete, storage.ErrConnection)
	m := newMirror(t, backends, nil)

	err := m.Delete(context.Background(), "f.txt")
	assert.ErrorIs(t, err, storage.ErrPermissionDenied, "first error in backend order")
	assert.NotErrorIs(t, err, ErrMirrorFailure)
}

func TestDeleteIsIdempotent(t *testing.T) {
	backends := newBackends(3)
	m := newMirror(t, backends, nil)

	require.NoError(t, m.Delete(context.Background(), "never-existed"))
	for i, b := range backends {
		assert.Equal(t, 1, b.Calls(storagetest.OpDelete), "backend %d", i)
	}
}
