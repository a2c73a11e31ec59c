package memory

import (
	"context"
	"testing"

	"stowage/pkg/storage"
	"stowage/pkg/storage/storagetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompliance(t *testing.T) {
	storagetest.RunCompliance(t, func(t *testing.T) storage.Storage {
		return New()
	})
}

func TestLen(t *testing.T) {
	ctx := context.Background()
	s := New()
	assert.Equal(t, 0, s.Len())

	require.NoError(t, storage.PutBytes(ctx, s, "a", []byte("1")))
	require.NoError(t, storage.PutBytes(ctx, s, "b", []byte("2")))
	require.NoError(t, storage.PutBytes(ctx, s, "a", []byte("3")))
	assert.Equal(t, 2, s.Len())
}

func TestListStopsEarly(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, id := range []string{"x/1", "x/2", "x/3"} {
		require.NoError(t, storage.PutBytes(ctx, s, id, []byte(id)))
	}

	var seen []string
	for id, err := range s.List(ctx, "x/") {
		require.NoError(t, err)
		seen = append(seen, id)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"x/1", "x/2"}, seen)
}
