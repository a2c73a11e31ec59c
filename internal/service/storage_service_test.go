package service

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"stowage/internal/config"
	"stowage/internal/provider/factory"
	"stowage/pkg/multi/migration"
	"stowage/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *StorageService {
	t.Helper()
	cfg := &config.Config{
		Backends: map[string]config.BackendConfig{
			"a":      {Kind: "local", Root: t.TempDir()},
			"b":      {Kind: "local", Root: t.TempDir()},
			"broken": {Kind: "local"},
		},
		Mirror: config.MirrorConfig{
			Backends: []string{"a", "b"},
			Strategy: "all_or_fail",
		},
	}
	logger := slog.New(slog.DiscardHandler)
	return NewStorageService(factory.NewFactory(cfg, logger), logger)
}

func TestObjectRoundTripThroughMirror(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	mirror := Target{}

	require.NoError(t, svc.PutObject(ctx, mirror, "docs/a.txt", strings.NewReader("hello"), 5))

	for _, name := range []string{"a", "b"} {
		ok, err := svc.ObjectExists(ctx, Target{Name: name}, "docs/a.txt")
		require.NoError(t, err)
		assert.True(t, ok, "backend %s", name)
	}

	var buf bytes.Buffer
	n, err := svc.GetObject(ctx, mirror, "docs/a.txt", &buf)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)
	assert.Equal(t, "hello", buf.String())

	ok, err := svc.FolderExists(ctx, mirror, "docs")
	require.NoError(t, err)
	assert.True(t, ok)

	ids, err := svc.ListObjects(ctx, mirror, "docs/")
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/a.txt"}, ids)

	require.NoError(t, svc.DeleteObject(ctx, mirror, "docs/a.txt"))
	ok, err = svc.ObjectExists(ctx, Target{Name: "b"}, "docs/a.txt")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReadOnlyTargetRejectsWrites(t *testing.T) {
	svc := newService(t)
	err := svc.PutObject(context.Background(), Target{Name: "a", ReadOnly: true}, "x", strings.NewReader("x"), 1)
	assert.ErrorIs(t, err, storage.ErrPermissionDenied)
}

func TestUnknownTarget(t *testing.T) {
	svc := newService(t)
	_, err := svc.ObjectExists(context.Background(), Target{Name: "nope"}, "x")
	assert.ErrorContains(t, err, "error initializing target")
}

func TestListBackends(t *testing.T) {
	svc := newService(t)
	statuses := svc.ListBackends(context.Background())
	require.Len(t, statuses, 3)

	byName := make(map[string]storage.BackendStatus)
	for _, s := range statuses {
		byName[s.Name] = s
	}
	assert.True(t, byName["a"].Reachable)
	assert.Equal(t, storage.KindLocal, byName["a"].Kind)
	assert.EqualValues(t, -1, byName["a"].UsageBytes)
	assert.False(t, byName["broken"].Reachable)
	assert.Contains(t, byName["broken"].Error, "root is required")
}

func TestMigrate(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	require.NoError(t, svc.PutObject(ctx, Target{Name: "a"}, "one.txt", strings.NewReader("1"), 1))
	require.NoError(t, svc.PutObject(ctx, Target{Name: "a"}, "two.txt", strings.NewReader("2"), 1))

	opts := migration.DefaultOptions()
	opts.DeleteSource = true
	result, err := svc.Migrate(ctx, "a", "b", opts)
	require.NoError(t, err)
	assert.True(t, result.Complete())
	assert.ElementsMatch(t, []string{"one.txt", "two.txt"}, result.Transferred)

	ids, err := svc.ListObjects(ctx, Target{Name: "a"}, "")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestMigrateUnknownBackend(t *testing.T) {
	svc := newService(t)
	_, err := svc.Migrate(context.Background(), "a", "nope", migration.DefaultOptions())
	assert.ErrorContains(t, err, "error initializing backend")
}
