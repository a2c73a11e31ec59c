package metrics

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"stowage/pkg/multi/mirror"
	"stowage/pkg/storage"
	"stowage/pkg/storage/memory"
	"stowage/pkg/storage/storagetest"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dump(t *testing.T, reg *prometheus.Registry) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stowage.prom")
	require.NoError(t, WriteTextfile(path, reg))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New()
	require.NoError(t, c.Register(reg))
	assert.NoError(t, c.Register(reg))
}

func TestMirrorObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New()
	require.NoError(t, c.Register(reg))

	failing := storagetest.NewFaulty(memory.New())
	failing.FailOn(storagetest.OpPut, nil)
	m, err := mirror.NewBuilder().
		AddBackend(memory.New()).
		AddBackend(memory.New()).
		AddBackend(failing).
		WithWriteStrategy(mirror.Quorum(false)).
		WithReturnPolicy(mirror.Optimistic).
		WithLogger(slog.New(slog.DiscardHandler)).
		WithObserver(c.MirrorObserver([]string{"disk", "cache", "cloud"})).
		Build()
	require.NoError(t, err)

	require.NoError(t, storage.PutBytes(context.Background(), m, "f.txt", []byte("hi")))

	assert.Eventually(t, func() bool {
		return failing.Calls(storagetest.OpPut) == 1
	}, 2*time.Second, 5*time.Millisecond)

	path := filepath.Join(t.TempDir(), "background.prom")
	assert.Eventually(t, func() bool {
		if WriteTextfile(path, reg) != nil {
			return false
		}
		data, err := os.ReadFile(path)
		return err == nil && strings.Contains(string(data), `stowage_mirror_background_writes_total{backend="cloud",result="failure"} 1`)
	}, 2*time.Second, 5*time.Millisecond)

	out := dump(t, reg)
	assert.Contains(t, out, `stowage_mirror_writes_total{policy="optimistic",result="success"} 1`)
	assert.Contains(t, out, "stowage_mirror_write_successful_backends_count 1")
}

func TestRollbackLabelsFallBackToIndex(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New()
	require.NoError(t, c.Register(reg))

	obs := c.MirrorObserver(nil)
	obs.RollbackFinished(3, nil)
	obs.WriteFinished(mirror.WaitAll, 2, 1, &mirror.Failure{Required: 2})

	out := dump(t, reg)
	assert.Contains(t, out, `stowage_mirror_rollbacks_total{backend="3",result="success"} 1`)
	assert.Contains(t, out, `stowage_mirror_writes_total{policy="wait_all",result="failure"} 1`)
}
