package mirror

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"stowage/pkg/storage"
	"stowage/pkg/storage/memory"
	"stowage/pkg/storage/storagetest"

	"github.com/stretchr/testify/require"
)

func newBackends(n int) []*storagetest.Faulty {
	backends := make([]*storagetest.Faulty, n)
	for i := range backends {
		backends[i] = storagetest.NewFaulty(memory.New())
	}
	return backends
}

func newMirror(t *testing.T, backends []*storagetest.Faulty, configure func(*Builder)) *Mirror {
	t.Helper()
	b := NewBuilder().WithLogger(slog.New(slog.DiscardHandler))
	for _, backend := range backends {
		b.AddBackend(backend)
	}
	if configure != nil {
		configure(b)
	}
	m, err := b.Build()
	require.NoError(t, err)
	return m
}

// Checks the backend directly, bypassing injected failures
func contains(t *testing.T, backend *storagetest.Faulty, id string) bool {
	t.Helper()
	ok, err := backend.Inner().Exists(context.Background(), id)
	require.NoError(t, err)
	return ok
}

func content(t *testing.T, backend *storagetest.Faulty, id string) string {
	t.Helper()
	data, err := storage.GetBytes(context.Background(), backend.Inner(), id)
	require.NoError(t, err)
	return string(data)
}

type backgroundResult struct {
	index int
	err   error
}

type recordingObserver struct {
	mu         sync.Mutex
	writes     []error
	rollbacks  []int
	background chan backgroundResult
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{background: make(chan backgroundResult, 16)}
}

func (o *recordingObserver) WriteFinished(policy ReturnPolicy, required, successes int, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.writes = append(o.writes, err)
}

func (o *recordingObserver) BackgroundWriteFinished(index int, err error) {
	o.background <- backgroundResult{index: index, err: err}
}

func (o *recordingObserver) RollbackFinished(index int, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rollbacks = append(o.rollbacks, index)
}

func (o *recordingObserver) rolledBack() []int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]int(nil), o.rollbacks...)
}
