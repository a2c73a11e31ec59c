// File: pkg/multi/mirror/read.go
package mirror

import (
	"context"
	"io"
	"iter"

	"stowage/pkg/storage"
)

// Exists asks the primary and, if the primary errors, every other backend in order.
// When all of them fail the primary's error is returned
func (m *Mirror) Exists(ctx context.Context, id string) (bool, error) {
	return m.lookup(ctx, "exists", id, func(ctx context.Context, s storage.Storage) (bool, error) {
		return s.Exists(ctx, id)
	})
}

func (m *Mirror) FolderExists(ctx context.Context, id string) (bool, error) {
	return m.lookup(ctx, "folder_exists", id, func(ctx context.Context, s storage.Storage) (bool, error) {
		return s.FolderExists(ctx, id)
	})
}

func (m *Mirror) lookup(ctx context.Context, op, id string, check func(context.Context, storage.Storage) (bool, error)) (bool, error) {
	found, primaryErr := check(ctx, m.backends[m.primary])
	if primaryErr == nil {
		return found, nil
	}

	m.logger.Warn("Primary backend failed, trying the others", "op", op, "id", id, "error", primaryErr)
	for i, backend := range m.backends {
		if i == m.primary {
			continue
		}
		found, err := check(ctx, backend)
		if err == nil {
			m.logger.Info("Fallback backend answered", "op", op, "id", id, "backend_index", i)
			return found, nil
		}
		m.logger.Debug("Fallback backend failed", "op", op, "id", id, "backend_index", i, "error", err)
	}

	m.logger.Error("All backends failed", "op", op, "id", id)
	return false, primaryErr
}

// GetInto reads from the primary only. A sink that was partially written cannot be replayed
// against another backend, so there is no fallback on reads; callers that need one should
// buffer through the primary and fall back at a higher layer
func (m *Mirror) GetInto(ctx context.Context, id string, w io.Writer) (int64, error) {
	return m.backends[m.primary].GetInto(ctx, id, w)
}

// List reads from the primary only; listings are not merged across backends
func (m *Mirror) List(ctx context.Context, prefix string) iter.Seq2[string, error] {
	return m.backends[m.primary].List(ctx, prefix)
}
