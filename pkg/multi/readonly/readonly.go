// File: pkg/multi/readonly/readonly.go
package readonly

import (
	"context"
	"errors"
	"io"
	"iter"
	"log/slog"

	"stowage/pkg/storage"
)

var ErrReadOnly = errors.New("write operations not allowed on read-only storage")

// ReadOnly passes reads through to the wrapped backend and rejects puts and deletes
type ReadOnly struct {
	inner  storage.Storage
	logger *slog.Logger
}

var _ storage.Storage = (*ReadOnly)(nil)

func New(inner storage.Storage, logger *slog.Logger) *ReadOnly {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReadOnly{inner: inner, logger: logger.With("component", "readonly")}
}

func (r *ReadOnly) Inner() storage.Storage {
	return r.inner
}

func (r *ReadOnly) Exists(ctx context.Context, id string) (bool, error) {
	return r.inner.Exists(ctx, id)
}

func (r *ReadOnly) FolderExists(ctx context.Context, id string) (bool, error) {
	return r.inner.FolderExists(ctx, id)
}

func (r *ReadOnly) Put(_ context.Context, id string, _ io.Reader, _ int64) error {
	r.logger.Warn("Write operation blocked", "id", id)
	return storage.PermissionDenied(id, ErrReadOnly)
}

func (r *ReadOnly) GetInto(ctx context.Context, id string, w io.Writer) (int64, error) {
	return r.inner.GetInto(ctx, id, w)
}

func (r *ReadOnly) Delete(_ context.Context, id string) error {
	r.logger.Warn("Delete operation blocked", "id", id)
	return storage.PermissionDenied(id, ErrReadOnly)
}

func (r *ReadOnly) List(ctx context.Context, prefix string) iter.Seq2[string, error] {
	return r.inner.List(ctx, prefix)
}

func (r *ReadOnly) Close() error {
	return r.inner.Close()
}
