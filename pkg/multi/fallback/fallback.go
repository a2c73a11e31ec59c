// File: pkg/multi/fallback/fallback.go
package fallback

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"

	"stowage/pkg/storage"
)

// Fallback serves from a primary backend and consults a secondary when the primary
// misses or errors on existence checks. With write-through enabled, writes are
// copied to the secondary on a best-effort basis
type Fallback struct {
	primary      storage.Storage
	secondary    storage.Storage
	writeThrough bool
	logger       *slog.Logger
}

var _ storage.Storage = (*Fallback)(nil)

func New(primary, secondary storage.Storage) *Fallback {
	return &Fallback{
		primary:   primary,
		secondary: secondary,
		logger:    slog.Default().With("component", "fallback"),
	}
}

// Configure before first use; a Fallback is not reconfigured while serving requests
func (f *Fallback) WithWriteThrough(enabled bool) *Fallback {
	f.writeThrough = enabled
	return f
}

func (f *Fallback) WithLogger(logger *slog.Logger) *Fallback {
	f.logger = logger.With("component", "fallback")
	return f
}

func (f *Fallback) Primary() storage.Storage {
	return f.primary
}

func (f *Fallback) Secondary() storage.Storage {
	return f.secondary
}

func (f *Fallback) WriteThrough() bool {
	return f.writeThrough
}

func (f *Fallback) Exists(ctx context.Context, id string) (bool, error) {
	return f.lookup(ctx, "exists", id, func(ctx context.Context, s storage.Storage) (bool, error) {
		return s.Exists(ctx, id)
	})
}

func (f *Fallback) FolderExists(ctx context.Context, id string) (bool, error) {
	return f.lookup(ctx, "folder_exists", id, func(ctx context.Context, s storage.Storage) (bool, error) {
		return s.FolderExists(ctx, id)
	})
}

func (f *Fallback) lookup(ctx context.Context, op, id string, check func(context.Context, storage.Storage) (bool, error)) (bool, error) {
	found, err := check(ctx, f.primary)
	if err == nil && found {
		return true, nil
	}
	if err != nil {
		f.logger.Warn("Primary failed, using secondary", "op", op, "id", id, "error", err)
	}
	return check(ctx, f.secondary)
}

func (f *Fallback) Put(ctx context.Context, id string, r io.Reader, size int64) error {
	if !f.writeThrough {
		return f.primary.Put(ctx, id, r, size)
	}

	payload, err := io.ReadAll(r)
	if err != nil {
		return storage.IO(fmt.Errorf("buffering %s: %w", id, err))
	}

	primaryErr := f.primary.Put(ctx, id, bytes.NewReader(payload), int64(len(payload)))
	if err := f.secondary.Put(ctx, id, bytes.NewReader(payload), int64(len(payload))); err != nil {
		f.logger.Warn("Secondary write failed", "id", id, "error", err)
	}
	return primaryErr
}

func (f *Fallback) GetInto(ctx context.Context, id string, w io.Writer) (int64, error) {
	return f.primary.GetInto(ctx, id, w)
}

// Delete removes id from both backends and succeeds if either did
func (f *Fallback) Delete(ctx context.Context, id string) error {
	primaryErr := f.primary.Delete(ctx, id)
	secondaryErr := f.secondary.Delete(ctx, id)

	if primaryErr == nil || secondaryErr == nil {
		return nil
	}
	f.logger.Error("Delete failed on both backends", "id", id, "primary_error", primaryErr, "secondary_error", secondaryErr)
	return primaryErr
}

func (f *Fallback) List(ctx context.Context, prefix string) iter.Seq2[string, error] {
	return f.primary.List(ctx, prefix)
}

func (f *Fallback) Close() error {
	return errors.Join(f.primary.Close(), f.secondary.Close())
}
