// File: pkg/storage/storage.go
package storage

import (
	"context"
	"io"
	"iter"
)

// Storage is the common contract implemented by every backend and by every
// multi-backend composition (mirror, fallback, read-only)
type Storage interface {
	// Reports whether an object with the given id exists
	Exists(ctx context.Context, id string) (bool, error)

	// Reports whether at least one object lives under id treated as a folder
	FolderExists(ctx context.Context, id string) (bool, error)

	// Stores the contents of r under id. A negative size means the length is unknown
	Put(ctx context.Context, id string, r io.Reader, size int64) error

	// Streams the object into w and returns the number of bytes written
	GetInto(ctx context.Context, id string, w io.Writer) (int64, error)

	// Removes id. Deleting an id that does not exist must succeed
	Delete(ctx context.Context, id string) error

	// Lazily yields the ids starting with prefix. An empty prefix lists everything
	List(ctx context.Context, prefix string) iter.Seq2[string, error]

	Close() error
}

// UsageReporter is implemented by backends that can report the total number of
// stored bytes, usually from a provider-side metrics API
type UsageReporter interface {
	Usage(ctx context.Context) (int64, error)
}
