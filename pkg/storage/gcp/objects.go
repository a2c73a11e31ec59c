// File: pkg/storage/gcp/objects.go
package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"stowage/pkg/storage"

	gcpstorage "cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
)

func (g *GCPStorage) Exists(ctx context.Context, id string) (bool, error) {
	_, err := g.client.Bucket(g.bucket).Object(id).Attrs(ctx)
	if errors.Is(err, gcpstorage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, mapError(id, err)
	}
	return true, nil
}

// A folder exists when at least one object is stored under id + "/"
func (g *GCPStorage) FolderExists(ctx context.Context, id string) (bool, error) {
	query := &gcpstorage.Query{Prefix: strings.TrimSuffix(id, "/") + "/"}
	if err := query.SetAttrSelection([]string{"Name"}); err != nil {
		return false, storage.Generic("selecting attributes: %v", err)
	}

	_, err := g.client.Bucket(g.bucket).Objects(ctx, query).Next()
	if errors.Is(err, iterator.Done) {
		return false, nil
	}
	if err != nil {
		return false, mapError(id, err)
	}
	return true, nil
}

func (g *GCPStorage) Put(ctx context.Context, id string, r io.Reader, size int64) error {
	g.logger.Debug("Uploading object", "id", id, "size", size)

	// Cancelling the writer's context is the only way to abandon a started upload
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := g.client.Bucket(g.bucket).Object(id).NewWriter(ctx)
	// Small objects of known size go up in a single request
	if size >= 0 && size < googleapi.DefaultUploadChunkSize {
		w.ChunkSize = 0
	}

	if _, err := io.Copy(w, r); err != nil {
		cancel()
		w.Close()
		return mapError(id, fmt.Errorf("uploading object: %w", err))
	}
	if err := w.Close(); err != nil {
		return mapError(id, fmt.Errorf("finalizing upload: %w", err))
	}
	return nil
}

func (g *GCPStorage) GetInto(ctx context.Context, id string, w io.Writer) (int64, error) {
	r, err := g.client.Bucket(g.bucket).Object(id).NewReader(ctx)
	if err != nil {
		return 0, mapError(id, err)
	}
	defer r.Close()

	n, err := io.Copy(w, r)
	if err != nil {
		return n, storage.IO(fmt.Errorf("downloading %s: %w", id, err))
	}
	return n, nil
}

func (g *GCPStorage) Delete(ctx context.Context, id string) error {
	err := g.client.Bucket(g.bucket).Object(id).Delete(ctx)
	if err == nil || errors.Is(err, gcpstorage.ErrObjectNotExist) {
		return nil
	}
	return mapError(id, err)
}

func (g *GCPStorage) List(ctx context.Context, prefix string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		g.logger.Debug("Starting GCP list operation", "prefix", prefix)

		query := &gcpstorage.Query{Prefix: prefix}
		if err := query.SetAttrSelection([]string{"Name"}); err != nil {
			yield("", storage.Generic("selecting attributes: %v", err))
			return
		}

		it := g.client.Bucket(g.bucket).Objects(ctx, query)
		for {
			attrs, err := it.Next()
			if errors.Is(err, iterator.Done) {
				return
			}
			if err != nil {
				yield("", mapError(prefix, fmt.Errorf("error iterating objects: %w", err)))
				return
			}
			if !yield(attrs.Name, nil) {
				return
			}
		}
	}
}
