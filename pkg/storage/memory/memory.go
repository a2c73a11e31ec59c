// File: pkg/storage/memory/memory.go
package memory

import (
	"context"
	"fmt"
	"io"
	"iter"
	"sort"
	"strings"
	"sync"

	"stowage/pkg/storage"
)

// Storage keeps objects in a map. Intended for tests, local development and ephemeral use
type Storage struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

var _ storage.Storage = (*Storage)(nil)

func New() *Storage {
	return &Storage{objects: make(map[string][]byte)}
}

// Returns the number of stored objects
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

func (s *Storage) Exists(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[id]
	return ok, nil
}

func (s *Storage) FolderExists(ctx context.Context, id string) (bool, error) {
	prefix := strings.TrimSuffix(id, "/") + "/"

	s.mu.RLock()
	defer s.mu.RUnlock()
	for key := range s.objects {
		if strings.HasPrefix(key, prefix) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Storage) Put(ctx context.Context, id string, r io.Reader, size int64) error {
	if id == "" {
		return storage.Generic("id cannot be empty")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return storage.IO(fmt.Errorf("reading input for %s: %w", id, err))
	}

	s.mu.Lock()
	s.objects[id] = data
	s.mu.Unlock()
	return nil
}

func (s *Storage) GetInto(ctx context.Context, id string, w io.Writer) (int64, error) {
	s.mu.RLock()
	data, ok := s.objects[id]
	s.mu.RUnlock()
	if !ok {
		return 0, storage.NotFound(id)
	}

	n, err := w.Write(data)
	if err != nil {
		return int64(n), storage.IO(err)
	}
	return int64(n), nil
}

func (s *Storage) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.objects, id)
	s.mu.Unlock()
	return nil
}

func (s *Storage) List(ctx context.Context, prefix string) iter.Seq2[string, error] {
	s.mu.RLock()
	ids := make([]string, 0, len(s.objects))
	for key := range s.objects {
		if strings.HasPrefix(key, prefix) {
			ids = append(ids, key)
		}
	}
	s.mu.RUnlock()
	sort.Strings(ids)

	return func(yield func(string, error) bool) {
		for _, id := range ids {
			if !yield(id, nil) {
				return
			}
		}
	}
}

func (s *Storage) Close() error {
	return nil
}
