// File: internal/service/storage_service.go
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"stowage/internal/provider/factory"
	"stowage/pkg/multi/migration"
	"stowage/pkg/storage"
)

// Id checked by ListBackends. It only has to be a valid id; whether it exists does not matter
const healthCheckID = ".stowage-health"

type StorageService struct {
	factory *factory.Factory
	logger  *slog.Logger
}

func NewStorageService(factory *factory.Factory, logger *slog.Logger) *StorageService {
	return &StorageService{
		factory: factory,
		logger:  logger.With("service", "StorageService"),
	}
}

// Target selects the storage an operation runs against
type Target struct {
	// "mirror", "fallback" or a backend name; empty picks the default target
	Name     string
	ReadOnly bool
}

// --- Backend Operations ---

// Checks every configured backend concurrently. A backend that fails to initialize or answer
// is reported as unreachable rather than failing the whole operation
func (s *StorageService) ListBackends(ctx context.Context) []storage.BackendStatus {
	names := s.factory.GetConfiguredBackends()
	s.logger.Debug("Starting ListBackends operation", "backends", names)

	statuses := make([]storage.BackendStatus, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			statuses[i] = s.checkBackend(ctx, name)
		}()
	}
	wg.Wait()
	return statuses
}

func (s *StorageService) checkBackend(ctx context.Context, name string) storage.BackendStatus {
	kind, _ := s.factory.KindOf(name)
	status := storage.BackendStatus{Name: name, Kind: kind, UsageBytes: -1}

	client, err := s.factory.GetBackend(ctx, name)
	if err != nil {
		s.logger.Error("Failed to initialize backend", "backend", name, "error", err)
		status.Error = err.Error()
		return status
	}
	defer client.Close()

	if _, err := client.Exists(ctx, healthCheckID); err != nil {
		s.logger.Warn("Backend health check failed", "backend", name, "error", err)
		status.Error = err.Error()
		return status
	}
	status.Reachable = true

	if reporter, ok := client.(storage.UsageReporter); ok {
		usage, err := reporter.Usage(ctx)
		if err != nil {
			s.logger.Debug("Usage not available", "backend", name, "error", err)
		} else {
			status.UsageBytes = usage
		}
	}
	return status
}

// --- Object Operations ---

func (s *StorageService) PutObject(ctx context.Context, target Target, id string, r io.Reader, size int64) error {
	s.logger.Debug("Starting PutObject operation", "target", target.Name, "id", id, "size", size)
	return s.withTarget(ctx, target, func(client storage.Storage) error {
		if err := client.Put(ctx, id, r, size); err != nil {
			s.logger.Error("Failed to put object", "target", target.Name, "id", id, "error", err)
			return err
		}
		return nil
	})
}

func (s *StorageService) GetObject(ctx context.Context, target Target, id string, w io.Writer) (int64, error) {
	s.logger.Debug("Starting GetObject operation", "target", target.Name, "id", id)
	var n int64
	err := s.withTarget(ctx, target, func(client storage.Storage) error {
		var err error
		n, err = client.GetInto(ctx, id, w)
		if err != nil {
			s.logger.Error("Failed to get object", "target", target.Name, "id", id, "error", err)
		}
		return err
	})
	return n, err
}

func (s *StorageService) ObjectExists(ctx context.Context, target Target, id string) (bool, error) {
	var exists bool
	err := s.withTarget(ctx, target, func(client storage.Storage) error {
		var err error
		exists, err = client.Exists(ctx, id)
		return err
	})
	return exists, err
}

func (s *StorageService) FolderExists(ctx context.Context, target Target, id string) (bool, error) {
	var exists bool
	err := s.withTarget(ctx, target, func(client storage.Storage) error {
		var err error
		exists, err = client.FolderExists(ctx, id)
		return err
	})
	return exists, err
}

func (s *StorageService) DeleteObject(ctx context.Context, target Target, id string) error {
	s.logger.Debug("Starting DeleteObject operation", "target", target.Name, "id", id)
	return s.withTarget(ctx, target, func(client storage.Storage) error {
		if err := client.Delete(ctx, id); err != nil {
			s.logger.Error("Failed to delete object", "target", target.Name, "id", id, "error", err)
			return err
		}
		return nil
	})
}

func (s *StorageService) ListObjects(ctx context.Context, target Target, prefix string) ([]string, error) {
	s.logger.Debug("Starting ListObjects operation", "target", target.Name, "prefix", prefix)
	var ids []string
	err := s.withTarget(ctx, target, func(client storage.Storage) error {
		var err error
		ids, err = storage.Collect(ctx, client, prefix)
		if err != nil {
			s.logger.Error("Failed to list objects", "target", target.Name, "prefix", prefix, "error", err)
		}
		return err
	})
	return ids, err
}

// --- Migration ---

// Copies (or moves) objects between two configured backends
func (s *StorageService) Migrate(ctx context.Context, from, to string, opts migration.Options) (*migration.Result, error) {
	s.logger.Debug("Starting Migrate operation", "from", from, "to", to, "prefix", opts.Prefix, "conflict", opts.Conflict)

	src, err := s.getBackend(ctx, from)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	dst, err := s.getBackend(ctx, to)
	if err != nil {
		return nil, err
	}
	defer dst.Close()

	if opts.Logger == nil {
		opts.Logger = s.logger.With("from", from, "to", to)
	}
	return migration.Migrate(ctx, src, dst, opts)
}

// Opens the target, runs fn and closes it again
func (s *StorageService) withTarget(ctx context.Context, target Target, fn func(storage.Storage) error) error {
	client, err := s.factory.GetTarget(ctx, target.Name, target.ReadOnly)
	if err != nil {
		s.logger.Error("Failed to initialize target", "target", target.Name, "error", err)
		return fmt.Errorf("error initializing target: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			s.logger.Warn("Failed to close target", "target", target.Name, "error", err)
		}
	}()
	return fn(client)
}

// Helper to initialize a single backend and handle common error logging
func (s *StorageService) getBackend(ctx context.Context, name string) (storage.Storage, error) {
	client, err := s.factory.GetBackend(ctx, name)
	if err != nil {
		s.logger.Error("Failed to initialize backend", "backend", name, "error", err)
		return nil, fmt.Errorf("error initializing backend: %w", err)
	}
	return client, nil
}
