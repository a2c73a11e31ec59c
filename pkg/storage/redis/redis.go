// File: pkg/storage/redis/redis.go
package redis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"

	"stowage/internal/config"
	"stowage/internal/provider/registry"
	"stowage/pkg/storage"

	rdb "github.com/redis/go-redis/v9"
)

const scanCount = 256

func init() {
	registry.RegisterBackend(storage.KindRedis, registry.BackendRegistration{
		Validate:    validate,
		Initializer: initialize,
	})
}

func validate(cfg config.BackendConfig) error {
	if cfg.Addr == "" {
		return errors.New("addr is required for redis backends")
	}
	return nil
}

func initialize(ctx context.Context, name string, cfg config.BackendConfig, logger *slog.Logger) (storage.Storage, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}
	client := rdb.NewClient(&rdb.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return New(client, cfg.KeyPrefix, logger), nil
}

// Storage keeps each object as a string value under KeyPrefix + id
type Storage struct {
	client    rdb.UniversalClient
	keyPrefix string
	logger    *slog.Logger
}

var _ storage.Storage = (*Storage)(nil)

func New(client rdb.UniversalClient, keyPrefix string, logger *slog.Logger) *Storage {
	if logger == nil {
		logger = slog.Default()
	}
	return &Storage{client: client, keyPrefix: keyPrefix, logger: logger}
}

func (s *Storage) key(id string) string {
	return s.keyPrefix + id
}

// Builds a SCAN MATCH pattern matching every key that starts with prefix
func (s *Storage) pattern(prefix string) string {
	return escapeGlob(s.keyPrefix+prefix) + "*"
}

func (s *Storage) Exists(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(id)).Result()
	if err != nil {
		return false, mapError(id, err)
	}
	return n > 0, nil
}

func (s *Storage) FolderExists(ctx context.Context, id string) (bool, error) {
	match := s.pattern(strings.TrimSuffix(id, "/") + "/")
	it := s.client.Scan(ctx, 0, match, scanCount).Iterator()
	if it.Next(ctx) {
		return true, nil
	}
	if err := it.Err(); err != nil {
		return false, mapError(id, err)
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
	if err := s.client.Set(ctx, s.key(id), data, 0).Err(); err != nil {
		return mapError(id, err)
	}
	return nil
}

func (s *Storage) GetInto(ctx context.Context, id string, w io.Writer) (int64, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		return 0, mapError(id, err)
	}
	n, err := w.Write(data)
	if err != nil {
		return int64(n), storage.IO(err)
	}
	return int64(n), nil
}

func (s *Storage) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return mapError(id, err)
	}
	return nil
}

// List scans the keyspace incrementally. SCAN may report a key more than once, so
// ids already yielded are skipped
func (s *Storage) List(ctx context.Context, prefix string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		seen := make(map[string]struct{})
		it := s.client.Scan(ctx, 0, s.pattern(prefix), scanCount).Iterator()
		for it.Next(ctx) {
			id := strings.TrimPrefix(it.Val(), s.keyPrefix)
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			if !yield(id, nil) {
				return
			}
		}
		if err := it.Err(); err != nil {
			yield("", mapError(prefix, err))
		}
	}
}

func (s *Storage) Close() error {
	return s.client.Close()
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func mapError(id string, err error) error {
	if errors.Is(err, rdb.Nil) {
		return storage.NotFound(id)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var redisErr rdb.Error
	if errors.As(err, &redisErr) {
		msg := redisErr.Error()
		for _, prefix := range []string{"NOAUTH", "WRONGPASS", "NOPERM"} {
			if strings.HasPrefix(msg, prefix) {
				return storage.PermissionDenied(id, err)
			}
		}
		return &storage.Error{Kind: storage.ErrGeneric, ID: id, Err: err}
	}

	// Anything else came from the pool or the network
	return &storage.Error{Kind: storage.ErrConnection, ID: id, Err: err}
}
