package redis

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"stowage/internal/config"
	"stowage/pkg/storage"

	rdb "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

type fakeRedisError string

func (e fakeRedisError) Error() string { return string(e) }
func (e fakeRedisError) RedisError()   {}

func TestPattern(t *testing.T) {
	s := New(nil, "app:", nil)
	assert.Equal(t, `app:docs/*`, s.pattern("docs/"))
	assert.Equal(t, `app:\*weird\?\[x\]/*`, s.pattern("*weird?[x]/"))
	assert.Equal(t, "app:a.txt", s.key("a.txt"))
}

func TestMapError(t *testing.T) {
	assert.ErrorIs(t, mapError("a", rdb.Nil), storage.ErrNotFound)
	assert.ErrorIs(t, mapError("a", fakeRedisError("NOAUTH Authentication required.")), storage.ErrPermissionDenied)
	assert.ErrorIs(t, mapError("a", fakeRedisError("WRONGPASS invalid username-password pair")), storage.ErrPermissionDenied)
	assert.ErrorIs(t, mapError("a", fakeRedisError("OOM command not allowed")), storage.ErrGeneric)
	assert.ErrorIs(t, mapError("a", rdb.ErrClosed), storage.ErrConnection)
	assert.ErrorIs(t, mapError("a", context.DeadlineExceeded), context.DeadlineExceeded)
	assert.ErrorIs(t, mapError("a", errors.New("dial tcp: refused")), storage.ErrConnection)
}

func TestUnreachableServerIsConnectionError(t *testing.T) {
	client := rdb.NewClient(&rdb.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	s := New(client, "", slog.New(slog.DiscardHandler))
	t.Cleanup(func() { s.Close() })

	_, err := s.Exists(context.Background(), "a.txt")
	assert.ErrorIs(t, err, storage.ErrConnection)
}

func TestValidate(t *testing.T) {
	assert.Error(t, validate(config.BackendConfig{Kind: "redis"}))
	assert.NoError(t, validate(config.BackendConfig{Kind: "redis", Addr: "localhost:6379"}))
}
