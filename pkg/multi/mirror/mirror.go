// File: pkg/multi/mirror/mirror.go
package mirror

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"stowage/pkg/storage"
)

var (
	ErrNoBackends        = errors.New("mirror requires at least one backend")
	ErrPrimaryOutOfRange = errors.New("primary index out of range")
	ErrNilBackend        = errors.New("nil backend")
)

// Mirror replicates writes across a fixed, ordered set of backends and serves reads from a
// designated primary. Backends may be of different kinds. The configuration is immutable
// once built, so a Mirror is safe for concurrent use as long as its backends are
type Mirror struct {
	backends []storage.Storage
	strategy WriteStrategy
	policy   ReturnPolicy
	timeout  time.Duration
	primary  int
	logger   *slog.Logger
	observer Observer

	// Optimistic background writes still running
	inflight sync.WaitGroup
}

var _ storage.Storage = (*Mirror)(nil)

// Creates a mirror with the default settings: AllOrFail without rollback, WaitAll, primary 0
func New(backends ...storage.Storage) (*Mirror, error) {
	b := NewBuilder()
	for _, backend := range backends {
		b.AddBackend(backend)
	}
	return b.Build()
}

func (m *Mirror) BackendCount() int {
	return len(m.backends)
}

// Returns the backend at index, or nil when out of range
func (m *Mirror) Backend(index int) storage.Storage {
	if index < 0 || index >= len(m.backends) {
		return nil
	}
	return m.backends[index]
}

func (m *Mirror) Primary() storage.Storage {
	return m.backends[m.primary]
}

func (m *Mirror) PrimaryIndex() int {
	return m.primary
}

func (m *Mirror) WriteStrategy() WriteStrategy {
	return m.strategy
}

func (m *Mirror) ReturnPolicy() ReturnPolicy {
	return m.policy
}

// Zero means no per-backend timeout
func (m *Mirror) BackendTimeout() time.Duration {
	return m.timeout
}

// Close waits for pending background writes, then closes every backend
func (m *Mirror) Close() error {
	m.inflight.Wait()

	var errs []error
	for i, backend := range m.backends {
		if err := backend.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing backend %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Builder assembles a Mirror
type Builder struct {
	backends []storage.Storage
	strategy WriteStrategy
	policy   ReturnPolicy
	timeout  time.Duration
	primary  int
	logger   *slog.Logger
	observer Observer
}

func NewBuilder() *Builder {
	return &Builder{
		strategy: AllOrFail(false),
		policy:   WaitAll,
	}
}

// Appends a backend. Backend indices follow the order of these calls
func (b *Builder) AddBackend(backend storage.Storage) *Builder {
	b.backends = append(b.backends, backend)
	return b
}

func (b *Builder) WithWriteStrategy(strategy WriteStrategy) *Builder {
	b.strategy = strategy
	return b
}

func (b *Builder) WithReturnPolicy(policy ReturnPolicy) *Builder {
	b.policy = policy
	return b
}

// Sets the per-backend timeout for writes and rollback deletes. Zero disables it
func (b *Builder) WithBackendTimeout(timeout time.Duration) *Builder {
	b.timeout = timeout
	return b
}

// Sets the backend used for reads (default 0)
func (b *Builder) WithPrimary(index int) *Builder {
	b.primary = index
	return b
}

func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

func (b *Builder) WithObserver(observer Observer) *Builder {
	b.observer = observer
	return b
}

func (b *Builder) Build() (*Mirror, error) {
	if len(b.backends) == 0 {
		return nil, ErrNoBackends
	}
	if b.primary < 0 || b.primary >= len(b.backends) {
		return nil, fmt.Errorf("%w: %d (have %d backends)", ErrPrimaryOutOfRange, b.primary, len(b.backends))
	}
	for i, backend := range b.backends {
		if backend == nil {
			return nil, fmt.Errorf("%w at index %d", ErrNilBackend, i)
		}
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}
	observer := b.observer
	if observer == nil {
		observer = nopObserver{}
	}

	backends := make([]storage.Storage, len(b.backends))
	copy(backends, b.backends)

	return &Mirror{
		backends: backends,
		strategy: b.strategy,
		policy:   b.policy,
		timeout:  b.timeout,
		primary:  b.primary,
		logger:   logger.With("component", "mirror"),
		observer: observer,
	}, nil
}
