// File: internal/provider/factory/factory.go
package factory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"stowage/internal/config"
	"stowage/internal/metrics"
	"stowage/internal/provider/registry"
	"stowage/pkg/multi/fallback"
	"stowage/pkg/multi/mirror"
	"stowage/pkg/multi/readonly"
	"stowage/pkg/storage"
)

// Reserved target names for the composite backends
const (
	TargetMirror   = "mirror"
	TargetFallback = "fallback"
)

type Factory struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Collector
}

func NewFactory(cfg *config.Config, logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// Attaches a collector whose observer is installed on every mirror the factory builds
func (f *Factory) WithMetrics(collector *metrics.Collector) *Factory {
	f.metrics = collector
	return f
}

// Returns the names of the configured backends, sorted
func (f *Factory) GetConfiguredBackends() []string {
	return f.cfg.BackendNames()
}

// Checks if a backend with this name is configured and its kind is supported
func (f *Factory) IsConfigured(name string) bool {
	bc, ok := f.cfg.Backends[strings.ToLower(name)]
	return ok && registry.IsSupported(bc.Kind)
}

// Returns the kind of a configured backend
func (f *Factory) KindOf(name string) (storage.Kind, bool) {
	bc, ok := f.cfg.Backends[strings.ToLower(name)]
	return storage.Kind(bc.Kind), ok
}

// Picks the target used when none is given: the mirror, then the fallback pair,
// then the only backend when exactly one is configured
func (f *Factory) DefaultTarget() (string, error) {
	switch {
	case f.cfg.Mirror.Enabled():
		return TargetMirror, nil
	case f.cfg.Fallback.Enabled():
		return TargetFallback, nil
	case len(f.cfg.Backends) == 1:
		return f.cfg.BackendNames()[0], nil
	case len(f.cfg.Backends) == 0:
		return "", errors.New("no backends configured. Use 'stowage config set backends.<name>.kind <kind>' to add one")
	default:
		return "", fmt.Errorf("several backends are configured and no mirror or fallback is defined; pick one with --target (one of %v)", f.cfg.BackendNames())
	}
}

// Builds the storage behind a target name: "mirror", "fallback" or a backend name.
// An empty target resolves to DefaultTarget. readOnly wraps the result in a write guard
func (f *Factory) GetTarget(ctx context.Context, target string, readOnly bool) (storage.Storage, error) {
	if target == "" {
		var err error
		if target, err = f.DefaultTarget(); err != nil {
			return nil, err
		}
	}

	var (
		s   storage.Storage
		err error
	)
	switch strings.ToLower(target) {
	case TargetMirror:
		s, err = f.GetMirror(ctx)
	case TargetFallback:
		s, err = f.GetFallback(ctx)
	default:
		s, err = f.GetBackend(ctx, target)
	}
	if err != nil {
		return nil, err
	}

	if readOnly {
		return readonly.New(s, f.logger.With("target", target)), nil
	}
	return s, nil
}

// Initializes the backend configured under name
func (f *Factory) GetBackend(ctx context.Context, name string) (storage.Storage, error) {
	normalizedName := strings.ToLower(name)
	bc, ok := f.cfg.Backends[normalizedName]
	if !ok {
		return nil, fmt.Errorf("backend '%s' is not configured. Use 'stowage config set backends.%s.kind <kind>' (configured: %v)", name, normalizedName, f.cfg.BackendNames())
	}

	registration, exists := registry.GetRegistration(bc.Kind)
	if !exists {
		return nil, fmt.Errorf("unsupported backend kind %q for '%s'. Supported kinds are: %v", bc.Kind, normalizedName, registry.GetSupportedKinds())
	}
	if err := registration.Validate(bc); err != nil {
		return nil, fmt.Errorf("backend '%s' is misconfigured: %w", normalizedName, err)
	}

	backendLogger := f.logger.With("backend", normalizedName)
	client, err := registration.Initializer(ctx, normalizedName, bc, backendLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize backend %s: %w", normalizedName, err)
	}
	return client, nil
}

// Builds the mirror described by the mirror section. Backend indices follow mirror.backends
func (f *Factory) GetMirror(ctx context.Context) (*mirror.Mirror, error) {
	mc := f.cfg.Mirror
	if !mc.Enabled() {
		return nil, errors.New("no mirror configured. Use 'stowage config set mirror.backends a,b,c'")
	}

	strategy, err := writeStrategy(mc)
	if err != nil {
		return nil, err
	}
	policy, err := mirror.ParseReturnPolicy(mc.ReturnPolicy)
	if err != nil {
		return nil, err
	}

	primary := 0
	if mc.Primary != "" {
		primary = slices.Index(mc.Backends, strings.ToLower(mc.Primary))
		if primary < 0 {
			return nil, fmt.Errorf("mirror primary %q is not one of %v", mc.Primary, mc.Backends)
		}
	}

	backends, err := f.openAll(ctx, mc.Backends)
	if err != nil {
		return nil, err
	}

	b := mirror.NewBuilder().
		WithWriteStrategy(strategy).
		WithReturnPolicy(policy).
		WithBackendTimeout(mc.BackendTimeout).
		WithPrimary(primary).
		WithLogger(f.logger.With("target", TargetMirror))
	if f.metrics != nil {
		b.WithObserver(f.metrics.MirrorObserver(mc.Backends))
	}
	for _, backend := range backends {
		b.AddBackend(backend)
	}

	m, err := b.Build()
	if err != nil {
		closeAll(backends)
		return nil, fmt.Errorf("failed to build mirror: %w", err)
	}
	f.logger.Debug("Mirror built", "backends", mc.Backends, "strategy", strategy, "return_policy", policy, "primary", mc.Backends[primary])
	return m, nil
}

func (f *Factory) GetFallback(ctx context.Context) (*fallback.Fallback, error) {
	fc := f.cfg.Fallback
	if !fc.Enabled() {
		return nil, errors.New("no fallback configured. Use 'stowage config set fallback.primary <name>' and 'fallback.secondary <name>'")
	}

	backends, err := f.openAll(ctx, []string{fc.Primary, fc.Secondary})
	if err != nil {
		return nil, err
	}
	return fallback.New(backends[0], backends[1]).
		WithWriteThrough(fc.WriteThrough).
		WithLogger(f.logger.With("target", TargetFallback)), nil
}

// Opens every named backend, closing the ones already opened when one fails
func (f *Factory) openAll(ctx context.Context, names []string) ([]storage.Storage, error) {
	backends := make([]storage.Storage, 0, len(names))
	for _, name := range names {
		backend, err := f.GetBackend(ctx, name)
		if err != nil {
			closeAll(backends)
			return nil, err
		}
		backends = append(backends, backend)
	}
	return backends, nil
}

func closeAll(backends []storage.Storage) {
	for _, backend := range backends {
		_ = backend.Close()
	}
}

func writeStrategy(mc config.MirrorConfig) (mirror.WriteStrategy, error) {
	if mc.Strategy == "" {
		return mirror.AllOrFail(mc.Rollback), nil
	}
	kind, err := mirror.ParseStrategyKind(mc.Strategy)
	if err != nil {
		return mirror.WriteStrategy{}, err
	}
	return mirror.WriteStrategy{Kind: kind, Rollback: mc.Rollback}, nil
}
