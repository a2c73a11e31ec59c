package registry

import (
	"context"
	"log/slog"
	"testing"

	"stowage/internal/config"
	"stowage/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinsRegistered(t *testing.T) {
	assert.True(t, IsSupported("memory"))
	assert.True(t, IsSupported("LOCAL"))
	assert.False(t, IsSupported("ftp"))
	assert.Subset(t, GetSupportedKinds(), []string{"local", "memory"})
}

func TestLocalRegistration(t *testing.T) {
	registration, ok := GetRegistration("local")
	require.True(t, ok)

	assert.Error(t, registration.Validate(config.BackendConfig{Kind: "local"}))

	cfg := config.BackendConfig{Kind: "local", Root: t.TempDir()}
	require.NoError(t, registration.Validate(cfg))
	s, err := registration.Initializer(context.Background(), "disk", cfg, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	require.NoError(t, storage.PutBytes(context.Background(), s, "a.txt", []byte("a")))
}

func TestRegisterBackendPanics(t *testing.T) {
	assert.Panics(t, func() {
		RegisterBackend(storage.KindMemory, BackendRegistration{
			Validate:    func(config.BackendConfig) error { return nil },
			Initializer: func(context.Context, string, config.BackendConfig, *slog.Logger) (storage.Storage, error) { return nil, nil },
		})
	}, "duplicate kind")

	assert.Panics(t, func() {
		RegisterBackend("custom", BackendRegistration{})
	}, "missing functions")
}
