// File: internal/provider/registry/builtin.go
package registry

import (
	"context"
	"errors"
	"log/slog"

	"stowage/internal/config"
	"stowage/pkg/storage"
	"stowage/pkg/storage/local"
	"stowage/pkg/storage/memory"
)

// The stdlib backends register here rather than in their own packages so that
// they stay free of configuration imports and usable from any test
func init() {
	RegisterBackend(storage.KindMemory, BackendRegistration{
		Validate: func(config.BackendConfig) error { return nil },
		Initializer: func(context.Context, string, config.BackendConfig, *slog.Logger) (storage.Storage, error) {
			return memory.New(), nil
		},
	})

	RegisterBackend(storage.KindLocal, BackendRegistration{
		Validate: func(cfg config.BackendConfig) error {
			if cfg.Root == "" {
				return errors.New("root is required for local backends")
			}
			return nil
		},
		Initializer: func(_ context.Context, _ string, cfg config.BackendConfig, logger *slog.Logger) (storage.Storage, error) {
			return local.New(cfg.Root, logger)
		},
	})
}
