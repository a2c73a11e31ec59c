package mirror

import (
	"log/slog"
	"testing"

	"stowage/pkg/storage"
	"stowage/pkg/storage/memory"
	"stowage/pkg/storage/storagetest"

	"github.com/stretchr/testify/require"
)

func TestMirrorCompliance(t *testing.T) {
	configs := map[string]func(*Builder){
		"all or fail wait all": nil,
		"quorum fast fail": func(b *Builder) {
			b.WithWriteStrategy(Quorum(true)).WithReturnPolicy(FastFail)
		},
	}
	for name, configure := range configs {
		t.Run(name, func(t *testing.T) {
			storagetest.RunCompliance(t, func(t *testing.T) storage.Storage {
				b := NewBuilder().WithLogger(slog.New(slog.DiscardHandler))
				for range 3 {
					b.AddBackend(memory.New())
				}
				if configure != nil {
					configure(b)
				}
				m, err := b.Build()
				require.NoError(t, err)
				return m
			})
		})
	}
}
