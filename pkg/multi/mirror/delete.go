// File: pkg/multi/mirror/delete.go
package mirror

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Delete removes id from every backend concurrently. Because delete is idempotent, a single
// successful backend is enough; the first error is returned only when every backend failed
func (m *Mirror) Delete(ctx context.Context, id string) error {
	errs := make([]error, len(m.backends))

	var g errgroup.Group
	for i, backend := range m.backends {
		g.Go(func() error {
			errs[i] = backend.Delete(ctx, id)
			return nil
		})
	}
	_ = g.Wait()

	failures := 0
	var firstErr error
	for i, err := range errs {
		if err == nil {
			continue
		}
		failures++
		if firstErr == nil {
			firstErr = err
		}
		m.logger.Warn("Backend delete failed", "id", id, "backend_index", i, "error", err)
	}

	switch {
	case failures == len(m.backends):
		m.logger.Error("Delete failed on all backends", "id", id)
		return fmt.Errorf("delete failed on all %d backends: %w", len(m.backends), firstErr)
	case failures > 0:
		m.logger.Warn("Delete succeeded partially", "id", id, "successes", len(m.backends)-failures, "failures", failures)
	}
	return nil
}
