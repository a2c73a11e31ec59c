// File: pkg/multi/mirror/rollback.go
package mirror

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Deletes id from the given backends in parallel and returns the deletes that failed.
// Rollback runs to completion even if the caller's context is cancelled
func (m *Mirror) rollback(ctx context.Context, id string, indices []int) []BackendError {
	m.logger.Info("Starting rollback", "id", id, "backends", indices)

	rollbackCtx := context.WithoutCancel(ctx)
	errs := make([]error, len(indices))

	var g errgroup.Group
	for j, index := range indices {
		g.Go(func() error {
			errs[j] = m.call(rollbackCtx, func(ctx context.Context) error {
				return m.backends[index].Delete(ctx, id)
			})
			return nil
		})
	}
	_ = g.Wait()

	var rollbackErrors []BackendError
	for j, index := range indices {
		m.observer.RollbackFinished(index, errs[j])
		if errs[j] != nil {
			rollbackErrors = append(rollbackErrors, BackendError{Index: index, Err: errs[j]})
		}
	}

	if len(rollbackErrors) > 0 {
		m.logger.Error("Rollback encountered errors", "id", id, "rollback_errors", len(rollbackErrors))
	} else {
		m.logger.Info("Rollback completed", "id", id)
	}
	return rollbackErrors
}
