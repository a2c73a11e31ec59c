// File: pkg/multi/mirror/write.go
package mirror

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"stowage/pkg/storage"

	"golang.org/x/sync/errgroup"
)

// Put buffers r once and replays the buffer to every backend according to the return policy.
// A failed write returns a *Failure
func (m *Mirror) Put(ctx context.Context, id string, r io.Reader, size int64) error {
	payload, err := io.ReadAll(r)
	if err != nil {
		return storage.IO(fmt.Errorf("buffering %s: %w", id, err))
	}
	if size >= 0 && size != int64(len(payload)) {
		m.logger.Warn("Declared size does not match buffered payload", "id", id, "declared", size, "actual", len(payload))
	}

	w := &write{
		mirror:   m,
		id:       id,
		payload:  payload,
		required: m.strategy.Required(len(m.backends)),
	}

	switch m.policy {
	case Optimistic:
		release, err := w.optimistic(ctx)
		if release != nil {
			defer release()
		}
		return err
	case FastFail:
		return w.fastFail(ctx)
	default:
		return w.waitAll(ctx)
	}
}

// write holds the state of one logical put
type write struct {
	mirror   *Mirror
	id       string
	payload  []byte
	required int
}

func (w *write) waitAll(ctx context.Context) error {
	m := w.mirror
	outcomes := make([]Outcome, len(m.backends))

	var g errgroup.Group
	for i := range m.backends {
		g.Go(func() error {
			outcomes[i] = w.putOne(ctx, i)
			return nil
		})
	}
	_ = g.Wait()

	return w.finish(ctx, outcomes)
}

// Writes backends in order until the threshold is met. The returned function releases the
// background writes for the backends that were not attempted; the caller runs it on return
func (w *write) optimistic(ctx context.Context) (func(), error) {
	m := w.mirror
	outcomes := make([]Outcome, 0, len(m.backends))
	successes := 0

	for i := range m.backends {
		outcome := w.putOne(ctx, i)
		outcomes = append(outcomes, outcome)
		if !outcome.OK() {
			continue
		}

		successes++
		if successes < w.required {
			continue
		}

		remaining := len(m.backends) - (i + 1)
		m.logger.Info("Threshold met, returning early",
			"id", w.id, "successes", successes, "required", w.required, "background_backends", remaining)
		m.observer.WriteFinished(Optimistic, w.required, successes, nil)

		if remaining == 0 {
			return nil, nil
		}
		return w.background(ctx, i+1), nil
	}

	return nil, w.finish(ctx, outcomes)
}

// Starts a detached goroutine writing backends from index onwards, gated on the returned
// release function. The goroutine outlives the caller's context cancellation
func (w *write) background(ctx context.Context, from int) func() {
	m := w.mirror
	gate := make(chan struct{})
	bgCtx := context.WithoutCancel(ctx)

	m.inflight.Add(1)
	go func() {
		defer m.inflight.Done()
		<-gate
		for i := from; i < len(m.backends); i++ {
			outcome := w.putOne(bgCtx, i)
			if outcome.OK() {
				m.logger.Debug("Background write completed", "id", w.id, "backend_index", i)
			} else {
				m.logger.Warn("Background write failed", "id", w.id, "backend_index", i, "error", outcome.Err)
			}
			m.observer.BackgroundWriteFinished(i, outcome.Err)
		}
	}()

	return func() { close(gate) }
}

func (w *write) fastFail(ctx context.Context) error {
	m := w.mirror
	outcomes := make([]Outcome, 0, len(m.backends))
	successes := 0

	for i := range m.backends {
		outcome := w.putOne(ctx, i)
		outcomes = append(outcomes, outcome)
		if outcome.OK() {
			successes++
			if successes >= w.required {
				m.observer.WriteFinished(FastFail, w.required, successes, nil)
				return nil
			}
		}

		remaining := len(m.backends) - (i + 1)
		if successes+remaining < w.required {
			m.logger.Warn("Threshold unreachable, failing fast",
				"id", w.id, "successes", successes, "required", w.required, "remaining_backends", remaining)
			break
		}
	}

	return w.finish(ctx, outcomes)
}

// Evaluates the collected outcomes, rolling back when the strategy asks for it
func (w *write) finish(ctx context.Context, outcomes []Outcome) error {
	m := w.mirror
	err := Evaluate(outcomes, w.required)

	var failure *Failure
	if !errors.As(err, &failure) {
		m.observer.WriteFinished(m.policy, w.required, countSuccesses(outcomes), nil)
		return nil
	}

	m.logger.Error("Mirror write failed",
		"id", w.id, "successes", len(failure.Successes), "failures", len(failure.Failures), "required", w.required)

	if m.strategy.Rollback && len(failure.Successes) > 0 {
		failure.RollbackErrors = m.rollback(ctx, w.id, failure.Successes)
	}

	m.observer.WriteFinished(m.policy, w.required, len(failure.Successes), failure)
	return failure
}

func (w *write) putOne(ctx context.Context, index int) Outcome {
	m := w.mirror
	err := m.call(ctx, func(ctx context.Context) error {
		return m.backends[index].Put(ctx, w.id, bytes.NewReader(w.payload), int64(len(w.payload)))
	})
	if err != nil {
		m.logger.Warn("Backend write failed", "id", w.id, "backend_index", index, "error", err)
	}
	return Outcome{Index: index, Err: err}
}

// Runs fn, racing it against the per-backend timeout when one is configured.
// On timeout fn's context is cancelled, but fn itself may keep running if the backend ignores it
func (m *Mirror) call(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.timeout <= 0 {
		return fn(ctx)
	}

	callCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- fn(callCtx)
	}()

	select {
	case err := <-done:
		if err != nil && ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w after %s: %w", ErrBackendTimeout, m.timeout, err)
		}
		return err
	case <-callCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w after %s", ErrBackendTimeout, m.timeout)
	}
}

func countSuccesses(outcomes []Outcome) int {
	n := 0
	for _, o := range outcomes {
		if o.OK() {
			n++
		}
	}
	return n
}
