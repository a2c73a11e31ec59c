// File: pkg/storage/storagetest/faulty.go
package storagetest

import (
	"context"
	"errors"
	"io"
	"iter"
	"sync"
	"time"

	"stowage/pkg/storage"
)

// Op identifies one method of the storage contract
type Op string

const (
	OpExists       Op = "exists"
	OpFolderExists Op = "folder_exists"
	OpPut          Op = "put"
	OpGet          Op = "get"
	OpDelete       Op = "delete"
	OpList         Op = "list"
)

// ErrInjected is the default failure returned by Faulty
var ErrInjected = errors.New("injected failure")

// Faulty wraps a backend and injects failures or delays per operation
// It also counts calls so tests can assert which backends were contacted
type Faulty struct {
	inner storage.Storage

	mu       sync.Mutex
	failures map[Op]error
	delays   map[Op]time.Duration
	calls    map[Op]int
}

var _ storage.Storage = (*Faulty)(nil)

func NewFaulty(inner storage.Storage) *Faulty {
	return &Faulty{
		inner:    inner,
		failures: make(map[Op]error),
		delays:   make(map[Op]time.Duration),
		calls:    make(map[Op]int),
	}
}

// Makes every call to op fail with err (ErrInjected when err is nil)
func (f *Faulty) FailOn(op Op, err error) *Faulty {
	if err == nil {
		err = ErrInjected
	}
	f.mu.Lock()
	f.failures[op] = err
	f.mu.Unlock()
	return f
}

// Makes every call to op sleep for d before running (or until ctx is done)
func (f *Faulty) DelayOn(op Op, d time.Duration) *Faulty {
	f.mu.Lock()
	f.delays[op] = d
	f.mu.Unlock()
	return f
}

// Clears injected failures and delays
func (f *Faulty) Heal() {
	f.mu.Lock()
	f.failures = make(map[Op]error)
	f.delays = make(map[Op]time.Duration)
	f.mu.Unlock()
}

func (f *Faulty) Calls(op Op) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *Faulty) Inner() storage.Storage {
	return f.inner
}

func (f *Faulty) enter(ctx context.Context, op Op) error {
	f.mu.Lock()
	f.calls[op]++
	failure := f.failures[op]
	delay := f.delays[op]
	f.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return failure
}

func (f *Faulty) Exists(ctx context.Context, id string) (bool, error) {
	if err := f.enter(ctx, OpExists); err != nil {
		return false, err
	}
	return f.inner.Exists(ctx, id)
}

func (f *Faulty) FolderExists(ctx context.Context, id string) (bool, error) {
	if err := f.enter(ctx, OpFolderExists); err != nil {
		return false, err
	}
	return f.inner.FolderExists(ctx, id)
}

func (f *Faulty) Put(ctx context.Context, id string, r io.Reader, size int64) error {
	if err := f.enter(ctx, OpPut); err != nil {
		return err
	}
	return f.inner.Put(ctx, id, r, size)
}

func (f *Faulty) GetInto(ctx context.Context, id string, w io.Writer) (int64, error) {
	if err := f.enter(ctx, OpGet); err != nil {
		return 0, err
	}
	return f.inner.GetInto(ctx, id, w)
}

func (f *Faulty) Delete(ctx context.Context, id string) error {
	if err := f.enter(ctx, OpDelete); err != nil {
		return err
	}
	return f.inner.Delete(ctx, id)
}

func (f *Faulty) List(ctx context.Context, prefix string) iter.Seq2[string, error] {
	if err := f.enter(ctx, OpList); err != nil {
		return func(yield func(string, error) bool) {
			yield("", err)
		}
	}
	return f.inner.List(ctx, prefix)
}

func (f *Faulty) Close() error {
	return f.inner.Close()
}
