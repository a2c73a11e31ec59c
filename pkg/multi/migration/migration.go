// File: pkg/multi/migration/migration.go
package migration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"stowage/pkg/storage"

	"golang.org/x/sync/errgroup"
)

const DefaultConcurrency = 4

var (
	ErrDestinationExists = errors.New("object already exists at destination")
	ErrNilStorage        = errors.New("source and destination are required")
)

// Conflict decides what happens when an object already exists at the destination
type Conflict int

const (
	ConflictOverwrite Conflict = iota
	ConflictSkip
	ConflictFail
)

func (c Conflict) String() string {
	switch c {
	case ConflictOverwrite:
		return "overwrite"
	case ConflictSkip:
		return "skip"
	case ConflictFail:
		return "fail"
	default:
		return fmt.Sprintf("conflict(%d)", int(c))
	}
}

func ParseConflict(s string) (Conflict, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "overwrite":
		return ConflictOverwrite, nil
	case "skip":
		return ConflictSkip, nil
	case "fail":
		return ConflictFail, nil
	default:
		return 0, fmt.Errorf("unknown conflict strategy %q (want overwrite, skip or fail)", s)
	}
}

type Options struct {
	// Only ids with this prefix are migrated; empty migrates everything
	Prefix   string
	Conflict Conflict
	// Maximum number of objects in flight. Values below 1 are treated as 1
	Concurrency int
	// Deletes each source object after it was copied (move instead of copy)
	DeleteSource bool
	Logger       *slog.Logger
}

func DefaultOptions() Options {
	return Options{Conflict: ConflictOverwrite, Concurrency: DefaultConcurrency}
}

// ItemError records why a single object was not migrated
type ItemError struct {
	ID  string
	Err error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("%s: %v", e.ID, e.Err)
}

func (e ItemError) Unwrap() error {
	return e.Err
}

// Result lists the ids in each outcome, in source listing order.
// An id whose source delete failed is still counted as transferred
type Result struct {
	Transferred []string
	Skipped     []string
	Deleted     []string
	Errors      []ItemError
}

func (r *Result) TotalAttempted() int {
	return len(r.Transferred) + len(r.Skipped) + len(r.Errors)
}

// Reports whether every listed object was transferred or skipped
func (r *Result) Complete() bool {
	return len(r.Errors) == 0
}

func (r *Result) String() string {
	s := fmt.Sprintf("Migration: %d transferred, %d skipped, %d errors", len(r.Transferred), len(r.Skipped), len(r.Errors))
	if len(r.Deleted) > 0 {
		s += fmt.Sprintf(", %d deleted from source", len(r.Deleted))
	}
	return s
}

type outcomeKind int

const (
	outcomeTransferred outcomeKind = iota
	outcomeMoved
	outcomeSkipped
	outcomeFailed
)

type outcome struct {
	kind outcomeKind
	err  error
}

// Migrate copies every object under opts.Prefix from src to dst. Per-object failures are
// collected in the Result; the returned error is reserved for failures that prevent the
// migration from running at all
func Migrate(ctx context.Context, src, dst storage.Storage, opts Options) (*Result, error) {
	if src == nil || dst == nil {
		return nil, ErrNilStorage
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "migration")
	concurrency := max(opts.Concurrency, 1)

	// A listing that fails before yielding any id means the source is unusable.
	// Later errors are recorded so the result is not reported complete
	var (
		ids        []string
		listErrors []ItemError
	)
	for id, err := range src.List(ctx, opts.Prefix) {
		if err != nil {
			if len(ids) == 0 && len(listErrors) == 0 {
				return nil, fmt.Errorf("listing source: %w", err)
			}
			logger.Warn("Failed to read an id while listing source, skipping", "error", err)
			listErrors = append(listErrors, ItemError{ID: opts.Prefix + "*", Err: fmt.Errorf("listing source: %w", err)})
			continue
		}
		ids = append(ids, id)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("listing source: %w", err)
	}
	logger.Debug("Collected source ids", "total", len(ids), "prefix", opts.Prefix)

	outcomes := make([]outcome, len(ids))
	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, id := range ids {
		g.Go(func() error {
			outcomes[i] = migrateOne(ctx, src, dst, id, opts, logger)
			return nil
		})
	}
	_ = g.Wait()

	result := &Result{Errors: listErrors}
	for i, o := range outcomes {
		id := ids[i]
		switch o.kind {
		case outcomeTransferred:
			result.Transferred = append(result.Transferred, id)
		case outcomeMoved:
			result.Transferred = append(result.Transferred, id)
			result.Deleted = append(result.Deleted, id)
		case outcomeSkipped:
			result.Skipped = append(result.Skipped, id)
		case outcomeFailed:
			result.Errors = append(result.Errors, ItemError{ID: id, Err: o.err})
		}
	}

	logger.Info("Migration complete",
		"transferred", len(result.Transferred),
		"skipped", len(result.Skipped),
		"errors", len(result.Errors),
		"deleted", len(result.Deleted))
	return result, nil
}

func migrateOne(ctx context.Context, src, dst storage.Storage, id string, opts Options, logger *slog.Logger) outcome {
	if opts.Conflict != ConflictOverwrite {
		exists, err := dst.Exists(ctx, id)
		if err != nil {
			logger.Warn("Failed to check destination", "id", id, "error", err)
			return outcome{kind: outcomeFailed, err: err}
		}
		if exists {
			if opts.Conflict == ConflictSkip {
				logger.Debug("Skipping, object exists at destination", "id", id)
				return outcome{kind: outcomeSkipped}
			}
			logger.Warn("Migration conflict, object exists at destination", "id", id)
			return outcome{kind: outcomeFailed, err: &storage.Error{Kind: storage.ErrGeneric, ID: id, Err: ErrDestinationExists}}
		}
	}

	if err := storage.CopyTo(ctx, src, id, dst); err != nil {
		logger.Warn("Failed to copy object", "id", id, "error", err)
		return outcome{kind: outcomeFailed, err: err}
	}

	if !opts.DeleteSource {
		return outcome{kind: outcomeTransferred}
	}
	if err := src.Delete(ctx, id); err != nil {
		logger.Warn("Copy succeeded but source delete failed", "id", id, "error", err)
		return outcome{kind: outcomeTransferred}
	}
	logger.Debug("Deleted source object after copy", "id", id)
	return outcome{kind: outcomeMoved}
}
