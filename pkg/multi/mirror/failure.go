// File: pkg/multi/mirror/failure.go
package mirror

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrMirrorFailure matches every *Failure through errors.Is
	ErrMirrorFailure = errors.New("mirror write failed")

	ErrBackendTimeout = errors.New("backend call timed out")
)

// Outcome is the result of one backend write
type Outcome struct {
	Index int
	Err   error
}

func (o Outcome) OK() bool {
	return o.Err == nil
}

// BackendError ties an error to the index of the backend that produced it
type BackendError struct {
	Index int
	Err   error
}

func (e BackendError) Error() string {
	return fmt.Sprintf("backend %d: %v", e.Index, e.Err)
}

func (e BackendError) Unwrap() error {
	return e.Err
}

// Failure reports the per-backend outcome of a replicated write that missed its threshold.
// Successes and Failures together never exceed the backend count; they fall short of it
// when FastFail stopped early. RollbackErrors is only populated when rollback ran
type Failure struct {
	Required       int
	Successes      []int
	Failures       []BackendError
	RollbackErrors []BackendError
}

func (f *Failure) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%v: %d backend(s) succeeded, %d required", ErrMirrorFailure, len(f.Successes), f.Required)
	for _, fe := range f.Failures {
		fmt.Fprintf(&sb, "; %v", fe)
	}
	if len(f.RollbackErrors) > 0 {
		fmt.Fprintf(&sb, " (rollback failed on %d backend(s))", len(f.RollbackErrors))
	}
	return sb.String()
}

func (f *Failure) Is(target error) bool {
	return target == ErrMirrorFailure
}

// Unwrap exposes the write errors (never the rollback errors) so errors.Is can see them
func (f *Failure) Unwrap() []error {
	errs := make([]error, 0, len(f.Failures))
	for _, fe := range f.Failures {
		errs = append(errs, fe)
	}
	return errs
}

// Attempted returns how many backends reported an outcome
func (f *Failure) Attempted() int {
	return len(f.Successes) + len(f.Failures)
}

// Evaluate decides whether a set of outcomes meets the required threshold.
// It returns nil on success and a *Failure otherwise
func Evaluate(outcomes []Outcome, required int) error {
	var successes []int
	var failures []BackendError
	for _, o := range outcomes {
		if o.OK() {
			successes = append(successes, o.Index)
		} else {
			failures = append(failures, BackendError{Index: o.Index, Err: o.Err})
		}
	}

	if len(successes) >= required {
		return nil
	}

	sort.Ints(successes)
	sort.Slice(failures, func(i, j int) bool {
		return failures[i].Index < failures[j].Index
	})
	return &Failure{
		Required:  required,
		Successes: successes,
		Failures:  failures,
	}
}
