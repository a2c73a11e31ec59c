// File: pkg/storage/errors.go
package storage

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("object not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrConnection       = errors.New("storage backend connection error")
	ErrIO               = errors.New("i/o error")
	ErrGeneric          = errors.New("storage error")
)

// Error carries the taxonomy kind, the affected id (if any) and the underlying cause.
// errors.Is(err, ErrNotFound) and friends match on Kind
type Error struct {
	Kind error
	ID   string
	Err  error
}

func (e *Error) Error() string {
	var msg string
	switch {
	case e.ID != "" && e.Err != nil:
		msg = fmt.Sprintf("%v: %s: %v", e.Kind, e.ID, e.Err)
	case e.ID != "":
		msg = fmt.Sprintf("%v: %s", e.Kind, e.ID)
	case e.Err != nil:
		msg = fmt.Sprintf("%v: %v", e.Kind, e.Err)
	default:
		msg = e.Kind.Error()
	}
	return msg
}

func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NotFound(id string) error {
	return &Error{Kind: ErrNotFound, ID: id}
}

func PermissionDenied(id string, err error) error {
	return &Error{Kind: ErrPermissionDenied, ID: id, Err: err}
}

func Connection(err error) error {
	return &Error{Kind: ErrConnection, Err: err}
}

func IO(err error) error {
	return &Error{Kind: ErrIO, Err: err}
}

func Generic(format string, args ...any) error {
	return &Error{Kind: ErrGeneric, Err: fmt.Errorf(format, args...)}
}

// Returns the taxonomy kind of err, or ErrGeneric when err carries none
func KindOf(err error) error {
	for _, kind := range []error{ErrNotFound, ErrPermissionDenied, ErrConnection, ErrIO} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrGeneric
}
