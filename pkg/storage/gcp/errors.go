// File: pkg/storage/gcp/errors.go
package gcp

import (
	"context"
	"errors"
	"net/http"

	"stowage/pkg/storage"

	gcpstorage "cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// Maps Cloud Storage SDK errors onto the storage error kinds
func mapError(id string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, gcpstorage.ErrObjectNotExist) || errors.Is(err, gcpstorage.ErrBucketNotExist) {
		return &storage.Error{Kind: storage.ErrNotFound, ID: id, Err: err}
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return storage.PermissionDenied(id, err)
		case http.StatusNotFound:
			return &storage.Error{Kind: storage.ErrNotFound, ID: id, Err: err}
		}
	}
	return &storage.Error{Kind: storage.ErrConnection, ID: id, Err: err}
}
