// File: pkg/storage/aws/errors.go
package aws

import (
	"context"
	"errors"
	"net/http"

	"stowage/pkg/storage"

	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// Maps S3 API errors onto the storage error kinds. HEAD responses carry no body,
// so the HTTP status is consulted when the error code is not conclusive
func mapError(id string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", "NoSuchBucket":
			return &storage.Error{Kind: storage.ErrNotFound, ID: id, Err: err}
		case "AccessDenied", "Forbidden", "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken":
			return storage.PermissionDenied(id, err)
		}
	}

	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.HTTPStatusCode() {
		case http.StatusNotFound:
			return &storage.Error{Kind: storage.ErrNotFound, ID: id, Err: err}
		case http.StatusUnauthorized, http.StatusForbidden:
			return storage.PermissionDenied(id, err)
		}
	}
	return &storage.Error{Kind: storage.ErrConnection, ID: id, Err: err}
}
