// File: pkg/storage/gcp/buckets.go
package gcp

import (
	"context"
	"errors"
	"fmt"

	gcpstorage "cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// Creates the bucket unless it already exists
func (g *GCPStorage) ensureBucket(ctx context.Context, location string) error {
	bucket := g.client.Bucket(g.bucket)

	_, err := bucket.Attrs(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gcpstorage.ErrBucketNotExist) {
		return mapError(g.bucket, fmt.Errorf("error getting bucket attributes: %w", err))
	}

	g.logger.Info("Bucket does not exist, creating it", "project", g.projectID, "location", location)
	attrs := &gcpstorage.BucketAttrs{
		Location: location,
	}
	if err := bucket.Create(ctx, g.projectID, attrs); err != nil {
		// Another process may have created it in the meantime
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == 409 {
			return nil
		}
		return mapError(g.bucket, fmt.Errorf("failed to create bucket: %w", err))
	}
	return nil
}
