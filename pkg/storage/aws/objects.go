// File: pkg/storage/aws/objects.go
package aws

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"stowage/pkg/storage"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func (s *AWSStorage) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: awssdk.String(s.bucket),
		Key:    awssdk.String(id),
	})
	if err == nil {
		return true, nil
	}
	mapped := mapError(id, err)
	if errors.Is(mapped, storage.ErrNotFound) {
		return false, nil
	}
	return false, mapped
}

// Folders are prefixes in S3, so a folder exists when a single key is found under id + "/"
func (s *AWSStorage) FolderExists(ctx context.Context, id string) (bool, error) {
	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  awssdk.String(s.bucket),
		Prefix:  awssdk.String(strings.TrimSuffix(id, "/") + "/"),
		MaxKeys: awssdk.Int32(1),
	})
	if err != nil {
		return false, mapError(id, err)
	}
	return len(out.Contents) > 0, nil
}

// PutObject needs a known length and a seekable body for signing, so other readers are buffered first
func (s *AWSStorage) Put(ctx context.Context, id string, r io.Reader, size int64) error {
	body, ok := r.(io.ReadSeeker)
	if !ok || size < 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return storage.IO(fmt.Errorf("buffering %s: %w", id, err))
		}
		body, size = bytes.NewReader(data), int64(len(data))
	}

	s.logger.Debug("Uploading object", "id", id, "size", size)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        awssdk.String(s.bucket),
		Key:           awssdk.String(id),
		Body:          body,
		ContentLength: awssdk.Int64(size),
	})
	if err != nil {
		return mapError(id, fmt.Errorf("uploading object: %w", err))
	}
	return nil
}

func (s *AWSStorage) GetInto(ctx context.Context, id string, w io.Writer) (int64, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: awssdk.String(s.bucket),
		Key:    awssdk.String(id),
	})
	if err != nil {
		return 0, mapError(id, err)
	}
	defer out.Body.Close()

	n, err := io.Copy(w, out.Body)
	if err != nil {
		return n, storage.IO(fmt.Errorf("downloading %s: %w", id, err))
	}
	return n, nil
}

func (s *AWSStorage) Delete(ctx context.Context, id string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: awssdk.String(s.bucket),
		Key:    awssdk.String(id),
	})
	if err == nil {
		return nil
	}
	mapped := mapError(id, err)
	if errors.Is(mapped, storage.ErrNotFound) {
		return nil
	}
	return mapped
}

func (s *AWSStorage) List(ctx context.Context, prefix string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		input := &s3.ListObjectsV2Input{Bucket: awssdk.String(s.bucket)}
		if prefix != "" {
			input.Prefix = awssdk.String(prefix)
		}

		paginator := s3.NewListObjectsV2Paginator(s.client, input)
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				yield("", mapError(prefix, fmt.Errorf("error listing objects: %w", err)))
				return
			}
			for _, obj := range page.Contents {
				if !yield(awssdk.ToString(obj.Key), nil) {
					return
				}
			}
		}
	}
}
