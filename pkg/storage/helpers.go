// File: pkg/storage/helpers.go
package storage

import (
	"bytes"
	"context"
	"fmt"
)

func PutBytes(ctx context.Context, s Storage, id string, data []byte) error {
	return s.Put(ctx, id, bytes.NewReader(data), int64(len(data)))
}

func GetBytes(ctx context.Context, s Storage, id string) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := s.GetInto(ctx, id, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Copies one object from src to dst through an in-memory buffer
func CopyTo(ctx context.Context, src Storage, id string, dst Storage) error {
	var buf bytes.Buffer
	n, err := src.GetInto(ctx, id, &buf)
	if err != nil {
		return fmt.Errorf("failed to read %s from source: %w", id, err)
	}
	if err := dst.Put(ctx, id, &buf, n); err != nil {
		return fmt.Errorf("failed to write %s to destination: %w", id, err)
	}
	return nil
}

// Drains a List sequence into a slice, stopping at the first error
func Collect(ctx context.Context, s Storage, prefix string) ([]string, error) {
	var ids []string
	for id, err := range s.List(ctx, prefix) {
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
