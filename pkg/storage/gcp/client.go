// File: pkg/storage/gcp/client.go
package gcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"stowage/internal/config"
	"stowage/internal/provider/registry"
	"stowage/pkg/storage"

	gcpstorage "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

func init() {
	registry.RegisterBackend(storage.KindGCS, registry.BackendRegistration{
		Validate:    validate,
		Initializer: initialize,
	})
}

// Checks that the backend block names a bucket, and a project whenever one is needed
func validate(cfg config.BackendConfig) error {
	if cfg.Bucket == "" {
		return errors.New("bucket is required for gcs backends")
	}
	if cfg.CreateBucket && cfg.Project == "" {
		return errors.New("project is required when create_bucket is set")
	}
	return nil
}

func initialize(ctx context.Context, name string, cfg config.BackendConfig, logger *slog.Logger) (storage.Storage, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return NewGCPStorage(ctx, Options{
		Bucket:       cfg.Bucket,
		Project:      cfg.Project,
		CreateBucket: cfg.CreateBucket,
		Location:     cfg.Location,
	}, logger)
}

type Options struct {
	Bucket  string
	Project string
	// Creates the bucket in Project when it does not exist yet
	CreateBucket bool
	Location     string
	// Extra client options such as credentials or a custom endpoint
	ClientOptions []option.ClientOption
}

// GCPStorage stores objects in a single Cloud Storage bucket
type GCPStorage struct {
	client    *gcpstorage.Client
	bucket    string
	projectID string
	logger    *slog.Logger
}

var (
	_ storage.Storage       = (*GCPStorage)(nil)
	_ storage.UsageReporter = (*GCPStorage)(nil)
)

func NewGCPStorage(ctx context.Context, opts Options, logger *slog.Logger) (*GCPStorage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	clientOpts := append([]option.ClientOption{option.WithUserAgent("stowage")}, opts.ClientOptions...)
	client, err := gcpstorage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, storage.Connection(fmt.Errorf("failed to create GCP storage client: %w", err))
	}

	g := &GCPStorage{
		client:    client,
		bucket:    opts.Bucket,
		projectID: opts.Project,
		logger:    logger.With("bucket", opts.Bucket),
	}

	if opts.CreateBucket {
		if err := g.ensureBucket(ctx, opts.Location); err != nil {
			client.Close()
			return nil, err
		}
	}
	return g, nil
}

func (g *GCPStorage) Bucket() string {
	return g.bucket
}

func (g *GCPStorage) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
