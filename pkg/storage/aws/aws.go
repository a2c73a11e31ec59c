// File: pkg/storage/aws/aws.go
package aws

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"stowage/internal/config"
	"stowage/internal/provider/registry"
	"stowage/pkg/storage"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

func init() {
	registry.RegisterBackend(storage.KindS3, registry.BackendRegistration{
		Validate:    validate,
		Initializer: initialize,
	})
}

func validate(cfg config.BackendConfig) error {
	if cfg.Bucket == "" {
		return errors.New("bucket is required for s3 backends")
	}
	if cfg.Endpoint == "" && cfg.PathStyle {
		return errors.New("path_style only applies together with a custom endpoint")
	}
	return nil
}

func initialize(ctx context.Context, name string, cfg config.BackendConfig, logger *slog.Logger) (storage.Storage, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return NewAWSStorage(ctx, Options{
		Bucket:       cfg.Bucket,
		Region:       cfg.Region,
		Endpoint:     cfg.Endpoint,
		PathStyle:    cfg.PathStyle,
		CreateBucket: cfg.CreateBucket,
	}, logger)
}

type Options struct {
	Bucket string
	// Falls back to the SDK's default resolution (AWS_REGION, shared config) when empty
	Region string
	// Base URL of an S3-compatible store such as MinIO
	Endpoint  string
	PathStyle bool
	// Creates the bucket when it does not exist yet
	CreateBucket bool
}

// AWSStorage stores objects in a single S3 bucket
type AWSStorage struct {
	client *s3.Client
	bucket string
	region string
	logger *slog.Logger
}

var _ storage.Storage = (*AWSStorage)(nil)

// Creates a client from the default credential chain
func NewAWSStorage(ctx context.Context, opts Options, logger *slog.Logger) (*AWSStorage, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, storage.Connection(fmt.Errorf("failed to load AWS configuration: %w", err))
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = awssdk.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.PathStyle
		// S3-compatible stores frequently lack support for the newer default checksums
		o.RequestChecksumCalculation = awssdk.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = awssdk.ResponseChecksumValidationWhenRequired
	})

	s := NewFromClient(client, opts.Bucket, logger)
	s.region = cfg.Region

	if opts.CreateBucket {
		if err := s.ensureBucket(ctx); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Wraps an existing client
func NewFromClient(client *s3.Client, bucket string, logger *slog.Logger) *AWSStorage {
	if logger == nil {
		logger = slog.Default()
	}
	return &AWSStorage{
		client: client,
		bucket: bucket,
		logger: logger.With("bucket", bucket),
	}
}

func (s *AWSStorage) Bucket() string {
	return s.bucket
}

func (s *AWSStorage) ensureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: awssdk.String(s.bucket)})
	if err == nil {
		return nil
	}
	if !errors.Is(mapError(s.bucket, err), storage.ErrNotFound) {
		return mapError(s.bucket, fmt.Errorf("error checking bucket: %w", err))
	}

	s.logger.Info("Bucket does not exist, creating it", "region", s.region)
	input := &s3.CreateBucketInput{Bucket: awssdk.String(s.bucket)}
	// us-east-1 is the only region that rejects an explicit location constraint
	if s.region != "" && s.region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(s.region),
		}
	}
	if _, err := s.client.CreateBucket(ctx, input); err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			return nil
		}
		return mapError(s.bucket, fmt.Errorf("failed to create bucket: %w", err))
	}
	return nil
}

func (s *AWSStorage) Close() error {
	return nil
}
