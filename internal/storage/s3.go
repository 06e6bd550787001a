package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"

	"contentflow/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config" // Alias config to avoid clash
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// s3Storage implements the ObjectStorage interface using an S3-compatible
// backend.
type s3Storage struct {
	client *s3.Client
	logger *slog.Logger
}

// NewS3Storage creates a new S3 storage adapter.
func NewS3Storage(cfg config.S3Config, logger *slog.Logger) (ObjectStorage, error) {
	// Custom resolver for S3-compatible endpoints (like MinIO, LocalStack)
	customResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if cfg.Endpoint != "" {
			return aws.Endpoint{
				PartitionID:   "aws",
				URL:           cfg.Endpoint,
				SigningRegion: cfg.Region,
			}, nil
		}
		// Fall back to default AWS endpoint resolution if no custom endpoint is set
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})

	awsSDKConfig, err := awsCfg.LoadDefaultConfig(context.TODO(),
		awsCfg.WithRegion(cfg.Region),
		awsCfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		awsCfg.WithEndpointResolverWithOptions(customResolver),
	)
	if err != nil {
		return nil, err
	}

	// Force path-style addressing required by most S3-compatible services
	s3Client := s3.NewFromConfig(awsSDKConfig, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	logger.Info("s3 storage initialized", "endpoint", cfg.Endpoint, "region", cfg.Region)

	return &s3Storage{
		client: s3Client,
		logger: logger,
	}, nil
}

// GetObject fetches an object's full content.
func (s *s3Storage) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, s.mapError(err, bucket, key)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// PutObject writes an object under the given key.
func (s *s3Storage) PutObject(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		s.logger.Error("s3 put failed", "bucket", bucket, "key", key, "error", err)
		return err
	}
	return nil
}

// mapError translates SDK failures onto the storage layer's typed errors so
// callers never inspect provider error strings.
func (s *s3Storage) mapError(err error, bucket, key string) error {
	var noSuchKey *types.NoSuchKey
	var noSuchBucket *types.NoSuchBucket
	if errors.As(err, &noSuchKey) || errors.As(err, &noSuchBucket) {
		return ErrObjectNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NoSuchBucket", "NotFound":
			return ErrObjectNotFound
		case "AccessDenied", "Forbidden":
			return ErrAccessDenied
		}
	}

	s.logger.Error("s3 get failed", "bucket", bucket, "key", key, "error", err)
	return err
}
