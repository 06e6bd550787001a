package storage

import (
	"context"
	"errors"
)

// Error constants for the storage layer. Adapters map provider-specific
// failures onto these so callers can match by kind instead of message text.
var (
	ErrObjectNotFound = errors.New("object not found in storage")
	ErrAccessDenied   = errors.New("access to object denied")
)

// ObjectStorage defines the interface for object store operations used by
// the ingestion pipeline.
type ObjectStorage interface {
	// GetObject fetches the full content of an object. Returns
	// ErrObjectNotFound if the object or bucket is missing and
	// ErrAccessDenied if the caller may not read it.
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)

	// PutObject writes an object under the given key with the given
	// content type.
	PutObject(ctx context.Context, bucket, key string, data []byte, contentType string) error
}
