package repository

import (
	"context"
	"time"

	"contentflow/internal/domain"
)

// Error constants for the repository layer.
var (
	ErrNotFound        = RepositoryError("not found")
	ErrDuplicateSource = RepositoryError("content for source already recorded")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// ContentRepository defines the interface for interacting with content
// metadata records.
type ContentRepository interface {
	// Create inserts a new metadata record. Inserting a record whose
	// source bucket+key is already recorded returns ErrDuplicateSource.
	Create(ctx context.Context, content *domain.ContentMetadata) error

	// ExistsBySource reports whether a record for the given source object
	// already exists. Backs the redelivery idempotency check.
	ExistsBySource(ctx context.Context, bucket, key string) (bool, error)

	// GetByUserID retrieves all records owned by a user via the user_id
	// secondary index.
	GetByUserID(ctx context.Context, userID string) ([]domain.ContentMetadata, error)

	// ScanRecent retrieves a bounded window of records across all users,
	// most recent first. Global statistics derived from it are an
	// approximation bounded by the window.
	ScanRecent(ctx context.Context, limit int) ([]domain.ContentMetadata, error)
}

// AnalyticsRepository defines the interface for interacting with per-user
// aggregate counters.
type AnalyticsRepository interface {
	// Get retrieves the analytics record for a user, or ErrNotFound if the
	// user has never uploaded.
	Get(ctx context.Context, userID string) (*domain.UserAnalytics, error)

	// RecordUpload increments the user's upload count by one and sets the
	// last-upload timestamp, creating the record if absent. The increment
	// is a single server-side atomic operation so concurrent ingestions
	// never lose updates.
	RecordUpload(ctx context.Context, userID string, at time.Time) error
}
