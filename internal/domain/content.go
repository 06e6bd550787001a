package domain

import (
	"errors"
	"fmt"
	"time"
)

// ContentStatus tracks the lifecycle of an ingested object.
type ContentStatus string

const (
	StatusProcessed ContentStatus = "processed"
	StatusFailed    ContentStatus = "failed"
)

// ContentMetadata is the record persisted for every successfully ingested
// object. content_id is the primary key and is assigned exactly once, before
// any external write, so all writes for one ingestion share one identifier.
type ContentMetadata struct {
	ContentID      string        `bson:"_id" json:"content_id"`
	UserID         string        `bson:"user_id" json:"user_id"`
	OriginalKey    string        `bson:"original_key" json:"original_key"`
	OriginalBucket string        `bson:"original_bucket" json:"original_bucket"`
	ProcessedKey   string        `bson:"processed_key" json:"processed_key"`
	OriginalSize   int64         `bson:"original_size" json:"original_size"`
	ProcessedSize  int64         `bson:"processed_size" json:"processed_size"`
	Status         ContentStatus `bson:"status" json:"status"`
	CreatedAt      time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `bson:"updated_at" json:"updated_at"`
}

// ProcessedKey derives the deterministic artifact location for a content ID.
func ProcessedKey(contentID string) string {
	return fmt.Sprintf("processed/%s.jpg", contentID)
}

// NewContentMetadata assembles a metadata record from transform results and
// identifiers. Pure: no I/O, no clock access beyond the supplied now.
func NewContentMetadata(contentID, userID, originalBucket, originalKey, processedKey string, originalSize, processedSize int64, now time.Time) (*ContentMetadata, error) {
	if contentID == "" || userID == "" {
		return nil, errors.New("content metadata requires contentID and userID")
	}
	if originalBucket == "" || originalKey == "" || processedKey == "" {
		return nil, errors.New("content metadata requires originalBucket, originalKey, and processedKey")
	}
	if originalSize < 0 || processedSize < 0 {
		return nil, errors.New("content sizes must be non-negative")
	}

	now = now.UTC()
	return &ContentMetadata{
		ContentID:      contentID,
		UserID:         userID,
		OriginalKey:    originalKey,
		OriginalBucket: originalBucket,
		ProcessedKey:   processedKey,
		OriginalSize:   originalSize,
		ProcessedSize:  processedSize,
		Status:         StatusProcessed,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}
