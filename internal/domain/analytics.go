package domain

import "time"

// UserAnalytics holds the per-user aggregate counter. One record per user,
// created on first ingestion via an upsert and updated on every subsequent
// one. upload_count is maintained with a server-side atomic increment so
// concurrent ingestions for the same user never lose updates.
type UserAnalytics struct {
	UserID      string     `bson:"_id" json:"user_id"`
	UploadCount int64      `bson:"upload_count" json:"upload_count"`
	LastUpload  *time.Time `bson:"last_upload,omitempty" json:"last_upload"`
}

// UserStats combines the stored counter with sums derived from the user's
// content records.
type UserStats struct {
	UploadCount        int64      `json:"upload_count"`
	LastUpload         *time.Time `json:"last_upload"`
	TotalOriginalSize  int64      `json:"total_original_size"`
	TotalProcessedSize int64      `json:"total_processed_size"`
	// CompressionRatio is total_original_size / total_processed_size,
	// or 0 when the user has no processed content.
	CompressionRatio float64 `json:"compression_ratio"`
}

// RecentContent is one entry in a user's most-recent list.
type RecentContent struct {
	ContentID    string    `json:"content_id"`
	OriginalKey  string    `json:"original_key"`
	ProcessedKey string    `json:"processed_key"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserContent summarizes the user's own records.
type UserContent struct {
	TotalItems       int             `json:"total_items"`
	RecentContentIDs []RecentContent `json:"recent_content_ids"`
}

// RecentUpload is one entry in the cross-user recent list.
type RecentUpload struct {
	ContentID string    `json:"content_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// GlobalStats are computed from a bounded scan window, not the full table.
// ScanWindow echoes the window size so consumers can see that the totals
// are an approximation.
type GlobalStats struct {
	TotalContentItems int            `json:"total_content_items"`
	TotalUsers        int            `json:"total_users"`
	RecentUploads     []RecentUpload `json:"recent_uploads"`
	ScanWindow        int            `json:"scan_window"`
}

// AnalyticsReport is the composed read-only view returned by the query path.
type AnalyticsReport struct {
	UserID         string      `json:"user_id"`
	UserStats      UserStats   `json:"user_stats"`
	UserContent    UserContent `json:"user_content"`
	GlobalStats    GlobalStats `json:"global_stats"`
	QueryTimestamp time.Time   `json:"query_timestamp"`
}
