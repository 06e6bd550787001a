package domain

import (
	"net/url"
	"strings"
)

// EventNotification mirrors the object-created notification batch emitted by
// an S3-compatible store. Only the fields the pipeline reads are modeled.
type EventNotification struct {
	Records []ObjectCreatedEvent `json:"Records"`
}

// ObjectCreatedEvent names the bucket and (URL-encoded) key of one created
// object.
type ObjectCreatedEvent struct {
	EventName string `json:"eventName,omitempty"`
	S3        struct {
		Bucket struct {
			Name string `json:"name"`
		} `json:"bucket"`
		Object struct {
			Key  string `json:"key"`
			Size int64  `json:"size,omitempty"`
		} `json:"object"`
	} `json:"s3"`
}

// DecodedKey returns the object key with the notification encoding reversed:
// the store encodes spaces as '+' before percent-encoding the rest.
func (e ObjectCreatedEvent) DecodedKey() (string, error) {
	return url.QueryUnescape(strings.ReplaceAll(e.S3.Object.Key, "+", " "))
}

// acceptedImageExtensions are the key suffixes the pipeline ingests. Other
// keys are skipped, not failed, so mixed-content buckets are tolerated.
var acceptedImageExtensions = []string{".jpg", ".jpeg"}

// IsAcceptedImage reports whether a decoded key names an ingestible image.
func IsAcceptedImage(key string) bool {
	lower := strings.ToLower(key)
	for _, ext := range acceptedImageExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// ItemOutcome classifies the result of processing one notification.
type ItemOutcome string

const (
	OutcomeProcessed ItemOutcome = "processed"
	OutcomeSkipped   ItemOutcome = "skipped"
	OutcomeDuplicate ItemOutcome = "duplicate"
	OutcomeFailed    ItemOutcome = "failed"
)

// ItemResult is the per-notification outcome. Items in a batch are
// independent: one item's failure never aborts or rolls back its siblings.
type ItemResult struct {
	Bucket    string      `json:"bucket"`
	Key       string      `json:"key"`
	Outcome   ItemOutcome `json:"outcome"`
	ContentID string      `json:"content_id,omitempty"`
	ErrorKind ErrorKind   `json:"error_kind,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// BatchSummary aggregates the per-item results of one pipeline invocation.
type BatchSummary struct {
	Processed  int          `json:"processed"`
	Skipped    int          `json:"skipped"`
	Duplicates int          `json:"duplicates"`
	Failed     int          `json:"failed"`
	Results    []ItemResult `json:"results"`
}

// Add records one item result and bumps the matching counter.
func (b *BatchSummary) Add(r ItemResult) {
	switch r.Outcome {
	case OutcomeProcessed:
		b.Processed++
	case OutcomeSkipped:
		b.Skipped++
	case OutcomeDuplicate:
		b.Duplicates++
	case OutcomeFailed:
		b.Failed++
	}
	b.Results = append(b.Results, r)
}
