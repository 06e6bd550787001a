package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"contentflow/internal/domain"
	"contentflow/internal/repository"
	"contentflow/internal/storage"
	"contentflow/internal/transform"

	"github.com/google/uuid"
)

// IngestService processes batches of object-created notifications: fetch,
// transform, store the artifact, persist metadata, bump the user counter.
type IngestService interface {
	// ProcessBatch handles each notification in the batch independently
	// and returns per-item outcomes. One item's failure never aborts or
	// rolls back its siblings. The returned error is non-nil only when
	// the batch itself could not be processed (empty payload).
	ProcessBatch(ctx context.Context, event domain.EventNotification, userID string) (*domain.BatchSummary, error)
}

// IngestOptions carries the pipeline destination settings.
type IngestOptions struct {
	ProcessedBucket string
}

// ingestService implements the IngestService interface.
type ingestService struct {
	contentRepo   repository.ContentRepository
	analyticsRepo repository.AnalyticsRepository
	objectStore   storage.ObjectStorage
	transformer   transform.Transformer
	opts          IngestOptions
	logger        *slog.Logger
	now           func() time.Time
	newID         func() string
}

// ErrEmptyBatch is returned when a notification batch carries no records.
var ErrEmptyBatch = errors.New("notification batch has no records")

// NewIngestService creates a new instance of ingestService.
func NewIngestService(
	contentRepo repository.ContentRepository,
	analyticsRepo repository.AnalyticsRepository,
	objectStore storage.ObjectStorage,
	transformer transform.Transformer,
	opts IngestOptions,
	logger *slog.Logger,
) IngestService {
	return &ingestService{
		contentRepo:   contentRepo,
		analyticsRepo: analyticsRepo,
		objectStore:   objectStore,
		transformer:   transformer,
		opts:          opts,
		logger:        logger,
		now:           time.Now,
		newID:         uuid.NewString,
	}
}

func (s *ingestService) ProcessBatch(ctx context.Context, event domain.EventNotification, userID string) (*domain.BatchSummary, error) {
	if len(event.Records) == 0 {
		return nil, ErrEmptyBatch
	}

	summary := &domain.BatchSummary{}
	for _, record := range event.Records {
		summary.Add(s.processRecord(ctx, record, userID))
	}

	s.logger.Info("batch processed",
		"user_id", userID,
		"processed", summary.Processed,
		"skipped", summary.Skipped,
		"duplicates", summary.Duplicates,
		"failed", summary.Failed,
	)
	return summary, nil
}

// processRecord runs the full per-notification pipeline. Side effects happen
// in a fixed order: artifact write, metadata write, counter update. There is
// no compensating transaction: if the counter update fails after the
// metadata write succeeded, the record persists without a reflected
// increment and the item reports the failure rather than masking it.
func (s *ingestService) processRecord(ctx context.Context, record domain.ObjectCreatedEvent, userID string) domain.ItemResult {
	bucket := record.S3.Bucket.Name

	key, err := record.DecodedKey()
	if err != nil {
		return s.failure(bucket, record.S3.Object.Key, domain.NewFetchError("decode object key", err))
	}

	result := domain.ItemResult{Bucket: bucket, Key: key}

	if !domain.IsAcceptedImage(key) {
		s.logger.Info("skipping non-image object", "bucket", bucket, "key", key)
		result.Outcome = domain.OutcomeSkipped
		return result
	}

	// Redelivery check: a source object already recorded is reported as a
	// duplicate and produces no writes.
	exists, err := s.contentRepo.ExistsBySource(ctx, bucket, key)
	if err != nil {
		return s.failure(bucket, key, domain.NewStoreError("check duplicate source", err))
	}
	if exists {
		s.logger.Info("suppressing redelivered object", "bucket", bucket, "key", key)
		result.Outcome = domain.OutcomeDuplicate
		return result
	}

	original, err := s.objectStore.GetObject(ctx, bucket, key)
	if err != nil {
		return s.failure(bucket, key, domain.NewFetchError("fetch source object", err))
	}

	transformed, err := s.transformer.Transform(ctx, original)
	if err != nil {
		return s.failure(bucket, key, err)
	}

	// The content ID is assigned exactly once, before any external write,
	// so every write for this ingestion shares one identifier.
	contentID := s.newID()
	processedKey := domain.ProcessedKey(contentID)

	if err := s.objectStore.PutObject(ctx, s.opts.ProcessedBucket, processedKey, transformed.Data, transformed.ContentType); err != nil {
		return s.failure(bucket, key, domain.NewStoreError("store processed artifact", err))
	}

	metadata, err := domain.NewContentMetadata(
		contentID, userID, bucket, key, processedKey,
		int64(len(original)), int64(len(transformed.Data)), s.now(),
	)
	if err != nil {
		return s.failure(bucket, key, domain.NewStoreError("build content metadata", err))
	}

	if err := s.contentRepo.Create(ctx, metadata); err != nil {
		// A concurrent delivery of the same notification can win the
		// insert race between the duplicate check and here.
		if errors.Is(err, repository.ErrDuplicateSource) {
			s.logger.Info("lost insert race to concurrent delivery", "bucket", bucket, "key", key)
			result.Outcome = domain.OutcomeDuplicate
			return result
		}
		return s.failure(bucket, key, domain.NewStoreError("persist content metadata", err))
	}

	if err := s.analyticsRepo.RecordUpload(ctx, userID, metadata.CreatedAt); err != nil {
		// Metadata is already persisted at this point; the counter gap is
		// surfaced, not masked. ContentID identifies the orphaned record.
		failed := s.failure(bucket, key, domain.NewStoreError("update user analytics", err))
		failed.ContentID = contentID
		return failed
	}

	s.logger.Info("object ingested",
		"bucket", bucket,
		"key", key,
		"content_id", contentID,
		"processed_key", processedKey,
		"original_size", metadata.OriginalSize,
		"processed_size", metadata.ProcessedSize,
	)

	result.Outcome = domain.OutcomeProcessed
	result.ContentID = contentID
	return result
}

func (s *ingestService) failure(bucket, key string, err error) domain.ItemResult {
	s.logger.Error("notification processing failed", "bucket", bucket, "key", key, "error", err)
	return domain.ItemResult{
		Bucket:    bucket,
		Key:       key,
		Outcome:   domain.OutcomeFailed,
		ErrorKind: domain.KindOf(err),
		Error:     err.Error(),
	}
}
