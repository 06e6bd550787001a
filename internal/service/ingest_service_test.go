package service_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"contentflow/internal/domain"
	"contentflow/internal/repository"
	"contentflow/internal/service"
	"contentflow/internal/storage"
	"contentflow/internal/transform"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	sourceBucket    = "user-content-bucket"
	processedBucket = "processed-content-bucket"
	testUser        = "example-user"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func notification(keys ...string) domain.EventNotification {
	var event domain.EventNotification
	for _, key := range keys {
		var record domain.ObjectCreatedEvent
		record.EventName = "s3:ObjectCreated:Put"
		record.S3.Bucket.Name = sourceBucket
		record.S3.Object.Key = key
		event.Records = append(event.Records, record)
	}
	return event
}

func newIngestService(
	contentRepo repository.ContentRepository,
	analyticsRepo repository.AnalyticsRepository,
	objectStore storage.ObjectStorage,
	transformer transform.Transformer,
) service.IngestService {
	return service.NewIngestService(
		contentRepo, analyticsRepo, objectStore, transformer,
		service.IngestOptions{ProcessedBucket: processedBucket},
		discardLogger(),
	)
}

func TestIngestService_ProcessBatch_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockContent := repository.NewMockContentRepository()
	mockAnalytics := repository.NewMockAnalyticsRepository()
	mockStore := storage.NewMockObjectStorage()
	mockTransformer := transform.NewMockTransformer()
	svc := newIngestService(mockContent, mockAnalytics, mockStore, mockTransformer)

	original := []byte("original jpeg bytes, pretend this is big")
	processed := []byte("smaller jpeg")

	isProcessedKey := func(key string) bool {
		if !strings.HasPrefix(key, "processed/") || !strings.HasSuffix(key, ".jpg") {
			return false
		}
		id := strings.TrimSuffix(strings.TrimPrefix(key, "processed/"), ".jpg")
		_, err := uuid.Parse(id)
		return err == nil
	}

	mockContent.On("ExistsBySource", ctx, sourceBucket, "test-image.jpg").Return(false, nil)
	mockStore.On("GetObject", ctx, sourceBucket, "test-image.jpg").Return(original, nil)
	mockTransformer.On("Transform", ctx, original).Return(&transform.Result{
		Data:        processed,
		ContentType: "image/jpeg",
		Width:       800,
		Height:      600,
	}, nil)
	mockStore.On("PutObject", ctx, processedBucket, mock.MatchedBy(isProcessedKey), processed, "image/jpeg").Return(nil)
	mockContent.On("Create", ctx, mock.MatchedBy(func(m *domain.ContentMetadata) bool {
		return m.UserID == testUser &&
			m.OriginalBucket == sourceBucket &&
			m.OriginalKey == "test-image.jpg" &&
			m.OriginalSize == int64(len(original)) &&
			m.ProcessedSize == int64(len(processed)) &&
			m.Status == domain.StatusProcessed &&
			isProcessedKey(m.ProcessedKey) &&
			m.ProcessedKey == domain.ProcessedKey(m.ContentID)
	})).Return(nil)
	mockAnalytics.On("RecordUpload", ctx, testUser, mock.AnythingOfType("time.Time")).Return(nil)

	// Act
	summary, err := svc.ProcessBatch(ctx, notification("test-image.jpg"), testUser)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 0, summary.Failed)
	require.Len(t, summary.Results, 1)

	item := summary.Results[0]
	assert.Equal(t, domain.OutcomeProcessed, item.Outcome)
	assert.Equal(t, "test-image.jpg", item.Key)
	_, parseErr := uuid.Parse(item.ContentID)
	assert.NoError(t, parseErr)

	mockContent.AssertExpectations(t)
	mockAnalytics.AssertExpectations(t)
	mockStore.AssertExpectations(t)
	mockTransformer.AssertExpectations(t)
}

func TestIngestService_ProcessBatch_DecodesEncodedKey(t *testing.T) {
	ctx := context.Background()
	mockContent := repository.NewMockContentRepository()
	mockAnalytics := repository.NewMockAnalyticsRepository()
	mockStore := storage.NewMockObjectStorage()
	mockTransformer := transform.NewMockTransformer()
	svc := newIngestService(mockContent, mockAnalytics, mockStore, mockTransformer)

	// The notifying store encodes "my vacation.jpg" as "my+vacation.jpg".
	decoded := "my vacation.jpg"
	mockContent.On("ExistsBySource", ctx, sourceBucket, decoded).Return(false, nil)
	mockStore.On("GetObject", ctx, sourceBucket, decoded).Return([]byte("img"), nil)
	mockTransformer.On("Transform", ctx, mock.Anything).Return(&transform.Result{Data: []byte("out"), ContentType: "image/jpeg"}, nil)
	mockStore.On("PutObject", ctx, processedBucket, mock.Anything, mock.Anything, "image/jpeg").Return(nil)
	mockContent.On("Create", ctx, mock.MatchedBy(func(m *domain.ContentMetadata) bool {
		return m.OriginalKey == decoded
	})).Return(nil)
	mockAnalytics.On("RecordUpload", ctx, testUser, mock.AnythingOfType("time.Time")).Return(nil)

	summary, err := svc.ProcessBatch(ctx, notification("my+vacation.jpg"), testUser)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, decoded, summary.Results[0].Key)
	mockContent.AssertExpectations(t)
}

func TestIngestService_ProcessBatch_SkipsNonImage(t *testing.T) {
	ctx := context.Background()
	mockContent := repository.NewMockContentRepository()
	mockAnalytics := repository.NewMockAnalyticsRepository()
	mockStore := storage.NewMockObjectStorage()
	mockTransformer := transform.NewMockTransformer()
	svc := newIngestService(mockContent, mockAnalytics, mockStore, mockTransformer)

	summary, err := svc.ProcessBatch(ctx, notification("document.pdf"), testUser)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Processed)
	assert.Equal(t, domain.OutcomeSkipped, summary.Results[0].Outcome)

	// A skipped notification performs no store reads or writes.
	mockStore.AssertNotCalled(t, "GetObject", mock.Anything, mock.Anything, mock.Anything)
	mockStore.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockContent.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockAnalytics.AssertNotCalled(t, "RecordUpload", mock.Anything, mock.Anything, mock.Anything)
}

func TestIngestService_ProcessBatch_FetchDenied(t *testing.T) {
	ctx := context.Background()
	mockContent := repository.NewMockContentRepository()
	mockAnalytics := repository.NewMockAnalyticsRepository()
	mockStore := storage.NewMockObjectStorage()
	mockTransformer := transform.NewMockTransformer()
	svc := newIngestService(mockContent, mockAnalytics, mockStore, mockTransformer)

	mockContent.On("ExistsBySource", ctx, sourceBucket, "secret.jpg").Return(false, nil)
	mockStore.On("GetObject", ctx, sourceBucket, "secret.jpg").Return(nil, storage.ErrAccessDenied)

	summary, err := svc.ProcessBatch(ctx, notification("secret.jpg"), testUser)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, domain.OutcomeFailed, summary.Results[0].Outcome)
	assert.Equal(t, domain.KindFetch, summary.Results[0].ErrorKind)

	// No writes after a failed fetch.
	mockStore.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockContent.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockAnalytics.AssertNotCalled(t, "RecordUpload", mock.Anything, mock.Anything, mock.Anything)
}

func TestIngestService_ProcessBatch_TransformFailure(t *testing.T) {
	ctx := context.Background()
	mockContent := repository.NewMockContentRepository()
	mockAnalytics := repository.NewMockAnalyticsRepository()
	mockStore := storage.NewMockObjectStorage()
	mockTransformer := transform.NewMockTransformer()
	svc := newIngestService(mockContent, mockAnalytics, mockStore, mockTransformer)

	mockContent.On("ExistsBySource", ctx, sourceBucket, "corrupt.jpg").Return(false, nil)
	mockStore.On("GetObject", ctx, sourceBucket, "corrupt.jpg").Return([]byte("not a real jpeg"), nil)
	mockTransformer.On("Transform", ctx, mock.Anything).Return(nil, domain.NewTransformError("decode image", assert.AnError))

	summary, err := svc.ProcessBatch(ctx, notification("corrupt.jpg"), testUser)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, domain.KindTransform, summary.Results[0].ErrorKind)

	// Partial output is never persisted on transform failure.
	mockStore.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockContent.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestIngestService_ProcessBatch_SuppressesRedelivery(t *testing.T) {
	ctx := context.Background()
	mockContent := repository.NewMockContentRepository()
	mockAnalytics := repository.NewMockAnalyticsRepository()
	mockStore := storage.NewMockObjectStorage()
	mockTransformer := transform.NewMockTransformer()
	svc := newIngestService(mockContent, mockAnalytics, mockStore, mockTransformer)

	mockContent.On("ExistsBySource", ctx, sourceBucket, "already-seen.jpg").Return(true, nil)

	summary, err := svc.ProcessBatch(ctx, notification("already-seen.jpg"), testUser)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Duplicates)
	assert.Equal(t, domain.OutcomeDuplicate, summary.Results[0].Outcome)

	// A suppressed duplicate performs no fetch, no writes, no increment.
	mockStore.AssertNotCalled(t, "GetObject", mock.Anything, mock.Anything, mock.Anything)
	mockAnalytics.AssertNotCalled(t, "RecordUpload", mock.Anything, mock.Anything, mock.Anything)
}

func TestIngestService_ProcessBatch_InsertRaceReportsDuplicate(t *testing.T) {
	ctx := context.Background()
	mockContent := repository.NewMockContentRepository()
	mockAnalytics := repository.NewMockAnalyticsRepository()
	mockStore := storage.NewMockObjectStorage()
	mockTransformer := transform.NewMockTransformer()
	svc := newIngestService(mockContent, mockAnalytics, mockStore, mockTransformer)

	// A concurrent delivery wins the insert race after our duplicate check.
	mockContent.On("ExistsBySource", ctx, sourceBucket, "racy.jpg").Return(false, nil)
	mockStore.On("GetObject", ctx, sourceBucket, "racy.jpg").Return([]byte("img"), nil)
	mockTransformer.On("Transform", ctx, mock.Anything).Return(&transform.Result{Data: []byte("out"), ContentType: "image/jpeg"}, nil)
	mockStore.On("PutObject", ctx, processedBucket, mock.Anything, mock.Anything, "image/jpeg").Return(nil)
	mockContent.On("Create", ctx, mock.Anything).Return(repository.ErrDuplicateSource)

	summary, err := svc.ProcessBatch(ctx, notification("racy.jpg"), testUser)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Duplicates)
	// The loser of the race must not double-increment the counter.
	mockAnalytics.AssertNotCalled(t, "RecordUpload", mock.Anything, mock.Anything, mock.Anything)
}

func TestIngestService_ProcessBatch_CounterFailureSurfaced(t *testing.T) {
	ctx := context.Background()
	mockContent := repository.NewMockContentRepository()
	mockAnalytics := repository.NewMockAnalyticsRepository()
	mockStore := storage.NewMockObjectStorage()
	mockTransformer := transform.NewMockTransformer()
	svc := newIngestService(mockContent, mockAnalytics, mockStore, mockTransformer)

	mockContent.On("ExistsBySource", ctx, sourceBucket, "photo.jpg").Return(false, nil)
	mockStore.On("GetObject", ctx, sourceBucket, "photo.jpg").Return([]byte("img"), nil)
	mockTransformer.On("Transform", ctx, mock.Anything).Return(&transform.Result{Data: []byte("out"), ContentType: "image/jpeg"}, nil)
	mockStore.On("PutObject", ctx, processedBucket, mock.Anything, mock.Anything, "image/jpeg").Return(nil)
	mockContent.On("Create", ctx, mock.Anything).Return(nil)
	mockAnalytics.On("RecordUpload", ctx, testUser, mock.AnythingOfType("time.Time")).Return(assert.AnError)

	summary, err := svc.ProcessBatch(ctx, notification("photo.jpg"), testUser)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)

	item := summary.Results[0]
	assert.Equal(t, domain.KindStore, item.ErrorKind)
	// The metadata record persisted; the orphaned content ID is reported.
	assert.NotEmpty(t, item.ContentID)
}

func TestIngestService_ProcessBatch_ItemFailureDoesNotAbortSiblings(t *testing.T) {
	ctx := context.Background()
	mockContent := repository.NewMockContentRepository()
	mockAnalytics := repository.NewMockAnalyticsRepository()
	mockStore := storage.NewMockObjectStorage()
	mockTransformer := transform.NewMockTransformer()
	svc := newIngestService(mockContent, mockAnalytics, mockStore, mockTransformer)

	mockContent.On("ExistsBySource", ctx, sourceBucket, mock.Anything).Return(false, nil)
	mockStore.On("GetObject", ctx, sourceBucket, "missing.jpg").Return(nil, storage.ErrObjectNotFound)
	mockStore.On("GetObject", ctx, sourceBucket, "good.jpg").Return([]byte("img"), nil)
	mockTransformer.On("Transform", ctx, mock.Anything).Return(&transform.Result{Data: []byte("out"), ContentType: "image/jpeg"}, nil)
	mockStore.On("PutObject", ctx, processedBucket, mock.Anything, mock.Anything, "image/jpeg").Return(nil)
	mockContent.On("Create", ctx, mock.Anything).Return(nil)
	mockAnalytics.On("RecordUpload", ctx, testUser, mock.AnythingOfType("time.Time")).Return(nil)

	summary, err := svc.ProcessBatch(ctx, notification("missing.jpg", "good.jpg", "notes.pdf"), testUser)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Skipped)
	require.Len(t, summary.Results, 3)
	assert.Equal(t, domain.OutcomeFailed, summary.Results[0].Outcome)
	assert.Equal(t, domain.OutcomeProcessed, summary.Results[1].Outcome)
	assert.Equal(t, domain.OutcomeSkipped, summary.Results[2].Outcome)
}

func TestIngestService_ProcessBatch_EmptyBatch(t *testing.T) {
	svc := newIngestService(
		repository.NewMockContentRepository(),
		repository.NewMockAnalyticsRepository(),
		storage.NewMockObjectStorage(),
		transform.NewMockTransformer(),
	)

	_, err := svc.ProcessBatch(context.Background(), domain.EventNotification{}, testUser)
	assert.ErrorIs(t, err, service.ErrEmptyBatch)
}

// countingAnalyticsRepo is a thread-safe in-memory counter used to verify
// that concurrent ingestions never lose increments.
type countingAnalyticsRepo struct {
	mu     sync.Mutex
	counts map[string]int64
}

func (r *countingAnalyticsRepo) Get(ctx context.Context, userID string) (*domain.UserAnalytics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count, ok := r.counts[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &domain.UserAnalytics{UserID: userID, UploadCount: count}, nil
}

func (r *countingAnalyticsRepo) RecordUpload(ctx context.Context, userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = make(map[string]int64)
	}
	r.counts[userID]++
	return nil
}

func TestIngestService_ConcurrentIngestionsDoNotLoseIncrements(t *testing.T) {
	ctx := context.Background()
	const invocations = 25

	mockContent := repository.NewMockContentRepository()
	mockStore := storage.NewMockObjectStorage()
	mockTransformer := transform.NewMockTransformer()
	analytics := &countingAnalyticsRepo{}
	svc := newIngestService(mockContent, analytics, mockStore, mockTransformer)

	mockContent.On("ExistsBySource", ctx, sourceBucket, mock.Anything).Return(false, nil)
	mockStore.On("GetObject", ctx, sourceBucket, mock.Anything).Return([]byte("img"), nil)
	mockTransformer.On("Transform", ctx, mock.Anything).Return(&transform.Result{Data: []byte("out"), ContentType: "image/jpeg"}, nil)
	mockStore.On("PutObject", ctx, processedBucket, mock.Anything, mock.Anything, "image/jpeg").Return(nil)
	mockContent.On("Create", ctx, mock.Anything).Return(nil)

	var wg sync.WaitGroup
	for i := 0; i < invocations; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := svc.ProcessBatch(ctx, notification(fmt.Sprintf("photo-%d.jpg", n)), testUser)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	record, err := analytics.Get(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, int64(invocations), record.UploadCount)
}
