package repository

import (
	"context"
	"time"

	"contentflow/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockContentRepository is a mock implementation of ContentRepository.
type MockContentRepository struct {
	mock.Mock
}

// NewMockContentRepository creates a new MockContentRepository.
func NewMockContentRepository() *MockContentRepository {
	return &MockContentRepository{}
}

func (m *MockContentRepository) Create(ctx context.Context, content *domain.ContentMetadata) error {
	args := m.Called(ctx, content)
	return args.Error(0)
}

func (m *MockContentRepository) ExistsBySource(ctx context.Context, bucket, key string) (bool, error) {
	args := m.Called(ctx, bucket, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockContentRepository) GetByUserID(ctx context.Context, userID string) ([]domain.ContentMetadata, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ContentMetadata), args.Error(1)
}

func (m *MockContentRepository) ScanRecent(ctx context.Context, limit int) ([]domain.ContentMetadata, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ContentMetadata), args.Error(1)
}

// MockAnalyticsRepository is a mock implementation of AnalyticsRepository.
type MockAnalyticsRepository struct {
	mock.Mock
}

// NewMockAnalyticsRepository creates a new MockAnalyticsRepository.
func NewMockAnalyticsRepository() *MockAnalyticsRepository {
	return &MockAnalyticsRepository{}
}

func (m *MockAnalyticsRepository) Get(ctx context.Context, userID string) (*domain.UserAnalytics, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserAnalytics), args.Error(1)
}

func (m *MockAnalyticsRepository) RecordUpload(ctx context.Context, userID string, at time.Time) error {
	args := m.Called(ctx, userID, at)
	return args.Error(0)
}
