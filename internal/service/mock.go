package service

import (
	"context"

	"contentflow/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockIngestService is a mock implementation of IngestService.
type MockIngestService struct {
	mock.Mock
}

// NewMockIngestService creates a new MockIngestService.
func NewMockIngestService() *MockIngestService {
	return &MockIngestService{}
}

func (m *MockIngestService) ProcessBatch(ctx context.Context, event domain.EventNotification, userID string) (*domain.BatchSummary, error) {
	args := m.Called(ctx, event, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BatchSummary), args.Error(1)
}

// MockAnalyticsService is a mock implementation of AnalyticsService.
type MockAnalyticsService struct {
	mock.Mock
}

// NewMockAnalyticsService creates a new MockAnalyticsService.
func NewMockAnalyticsService() *MockAnalyticsService {
	return &MockAnalyticsService{}
}

func (m *MockAnalyticsService) GetUserAnalytics(ctx context.Context, userID string) (*domain.AnalyticsReport, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalyticsReport), args.Error(1)
}
