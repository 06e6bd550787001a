package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"contentflow/internal/domain"
	"contentflow/internal/repository"
)

const (
	recentContentLimit = 5
	recentUploadLimit  = 10
)

// AnalyticsService composes the read-only analytics view for a user. It
// never mutates state and is independent of the ingestion pipeline beyond
// sharing the metadata schema.
type AnalyticsService interface {
	GetUserAnalytics(ctx context.Context, userID string) (*domain.AnalyticsReport, error)
}

// analyticsService implements the AnalyticsService interface.
type analyticsService struct {
	contentRepo   repository.ContentRepository
	analyticsRepo repository.AnalyticsRepository
	scanLimit     int
	logger        *slog.Logger
	now           func() time.Time
}

// NewAnalyticsService creates a new instance of analyticsService. scanLimit
// bounds the cross-user window that global statistics are derived from.
func NewAnalyticsService(
	contentRepo repository.ContentRepository,
	analyticsRepo repository.AnalyticsRepository,
	scanLimit int,
	logger *slog.Logger,
) AnalyticsService {
	return &analyticsService{
		contentRepo:   contentRepo,
		analyticsRepo: analyticsRepo,
		scanLimit:     scanLimit,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *analyticsService) GetUserAnalytics(ctx context.Context, userID string) (*domain.AnalyticsReport, error) {
	// A user with no uploads is a valid query, not an error.
	analytics, err := s.analyticsRepo.Get(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, domain.NewQueryError("fetch user analytics", err)
	}

	userRecords, err := s.contentRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, domain.NewQueryError("query user content", err)
	}

	// Global statistics come from a bounded window of recent records, not
	// the full table; they under-count beyond the window.
	windowRecords, err := s.contentRepo.ScanRecent(ctx, s.scanLimit)
	if err != nil {
		return nil, domain.NewQueryError("scan recent content", err)
	}

	report := &domain.AnalyticsReport{
		UserID:         userID,
		UserStats:      s.buildUserStats(analytics, userRecords),
		UserContent:    buildUserContent(userRecords),
		GlobalStats:    s.buildGlobalStats(windowRecords),
		QueryTimestamp: s.now().UTC(),
	}

	s.logger.Info("analytics generated",
		"user_id", userID,
		"upload_count", report.UserStats.UploadCount,
		"total_items", report.UserContent.TotalItems,
	)
	return report, nil
}

func (s *analyticsService) buildUserStats(analytics *domain.UserAnalytics, records []domain.ContentMetadata) domain.UserStats {
	stats := domain.UserStats{}
	if analytics != nil {
		stats.UploadCount = analytics.UploadCount
		stats.LastUpload = analytics.LastUpload
	}

	for _, r := range records {
		stats.TotalOriginalSize += r.OriginalSize
		stats.TotalProcessedSize += r.ProcessedSize
	}
	// Ratio is 0 when the user has no processed content.
	if stats.TotalProcessedSize > 0 {
		stats.CompressionRatio = float64(stats.TotalOriginalSize) / float64(stats.TotalProcessedSize)
	}
	return stats
}

func buildUserContent(records []domain.ContentMetadata) domain.UserContent {
	sorted := sortByCreatedAtDesc(records)

	recent := make([]domain.RecentContent, 0, recentContentLimit)
	for _, r := range sorted {
		if len(recent) == recentContentLimit {
			break
		}
		recent = append(recent, domain.RecentContent{
			ContentID:    r.ContentID,
			OriginalKey:  r.OriginalKey,
			ProcessedKey: r.ProcessedKey,
			CreatedAt:    r.CreatedAt,
		})
	}

	return domain.UserContent{
		TotalItems:       len(records),
		RecentContentIDs: recent,
	}
}

func (s *analyticsService) buildGlobalStats(window []domain.ContentMetadata) domain.GlobalStats {
	users := make(map[string]struct{}, len(window))
	for _, r := range window {
		users[r.UserID] = struct{}{}
	}

	sorted := sortByCreatedAtDesc(window)
	recent := make([]domain.RecentUpload, 0, recentUploadLimit)
	for _, r := range sorted {
		if len(recent) == recentUploadLimit {
			break
		}
		recent = append(recent, domain.RecentUpload{
			ContentID: r.ContentID,
			UserID:    r.UserID,
			CreatedAt: r.CreatedAt,
		})
	}

	return domain.GlobalStats{
		TotalContentItems: len(window),
		TotalUsers:        len(users),
		RecentUploads:     recent,
		ScanWindow:        s.scanLimit,
	}
}

func sortByCreatedAtDesc(records []domain.ContentMetadata) []domain.ContentMetadata {
	sorted := make([]domain.ContentMetadata, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	return sorted
}
