// Package services – AnalyticsService
//
// Aggregated webhook statistics for the admin surface: per-status counts,
// mean processing latency, and the most recent failures within a lookback
// window.
package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/uzplatform/go-store-backend/internal/domain"
	"github.com/uzplatform/go-store-backend/internal/repo"
)

const (
	// defaultLookback bounds the analytics window when the caller does not
	// specify one.
	defaultLookback = 24 * time.Hour

	// maxRecentFailures caps the failure listing.
	maxRecentFailures = 20
)

// WebhookStats is the aggregate view over recent webhook deliveries.
type WebhookStats struct {
	Since           time.Time             `json:"since"`
	Total           int64                 `json:"total"`
	CountsByStatus  map[string]int64      `json:"counts_by_status"`
	AvgProcessingMs float64               `json:"avg_processing_ms"`
	RecentFailures  []domain.WebhookEvent `json:"recent_failures"`
}

// AnalyticsService computes webhook delivery statistics.
type AnalyticsService struct {
	DB *gorm.DB
}

// NewAnalyticsService constructs an AnalyticsService.
func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{DB: db}
}

// WebhookStats aggregates deliveries received within the lookback window.
// A non-positive lookback falls back to the default 24h window.
func (s *AnalyticsService) WebhookStats(ctx context.Context, lookback time.Duration) (*WebhookStats, error) {
	if lookback <= 0 {
		lookback = defaultLookback
	}
	since := time.Now().UTC().Add(-lookback)

	counts, err := repo.CountWebhookEventsByStatus(ctx, s.DB, since)
	if err != nil {
		return nil, err
	}
	avg, err := repo.AvgWebhookProcessingMs(ctx, s.DB, since)
	if err != nil {
		return nil, err
	}
	failures, err := repo.ListRecentFailedWebhookEvents(ctx, s.DB, since, maxRecentFailures)
	if err != nil {
		return nil, err
	}

	out := &WebhookStats{
		Since:           since,
		CountsByStatus:  make(map[string]int64, len(counts)),
		AvgProcessingMs: avg,
		RecentFailures:  failures,
	}
	for _, c := range counts {
		out.CountsByStatus[c.Status.String()] = c.Count
		out.Total += c.Count
	}
	return out, nil
}
