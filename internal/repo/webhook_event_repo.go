// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the WebhookEvent
// audit log and the aggregate queries behind webhook analytics.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/uzplatform/go-store-backend/internal/domain"
)

// CreateWebhookEvent inserts the audit row for one inbound webhook delivery.
// The row is committed immediately, outside the product-update transaction, so
// a later crash still leaves an auditable record.
func CreateWebhookEvent(ctx context.Context, db *gorm.DB, ev *domain.WebhookEvent) error {
	if ev.ReceivedAt.IsZero() {
		ev.ReceivedAt = time.Now().UTC()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = ev.ReceivedAt
	}
	return db.WithContext(ctx).Create(ev).Error
}

// MarkWebhookEventResult transitions an audit row to its terminal state and
// records the outcome. errMsg may be empty for successful events.
func MarkWebhookEventResult(ctx context.Context, db *gorm.DB, id uint, status domain.WebhookEventStatus, errMsg string, elapsed time.Duration) error {
	updates := map[string]any{
		"status":             status,
		"processed_at":       time.Now().UTC(),
		"processing_time_ms": int(elapsed.Milliseconds()),
	}
	if errMsg != "" {
		if len(errMsg) > 1000 {
			errMsg = errMsg[:1000]
		}
		updates["error_message"] = errMsg
	}
	res := db.WithContext(ctx).
		Model(&domain.WebhookEvent{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// WebhookStatusCount is one row of the per-status aggregate.
type WebhookStatusCount struct {
	Status domain.WebhookEventStatus
	Count  int64
}

// CountWebhookEventsByStatus returns event counts grouped by status since the
// given time.
func CountWebhookEventsByStatus(ctx context.Context, db *gorm.DB, since time.Time) ([]WebhookStatusCount, error) {
	var rows []WebhookStatusCount
	err := db.WithContext(ctx).
		Model(&domain.WebhookEvent{}).
		Select("status, COUNT(*) AS count").
		Where("received_at >= ?", since).
		Group("status").
		Scan(&rows).Error
	return rows, err
}

// AvgWebhookProcessingMs returns the mean processing time of terminal events
// since the given time, or 0 when there are none.
func AvgWebhookProcessingMs(ctx context.Context, db *gorm.DB, since time.Time) (float64, error) {
	var row struct {
		Avg *float64
	}
	err := db.WithContext(ctx).
		Model(&domain.WebhookEvent{}).
		Select("AVG(processing_time_ms) AS avg").
		Where("received_at >= ? AND status IN ?", since,
			[]domain.WebhookEventStatus{domain.WebhookStatusSuccess, domain.WebhookStatusFailed}).
		Scan(&row).Error
	if err != nil || row.Avg == nil {
		return 0, err
	}
	return *row.Avg, nil
}

// ListRecentFailedWebhookEvents returns the most recent failed events, newest
// first, capped at limit.
func ListRecentFailedWebhookEvents(ctx context.Context, db *gorm.DB, since time.Time, limit int) ([]domain.WebhookEvent, error) {
	var rows []domain.WebhookEvent
	err := db.WithContext(ctx).
		Where("received_at >= ? AND status = ?", since, domain.WebhookStatusFailed).
		Order("received_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
