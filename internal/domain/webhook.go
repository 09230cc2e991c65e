// Package domain – webhook audit model.
//
// WebhookEvent is the append-mostly audit log for inbound webhook deliveries.
// Exactly one row exists per call to the reconciler, in a terminal status,
// even when processing of the underlying product update fails.
package domain

import "time"

// WebhookEventStatus is the lifecycle state of a webhook audit row.
type WebhookEventStatus int

// Webhook event lifecycle states. A row is created at Pending once the payload
// has been validated, moves to Processing, and always ends in a terminal state
// (Success or Failed) before the handling request returns. Retry is reserved
// for deliveries re-queued by an upstream retry policy.
const (
	WebhookStatusPending WebhookEventStatus = iota
	WebhookStatusProcessing
	WebhookStatusSuccess
	WebhookStatusFailed
	WebhookStatusRetry
)

// String returns a human-readable status name for logs and analytics output.
func (s WebhookEventStatus) String() string {
	switch s {
	case WebhookStatusPending:
		return "pending"
	case WebhookStatusProcessing:
		return "processing"
	case WebhookStatusSuccess:
		return "success"
	case WebhookStatusFailed:
		return "failed"
	case WebhookStatusRetry:
		return "retry"
	default:
		return "unknown"
	}
}

// WebhookEvent captures one inbound webhook delivery for audit and analytics.
// Only Status, ErrorMessage, ProcessingTimeMs, and ProcessedAt mutate after
// insert; everything else is written once.
type WebhookEvent struct {
	ID uint `json:"id" gorm:"primaryKey"`

	EventType string `json:"event_type" gorm:"type:varchar(100);not null;index"`
	Source    string `json:"source"     gorm:"type:varchar(50);not null"`

	ProductID *string `json:"product_id" gorm:"type:varchar(50);index"`
	KinguinID *int    `json:"kinguin_id" gorm:"index"`

	Payload *string `json:"payload" gorm:"type:text"`
	Headers *string `json:"-"       gorm:"type:text"`

	ClientIP  *string `json:"client_ip"  gorm:"type:varchar(45)"`
	UserAgent *string `json:"user_agent" gorm:"type:varchar(500)"`

	Status       WebhookEventStatus `json:"status" gorm:"not null;default:0;index"`
	ErrorMessage *string            `json:"error_message" gorm:"type:varchar(1000)"`

	ProcessingTimeMs int `json:"processing_time_ms"`

	ReceivedAt  time.Time  `json:"received_at"`
	ProcessedAt *time.Time `json:"processed_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TableName returns the database table name for WebhookEvent.
func (WebhookEvent) TableName() string { return "webhook_events" }
