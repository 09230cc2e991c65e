// Package services – WebhookService
//
// This file implements the webhook reconciler. An inbound product.update
// delivery carries a partial payload (quantities, cheapest-offer list,
// upstream timestamp), never a full record, so the reconciler patches only
// those fields and decides whether the partial data implies the cached full
// snapshot has gone stale.
//
// Audit contract: every call leaves exactly one webhook_events row in a
// terminal state. The row is committed before the product update begins, in
// its own transaction, so even a mid-flight crash leaves a trace of the
// delivery.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/uzplatform/go-store-backend/internal/domain"
	"github.com/uzplatform/go-store-backend/internal/kinguin"
	"github.com/uzplatform/go-store-backend/internal/repo"
)

// WebhookMeta carries the transport-level facts about a delivery that belong
// in the audit row but not in the payload itself.
type WebhookMeta struct {
	EventType string
	ClientIP  string
	UserAgent string
	Headers   map[string]string
}

// WebhookService reconciles inbound partial product updates against the local
// catalog mirror.
type WebhookService struct {
	DB     *gorm.DB
	Logger zerolog.Logger
}

// NewWebhookService constructs a WebhookService.
func NewWebhookService(db *gorm.DB, log zerolog.Logger) *WebhookService {
	return &WebhookService{DB: db, Logger: log}
}

// ProcessProductUpdate applies one partial update. Unknown products get a
// placeholder row so the next bulk sync fills in the full record; known
// products are patched in place, and significant changes (stock crossing the
// zero boundary, or a reordered/changed cheapest-offer list) clear
// LastAPIUpdate to force a full refresh.
//
// The returned error describes the reconciliation failure; the audit row has
// already recorded it by the time the function returns.
func (s *WebhookService) ProcessProductUpdate(ctx context.Context, update kinguin.PartialUpdate, meta WebhookMeta) error {
	tr := otel.Tracer("services/WebhookService")
	ctx, span := tr.Start(ctx, "ProcessProductUpdate",
		trace.WithAttributes(
			attribute.Int("product.kinguin_id", update.KinguinID),
			attribute.String("product.id", update.ProductID),
		),
	)
	defer span.End()

	start := time.Now()
	ev := s.newAuditRow(update, meta)
	if err := repo.CreateWebhookEvent(ctx, s.DB, ev); err != nil {
		// Without an audit row the delivery must not be processed at all.
		return fmt.Errorf("create webhook audit row: %w", err)
	}

	err := s.reconcile(ctx, update)

	elapsed := time.Since(start)
	status := domain.WebhookStatusSuccess
	errMsg := ""
	outcome := "success"
	if err != nil {
		status = domain.WebhookStatusFailed
		errMsg = err.Error()
		outcome = "failed"
	}
	if mErr := repo.MarkWebhookEventResult(ctx, s.DB, ev.ID, status, errMsg, elapsed); mErr != nil {
		s.Logger.Error().Err(mErr).Uint("event_id", ev.ID).Msg("failed to finalize webhook audit row")
	}

	webhookEventsTotal.WithLabelValues(outcome).Inc()
	webhookDuration.Observe(elapsed.Seconds())

	s.Logger.Info().
		Int("kinguin_id", update.KinguinID).
		Str("product_id", update.ProductID).
		Str("outcome", outcome).
		Dur("elapsed", elapsed).
		Msg("webhook processed")
	return err
}

// reconcile runs the actual product mutation inside one transaction.
func (s *WebhookService) reconcile(ctx context.Context, update kinguin.PartialUpdate) error {
	if update.KinguinID <= 0 && update.ProductID == "" {
		return ErrMissingIdentity
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := repo.FindActiveProductByAnyID(ctx, tx, update.KinguinID, update.ProductID)
		switch {
		case err == nil:
			significant := detectSignificantChanges(p, update)
			ApplyPartialPatch(p, update)
			if significant {
				p.LastAPIUpdate = nil
			} else {
				now := time.Now().UTC()
				p.LastAPIUpdate = &now
			}
			return tx.Save(p).Error

		case errors.Is(err, repo.ErrNotFound):
			return tx.Create(s.placeholderFor(update)).Error

		default:
			return err
		}
	})
}

// placeholderFor builds the minimal row for a product first seen via webhook.
// LastAPIUpdate stays nil so the next bulk sync treats it as due for a full
// snapshot.
func (s *WebhookService) placeholderFor(update kinguin.PartialUpdate) *domain.Product {
	now := time.Now().UTC()
	ts := update.UpdatedAt
	p := &domain.Product{
		KinguinID: update.KinguinID,
		ProductID: update.ProductID,
		Name:      fmt.Sprintf("Product %d", update.KinguinID),
		Price:     0,
		Qty:       update.Qty,
		TextQty:   update.TextQty,
		TotalQty:  update.Qty + update.TextQty,
		UpdatedAt: &ts,
		CreatedAt: now,
	}
	if len(update.CheapestOfferID) > 0 {
		p.CheapestOfferIDJSON = encodeJSON(update.CheapestOfferID)
	}
	return p
}

// detectSignificantChanges implements the staleness heuristic. A change is
// significant when stock crosses the zero boundary in either direction, or
// when the cheapest-offer list differs as a sequence (order matters: the head
// of the list is the price shown to buyers). A product is out of stock only
// when both key pools are empty (qty and textQty).
func detectSignificantChanges(p *domain.Product, update kinguin.PartialUpdate) bool {
	wasOut := p.Qty == 0 && p.TextQty == 0
	nowOut := update.Qty == 0 && update.TextQty == 0
	if wasOut != nowOut {
		return true
	}

	current := CheapestOfferIDs(p)
	incoming := update.CheapestOfferID
	if len(current) != len(incoming) {
		return true
	}
	for i := range current {
		if current[i] != incoming[i] {
			return true
		}
	}
	return false
}

// newAuditRow assembles the webhook_events record for one delivery.
func (s *WebhookService) newAuditRow(update kinguin.PartialUpdate, meta WebhookMeta) *domain.WebhookEvent {
	ev := &domain.WebhookEvent{
		EventType: meta.EventType,
		Source:    "Kinguin",
		Status:    domain.WebhookStatusProcessing,
		Payload:   encodeJSON(update),
	}
	if meta.EventType == "" {
		ev.EventType = "product.update"
	}
	if update.KinguinID > 0 {
		id := update.KinguinID
		ev.KinguinID = &id
	}
	if update.ProductID != "" {
		pid := update.ProductID
		ev.ProductID = &pid
	}
	if meta.ClientIP != "" {
		ip := meta.ClientIP
		ev.ClientIP = &ip
	}
	if meta.UserAgent != "" {
		ua := meta.UserAgent
		ev.UserAgent = &ua
	}
	if len(meta.Headers) > 0 {
		if b, err := json.Marshal(meta.Headers); err == nil {
			h := string(b)
			ev.Headers = &h
		}
	}
	return ev
}
