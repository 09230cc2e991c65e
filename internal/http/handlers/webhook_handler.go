// Webhook HTTP handler.
//
// This file receives product.update notifications from the upstream
// marketplace:
//   - POST /webhooks/kinguin
//
// Authentication is a shared-secret header (X-Event-Secret) compared in
// constant time. The event name travels in X-Event-Name; only product.update
// is processed, everything else is acknowledged and dropped so upstream does
// not retry events we will never handle.
package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/uzplatform/go-store-backend/internal/kinguin"
	"github.com/uzplatform/go-store-backend/internal/services"
)

const (
	headerEventName   = "X-Event-Name"
	headerEventSecret = "X-Event-Secret"

	eventProductUpdate = "product.update"
)

// KinguinWebhook godoc
// @ID          kinguinWebhook
// @Summary     Receive a product update webhook
// @Description Validates the shared secret, audits the delivery, and reconciles the partial update.
// @Tags        Webhooks
// @Accept      json
//
// @Param       X-Event-Name    header  string  true  "Event type"     example(product.update)
// @Param       X-Event-Secret  header  string  true  "Shared secret"
// @Param       body            body    kinguin.PartialUpdate  true  "Partial product payload"
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Malformed payload"
// @Failure     401  {object} handlers.ErrorResponse "Bad or missing secret"
// @Failure     500  {object} handlers.ErrorResponse "Reconciliation failed"
// @Router      /webhooks/kinguin [post]
func (h *Handlers) KinguinWebhook(c *gin.Context) {
	if h.webhookSecret != "" {
		got := c.GetHeader(headerEventSecret)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.webhookSecret)) != 1 {
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid webhook secret")
			return
		}
	}

	event := strings.TrimSpace(c.GetHeader(headerEventName))
	if event != "" && event != eventProductUpdate {
		// Acknowledge unknown events so upstream stops redelivering them.
		noContent(c)
		return
	}

	var update kinguin.PartialUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	meta := services.WebhookMeta{
		EventType: eventProductUpdate,
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Headers:   webhookHeaders(c),
	}
	if err := h.webhookSvc.ProcessProductUpdate(c.Request.Context(), update, meta); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeWebhookRejected, err.Error())
		return
	}
	noContent(c)
}

// webhookHeaders snapshots the delivery headers for the audit row, minus the
// shared secret.
func webhookHeaders(c *gin.Context) map[string]string {
	out := make(map[string]string, len(c.Request.Header))
	for k, vv := range c.Request.Header {
		if strings.EqualFold(k, headerEventSecret) {
			continue
		}
		out[k] = strings.Join(vv, ", ")
	}
	return out
}
