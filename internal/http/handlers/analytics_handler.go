// Analytics HTTP handler.
//
// This file exposes the webhook statistics endpoint:
//   - GET /analytics/webhooks
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// WebhookStats godoc
// @ID          webhookStats
// @Summary     Webhook delivery statistics
// @Description Aggregates deliveries within the lookback window: per-status counts, mean latency, recent failures.
// @Tags        Analytics
// @Produce     json
// @Param       lookback  query  string  false "Window as a Go duration (default 24h)"  example(6h)
// @Success     200  {object} services.WebhookStats
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /analytics/webhooks [get]
func (h *Handlers) WebhookStats(c *gin.Context) {
	var lookback time.Duration
	if v := c.Query("lookback"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			lookback = d
		}
	}
	stats, err := h.statsSvc.WebhookStats(c.Request.Context(), lookback)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, stats)
}
