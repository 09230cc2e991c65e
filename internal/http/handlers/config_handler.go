// Store configuration HTTP handlers.
//
// This file exposes the price margin endpoints:
//   - GET /config/margin   (current margin)
//   - PUT /config/margin   (update, strict (0,1) bounds)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uzplatform/go-store-backend/internal/services"
)

// MarginResponse carries the current price margin.
type MarginResponse struct {
	PriceMargin float64 `json:"price_margin" example:"0.1"`
}

// UpdateMarginRequest is the JSON payload for setting the price margin.
type UpdateMarginRequest struct {
	// PriceMargin must lie strictly between 0 and 1.
	PriceMargin *float64 `json:"price_margin" binding:"required" example:"0.15"`
}

// GetMargin godoc
// @ID          getMargin
// @Summary     Get the store price margin
// @Tags        Config
// @Produce     json
// @Success     200  {object} handlers.MarginResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /config/margin [get]
func (h *Handlers) GetMargin(c *gin.Context) {
	m, err := h.configSvc.GetPriceMargin(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, MarginResponse{PriceMargin: m})
}

// UpdateMargin godoc
// @ID          updateMargin
// @Summary     Set the store price margin
// @Description Updates the fractional markup applied on top of upstream prices. Both bounds are exclusive.
// @Tags        Config
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.UpdateMarginRequest  true  "New margin"
// @Success     200  {object} handlers.MarginResponse
// @Failure     400  {object} handlers.ErrorResponse "Missing or out-of-range margin"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /config/margin [put]
func (h *Handlers) UpdateMargin(c *gin.Context) {
	var req UpdateMarginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.PriceMargin == nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "price_margin required")
		return
	}
	if err := h.configSvc.SetPriceMargin(c.Request.Context(), *req.PriceMargin); err != nil {
		if errors.Is(err, services.ErrInvalidMargin) {
			fail(c, http.StatusBadRequest, ErrCodeInvalidMargin, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, MarginResponse{PriceMargin: *req.PriceMargin})
}
