// Product HTTP handlers.
//
// This file exposes REST endpoints for the locally mirrored product catalog:
//   - GET    /products                 (list, filtered + paginated)
//   - GET    /products/{id}           (single product)
//   - DELETE /products/{id}           (soft delete)
//   - GET    /products/deleted        (deleted listing)
//   - POST   /products/{id}/restore   (restore)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/uzplatform/go-store-backend/internal/domain"
	"github.com/uzplatform/go-store-backend/internal/kinguin"
	"github.com/uzplatform/go-store-backend/internal/repo"
	"github.com/uzplatform/go-store-backend/internal/services"
	"github.com/uzplatform/go-store-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// ProductService defines the catalog read and soft-delete operations consumed
// by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ProductService interface {
	// ListPage returns a page of active products matching the filter and the
	// total match count.
	ListPage(ctx context.Context, f repo.ProductFilter, page, pageSize int) ([]domain.Product, int64, error)
	// Get fetches one active product by its upstream string id.
	Get(ctx context.Context, productID string) (*domain.Product, error)
	// Delete soft-deletes a product.
	Delete(ctx context.Context, productID string) error
	// Restore clears the soft-delete flag.
	Restore(ctx context.Context, productID string) error
	// ListDeletedPage returns a page of soft-deleted products.
	ListDeletedPage(ctx context.Context, page, pageSize int) ([]domain.Product, int64, error)
}

// SyncProcessService defines the background sync lifecycle operations.
type SyncProcessService interface {
	// Start registers and launches a new background sync, returning its id.
	Start() string
	// GetStatus returns the status snapshot for a process id.
	GetStatus(id string) (services.ProcessStatus, error)
	// Cancel requests cancellation; false for unknown or terminal processes.
	Cancel(id string) bool
	// IsAnyProcessRunning reports whether a sync is currently in flight.
	IsAnyProcessRunning() bool
}

// WebhookProcessor reconciles one inbound partial product update.
type WebhookProcessor interface {
	ProcessProductUpdate(ctx context.Context, update kinguin.PartialUpdate, meta services.WebhookMeta) error
}

// ConfigService reads and writes the store price margin.
type ConfigService interface {
	GetPriceMargin(ctx context.Context) (float64, error)
	SetPriceMargin(ctx context.Context, margin float64) error
}

// StatsService computes webhook delivery statistics.
type StatsService interface {
	WebhookStats(ctx context.Context, lookback time.Duration) (*services.WebhookStats, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for products, sync processes, webhooks,
// store configuration, and analytics. It depends on abstract service
// interfaces to keep transport concerns separate from business logic.
type Handlers struct {
	productSvc ProductService
	syncSvc    SyncProcessService
	webhookSvc WebhookProcessor
	configSvc  ConfigService
	statsSvc   StatsService

	// webhookSecret is the shared secret checked against X-Event-Secret on
	// inbound webhooks. Empty disables the check (local development).
	webhookSecret string
}

// New constructs and returns a Handlers instance bound to the given services.
func New(productSvc ProductService, syncSvc SyncProcessService, webhookSvc WebhookProcessor, configSvc ConfigService, statsSvc StatsService, webhookSecret string) *Handlers {
	return &Handlers{
		productSvc:    productSvc,
		syncSvc:       syncSvc,
		webhookSvc:    webhookSvc,
		configSvc:     configSvc,
		statsSvc:      statsSvc,
		webhookSecret: webhookSecret,
	}
}

//
// DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListProductsResponse wraps a page of products and pagination information.
type ListProductsResponse struct {
	Products   []domain.Product `json:"products"`
	Pagination Pagination       `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// paginationOf assembles the pagination envelope for a page of results.
func paginationOf(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// productFilterFrom builds the repository filter from the request query.
func productFilterFrom(c *gin.Context) repo.ProductFilter {
	f := repo.ProductFilter{
		Name:     strings.TrimSpace(c.Query("name")),
		Platform: strings.TrimSpace(c.Query("platform")),
		SortBy:   strings.TrimSpace(c.Query("sort_by")),
		SortDesc: strings.EqualFold(c.Query("sort_dir"), "desc"),
	}
	if v := c.Query("region_id"); v != "" {
		id := utils.AtoiDefault(v, -1)
		if id >= 0 {
			f.RegionID = &id
		}
	}
	if v := c.Query("is_preorder"); v != "" {
		b := strings.EqualFold(v, "true") || v == "1"
		f.IsPreorder = &b
	}
	if v := c.Query("tags"); v != "" {
		f.Tags = splitList(v)
	}
	if v := c.Query("genres"); v != "" {
		f.Genres = splitList(v)
	}
	if v := c.Query("updated_since"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.UpdatedSince = &t
		}
	}
	return f
}

// splitList splits a comma-separated query value, dropping empties.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

//
// Handlers
//

// ListProducts godoc
// @ID          listProducts
// @Summary     List products (filtered, paginated)
// @Description Returns a page of active products. Supports name/platform/tag/genre filters and sorting.
// @Tags        Products
// @Produce     json
//
// @Param       name          query  string  false "Substring name filter (min 3 chars)"
// @Param       platform      query  string  false "Platform filter"
// @Param       region_id     query  int     false "Region id filter"
// @Param       is_preorder   query  bool    false "Preorder filter"
// @Param       tags          query  string  false "Comma-separated tags (all must match)"
// @Param       genres        query  string  false "Comma-separated genres (all must match)"
// @Param       updated_since query  string  false "RFC 3339 lower bound on update time"
// @Param       sort_by       query  string  false "price|name (default: update time)"
// @Param       sort_dir      query  string  false "asc|desc"
// @Param       page          query  int     false "Page number"    minimum(1) default(1)
// @Param       page_size     query  int     false "Items per page" minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListProductsResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /products [get]
func (h *Handlers) ListProducts(c *gin.Context) {
	page, pageSize := clampPagination(c)
	items, total, err := h.productSvc.ListPage(c.Request.Context(), productFilterFrom(c), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListProductsResponse{
		Products:   items,
		Pagination: paginationOf(page, pageSize, total),
	})
}

// GetProduct godoc
// @ID          getProduct
// @Summary     Get a single product
// @Tags        Products
// @Produce     json
// @Param       id  path  string  true  "Upstream product id"
// @Success     200  {object} domain.Product
// @Failure     404  {object} handlers.ErrorResponse "Product not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /products/{id} [get]
func (h *Handlers) GetProduct(c *gin.Context) {
	p, err := h.productSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "product not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, p)
}

// DeleteProduct godoc
// @ID          deleteProduct
// @Summary     Soft-delete a product
// @Description Hides the product from the public listing; the row is kept and can be restored.
// @Tags        Products
// @Param       id  path  string  true  "Upstream product id"
// @Success     204  {string} string "No Content"
// @Failure     404  {object} handlers.ErrorResponse "Product not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /products/{id} [delete]
func (h *Handlers) DeleteProduct(c *gin.Context) {
	if err := h.productSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "product not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}

// RestoreProduct godoc
// @ID          restoreProduct
// @Summary     Restore a soft-deleted product
// @Tags        Products
// @Param       id  path  string  true  "Upstream product id"
// @Success     204  {string} string "No Content"
// @Failure     404  {object} handlers.ErrorResponse "Product not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /products/{id}/restore [post]
func (h *Handlers) RestoreProduct(c *gin.Context) {
	if err := h.productSvc.Restore(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "product not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}

// ListDeletedProducts godoc
// @ID          listDeletedProducts
// @Summary     List soft-deleted products (paginated)
// @Tags        Products
// @Produce     json
// @Param       page       query  int  false "Page number"    minimum(1) default(1)
// @Param       page_size  query  int  false "Items per page" minimum(1) maximum(100) default(20)
// @Success     200  {object} handlers.ListProductsResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /products/deleted [get]
func (h *Handlers) ListDeletedProducts(c *gin.Context) {
	page, pageSize := clampPagination(c)
	items, total, err := h.productSvc.ListDeletedPage(c.Request.Context(), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListProductsResponse{
		Products:   items,
		Pagination: paginationOf(page, pageSize, total),
	})
}
