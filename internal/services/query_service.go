// Package services – QueryService
//
// Read-side product operations: filtered listing, single lookup, soft delete,
// restore, and the deleted-products listing. Pagination defaults mirror the
// listing endpoints; repository not-found errors are translated to
// service-level sentinels here so handlers only deal with one error
// vocabulary.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/uzplatform/go-store-backend/internal/domain"
	"github.com/uzplatform/go-store-backend/internal/repo"
)

// QueryService serves catalog reads and the soft-delete admin operations.
type QueryService struct {
	DB *gorm.DB
}

// NewQueryService constructs a QueryService.
func NewQueryService(db *gorm.DB) *QueryService {
	return &QueryService{DB: db}
}

// ListPage returns one page of active products matching the filter plus the
// total match count. Invalid page/pageSize fall back to defaults.
func (s *QueryService) ListPage(ctx context.Context, f repo.ProductFilter, page, pageSize int) ([]domain.Product, int64, error) {
	page, pageSize = normalizePage(page, pageSize)
	return repo.SearchProductsPage(ctx, s.DB, f, (page-1)*pageSize, pageSize)
}

// Get fetches a single active product by its upstream string id.
func (s *QueryService) Get(ctx context.Context, productID string) (*domain.Product, error) {
	p, err := repo.GetActiveProductByProductID(ctx, s.DB, productID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

// Delete soft-deletes a product. Deleting an unknown or already-deleted
// product returns ErrProductNotFound.
func (s *QueryService) Delete(ctx context.Context, productID string) error {
	if err := repo.SoftDeleteProduct(ctx, s.DB, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	return nil
}

// Restore clears the soft-delete flag on a product. Restoring an active
// product succeeds without effect; an unknown id returns ErrProductNotFound.
func (s *QueryService) Restore(ctx context.Context, productID string) error {
	if err := repo.RestoreProduct(ctx, s.DB, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	return nil
}

// ListDeletedPage returns one page of soft-deleted products, newest deletions
// first.
func (s *QueryService) ListDeletedPage(ctx context.Context, page, pageSize int) ([]domain.Product, int64, error) {
	page, pageSize = normalizePage(page, pageSize)
	return repo.ListDeletedProductsPage(ctx, s.DB, (page-1)*pageSize, pageSize)
}

// normalizePage applies the shared pagination defaults.
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
