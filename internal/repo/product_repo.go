// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Product
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Soft-delete note: Product uses an explicit IsDeleted flag rather than
// gorm.DeletedAt, so "active" scoping is spelled out in each query instead of
// relying on GORM's implicit soft-delete filter. Deleted rows remain subject
// to the global unique indexes on kinguin_id and product_id.
//
// Error semantics:
//   - When a product is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/uzplatform/go-store-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for consistency across the service layer
// and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// FindProductsByKinguinIDs batch-loads existing rows for the given upstream
// ids in a single query, keyed by KinguinID. Soft-deleted rows are included:
// the bulk sync must keep updating a deleted row's snapshot so a later restore
// comes back with current data, and the global unique index would reject a
// duplicate insert anyway.
func FindProductsByKinguinIDs(ctx context.Context, db *gorm.DB, ids []int) (map[int]*domain.Product, error) {
	out := make(map[int]*domain.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []domain.Product
	if err := db.WithContext(ctx).
		Where("kinguin_id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].KinguinID] = &rows[i]
	}
	return out, nil
}

// FindActiveProductByAnyID fetches a non-deleted product matching either the
// upstream integer id or the upstream string id. Returns ErrNotFound when no
// active row matches.
func FindActiveProductByAnyID(ctx context.Context, db *gorm.DB, kinguinID int, productID string) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).
		Where("(kinguin_id = ? OR product_id = ?) AND is_deleted = ?", kinguinID, productID, false).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetActiveProductByProductID fetches a non-deleted product by its upstream
// string id, or ErrNotFound.
func GetActiveProductByProductID(ctx context.Context, db *gorm.DB, productID string) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).
		Where("product_id = ? AND is_deleted = ?", productID, false).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveProductBatch persists the whole batch in one transaction: rows with a
// zero ID are inserted, the rest are updated via Save (full-row write). The
// batch either fully commits or rolls back as a unit.
func SaveProductBatch(ctx context.Context, db *gorm.DB, batch []*domain.Product) error {
	if len(batch) == 0 {
		return nil
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range batch {
			if p.ID == 0 {
				if err := tx.Create(p).Error; err != nil {
					return err
				}
			} else {
				if err := tx.Save(p).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// ProductFilter narrows SearchProductsPage. Zero values mean "no filter".
type ProductFilter struct {
	Name         string // substring match on name/original name, min 3 chars
	Platform     string // substring match
	RegionID     *int
	IsPreorder   *bool
	Tags         []string // all must appear in the tags column
	Genres       []string // all must appear in the genres column
	UpdatedSince *time.Time
	SortBy       string // "price", "name", default: updated_at
	SortDesc     bool
}

// SearchProductsPage returns one page of active products matching the filter
// plus the total match count. Offset/limit are the caller's responsibility
// (e.g. (page-1)*pageSize).
func SearchProductsPage(ctx context.Context, db *gorm.DB, f ProductFilter, offset, limit int) ([]domain.Product, int64, error) {
	q := db.WithContext(ctx).Model(&domain.Product{}).Where("is_deleted = ?", false)

	if n := strings.TrimSpace(f.Name); len(n) >= 3 {
		pat := "%" + strings.ToLower(n) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(original_name) LIKE ?", pat, pat)
	}
	if f.Platform != "" {
		q = q.Where("platform LIKE ?", "%"+f.Platform+"%")
	}
	if f.RegionID != nil {
		q = q.Where("region_id = ?", *f.RegionID)
	}
	if f.IsPreorder != nil {
		q = q.Where("is_preorder = ?", *f.IsPreorder)
	}
	for _, tag := range f.Tags {
		q = q.Where("LOWER(tags_json) LIKE ?", "%"+strings.ToLower(tag)+"%")
	}
	for _, g := range f.Genres {
		q = q.Where("LOWER(genres_json) LIKE ?", "%"+strings.ToLower(g)+"%")
	}
	if f.UpdatedSince != nil {
		q = q.Where("COALESCE(updated_at, created_at) >= ?", *f.UpdatedSince)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	dir := "DESC"
	if !f.SortDesc {
		dir = "ASC"
	}
	switch f.SortBy {
	case "price":
		q = q.Order("price " + dir)
	case "name":
		q = q.Order("name " + dir)
	default:
		q = q.Order("updated_at " + dir)
	}

	var rows []domain.Product
	err := q.Offset(offset).Limit(limit).Find(&rows).Error
	return rows, total, err
}

// SoftDeleteProduct flags a product as deleted and stamps DeletedAt. Deleting
// an already-deleted (or missing) row is a no-op returning ErrNotFound so the
// caller can decide whether that matters.
func SoftDeleteProduct(ctx context.Context, db *gorm.DB, productID string) error {
	res := db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("product_id = ? AND is_deleted = ?", productID, false).
		Updates(map[string]any{
			"is_deleted": true,
			"deleted_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RestoreProduct clears the soft-delete flag, making the row visible to
// default queries again. Restoring a row that is not deleted succeeds and
// leaves it unchanged.
func RestoreProduct(ctx context.Context, db *gorm.DB, productID string) error {
	var p domain.Product
	if err := db.WithContext(ctx).Where("product_id = ?", productID).First(&p).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("product_id = ?", productID).
		Updates(map[string]any{
			"is_deleted": false,
			"deleted_at": nil,
		}).Error
}

// ListDeletedProductsPage returns one page of soft-deleted products and the
// total count of deleted rows.
func ListDeletedProductsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Product, int64, error) {
	q := db.WithContext(ctx).Model(&domain.Product{}).Where("is_deleted = ?", true)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []domain.Product
	err := q.Order("deleted_at DESC").Offset(offset).Limit(limit).Find(&rows).Error
	return rows, total, err
}
