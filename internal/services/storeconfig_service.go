// Package services – StoreConfigService
//
// Store-wide configuration. The only tunable today is the price margin, the
// fractional markup applied on top of upstream prices. Margin validity is
// enforced here, at the write boundary, so the mapper can trust whatever
// value it reads.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/uzplatform/go-store-backend/internal/repo"
)

// StoreConfigService reads and writes store-wide settings.
type StoreConfigService struct {
	DB *gorm.DB
}

// NewStoreConfigService constructs a StoreConfigService.
func NewStoreConfigService(db *gorm.DB) *StoreConfigService {
	return &StoreConfigService{DB: db}
}

// GetPriceMargin returns the configured margin, or the default when no config
// row exists yet.
func (s *StoreConfigService) GetPriceMargin(ctx context.Context) (float64, error) {
	return repo.GetPriceMargin(ctx, s.DB)
}

// SetPriceMargin validates and stores a new margin. The margin must lie
// strictly between 0 and 1; both bounds are exclusive, since a zero margin
// would sell at cost and a margin of 1 would double the price.
func (s *StoreConfigService) SetPriceMargin(ctx context.Context, margin float64) error {
	if margin <= 0 || margin >= 1 {
		return ErrInvalidMargin
	}
	return repo.UpsertPriceMargin(ctx, s.DB, margin)
}
