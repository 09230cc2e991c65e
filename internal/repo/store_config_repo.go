// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the single-row
// StoreConfig table.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/uzplatform/go-store-backend/internal/domain"
)

// DefaultPriceMargin is applied when no store configuration row exists yet.
const DefaultPriceMargin = 0.10

// GetStoreConfig fetches the configuration row, or ErrNotFound when the store
// has never been configured.
func GetStoreConfig(ctx context.Context, db *gorm.DB) (*domain.StoreConfig, error) {
	var cfg domain.StoreConfig
	if err := db.WithContext(ctx).First(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GetPriceMargin returns the configured markup fraction, falling back to
// DefaultPriceMargin when no row exists. Other DB errors are propagated.
func GetPriceMargin(ctx context.Context, db *gorm.DB) (float64, error) {
	cfg, err := GetStoreConfig(ctx, db)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DefaultPriceMargin, nil
		}
		return 0, err
	}
	return cfg.PriceMargin, nil
}

// UpsertPriceMargin writes the margin into the single configuration row,
// creating it on first use. Validation of the margin range belongs to the
// store config service.
func UpsertPriceMargin(ctx context.Context, db *gorm.DB, margin float64) error {
	var cfg domain.StoreConfig
	err := db.WithContext(ctx).First(&cfg).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return db.WithContext(ctx).Create(&domain.StoreConfig{PriceMargin: margin}).Error
	case err != nil:
		return err
	default:
		return db.WithContext(ctx).
			Model(&cfg).
			Update("price_margin", margin).Error
	}
}
