// Package domain defines the persistence models for the locally mirrored
// product catalog, webhook audit events, and store configuration. These types
// are mapped with GORM and form the core data layer of the store backend.
package domain

import (
	"time"
)

// Product is a locally persisted catalog entry mirrored from the upstream
// Kinguin catalog. Rows are created and mutated by the bulk sync engine and by
// the webhook reconciler; soft deletion is an explicit administrative action
// and is never performed by sync.
//
// Identity:
//   - ID: autoincrement surrogate key (internal only).
//   - KinguinID: immutable upstream integer id, globally unique.
//   - ProductID: immutable upstream string id, globally unique.
//
// Uniqueness of KinguinID and ProductID is global, not scoped to deletion
// state, so an id can never be re-used by a second row while the first one
// sits soft-deleted. Soft delete is modelled with an explicit IsDeleted flag
// (rather than gorm.DeletedAt) for exactly that reason: deleted rows must stay
// visible to the unique indexes and to the restore/deleted-listing queries.
type Product struct {
	ID        uint   `json:"id"         gorm:"primaryKey"`
	KinguinID int    `json:"kinguin_id" gorm:"not null;uniqueIndex:ux_products_kinguin_id"`
	ProductID string `json:"product_id" gorm:"type:varchar(50);not null;uniqueIndex:ux_products_product_id"`

	Name         string  `json:"name"          gorm:"type:varchar(500);not null"`
	OriginalName *string `json:"original_name" gorm:"type:varchar(500)"`
	Description  *string `json:"description"   gorm:"type:text"`

	Platform    *string    `json:"platform" gorm:"type:varchar(100)"`
	ReleaseDate *time.Time `json:"release_date"`

	// Price is the marked-up price (upstream price scaled by the store margin).
	Price       float64 `json:"price" gorm:"not null;default:0"`
	Qty         int     `json:"qty"`
	TextQty     int     `json:"text_qty"`
	TotalQty    int     `json:"total_qty"`
	OffersCount int     `json:"offers_count"`

	IsPreorder bool `json:"is_preorder"`

	RegionID            *int    `json:"region_id"`
	RegionalLimitations *string `json:"regional_limitations" gorm:"type:varchar(200)"`

	MetacriticScore *float64 `json:"metacritic_score"`
	AgeRating       *string  `json:"age_rating" gorm:"type:varchar(20)"`
	Steam           *string  `json:"steam"      gorm:"type:varchar(20)"`

	ActivationDetails *string `json:"-" gorm:"type:text"`

	// JSON-encoded columns for upstream collections. The mapper owns the
	// encode/decode round trip; everything else treats them as opaque text.
	DevelopersJSON         *string `json:"-" gorm:"type:text"`
	PublishersJSON         *string `json:"-" gorm:"type:text"`
	GenresJSON             *string `json:"-" gorm:"type:text"`
	LanguagesJSON          *string `json:"-" gorm:"type:text"`
	TagsJSON               *string `json:"-" gorm:"type:text"`
	CountryLimitationJSON  *string `json:"-" gorm:"type:text"`
	MerchantNameJSON       *string `json:"-" gorm:"type:text"`
	CheapestOfferIDJSON    *string `json:"-" gorm:"type:text"`
	VideosJSON             *string `json:"-" gorm:"type:text"`
	SystemRequirementsJSON *string `json:"-" gorm:"type:text"`
	ImagesJSON             *string `json:"-" gorm:"type:text"`
	OffersJSON             *string `json:"-" gorm:"type:text"`

	// LastAPIUpdate records when the row last received a full snapshot from
	// the upstream API. A nil value is the staleness flag: the next bulk sync
	// treats the row as due for a full refresh.
	LastAPIUpdate *time.Time `json:"last_api_update"`

	// UpdatedAt is the business timestamp reported by upstream, not a GORM
	// managed column.
	UpdatedAt *time.Time `json:"updated_at"`
	CreatedAt time.Time  `json:"created_at"`

	IsDeleted bool       `json:"is_deleted" gorm:"not null;default:false;index"`
	DeletedAt *time.Time `json:"deleted_at"`
}

// TableName returns the database table name for Product.
func (Product) TableName() string { return "products" }

// StoreConfig holds store-wide settings. The table carries a single row;
// SetPriceMargin upserts it.
//
// PriceMargin is the fractional markup applied on top of upstream prices and
// must lie strictly between 0 and 1. Enforcement happens in the store config
// service, not in the mapper that consumes the value.
type StoreConfig struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	PriceMargin float64   `json:"price_margin" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for StoreConfig.
func (StoreConfig) TableName() string { return "store_configs" }
