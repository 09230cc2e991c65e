// Package domain – payload types for the JSON-encoded product columns.
//
// These structs are what the mapper serializes into the *JSON columns of
// Product. They deliberately mirror the shape the upstream catalog delivers so
// a column can be decoded back without loss.
package domain

// ProductOffer is one marketplace offer attached to a product. Offer prices
// are stored already marked-up, consistent with Product.Price.
type ProductOffer struct {
	Name             *string        `json:"name,omitempty"`
	OfferID          string         `json:"offerId"`
	Price            float64        `json:"price"`
	Qty              int            `json:"qty"`
	AvailableQty     *int           `json:"availableQty,omitempty"`
	TextQty          *int           `json:"textQty,omitempty"`
	AvailableTextQty *int           `json:"availableTextQty,omitempty"`
	MerchantName     *string        `json:"merchantName,omitempty"`
	IsPreorder       bool           `json:"isPreorder"`
	ReleaseDate      *string        `json:"releaseDate,omitempty"`
	Wholesale        *WholesaleInfo `json:"wholesale,omitempty"`
}

// WholesaleInfo describes volume pricing for an offer.
type WholesaleInfo struct {
	Enabled bool            `json:"enabled"`
	Tiers   []WholesaleTier `json:"tiers"`
}

// WholesaleTier is one volume price break. Tier prices are marked-up like
// every other price.
type WholesaleTier struct {
	Level int     `json:"level"`
	Price float64 `json:"price"`
}

// VideoInfo references a product trailer or gameplay video.
type VideoInfo struct {
	VideoID string `json:"videoId"`
}

// SystemRequirement is one platform's requirement list.
type SystemRequirement struct {
	System      string   `json:"system"`
	Requirement []string `json:"requirement"`
}

// ProductImages groups cover art and screenshots.
type ProductImages struct {
	Screenshots []Screenshot `json:"screenshots"`
	Cover       *Cover       `json:"cover,omitempty"`
}

// Screenshot is a full-size screenshot with its thumbnail.
type Screenshot struct {
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail"`
}

// Cover is the product cover image.
type Cover struct {
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail"`
}
