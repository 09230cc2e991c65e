// Package kinguin implements the client for the upstream Kinguin catalog API
// and declares the wire types it exchanges: the full product representation
// returned by the paginated listing, and the partial representation delivered
// by product-update webhooks.
package kinguin

import "time"

// SearchResponse is the paginated product listing envelope returned by the
// upstream /products endpoint.
type SearchResponse struct {
	Results   []UpstreamProduct `json:"results"`
	ItemCount int               `json:"item_count"`
}

// UpstreamProduct is the full product representation delivered by the upstream
// catalog listing. Field names match the upstream JSON contract.
type UpstreamProduct struct {
	KinguinID           int                 `json:"kinguinId"`
	ProductID           string              `json:"productId"`
	Name                string              `json:"name"`
	OriginalName        *string             `json:"originalName"`
	Description         *string             `json:"description"`
	Developers          []string            `json:"developers"`
	Publishers          []string            `json:"publishers"`
	Genres              []string            `json:"genres"`
	Platform            *string             `json:"platform"`
	ReleaseDate         *string             `json:"releaseDate"`
	Qty                 int                 `json:"qty"`
	TextQty             int                 `json:"textQty"`
	TotalQty            int                 `json:"totalQty"`
	Price               float64             `json:"price"`
	CheapestOfferID     []string            `json:"cheapestOfferId"`
	IsPreorder          bool                `json:"isPreorder"`
	MetacriticScore     *float64            `json:"metacriticScore"`
	RegionalLimitations *string             `json:"regionalLimitations"`
	CountryLimitation   []string            `json:"countryLimitation"`
	RegionID            *int                `json:"regionId"`
	ActivationDetails   *string             `json:"activationDetails"`
	Videos              []Video             `json:"videos"`
	Languages           []string            `json:"languages"`
	SystemRequirements  []SystemRequirement `json:"systemRequirements"`
	Tags                []string            `json:"tags"`
	Offers              []Offer             `json:"offers"`
	OffersCount         int                 `json:"offersCount"`
	MerchantName        []string            `json:"merchantName"`
	AgeRating           *string             `json:"ageRating"`
	Steam               *string             `json:"steam"`
	Images              *Images             `json:"images"`
	UpdatedAt           *string             `json:"updatedAt"`
}

// Offer is one marketplace offer in an upstream product.
type Offer struct {
	Name             *string    `json:"name"`
	OfferID          string     `json:"offerId"`
	Price            float64    `json:"price"`
	Qty              int        `json:"qty"`
	AvailableQty     *int       `json:"availableQty"`
	TextQty          *int       `json:"textQty"`
	AvailableTextQty *int       `json:"availableTextQty"`
	MerchantName     *string    `json:"merchantName"`
	IsPreorder       bool       `json:"isPreorder"`
	ReleaseDate      *string    `json:"releaseDate"`
	Wholesale        *Wholesale `json:"wholesale"`
}

// Wholesale carries volume pricing for an offer.
type Wholesale struct {
	Enabled bool   `json:"enabled"`
	Tiers   []Tier `json:"tiers"`
}

// Tier is one wholesale price break.
type Tier struct {
	Level int     `json:"level"`
	Price float64 `json:"price"`
}

// Video references a product video by its external id.
type Video struct {
	VideoID string `json:"videoId"`
}

// SystemRequirement is one platform's requirement list.
type SystemRequirement struct {
	System      string   `json:"system"`
	Requirement []string `json:"requirement"`
}

// Images groups screenshots and cover art.
type Images struct {
	Screenshots []Screenshot `json:"screenshots"`
	Cover       *Cover       `json:"cover"`
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

// PartialUpdate is the payload of a product.update webhook. Webhooks carry an
// incomplete product: quantities, the cheapest-offer list, and the upstream
// business timestamp, nothing else.
type PartialUpdate struct {
	KinguinID       int       `json:"kinguinId"`
	ProductID       string    `json:"productId"`
	Qty             int       `json:"qty"`
	TextQty         int       `json:"textQty"`
	CheapestOfferID []string  `json:"cheapestOfferId"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
