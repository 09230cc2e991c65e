// Package services – upsert/mapping engine.
//
// This file converts the upstream product representation into the locally
// persisted shape. Two distinct operations exist on purpose:
//
//   - ApplyFullSnapshot: the bulk-sync path. Overwrites every mapped field
//     from a complete upstream record and applies the store price markup to
//     the top-level price and to every nested offer and wholesale tier price.
//   - ApplyPartialPatch: the webhook path. Webhooks carry incomplete
//     payloads, so only quantities, the cheapest-offer list, and the upstream
//     business timestamp are touched; everything else stays as-is.
//
// Keeping the two paths as separately named operations (instead of one
// function switched by an optional parameter) makes it impossible to
// accidentally clobber a full record with a partial payload.
//
// Margin validity ((0,1) exclusive) is enforced at the store-config boundary,
// not here; the mapper applies whatever fraction it is handed.
package services

import (
	"encoding/json"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/uzplatform/go-store-backend/internal/domain"
	"github.com/uzplatform/go-store-backend/internal/kinguin"
)

// platformCaser fixes all-lowercase platform names the upstream feed sometimes
// delivers ("steam" → "Steam"). Mixed-case values are left alone.
var platformCaser = cases.Title(language.English)

// ApplyFullSnapshot maps a complete upstream product onto a local entity.
// When existing is non-nil it is mutated in place (update path) so the row
// keeps its database identity; otherwise a new entity is constructed.
//
// Price markup: price' = price * (1 + margin), applied to the top-level price
// and to every offer and wholesale tier price.
func ApplyFullSnapshot(up kinguin.UpstreamProduct, margin float64, existing *domain.Product) (*domain.Product, error) {
	if up.KinguinID <= 0 && up.ProductID == "" {
		return nil, ErrMissingIdentity
	}

	p := existing
	if p == nil {
		p = &domain.Product{CreatedAt: time.Now().UTC()}
	}

	p.KinguinID = up.KinguinID
	p.ProductID = up.ProductID
	p.Name = up.Name
	p.OriginalName = up.OriginalName
	p.Description = up.Description
	p.Platform = normalizePlatform(up.Platform)
	p.Price = markup(up.Price, margin)
	p.Qty = up.Qty
	p.TextQty = up.TextQty
	p.TotalQty = up.TotalQty
	p.OffersCount = up.OffersCount
	p.IsPreorder = up.IsPreorder
	p.MetacriticScore = up.MetacriticScore
	p.RegionalLimitations = up.RegionalLimitations
	p.RegionID = up.RegionID
	p.ActivationDetails = up.ActivationDetails
	p.AgeRating = up.AgeRating
	p.Steam = up.Steam
	p.ReleaseDate = parseUpstreamTime(up.ReleaseDate)
	p.UpdatedAt = parseUpstreamTime(up.UpdatedAt)

	now := time.Now().UTC()
	p.LastAPIUpdate = &now

	p.DevelopersJSON = encodeJSON(up.Developers)
	p.PublishersJSON = encodeJSON(up.Publishers)
	p.GenresJSON = encodeJSON(up.Genres)
	p.LanguagesJSON = encodeJSON(up.Languages)
	p.TagsJSON = encodeJSON(up.Tags)
	p.CountryLimitationJSON = encodeJSON(up.CountryLimitation)
	p.MerchantNameJSON = encodeJSON(up.MerchantName)
	p.CheapestOfferIDJSON = encodeJSON(up.CheapestOfferID)

	videos := make([]domain.VideoInfo, 0, len(up.Videos))
	for _, v := range up.Videos {
		videos = append(videos, domain.VideoInfo{VideoID: v.VideoID})
	}
	p.VideosJSON = encodeJSON(videos)

	sysReqs := make([]domain.SystemRequirement, 0, len(up.SystemRequirements))
	for _, sr := range up.SystemRequirements {
		sysReqs = append(sysReqs, domain.SystemRequirement{System: sr.System, Requirement: sr.Requirement})
	}
	p.SystemRequirementsJSON = encodeJSON(sysReqs)

	if up.Images != nil {
		images := domain.ProductImages{
			Screenshots: make([]domain.Screenshot, 0, len(up.Images.Screenshots)),
		}
		for _, s := range up.Images.Screenshots {
			images.Screenshots = append(images.Screenshots, domain.Screenshot{URL: s.URL, Thumbnail: s.Thumbnail})
		}
		if up.Images.Cover != nil {
			images.Cover = &domain.Cover{URL: up.Images.Cover.URL, Thumbnail: up.Images.Cover.Thumbnail}
		}
		p.ImagesJSON = encodeJSON(images)
	}

	offers := make([]domain.ProductOffer, 0, len(up.Offers))
	for _, o := range up.Offers {
		po := domain.ProductOffer{
			Name:             o.Name,
			OfferID:          o.OfferID,
			Price:            markup(o.Price, margin),
			Qty:              o.Qty,
			AvailableQty:     o.AvailableQty,
			TextQty:          o.TextQty,
			AvailableTextQty: o.AvailableTextQty,
			MerchantName:     o.MerchantName,
			IsPreorder:       o.IsPreorder,
			ReleaseDate:      o.ReleaseDate,
		}
		if o.Wholesale != nil {
			w := &domain.WholesaleInfo{Enabled: o.Wholesale.Enabled}
			for _, t := range o.Wholesale.Tiers {
				w.Tiers = append(w.Tiers, domain.WholesaleTier{Level: t.Level, Price: markup(t.Price, margin)})
			}
			po.Wholesale = w
		}
		offers = append(offers, po)
	}
	p.OffersJSON = encodeJSON(offers)

	return p, nil
}

// ApplyPartialPatch applies a webhook partial update to an existing entity:
// only Qty, TextQty, the cheapest-offer list, and the upstream timestamp are
// written. The staleness decision (LastAPIUpdate) belongs to the webhook
// reconciler, not here.
func ApplyPartialPatch(p *domain.Product, up kinguin.PartialUpdate) {
	p.Qty = up.Qty
	p.TextQty = up.TextQty
	if len(up.CheapestOfferID) > 0 {
		p.CheapestOfferIDJSON = encodeJSON(up.CheapestOfferID)
	} else {
		p.CheapestOfferIDJSON = nil
	}
	ts := up.UpdatedAt
	p.UpdatedAt = &ts
}

// CheapestOfferIDs decodes the cheapest-offer column, returning an empty
// slice for nil/malformed content. Order is preserved: the staleness
// heuristic compares the sequence, not the set.
func CheapestOfferIDs(p *domain.Product) []string {
	if p.CheapestOfferIDJSON == nil || *p.CheapestOfferIDJSON == "" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(*p.CheapestOfferIDJSON), &out); err != nil {
		return []string{}
	}
	return out
}

// markup scales an upstream price by the store margin.
func markup(price, margin float64) float64 {
	return price * (1 + margin)
}

// encodeJSON serializes v into a text column value. Marshalling the plain
// slices and structs used here cannot fail, so a failure collapses to nil.
func encodeJSON(v any) *string {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	s := string(b)
	return &s
}

// parseUpstreamTime parses the loosely formatted timestamps the upstream feed
// uses. Unparseable or absent values map to nil, mirroring how the feed mixes
// RFC 3339 and bare dates.
func parseUpstreamTime(s *string) *time.Time {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, strings.TrimSpace(*s)); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// normalizePlatform title-cases all-lowercase platform names; anything with
// existing capitalization (GOG, PSN) passes through untouched.
func normalizePlatform(platform *string) *string {
	if platform == nil {
		return nil
	}
	v := strings.TrimSpace(*platform)
	if v == "" {
		return nil
	}
	if v == strings.ToLower(v) {
		v = platformCaser.String(v)
	}
	return &v
}
