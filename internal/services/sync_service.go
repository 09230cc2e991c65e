// Package services – SyncService
//
// This file implements the bulk catalog synchronization engine. It walks the
// upstream product listing page by page, batch-loads the matching local rows,
// maps each upstream record through ApplyFullSnapshot, and persists every page
// as one all-or-nothing batch.
//
// Failure posture: a failed page fetch or a failed batch write never aborts the
// run; the engine counts the casualties and moves on to the next page. Only
// context cancellation and a failure to read the store margin stop a run early.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/uzplatform/go-store-backend/internal/domain"
	"github.com/uzplatform/go-store-backend/internal/kinguin"
	"github.com/uzplatform/go-store-backend/internal/repo"
)

const (
	// defaultPageLimit is the page size requested from upstream.
	defaultPageLimit = 100

	// defaultMaxPages is a hard ceiling on pages per run, guarding against a
	// runaway pagination loop if upstream keeps returning full pages.
	defaultMaxPages = 100

	// defaultPageDelay is the pause between consecutive page fetches, keeping
	// the run polite toward the upstream rate limiter.
	defaultPageDelay = 100 * time.Millisecond
)

// CatalogSource abstracts the upstream catalog API. *kinguin.Client satisfies
// it; tests substitute a fake.
type CatalogSource interface {
	FetchPage(ctx context.Context, page, limit int) (kinguin.SearchResponse, error)
}

// SyncResult summarizes one bulk sync run.
type SyncResult struct {
	IsSuccess    bool      `json:"is_success"`
	ErrorMessage string    `json:"error_message,omitempty"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Duration     string    `json:"duration"`

	TotalProcessed int `json:"total_processed"`
	Created        int `json:"created"`
	Updated        int `json:"updated"`
	Skipped        int `json:"skipped"`
	Failed         int `json:"failed"`
	PagesProcessed int `json:"pages_processed"`

	// Errors collects per-page and per-product failure descriptions. The run
	// can still be successful overall with a non-empty list.
	Errors []string `json:"errors,omitempty"`
}

// SyncService pulls the upstream catalog into the local products table.
type SyncService struct {
	DB     *gorm.DB
	Source CatalogSource
	Logger zerolog.Logger

	// PageLimit is the upstream page size; zero means defaultPageLimit.
	PageLimit int
	// MaxPages caps pages per run; zero means defaultMaxPages.
	MaxPages int
	// PageDelay is the inter-page pause; zero means defaultPageDelay.
	PageDelay time.Duration
}

// NewSyncService constructs a SyncService with the default pagination tuning.
func NewSyncService(db *gorm.DB, src CatalogSource, log zerolog.Logger) *SyncService {
	return &SyncService{
		DB:        db,
		Source:    src,
		Logger:    log,
		PageLimit: defaultPageLimit,
		MaxPages:  defaultMaxPages,
		PageDelay: defaultPageDelay,
	}
}

// SyncAll performs a full catalog pass. The returned result is always non-nil
// and self-describing; the error return mirrors result.ErrorMessage for fatal
// failures only (margin read, cancellation).
func (s *SyncService) SyncAll(ctx context.Context) (*SyncResult, error) {
	tr := otel.Tracer("services/SyncService")
	ctx, span := tr.Start(ctx, "SyncAll")
	defer span.End()

	pageLimit := s.PageLimit
	if pageLimit <= 0 {
		pageLimit = defaultPageLimit
	}
	maxPages := s.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}
	pageDelay := s.PageDelay
	if pageDelay <= 0 {
		pageDelay = defaultPageDelay
	}

	res := &SyncResult{StartTime: time.Now().UTC()}
	finish := func(err error) (*SyncResult, error) {
		res.EndTime = time.Now().UTC()
		res.Duration = res.EndTime.Sub(res.StartTime).String()
		res.IsSuccess = err == nil
		if err != nil {
			res.ErrorMessage = err.Error()
		}
		span.SetAttributes(
			attribute.Int("sync.pages", res.PagesProcessed),
			attribute.Int("sync.created", res.Created),
			attribute.Int("sync.updated", res.Updated),
			attribute.Int("sync.failed", res.Failed),
		)
		switch {
		case err == nil:
			syncRunsTotal.WithLabelValues("success").Inc()
		case ctx.Err() != nil:
			syncRunsTotal.WithLabelValues("cancelled").Inc()
		default:
			syncRunsTotal.WithLabelValues("failed").Inc()
		}
		s.Logger.Info().
			Bool("success", res.IsSuccess).
			Int("pages", res.PagesProcessed).
			Int("created", res.Created).
			Int("updated", res.Updated).
			Int("failed", res.Failed).
			Str("duration", res.Duration).
			Msg("bulk sync finished")
		return res, err
	}

	// The margin is read once per run so every page of a run prices
	// consistently even if an admin changes the margin mid-sync.
	margin, err := repo.GetPriceMargin(ctx, s.DB)
	if err != nil {
		return finish(fmt.Errorf("read price margin: %w", err))
	}

	for page := 1; page <= maxPages; page++ {
		if err := ctx.Err(); err != nil {
			return finish(err)
		}

		resp, err := s.Source.FetchPage(ctx, page, pageLimit)
		if err != nil {
			if ctx.Err() != nil {
				return finish(ctx.Err())
			}
			// A lost page is at most one page worth of products.
			res.Failed += pageLimit
			res.Errors = append(res.Errors, fmt.Sprintf("page %d: %v", page, err))
			syncPageFailuresTotal.Inc()
			s.Logger.Warn().Err(err).Int("page", page).Msg("page fetch failed, skipping")
			if !s.sleep(ctx, pageDelay) {
				return finish(ctx.Err())
			}
			continue
		}

		if len(resp.Results) == 0 {
			break
		}

		created, updated, failed := s.processPage(ctx, resp.Results, margin, res)
		res.Created += created
		res.Updated += updated
		res.Failed += failed
		res.TotalProcessed += len(resp.Results)
		res.PagesProcessed++

		s.Logger.Debug().
			Int("page", page).
			Int("items", len(resp.Results)).
			Int("created", created).
			Int("updated", updated).
			Int("failed", failed).
			Msg("page processed")

		// A short page is the upstream end-of-catalog signal.
		if len(resp.Results) < pageLimit {
			break
		}
		if !s.sleep(ctx, pageDelay) {
			return finish(ctx.Err())
		}
	}

	return finish(nil)
}

// processPage maps one page of upstream records onto local rows and persists
// them as a single transactional batch.
func (s *SyncService) processPage(ctx context.Context, items []kinguin.UpstreamProduct, margin float64, res *SyncResult) (created, updated, failed int) {
	ids := make([]int, 0, len(items))
	for _, it := range items {
		if it.KinguinID > 0 {
			ids = append(ids, it.KinguinID)
		}
	}
	existing, err := repo.FindProductsByKinguinIDs(ctx, s.DB, ids)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("batch load: %v", err))
		return 0, 0, len(items)
	}

	batch := make([]*domain.Product, 0, len(items))
	for _, it := range items {
		p, err := ApplyFullSnapshot(it, margin, existing[it.KinguinID])
		if err != nil {
			failed++
			res.Errors = append(res.Errors, fmt.Sprintf("product %d/%s: %v", it.KinguinID, it.ProductID, err))
			continue
		}
		if p.ID == 0 {
			created++
		} else {
			updated++
		}
		batch = append(batch, p)
	}

	if err := repo.SaveProductBatch(ctx, s.DB, batch); err != nil {
		// The batch rolled back as a unit, so none of its creates or updates
		// actually happened.
		res.Errors = append(res.Errors, fmt.Sprintf("batch save: %v", err))
		failed += len(batch)
		created, updated = 0, 0
	}

	syncProductsTotal.WithLabelValues("created").Add(float64(created))
	syncProductsTotal.WithLabelValues("updated").Add(float64(updated))
	syncProductsTotal.WithLabelValues("failed").Add(float64(failed))
	return created, updated, failed
}

// sleep pauses between pages but aborts promptly on cancellation. Returns
// false when the context ended during the pause.
func (s *SyncService) sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
