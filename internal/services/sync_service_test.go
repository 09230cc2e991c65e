package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/uzplatform/go-store-backend/internal/domain"
	"github.com/uzplatform/go-store-backend/internal/kinguin"
)

func newSyncDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:syncsvc_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.Product{}, &domain.StoreConfig{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// fakeSource serves a fixed catalog as pages and records every fetch.
type fakeSource struct {
	catalog  []kinguin.UpstreamProduct
	fetches  int
	failPage int   // fetching this page fails once per call
	failErr  error // error returned for failPage
	onFetch  func(page int)
}

func (f *fakeSource) FetchPage(ctx context.Context, page, limit int) (kinguin.SearchResponse, error) {
	f.fetches++
	if f.onFetch != nil {
		f.onFetch(page)
	}
	if err := ctx.Err(); err != nil {
		return kinguin.SearchResponse{}, err
	}
	if f.failPage != 0 && page == f.failPage {
		return kinguin.SearchResponse{}, f.failErr
	}
	start := (page - 1) * limit
	if start >= len(f.catalog) {
		return kinguin.SearchResponse{ItemCount: len(f.catalog)}, nil
	}
	end := start + limit
	if end > len(f.catalog) {
		end = len(f.catalog)
	}
	return kinguin.SearchResponse{Results: f.catalog[start:end], ItemCount: len(f.catalog)}, nil
}

func makeCatalog(n int) []kinguin.UpstreamProduct {
	out := make([]kinguin.UpstreamProduct, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, kinguin.UpstreamProduct{
			KinguinID: i,
			ProductID: fmt.Sprintf("prod-%d", i),
			Name:      fmt.Sprintf("Game %d", i),
			Price:     float64(i),
			Qty:       i,
		})
	}
	return out
}

func newTestSyncService(db *gorm.DB, src CatalogSource, pageLimit int) *SyncService {
	s := NewSyncService(db, src, zerolog.Nop())
	s.PageLimit = pageLimit
	s.PageDelay = time.Millisecond
	return s
}

func TestSyncAll_PaginatesAndStopsOnShortPage(t *testing.T) {
	db := newSyncDB(t)
	src := &fakeSource{catalog: makeCatalog(7)} // 3 pages of 3: 3+3+1
	s := newTestSyncService(db, src, 3)

	res, err := s.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("SyncAll: %v", err)
	}
	if !res.IsSuccess {
		t.Fatalf("run not successful: %+v", res)
	}
	if res.Created != 7 || res.Updated != 0 || res.Failed != 0 {
		t.Fatalf("created=%d updated=%d failed=%d, want 7/0/0", res.Created, res.Updated, res.Failed)
	}
	if res.PagesProcessed != 3 {
		t.Fatalf("pages = %d, want 3", res.PagesProcessed)
	}
	// The short third page ends the run; no probe for page 4.
	if src.fetches != 3 {
		t.Fatalf("fetches = %d, want 3", src.fetches)
	}

	var count int64
	db.Model(&domain.Product{}).Count(&count)
	if count != 7 {
		t.Fatalf("rows = %d, want 7", count)
	}
}

func TestSyncAll_ExactMultipleProbesEmptyPage(t *testing.T) {
	db := newSyncDB(t)
	src := &fakeSource{catalog: makeCatalog(6)} // exactly 2 full pages of 3
	s := newTestSyncService(db, src, 3)

	res, err := s.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("SyncAll: %v", err)
	}
	if res.Created != 6 || res.PagesProcessed != 2 {
		t.Fatalf("created=%d pages=%d, want 6/2", res.Created, res.PagesProcessed)
	}
	// Full final page forces one more fetch that comes back empty.
	if src.fetches != 3 {
		t.Fatalf("fetches = %d, want 3", src.fetches)
	}
}

func TestSyncAll_SecondRunIsIdempotent(t *testing.T) {
	db := newSyncDB(t)
	src := &fakeSource{catalog: makeCatalog(5)}
	s := newTestSyncService(db, src, 3)
	ctx := context.Background()

	if _, err := s.SyncAll(ctx); err != nil {
		t.Fatalf("first run: %v", err)
	}
	res, err := s.SyncAll(ctx)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if res.Created != 0 || res.Updated != 5 {
		t.Fatalf("created=%d updated=%d, want 0/5", res.Created, res.Updated)
	}

	var count int64
	db.Model(&domain.Product{}).Count(&count)
	if count != 5 {
		t.Fatalf("rows = %d after rerun, want 5", count)
	}
}

func TestSyncAll_PageFetchFailureIsAbsorbed(t *testing.T) {
	db := newSyncDB(t)
	src := &fakeSource{
		catalog:  makeCatalog(7),
		failPage: 2,
		failErr:  errors.New("upstream 502"),
	}
	s := newTestSyncService(db, src, 3)

	res, err := s.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("SyncAll: %v", err)
	}
	if !res.IsSuccess {
		t.Fatalf("a lost page must not fail the run: %+v", res)
	}
	// Page 2 is written off as a full page worth of products.
	if res.Failed != 3 {
		t.Fatalf("failed = %d, want 3", res.Failed)
	}
	if res.Created != 4 { // pages 1 and 3
		t.Fatalf("created = %d, want 4", res.Created)
	}
	if len(res.Errors) == 0 {
		t.Fatalf("expected the page failure to be recorded")
	}
}

func TestSyncAll_CancellationStopsRun(t *testing.T) {
	db := newSyncDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	src := &fakeSource{catalog: makeCatalog(30)}
	src.onFetch = func(page int) {
		if page == 2 {
			cancel()
		}
	}
	s := newTestSyncService(db, src, 3)

	res, err := s.SyncAll(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res.IsSuccess {
		t.Fatalf("cancelled run reported success")
	}
	// Page 1 committed before the cancellation landed.
	var count int64
	db.Model(&domain.Product{}).Count(&count)
	if count != 3 {
		t.Fatalf("rows = %d, want the 3 from page 1", count)
	}
}

func TestSyncAll_BatchWriteFailureRollsBackWholePage(t *testing.T) {
	db := newSyncDB(t)
	catalog := makeCatalog(3)
	catalog[2].ProductID = catalog[0].ProductID // unique index violation inside the batch
	src := &fakeSource{catalog: catalog}
	s := newTestSyncService(db, src, 3)

	res, err := s.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("SyncAll: %v", err)
	}
	if res.Created != 0 || res.Updated != 0 {
		t.Fatalf("rolled-back batch must not count as written: created=%d updated=%d", res.Created, res.Updated)
	}
	if res.Failed != 3 {
		t.Fatalf("failed = %d, want the whole batch", res.Failed)
	}

	var count int64
	db.Model(&domain.Product{}).Count(&count)
	if count != 0 {
		t.Fatalf("rows = %d, want 0 after rollback", count)
	}
}

func TestSyncAll_MaxPagesCeiling(t *testing.T) {
	db := newSyncDB(t)
	src := &fakeSource{catalog: makeCatalog(100)}
	s := newTestSyncService(db, src, 10)
	s.MaxPages = 4

	res, err := s.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("SyncAll: %v", err)
	}
	if res.PagesProcessed != 4 || src.fetches != 4 {
		t.Fatalf("pages=%d fetches=%d, want 4/4", res.PagesProcessed, src.fetches)
	}
	if res.Created != 40 {
		t.Fatalf("created = %d, want 40", res.Created)
	}
}
