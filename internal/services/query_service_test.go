package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/uzplatform/go-store-backend/internal/domain"
	"github.com/uzplatform/go-store-backend/internal/repo"
)

func newQueryDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:querysvc_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.Product{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func seedCatalog(t *testing.T, db *gorm.DB, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		p := &domain.Product{
			KinguinID: i,
			ProductID: fmt.Sprintf("prod-%d", i),
			Name:      fmt.Sprintf("Game %d", i),
			Price:     float64(i),
			CreatedAt: time.Now().UTC(),
		}
		if err := db.Create(p).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestQueryService_ListPage_Defaults(t *testing.T) {
	db := newQueryDB(t)
	seedCatalog(t, db, 25)
	svc := NewQueryService(db)

	items, total, err := svc.ListPage(context.Background(), repo.ProductFilter{}, 0, 0)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if total != 25 {
		t.Fatalf("total = %d, want 25", total)
	}
	if len(items) != 20 {
		t.Fatalf("default page size = %d, want 20", len(items))
	}
}

func TestQueryService_Get_NotFound(t *testing.T) {
	db := newQueryDB(t)
	svc := NewQueryService(db)
	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestQueryService_DeleteRestoreRoundTrip(t *testing.T) {
	db := newQueryDB(t)
	seedCatalog(t, db, 1)
	svc := NewQueryService(db)
	ctx := context.Background()

	if err := svc.Delete(ctx, "prod-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, "prod-1"); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("deleted product still visible: %v", err)
	}

	// Double delete is a not-found.
	if err := svc.Delete(ctx, "prod-1"); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("double delete: got %v", err)
	}

	items, total, err := svc.ListDeletedPage(ctx, 1, 10)
	if err != nil || total != 1 || len(items) != 1 {
		t.Fatalf("deleted listing: n=%d total=%d err=%v", len(items), total, err)
	}

	if err := svc.Restore(ctx, "prod-1"); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if _, err := svc.Get(ctx, "prod-1"); err != nil {
		t.Fatalf("restored product not visible: %v", err)
	}
}

func TestQueryService_Restore_Unknown(t *testing.T) {
	db := newQueryDB(t)
	svc := NewQueryService(db)
	if err := svc.Restore(context.Background(), "missing"); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}
