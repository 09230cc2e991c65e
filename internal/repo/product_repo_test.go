package repo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/uzplatform/go-store-backend/internal/domain"
)

func newProductDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:productrepo_%s?mode=memory&cache=shared", t.Name())
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

func seedProduct(t *testing.T, db *gorm.DB, kinguinID int, productID string) *domain.Product {
	t.Helper()
	p := &domain.Product{
		KinguinID: kinguinID,
		ProductID: productID,
		Name:      fmt.Sprintf("Game %d", kinguinID),
		Price:     9.99,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func TestFindProductsByKinguinIDs_BatchLoad(t *testing.T) {
	db := newProductDB(t)
	seedProduct(t, db, 1, "p-1")
	seedProduct(t, db, 2, "p-2")
	seedProduct(t, db, 3, "p-3")

	got, err := FindProductsByKinguinIDs(context.Background(), db, []int{1, 3, 99})
	if err != nil {
		t.Fatalf("FindProductsByKinguinIDs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[1] == nil || got[1].ProductID != "p-1" {
		t.Fatalf("missing kinguin id 1: %+v", got)
	}
	if _, ok := got[99]; ok {
		t.Fatalf("unexpected hit for unknown id 99")
	}
}

func TestFindProductsByKinguinIDs_EmptyInput(t *testing.T) {
	db := newProductDB(t)
	got, err := FindProductsByKinguinIDs(context.Background(), db, nil)
	if err != nil {
		t.Fatalf("FindProductsByKinguinIDs: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty map, got %d entries", len(got))
	}
}

func TestFindActiveProductByAnyID_MatchesEitherID(t *testing.T) {
	db := newProductDB(t)
	seedProduct(t, db, 7, "p-7")

	byKinguin, err := FindActiveProductByAnyID(context.Background(), db, 7, "nope")
	if err != nil {
		t.Fatalf("by kinguin id: %v", err)
	}
	byProduct, err := FindActiveProductByAnyID(context.Background(), db, -1, "p-7")
	if err != nil {
		t.Fatalf("by product id: %v", err)
	}
	if byKinguin.ID != byProduct.ID {
		t.Fatalf("lookups disagree: %d vs %d", byKinguin.ID, byProduct.ID)
	}
}

func TestFindActiveProductByAnyID_ExcludesDeleted(t *testing.T) {
	db := newProductDB(t)
	seedProduct(t, db, 8, "p-8")
	if err := SoftDeleteProduct(context.Background(), db, "p-8"); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	_, err := FindActiveProductByAnyID(context.Background(), db, 8, "p-8")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for deleted row, got %v", err)
	}
}

func TestSaveProductBatch_CreatesAndUpdates(t *testing.T) {
	db := newProductDB(t)
	existing := seedProduct(t, db, 10, "p-10")
	existing.Name = "Renamed"

	batch := []*domain.Product{
		existing,
		{KinguinID: 11, ProductID: "p-11", Name: "New", CreatedAt: time.Now().UTC()},
	}
	if err := SaveProductBatch(context.Background(), db, batch); err != nil {
		t.Fatalf("SaveProductBatch: %v", err)
	}

	var count int64
	db.Model(&domain.Product{}).Count(&count)
	if count != 2 {
		t.Fatalf("expected 2 rows, got %d", count)
	}
	var got domain.Product
	if err := db.Where("kinguin_id = ?", 10).First(&got).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Name != "Renamed" {
		t.Fatalf("update not persisted: %q", got.Name)
	}
}

func TestSaveProductBatch_RollsBackWholeBatchOnConflict(t *testing.T) {
	db := newProductDB(t)
	seedProduct(t, db, 20, "p-20")

	// Second entry violates the unique index on kinguin_id; the first insert
	// must be rolled back with it.
	batch := []*domain.Product{
		{KinguinID: 21, ProductID: "p-21", Name: "Fine"},
		{KinguinID: 20, ProductID: "p-dup", Name: "Conflict"},
	}
	if err := SaveProductBatch(context.Background(), db, batch); err == nil {
		t.Fatalf("expected unique violation")
	}

	var count int64
	db.Model(&domain.Product{}).Where("kinguin_id = ?", 21).Count(&count)
	if count != 0 {
		t.Fatalf("batch partially committed: found kinguin_id 21")
	}
}

func TestSoftDeleteAndRestore_RoundTrip(t *testing.T) {
	db := newProductDB(t)
	seedProduct(t, db, 30, "p-30")
	ctx := context.Background()

	if err := SoftDeleteProduct(ctx, db, "p-30"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := GetActiveProductByProductID(ctx, db, "p-30"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted row still active: %v", err)
	}

	deleted, total, err := ListDeletedProductsPage(ctx, db, 0, 10)
	if err != nil || total != 1 || len(deleted) != 1 {
		t.Fatalf("deleted listing: rows=%d total=%d err=%v", len(deleted), total, err)
	}
	if !deleted[0].IsDeleted || deleted[0].DeletedAt == nil {
		t.Fatalf("deleted row not flagged: %+v", deleted[0])
	}

	if err := RestoreProduct(ctx, db, "p-30"); err != nil {
		t.Fatalf("restore: %v", err)
	}
	got, err := GetActiveProductByProductID(ctx, db, "p-30")
	if err != nil {
		t.Fatalf("restored row not visible: %v", err)
	}
	if got.IsDeleted || got.DeletedAt != nil {
		t.Fatalf("restore did not clear flags: %+v", got)
	}
}

func TestSoftDeleteProduct_MissingOrAlreadyDeleted(t *testing.T) {
	db := newProductDB(t)
	ctx := context.Background()

	if err := SoftDeleteProduct(ctx, db, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing row, got %v", err)
	}

	seedProduct(t, db, 31, "p-31")
	if err := SoftDeleteProduct(ctx, db, "p-31"); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := SoftDeleteProduct(ctx, db, "p-31"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for second delete, got %v", err)
	}
}

func TestSearchProductsPage_FiltersAndSorting(t *testing.T) {
	db := newProductDB(t)
	ctx := context.Background()

	plat := func(s string) *string { return &s }
	rows := []*domain.Product{
		{KinguinID: 40, ProductID: "p-40", Name: "Alpha Quest", Platform: plat("Steam"), Price: 5},
		{KinguinID: 41, ProductID: "p-41", Name: "Beta Strike", Platform: plat("Steam"), Price: 15},
		{KinguinID: 42, ProductID: "p-42", Name: "Gamma Racer", Platform: plat("GOG"), Price: 10},
	}
	for _, p := range rows {
		if err := db.Create(p).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	if err := SoftDeleteProduct(ctx, db, "p-42"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// Platform filter excludes the GOG (deleted anyway) row.
	got, total, err := SearchProductsPage(ctx, db, ProductFilter{Platform: "Steam", SortBy: "price", SortDesc: true}, 0, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 2 || len(got) != 2 {
		t.Fatalf("rows=%d total=%d, want 2/2", len(got), total)
	}
	if got[0].Price < got[1].Price {
		t.Fatalf("descending price sort violated: %v, %v", got[0].Price, got[1].Price)
	}

	// Name filter requires at least 3 characters to apply.
	_, total, err = SearchProductsPage(ctx, db, ProductFilter{Name: "alpha"}, 0, 10)
	if err != nil || total != 1 {
		t.Fatalf("name filter: total=%d err=%v", total, err)
	}
	_, total, err = SearchProductsPage(ctx, db, ProductFilter{Name: "al"}, 0, 10)
	if err != nil || total != 2 {
		t.Fatalf("short name filter should be ignored: total=%d err=%v", total, err)
	}
}
