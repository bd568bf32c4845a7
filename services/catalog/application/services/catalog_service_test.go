package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	pkgcache "github.com/ghuser/ordermgmt/pkg/cache"
	"github.com/ghuser/ordermgmt/pkg/logger"
	appsvcs "github.com/ghuser/ordermgmt/services/catalog/application/services"
	catalogdomain "github.com/ghuser/ordermgmt/services/catalog/domain"
	"github.com/ghuser/ordermgmt/services/catalog/domain/models"
	"github.com/ghuser/ordermgmt/services/catalog/domain/repositories"
	"github.com/ghuser/ordermgmt/services/catalog/infrastructure/persistence/memory"
)

type fakeCache struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*pkgcache.CachedProduct
	deleted []uuid.UUID
}

func (c *fakeCache) Get(_ context.Context, id uuid.UUID) (*pkgcache.CachedProduct, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[id]; ok {
		return e, nil
	}
	return nil, redis.Nil
}

func (c *fakeCache) Set(_ context.Context, p *pkgcache.CachedProduct) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[p.ID] = p
	return nil
}

func (c *fakeCache) Delete(_ context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	c.deleted = append(c.deleted, id)
	return nil
}

func newService(t *testing.T, cache appsvcs.ProductCache) (*appsvcs.CatalogService, *memory.Catalog) {
	t.Helper()
	c := memory.NewCatalog()
	log := logger.Discard()
	svc := appsvcs.NewCatalogService(c.Suppliers(), c.Categories(), c.Products(), c.Stocks(),
		appsvcs.NewOrderLedger(c.StockUnit(), log), cache, log)
	return svc, c
}

func seedProduct(t *testing.T, svc *appsvcs.CatalogService, price string) *models.Product {
	t.Helper()
	ctx := context.Background()
	sup, err := svc.CreateSupplier(ctx, appsvcs.SupplierInput{Name: "Acme", Country: "NL"})
	if err != nil {
		t.Fatalf("supplier: %v", err)
	}
	cat, err := svc.CreateCategory(ctx, "Tools", nil)
	if err != nil {
		t.Fatalf("category: %v", err)
	}
	p, err := svc.CreateProduct(ctx, appsvcs.ProductInput{
		SupplierID: sup.ID,
		CategoryID: cat.ID,
		Name:       "Hammer",
		Price:      decimal.RequireFromString(price),
	})
	if err != nil {
		t.Fatalf("product: %v", err)
	}
	return p
}

func TestCreateSupplier_InvalidName(t *testing.T) {
	svc, _ := newService(t, nil)
	for _, name := range []string{"", "  ", " Acme"} {
		if _, err := svc.CreateSupplier(context.Background(), appsvcs.SupplierInput{Name: name}); !errors.Is(err, catalogdomain.ErrInvalidInput) {
			t.Errorf("name %q: expected ErrInvalidInput, got %v", name, err)
		}
	}
}

func TestCreateCategory_UnknownParent(t *testing.T) {
	svc, _ := newService(t, nil)
	parent := uuid.New()
	if _, err := svc.CreateCategory(context.Background(), "Child", &parent); !errors.Is(err, catalogdomain.ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestCreateProduct_References(t *testing.T) {
	svc, _ := newService(t, nil)
	ctx := context.Background()
	cat, err := svc.CreateCategory(ctx, "Tools", nil)
	if err != nil {
		t.Fatalf("category: %v", err)
	}

	_, err = svc.CreateProduct(ctx, appsvcs.ProductInput{
		SupplierID: uuid.New(),
		CategoryID: cat.ID,
		Name:       "Saw",
		Price:      decimal.RequireFromString("5"),
	})
	if !errors.Is(err, catalogdomain.ErrSupplierNotFound) {
		t.Fatalf("expected ErrSupplierNotFound, got %v", err)
	}
}

func TestCreateProduct_InvalidPrice(t *testing.T) {
	svc, _ := newService(t, nil)
	_, err := svc.CreateProduct(context.Background(), appsvcs.ProductInput{
		SupplierID: uuid.New(),
		CategoryID: uuid.New(),
		Name:       "Saw",
		Price:      decimal.RequireFromString("1.999"),
	})
	if !errors.Is(err, catalogdomain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestGetProduct_CacheHit(t *testing.T) {
	cache := &fakeCache{entries: map[uuid.UUID]*pkgcache.CachedProduct{}}
	svc, _ := newService(t, cache)
	p := seedProduct(t, svc, "9.99")

	cache.entries[p.ID] = &pkgcache.CachedProduct{
		ID:    p.ID,
		Name:  "Cached Hammer",
		Price: decimal.RequireFromString("9.99"),
	}
	got, err := svc.GetProduct(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Cached Hammer" {
		t.Errorf("expected cached copy, got %q", got.Name)
	}
}

func TestGetProduct_MissFallsThrough(t *testing.T) {
	cache := &fakeCache{entries: map[uuid.UUID]*pkgcache.CachedProduct{}}
	svc, _ := newService(t, cache)
	p := seedProduct(t, svc, "9.99")

	got, err := svc.GetProduct(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Hammer" {
		t.Errorf("name = %q", got.Name)
	}

	if _, err := svc.GetProduct(context.Background(), uuid.New()); !errors.Is(err, catalogdomain.ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
}

func TestUpdateProduct_EvictsCache(t *testing.T) {
	cache := &fakeCache{entries: map[uuid.UUID]*pkgcache.CachedProduct{}}
	svc, store := newService(t, cache)
	p := seedProduct(t, svc, "9.99")

	updated, err := svc.UpdateProduct(context.Background(), p.ID, appsvcs.ProductInput{
		SupplierID: p.SupplierID,
		CategoryID: p.CategoryID,
		Name:       "Claw Hammer",
		Price:      decimal.RequireFromString("11.50"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.Price.Equal(decimal.RequireFromString("11.50")) {
		t.Errorf("price = %s", updated.Price)
	}
	if changed := store.Changed(); len(changed) != 1 || changed[0] != p.ID {
		t.Errorf("expected one change for %s, got %v", p.ID, changed)
	}
	if len(cache.deleted) != 1 || cache.deleted[0] != p.ID {
		t.Errorf("expected eviction of %s, got %v", p.ID, cache.deleted)
	}
}

func TestListProducts_RejectsInvertedPriceRange(t *testing.T) {
	svc, _ := newService(t, nil)
	lo, hi := decimal.RequireFromString("10"), decimal.RequireFromString("5")
	_, _, err := svc.ListProducts(context.Background(), repositories.ProductFilter{MinPrice: &lo, MaxPrice: &hi}, repositories.QueryOpts{})
	if !errors.Is(err, catalogdomain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestStockAdministration(t *testing.T) {
	svc, _ := newService(t, nil)
	ctx := context.Background()
	p := seedProduct(t, svc, "1.00")

	if _, err := svc.CreateStock(ctx, p.ID, -1); !errors.Is(err, catalogdomain.ErrInvalidInput) {
		t.Errorf("negative create: expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.CreateStock(ctx, p.ID, 10); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.CreateStock(ctx, p.ID, 10); !errors.Is(err, catalogdomain.ErrStockAlreadyExists) {
		t.Errorf("duplicate: expected ErrStockAlreadyExists, got %v", err)
	}
	if _, err := svc.CreateStock(ctx, uuid.New(), 1); !errors.Is(err, catalogdomain.ErrProductNotFound) {
		t.Errorf("unknown product: expected ErrProductNotFound, got %v", err)
	}

	st, err := svc.SetStock(ctx, p.ID, 3)
	if err != nil || st.Quantity != 3 {
		t.Fatalf("set: %+v, %v", st, err)
	}
	if _, err := svc.SetStock(ctx, uuid.New(), 3); !errors.Is(err, catalogdomain.ErrStockNotFound) {
		t.Errorf("set unknown: expected ErrStockNotFound, got %v", err)
	}
	if _, err := svc.SetStock(ctx, p.ID, 1<<32+5); !errors.Is(err, catalogdomain.ErrInvalidInput) {
		t.Errorf("set beyond int32: expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.CreateStock(ctx, p.ID, 1<<32+5); !errors.Is(err, catalogdomain.ErrInvalidInput) {
		t.Errorf("create beyond int32: expected ErrInvalidInput, got %v", err)
	}

	rows, total, err := svc.ListStocks(ctx, &p.ID, repositories.QueryOpts{})
	if err != nil || total != 1 || rows[0].Quantity != 3 {
		t.Errorf("list: %v %d %v", rows, total, err)
	}
}

func TestOrderLedger_TranslatesErrors(t *testing.T) {
	svc, c := newService(t, nil)
	ctx := context.Background()
	p := seedProduct(t, svc, "1.00")
	if _, err := svc.CreateStock(ctx, p.ID, 2); err != nil {
		t.Fatalf("create: %v", err)
	}
	ledger := appsvcs.NewOrderLedger(c.StockUnit(), logger.Discard())

	if err := ledger.SetStock(ctx, p.ID, 1<<32+5); !errors.Is(err, catalogdomain.ErrInvalidInput) {
		t.Errorf("beyond int32: expected ErrInvalidInput, got %v", err)
	}
	if err := ledger.SetStock(ctx, uuid.New(), 1); !errors.Is(err, catalogdomain.ErrStockNotFound) {
		t.Errorf("no row: expected ErrStockNotFound, got %v", err)
	}
	if err := ledger.SetStock(ctx, p.ID, 7); err != nil {
		t.Fatalf("set: %v", err)
	}
	st, err := svc.GetStock(ctx, p.ID)
	if err != nil || st.Quantity != 7 {
		t.Fatalf("stored row: %+v, %v", st, err)
	}
}

func TestUpdateSupplier(t *testing.T) {
	svc, _ := newService(t, nil)
	ctx := context.Background()
	sup, err := svc.CreateSupplier(ctx, appsvcs.SupplierInput{Name: "Acme", Country: "NL"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.UpdateSupplier(ctx, sup.ID, appsvcs.SupplierInput{Name: "Acme BV", City: "Utrecht"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Name != "Acme BV" || got.Address.City != "Utrecht" || got.Address.Country != "" {
		t.Errorf("unexpected supplier: %+v", got)
	}
	if _, err := svc.UpdateSupplier(ctx, sup.ID, appsvcs.SupplierInput{Name: " "}); !errors.Is(err, catalogdomain.ErrInvalidInput) {
		t.Errorf("blank name: expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.UpdateSupplier(ctx, uuid.New(), appsvcs.SupplierInput{Name: "X"}); !errors.Is(err, catalogdomain.ErrSupplierNotFound) {
		t.Errorf("unknown: expected ErrSupplierNotFound, got %v", err)
	}
}

func TestDeleteSupplier_RefusedWhileProductsExist(t *testing.T) {
	svc, _ := newService(t, nil)
	ctx := context.Background()
	p := seedProduct(t, svc, "1.00")

	if err := svc.DeleteSupplier(ctx, p.SupplierID); !errors.Is(err, catalogdomain.ErrSupplierInUse) {
		t.Fatalf("expected ErrSupplierInUse, got %v", err)
	}
	if err := svc.DeleteProduct(ctx, p.ID); err != nil {
		t.Fatalf("delete product: %v", err)
	}
	if err := svc.DeleteSupplier(ctx, p.SupplierID); err != nil {
		t.Fatalf("delete supplier: %v", err)
	}
	if _, err := svc.GetSupplier(ctx, p.SupplierID); !errors.Is(err, catalogdomain.ErrSupplierNotFound) {
		t.Errorf("expected ErrSupplierNotFound after delete, got %v", err)
	}
	if err := svc.DeleteSupplier(ctx, p.SupplierID); !errors.Is(err, catalogdomain.ErrSupplierNotFound) {
		t.Errorf("second delete: expected ErrSupplierNotFound, got %v", err)
	}
}

func TestDeleteProduct_CascadesStockAndEvicts(t *testing.T) {
	cache := &fakeCache{entries: map[uuid.UUID]*pkgcache.CachedProduct{}}
	svc, store := newService(t, cache)
	ctx := context.Background()
	p := seedProduct(t, svc, "1.00")
	if _, err := svc.CreateStock(ctx, p.ID, 5); err != nil {
		t.Fatalf("stock: %v", err)
	}

	if err := svc.DeleteProduct(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetStock(ctx, p.ID); !errors.Is(err, catalogdomain.ErrStockNotFound) {
		t.Errorf("expected stock row removed, got %v", err)
	}
	if changed := store.Changed(); len(changed) != 1 || changed[0] != p.ID {
		t.Errorf("expected one change for %s, got %v", p.ID, changed)
	}
	if len(cache.deleted) != 1 || cache.deleted[0] != p.ID {
		t.Errorf("expected eviction of %s, got %v", p.ID, cache.deleted)
	}
	if err := svc.DeleteProduct(ctx, p.ID); !errors.Is(err, catalogdomain.ErrProductNotFound) {
		t.Errorf("second delete: expected ErrProductNotFound, got %v", err)
	}
}

func TestDeleteProduct_RefusedWhileOrdered(t *testing.T) {
	svc, store := newService(t, nil)
	p := seedProduct(t, svc, "1.00")
	store.MarkOrdered(p.ID)

	if err := svc.DeleteProduct(context.Background(), p.ID); !errors.Is(err, catalogdomain.ErrProductInUse) {
		t.Fatalf("expected ErrProductInUse, got %v", err)
	}
	if _, err := svc.GetProduct(context.Background(), p.ID); err != nil {
		t.Fatalf("product must survive: %v", err)
	}
}
