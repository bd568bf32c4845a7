package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	pkgcache "github.com/ghuser/ordermgmt/pkg/cache"
	"github.com/ghuser/ordermgmt/pkg/logger"
	catalogdomain "github.com/ghuser/ordermgmt/services/catalog/domain"
	"github.com/ghuser/ordermgmt/services/catalog/domain/models"
	"github.com/ghuser/ordermgmt/services/catalog/domain/repositories"
	domainsvcs "github.com/ghuser/ordermgmt/services/catalog/domain/services"
)

const cacheWarmTimeout = 2 * time.Second

// ProductCache is the read-through cache for single product lookups.
// Get returns redis.Nil on a miss.
type ProductCache interface {
	Get(ctx context.Context, id uuid.UUID) (*pkgcache.CachedProduct, error)
	Set(ctx context.Context, p *pkgcache.CachedProduct) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SupplierInput carries the writable fields of a supplier.
type SupplierInput struct {
	Name     string
	Country  string
	City     string
	Street   string
	Building string
}

// ProductInput carries the writable fields of a product.
type ProductInput struct {
	SupplierID uuid.UUID
	CategoryID uuid.UUID
	Name       string
	Price      decimal.Decimal
}

// CatalogService orchestrates suppliers, categories, products and stock
// administration. Product reads are served from cache when available; every
// product write evicts the cached copy.
type CatalogService struct {
	suppliers  repositories.SupplierRepository
	categories repositories.CategoryRepository
	products   repositories.ProductRepository
	stocks     repositories.StockRepository
	ledger     StockLedger
	cache      ProductCache
	log        logger.Logger
}

// NewCatalogService returns a CatalogService. cache may be nil.
func NewCatalogService(
	suppliers repositories.SupplierRepository,
	categories repositories.CategoryRepository,
	products repositories.ProductRepository,
	stocks repositories.StockRepository,
	ledger StockLedger,
	cache ProductCache,
	log logger.Logger,
) *CatalogService {
	return &CatalogService{
		suppliers:  suppliers,
		categories: categories,
		products:   products,
		stocks:     stocks,
		ledger:     ledger,
		cache:      cache,
		log:        log,
	}
}

// CreateSupplier validates and persists a supplier.
func (s *CatalogService) CreateSupplier(ctx context.Context, in SupplierInput) (*models.Supplier, error) {
	name, err := validName(in.Name)
	if err != nil {
		return nil, err
	}
	sup := models.NewSupplier(name, models.Address{
		Country:  in.Country,
		City:     in.City,
		Street:   in.Street,
		Building: in.Building,
	})
	if err := s.suppliers.Save(ctx, sup); err != nil {
		return nil, fmt.Errorf("save supplier: %w", err)
	}
	return sup, nil
}

func (s *CatalogService) GetSupplier(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	sup, err := s.suppliers.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	return sup, nil
}

// ListSuppliers returns a page of suppliers whose name contains search.
func (s *CatalogService) ListSuppliers(ctx context.Context, search string, opts repositories.QueryOpts) ([]*models.Supplier, int, error) {
	out, total, err := s.suppliers.List(ctx, search, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list suppliers: %w", err)
	}
	return out, total, nil
}

// UpdateSupplier replaces a supplier's name and address.
func (s *CatalogService) UpdateSupplier(ctx context.Context, id uuid.UUID, in SupplierInput) (*models.Supplier, error) {
	sup, err := s.suppliers.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	name, err := validName(in.Name)
	if err != nil {
		return nil, err
	}
	sup.Name = name
	sup.Address = models.Address{
		Country:  in.Country,
		City:     in.City,
		Street:   in.Street,
		Building: in.Building,
	}
	if err := s.suppliers.Update(ctx, sup); err != nil {
		return nil, fmt.Errorf("update supplier: %w", err)
	}
	return sup, nil
}

// DeleteSupplier removes a supplier that no product references.
func (s *CatalogService) DeleteSupplier(ctx context.Context, id uuid.UUID) error {
	if err := s.suppliers.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete supplier: %w", err)
	}
	s.log.InfoContext(ctx, "supplier deleted", "supplier_id", id)
	return nil
}

// CreateCategory persists a category. A given parent must exist.
func (s *CatalogService) CreateCategory(ctx context.Context, name string, parentID *uuid.UUID) (*models.Category, error) {
	n, err := validName(name)
	if err != nil {
		return nil, err
	}
	if parentID != nil {
		if _, err := s.categories.GetByID(ctx, *parentID); err != nil {
			return nil, fmt.Errorf("parent category: %w", err)
		}
	}
	c := models.NewCategory(n, parentID)
	if err := s.categories.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("save category: %w", err)
	}
	return c, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (s *CatalogService) ListCategories(ctx context.Context, opts repositories.QueryOpts) ([]*models.Category, int, error) {
	out, total, err := s.categories.List(ctx, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	return out, total, nil
}

// CreateProduct validates and persists a product. Supplier and category must exist.
func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	name, err := validName(in.Name)
	if err != nil {
		return nil, err
	}
	p := models.NewProduct(in.SupplierID, in.CategoryID, name, in.Price)
	if err := domainsvcs.ValidateProduct(p); err != nil {
		return nil, fmt.Errorf("%w: %w", catalogdomain.ErrInvalidInput, err)
	}
	if err := s.checkReferences(ctx, in.SupplierID, in.CategoryID); err != nil {
		return nil, err
	}
	if err := s.products.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}
	return p, nil
}

// UpdateProduct replaces a product's writable fields. Existing orders keep
// the price they were placed at; only new reservations see the change.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, in ProductInput) (*models.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	name, err := validName(in.Name)
	if err != nil {
		return nil, err
	}

	p.SupplierID = in.SupplierID
	p.CategoryID = in.CategoryID
	p.Name = name
	p.Price = in.Price
	p.UpdatedAt = time.Now().UTC()
	if err := domainsvcs.ValidateProduct(p); err != nil {
		return nil, fmt.Errorf("%w: %w", catalogdomain.ErrInvalidInput, err)
	}
	if err := s.checkReferences(ctx, in.SupplierID, in.CategoryID); err != nil {
		return nil, err
	}

	if err := s.products.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	s.Evict(ctx, id)
	return p, nil
}

// DeleteProduct removes a product and its stock row. Products that appear
// on any order stay, since order items keep their purchase history.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	s.Evict(ctx, id)
	s.log.InfoContext(ctx, "product deleted", "product_id", id)
	return nil
}

// GetProduct retrieves a product using a read-through cache pattern:
//  1. Check Redis cache first.
//  2. On cache miss (or cache error), query Postgres.
//  3. Asynchronously warm the cache with the Postgres result.
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err == nil {
			return fromCache(cached), nil
		}
		if !errors.Is(err, redis.Nil) {
			s.log.WarnContext(ctx, "product cache read failed", "product_id", id, "error", err)
		}
	}

	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	if s.cache != nil {
		entry := toCache(p)
		go func() {
			wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheWarmTimeout)
			defer cancel()
			if err := s.cache.Set(wctx, entry); err != nil {
				s.log.WarnContext(wctx, "product cache warm failed", "product_id", entry.ID, "error", err)
			}
		}()
	}
	return p, nil
}

// ListProducts returns a filtered page of products plus the total count.
func (s *CatalogService) ListProducts(ctx context.Context, f repositories.ProductFilter, opts repositories.QueryOpts) ([]*models.Product, int, error) {
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return nil, 0, fmt.Errorf("%w: min_price exceeds max_price", catalogdomain.ErrInvalidInput)
	}
	out, total, err := s.products.List(ctx, f, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return out, total, nil
}

// Evict drops a product from the cache. Cache failures are logged only.
func (s *CatalogService) Evict(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		s.log.WarnContext(ctx, "product cache evict failed", "product_id", id, "error", err)
	}
}

// CreateStock adds the stock row for a product.
func (s *CatalogService) CreateStock(ctx context.Context, productID uuid.UUID, quantity int) (*models.Stock, error) {
	if err := domainsvcs.ValidateQuantity(quantity); err != nil {
		return nil, fmt.Errorf("%w: %w", catalogdomain.ErrInvalidInput, err)
	}
	st := &models.Stock{ProductID: productID, Quantity: quantity, UpdatedAt: time.Now().UTC()}
	if err := s.stocks.Create(ctx, st); err != nil {
		return nil, fmt.Errorf("create stock: %w", err)
	}
	return st, nil
}

func (s *CatalogService) GetStock(ctx context.Context, productID uuid.UUID) (*models.Stock, error) {
	st, err := s.stocks.GetByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return st, nil
}

// ListStocks returns stock rows, optionally only productID's.
func (s *CatalogService) ListStocks(ctx context.Context, productID *uuid.UUID, opts repositories.QueryOpts) ([]*models.Stock, int, error) {
	out, total, err := s.stocks.List(ctx, productID, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list stocks: %w", err)
	}
	return out, total, nil
}

// SetStock records a stock count for a product. The write goes through the
// ledger; the returned row is read back afterwards and may already reflect
// later reservations.
func (s *CatalogService) SetStock(ctx context.Context, productID uuid.UUID, quantity int) (*models.Stock, error) {
	if err := domainsvcs.ValidateQuantity(quantity); err != nil {
		return nil, fmt.Errorf("%w: %w", catalogdomain.ErrInvalidInput, err)
	}
	if err := s.ledger.SetStock(ctx, productID, quantity); err != nil {
		return nil, fmt.Errorf("set stock: %w", err)
	}
	st, err := s.stocks.GetByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("read stock: %w", err)
	}
	return st, nil
}

func (s *CatalogService) checkReferences(ctx context.Context, supplierID, categoryID uuid.UUID) error {
	if _, err := s.suppliers.GetByID(ctx, supplierID); err != nil {
		return fmt.Errorf("product supplier: %w", err)
	}
	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		return fmt.Errorf("product category: %w", err)
	}
	return nil
}

func validName(s string) (models.Name, error) {
	n, err := models.NewName(s)
	if err != nil {
		return "", fmt.Errorf("%w: %w", catalogdomain.ErrInvalidInput, err)
	}
	if err := domainsvcs.ValidateName(n); err != nil {
		return "", fmt.Errorf("%w: %w", catalogdomain.ErrInvalidInput, err)
	}
	return n, nil
}

func toCache(p *models.Product) *pkgcache.CachedProduct {
	return &pkgcache.CachedProduct{
		ID:         p.ID,
		SupplierID: p.SupplierID,
		CategoryID: p.CategoryID,
		Name:       p.Name.String(),
		Price:      p.Price,
		UpdatedAt:  p.UpdatedAt,
	}
}

func fromCache(c *pkgcache.CachedProduct) *models.Product {
	return &models.Product{
		ID:         c.ID,
		SupplierID: c.SupplierID,
		CategoryID: c.CategoryID,
		Name:       models.Name(c.Name),
		Price:      c.Price,
		UpdatedAt:  c.UpdatedAt,
	}
}
