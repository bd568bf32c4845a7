package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/ordermgmt/services/catalog/domain/models"
)

// QueryOpts contains pagination parameters for list queries.
type QueryOpts struct {
	Limit  int // Maximum number of records to return
	Offset int // Number of records to skip
}

// ProductFilter narrows product listings. Nil fields do not filter.
type ProductFilter struct {
	CategoryID *uuid.UUID
	SupplierID *uuid.UUID
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
}

// SupplierRepository is the persistence interface for suppliers.
type SupplierRepository interface {
	Save(ctx context.Context, s *models.Supplier) error
	// GetByID returns domain.ErrSupplierNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
	// List filters by case-insensitive name substring when search is non-empty.
	List(ctx context.Context, search string, opts QueryOpts) ([]*models.Supplier, int, error)
	// Update returns domain.ErrSupplierNotFound if absent.
	Update(ctx context.Context, s *models.Supplier) error
	// Delete returns domain.ErrSupplierNotFound, or domain.ErrSupplierInUse
	// while products reference the supplier.
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryRepository is the persistence interface for categories.
type CategoryRepository interface {
	Save(ctx context.Context, c *models.Category) error
	// GetByID returns domain.ErrCategoryNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	List(ctx context.Context, opts QueryOpts) ([]*models.Category, int, error)
}

// ProductRepository is the persistence interface for products.
type ProductRepository interface {
	// Save inserts a product. Unknown supplier or category ids are reported
	// as domain.ErrSupplierNotFound or domain.ErrCategoryNotFound.
	Save(ctx context.Context, p *models.Product) error
	// Update persists changes and publishes a ProductChangedEvent atomically.
	Update(ctx context.Context, p *models.Product) error
	// GetByID returns domain.ErrProductNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, f ProductFilter, opts QueryOpts) ([]*models.Product, int, error)
	// Delete removes the product and its stock row and publishes a
	// ProductChangedEvent marked deleted. Returns domain.ErrProductNotFound,
	// or domain.ErrProductInUse while order items reference the product.
	Delete(ctx context.Context, id uuid.UUID) error
}

// StockRepository is the catalog's administrative view of stock rows. It
// creates rows and reads them; quantities change only through the order
// context's Ledger.
type StockRepository interface {
	// Create adds a row. Returns domain.ErrStockAlreadyExists or
	// domain.ErrProductNotFound.
	Create(ctx context.Context, s *models.Stock) error
	// GetByProductID returns domain.ErrStockNotFound if absent.
	GetByProductID(ctx context.Context, productID uuid.UUID) (*models.Stock, error)
	// List returns all rows, or only productID's row when non-nil.
	List(ctx context.Context, productID *uuid.UUID, opts QueryOpts) ([]*models.Stock, int, error)
}
