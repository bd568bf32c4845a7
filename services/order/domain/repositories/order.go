package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/ordermgmt/services/order/domain/models"
)

// QueryOpts contains pagination parameters for list queries.
type QueryOpts struct {
	Limit  int // Maximum number of records to return
	Offset int // Number of records to skip
}

// StockRepository reads and writes stock rows. Lock must be called inside a
// UnitOfWork; the row stays locked until the unit of work ends.
type StockRepository interface {
	// Lock returns the stock row for productID locked for update.
	// Returns domain.ErrProductNotFound when no row exists.
	Lock(ctx context.Context, productID uuid.UUID) (*models.Stock, error)

	// Get reads the stock row without locking.
	Get(ctx context.Context, productID uuid.UUID) (*models.Stock, error)

	// SetQuantity overwrites the stock quantity.
	SetQuantity(ctx context.Context, productID uuid.UUID, quantity int) error
}

// OrderRepository is the persistence interface for the Order aggregate.
type OrderRepository interface {
	Insert(ctx context.Context, order *models.Order) error
	UpdateHeader(ctx context.Context, order *models.Order) error

	// Get loads the order with its items. Returns domain.ErrOrderNotFound.
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)

	// GetForUpdate is Get with the order header locked for the rest of the
	// unit of work, serializing concurrent edits of the same order.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error)

	// ListByBuyer returns the buyer's orders newest first, with items, plus
	// the total count ignoring pagination.
	ListByBuyer(ctx context.Context, buyerID uuid.UUID, opts QueryOpts) ([]*models.Order, int, error)

	Items(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error)
	DeleteItems(ctx context.Context, orderID uuid.UUID) error

	// InsertItems writes all items in a single statement.
	InsertItems(ctx context.Context, items []models.OrderItem) error

	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductRepository exposes the catalog data the order context needs.
type ProductRepository interface {
	// Prices returns the current price of each known product in ids.
	// Unknown ids are absent from the result.
	Prices(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
}

// BuyerDirectory resolves where to send a buyer's notifications.
type BuyerDirectory interface {
	Email(ctx context.Context, buyerID uuid.UUID) (string, error)
}

// Repos groups the repositories bound to one unit of work.
type Repos struct {
	Stock    StockRepository
	Orders   OrderRepository
	Products ProductRepository
}

// UnitOfWork runs fn atomically: every write made through the Repos passed
// to fn commits together or not at all. fn may run more than once when the
// store retries a conflicting transaction.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(r Repos) error) error

	// Reader returns repositories for non-transactional reads.
	Reader() Repos
}
