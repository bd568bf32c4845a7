package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	orderdomain "github.com/ghuser/ordermgmt/services/order/domain"
	"github.com/ghuser/ordermgmt/services/order/domain/models"
	"github.com/ghuser/ordermgmt/services/order/infrastructure/persistence/postgres/db"
)

// StockRepository implements repositories.StockRepository.
type StockRepository struct {
	q *db.Queries
}

// Lock selects the stock row FOR UPDATE.
func (r *StockRepository) Lock(ctx context.Context, productID uuid.UUID) (*models.Stock, error) {
	row, err := r.q.LockStock(ctx, productID)
	if err != nil {
		return nil, stockError(productID, err)
	}
	return rowToStock(row), nil
}

func (r *StockRepository) Get(ctx context.Context, productID uuid.UUID) (*models.Stock, error) {
	row, err := r.q.GetStock(ctx, productID)
	if err != nil {
		return nil, stockError(productID, err)
	}
	return rowToStock(row), nil
}

func (r *StockRepository) SetQuantity(ctx context.Context, productID uuid.UUID, quantity int) error {
	n, err := r.q.SetStockQuantity(ctx, db.SetStockQuantityParams{
		ProductID: productID,
		Quantity:  int32(quantity),
	})
	if err != nil {
		return fmt.Errorf("update stock %s: %w", productID, err)
	}
	if n == 0 {
		return fmt.Errorf("stock %s: %w", productID, orderdomain.ErrProductNotFound)
	}
	return nil
}

func stockError(productID uuid.UUID, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("stock %s: %w", productID, orderdomain.ErrProductNotFound)
	}
	return fmt.Errorf("query stock %s: %w", productID, err)
}

func rowToStock(row db.OrderStock) *models.Stock {
	return &models.Stock{ProductID: row.ProductID, Quantity: int(row.Quantity)}
}
