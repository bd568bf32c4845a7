package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	orderdomain "github.com/ghuser/ordermgmt/services/order/domain"
	"github.com/ghuser/ordermgmt/services/order/domain/models"
	"github.com/ghuser/ordermgmt/services/order/domain/repositories"
	"github.com/ghuser/ordermgmt/services/order/infrastructure/persistence/postgres/db"
)

// OrderRepository implements repositories.OrderRepository.
type OrderRepository struct {
	q *db.Queries
}

func (r *OrderRepository) Insert(ctx context.Context, o *models.Order) error {
	if err := r.q.InsertOrder(ctx, db.InsertOrderParams{
		ID:        o.ID,
		BuyerID:   o.BuyerID,
		OrderDate: o.OrderDate,
	}); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *OrderRepository) UpdateHeader(ctx context.Context, o *models.Order) error {
	n, err := r.q.UpdateOrderHeader(ctx, db.UpdateOrderHeaderParams{
		ID:        o.ID,
		BuyerID:   o.BuyerID,
		OrderDate: o.OrderDate,
	})
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if n == 0 {
		return orderdomain.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	row, err := r.q.GetOrder(ctx, id)
	if err != nil {
		return nil, orderError(err)
	}
	return r.withItems(ctx, row)
}

func (r *OrderRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	row, err := r.q.GetOrderForUpdate(ctx, id)
	if err != nil {
		return nil, orderError(err)
	}
	return r.withItems(ctx, row)
}

func (r *OrderRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID, opts repositories.QueryOpts) ([]*models.Order, int, error) {
	rows, err := r.q.ListOrdersByBuyer(ctx, db.ListOrdersByBuyerParams{
		BuyerID: buyerID,
		Limit:   int32(opts.Limit),
		Offset:  int32(opts.Offset),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("query orders: %w", err)
	}

	total, err := r.q.CountOrdersByBuyer(ctx, buyerID)
	if err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	orders := make([]*models.Order, len(rows))
	ids := make([]uuid.UUID, len(rows))
	byID := make(map[uuid.UUID]*models.Order, len(rows))
	for i, row := range rows {
		orders[i] = rowToOrder(row)
		ids[i] = row.ID
		byID[row.ID] = orders[i]
	}
	if len(ids) == 0 {
		return orders, int(total), nil
	}

	items, err := r.q.ListOrderItems(ctx, uuidStrings(ids))
	if err != nil {
		return nil, 0, fmt.Errorf("query order items: %w", err)
	}
	for _, it := range items {
		o := byID[it.OrderID]
		o.Items = append(o.Items, rowToItem(it))
	}
	return orders, int(total), nil
}

func (r *OrderRepository) Items(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	rows, err := r.q.ListOrderItems(ctx, []string{orderID.String()})
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	items := make([]models.OrderItem, len(rows))
	for i, row := range rows {
		items[i] = rowToItem(row)
	}
	return items, nil
}

func (r *OrderRepository) DeleteItems(ctx context.Context, orderID uuid.UUID) error {
	if err := r.q.DeleteOrderItems(ctx, orderID); err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}
	return nil
}

// InsertItems writes all items in one statement. A product that vanished from
// the catalog is reported as ErrProductNotFound.
func (r *OrderRepository) InsertItems(ctx context.Context, items []models.OrderItem) error {
	params := make([]db.InsertOrderItemParams, len(items))
	for i, it := range items {
		params[i] = db.InsertOrderItemParams{
			ID:            it.ID,
			OrderID:       it.OrderID,
			ProductID:     it.ProductID,
			Position:      int32(it.Position),
			Quantity:      int32(it.Quantity),
			PurchasePrice: it.PurchasePrice,
		}
	}
	if err := r.q.InsertOrderItems(ctx, params); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("%w: %s", orderdomain.ErrProductNotFound, pgErr.Detail)
		}
		return fmt.Errorf("insert order items: %w", err)
	}
	return nil
}

func (r *OrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := r.q.DeleteOrder(ctx, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if n == 0 {
		return orderdomain.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) withItems(ctx context.Context, row db.OrderOrder) (*models.Order, error) {
	o := rowToOrder(row)
	items, err := r.Items(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

func orderError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return orderdomain.ErrOrderNotFound
	}
	return fmt.Errorf("query order: %w", err)
}

// rowToOrder maps a db.OrderOrder to a domain models.Order without items.
func rowToOrder(row db.OrderOrder) *models.Order {
	return &models.Order{
		ID:        row.ID,
		BuyerID:   row.BuyerID,
		OrderDate: row.OrderDate.UTC(),
	}
}

func rowToItem(row db.OrderOrderItem) models.OrderItem {
	return models.OrderItem{
		ID:            row.ID,
		OrderID:       row.OrderID,
		ProductID:     row.ProductID,
		Position:      int(row.Position),
		Quantity:      int(row.Quantity),
		PurchasePrice: row.PurchasePrice,
	}
}
