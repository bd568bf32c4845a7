package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const lockStock = `-- name: LockStock :one
SELECT product_id, quantity FROM stocks
WHERE product_id = $1
FOR UPDATE
`

func (q *Queries) LockStock(ctx context.Context, productID uuid.UUID) (OrderStock, error) {
	row := q.db.QueryRowContext(ctx, lockStock, productID)
	var i OrderStock
	err := row.Scan(&i.ProductID, &i.Quantity)
	return i, err
}

const getStock = `-- name: GetStock :one
SELECT product_id, quantity FROM stocks
WHERE product_id = $1
`

func (q *Queries) GetStock(ctx context.Context, productID uuid.UUID) (OrderStock, error) {
	row := q.db.QueryRowContext(ctx, getStock, productID)
	var i OrderStock
	err := row.Scan(&i.ProductID, &i.Quantity)
	return i, err
}

const setStockQuantity = `-- name: SetStockQuantity :execrows
UPDATE stocks SET quantity = $2, updated_at = now()
WHERE product_id = $1
`

type SetStockQuantityParams struct {
	ProductID uuid.UUID
	Quantity  int32
}

func (q *Queries) SetStockQuantity(ctx context.Context, arg SetStockQuantityParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, setStockQuantity, arg.ProductID, arg.Quantity)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getProductPrices = `-- name: GetProductPrices :many
SELECT id, price FROM products
WHERE id = ANY($1::uuid[])
`

type GetProductPricesRow struct {
	ID    uuid.UUID
	Price decimal.Decimal
}

func (q *Queries) GetProductPrices(ctx context.Context, ids []string) ([]GetProductPricesRow, error) {
	rows, err := q.db.QueryContext(ctx, getProductPrices, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetProductPricesRow
	for rows.Next() {
		var i GetProductPricesRow
		if err := rows.Scan(&i.ID, &i.Price); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertOrder = `-- name: InsertOrder :exec
INSERT INTO orders (id, buyer_id, order_date)
VALUES ($1, $2, $3)
`

type InsertOrderParams struct {
	ID        uuid.UUID
	BuyerID   uuid.UUID
	OrderDate time.Time
}

func (q *Queries) InsertOrder(ctx context.Context, arg InsertOrderParams) error {
	_, err := q.db.ExecContext(ctx, insertOrder, arg.ID, arg.BuyerID, arg.OrderDate)
	return err
}

const updateOrderHeader = `-- name: UpdateOrderHeader :execrows
UPDATE orders SET buyer_id = $2, order_date = $3
WHERE id = $1
`

type UpdateOrderHeaderParams struct {
	ID        uuid.UUID
	BuyerID   uuid.UUID
	OrderDate time.Time
}

func (q *Queries) UpdateOrderHeader(ctx context.Context, arg UpdateOrderHeaderParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateOrderHeader, arg.ID, arg.BuyerID, arg.OrderDate)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getOrder = `-- name: GetOrder :one
SELECT id, buyer_id, order_date, seq FROM orders
WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (OrderOrder, error) {
	row := q.db.QueryRowContext(ctx, getOrder, id)
	var i OrderOrder
	err := row.Scan(&i.ID, &i.BuyerID, &i.OrderDate, &i.Seq)
	return i, err
}

const getOrderForUpdate = `-- name: GetOrderForUpdate :one
SELECT id, buyer_id, order_date, seq FROM orders
WHERE id = $1
FOR UPDATE
`

func (q *Queries) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (OrderOrder, error) {
	row := q.db.QueryRowContext(ctx, getOrderForUpdate, id)
	var i OrderOrder
	err := row.Scan(&i.ID, &i.BuyerID, &i.OrderDate, &i.Seq)
	return i, err
}

const listOrdersByBuyer = `-- name: ListOrdersByBuyer :many
SELECT id, buyer_id, order_date, seq FROM orders
WHERE buyer_id = $1
ORDER BY order_date DESC, seq DESC
LIMIT NULLIF($2::int, 0) OFFSET $3
`

type ListOrdersByBuyerParams struct {
	BuyerID uuid.UUID
	Limit   int32
	Offset  int32
}

func (q *Queries) ListOrdersByBuyer(ctx context.Context, arg ListOrdersByBuyerParams) ([]OrderOrder, error) {
	rows, err := q.db.QueryContext(ctx, listOrdersByBuyer, arg.BuyerID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderOrder
	for rows.Next() {
		var i OrderOrder
		if err := rows.Scan(&i.ID, &i.BuyerID, &i.OrderDate, &i.Seq); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countOrdersByBuyer = `-- name: CountOrdersByBuyer :one
SELECT COUNT(*) FROM orders
WHERE buyer_id = $1
`

func (q *Queries) CountOrdersByBuyer(ctx context.Context, buyerID uuid.UUID) (int64, error) {
	row := q.db.QueryRowContext(ctx, countOrdersByBuyer, buyerID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const listOrderItems = `-- name: ListOrderItems :many
SELECT id, order_id, product_id, position, quantity, purchase_price FROM order_items
WHERE order_id = ANY($1::uuid[])
ORDER BY order_id, position
`

func (q *Queries) ListOrderItems(ctx context.Context, orderIds []string) ([]OrderOrderItem, error) {
	rows, err := q.db.QueryContext(ctx, listOrderItems, orderIds)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderOrderItem
	for rows.Next() {
		var i OrderOrderItem
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.ProductID,
			&i.Position,
			&i.Quantity,
			&i.PurchasePrice,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteOrderItems = `-- name: DeleteOrderItems :exec
DELETE FROM order_items
WHERE order_id = $1
`

func (q *Queries) DeleteOrderItems(ctx context.Context, orderID uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, deleteOrderItems, orderID)
	return err
}

const deleteOrder = `-- name: DeleteOrder :execrows
DELETE FROM orders
WHERE id = $1
`

func (q *Queries) DeleteOrder(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteOrder, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getBuyerEmail = `-- name: GetBuyerEmail :one
SELECT email FROM users
WHERE id = $1
`

func (q *Queries) GetBuyerEmail(ctx context.Context, id uuid.UUID) (string, error) {
	row := q.db.QueryRowContext(ctx, getBuyerEmail, id)
	var email string
	err := row.Scan(&email)
	return email, err
}
