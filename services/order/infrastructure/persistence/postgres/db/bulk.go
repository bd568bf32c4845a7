package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InsertOrderItemParams struct {
	ID            uuid.UUID
	OrderID       uuid.UUID
	ProductID     uuid.UUID
	Position      int32
	Quantity      int32
	PurchasePrice decimal.Decimal
}

const orderItemColumns = 6

// InsertOrderItems writes all rows with one multi-row INSERT.
func (q *Queries) InsertOrderItems(ctx context.Context, arg []InsertOrderItemParams) error {
	if len(arg) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("INSERT INTO order_items (id, order_id, product_id, position, quantity, purchase_price) VALUES ")
	args := make([]interface{}, 0, len(arg)*orderItemColumns)
	for i, it := range arg {
		if i > 0 {
			b.WriteString(", ")
		}
		n := i * orderItemColumns
		fmt.Fprintf(&b, "($%d, $%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5, n+6)
		args = append(args, it.ID, it.OrderID, it.ProductID, it.Position, it.Quantity, it.PurchasePrice)
	}

	_, err := q.db.ExecContext(ctx, b.String(), args...)
	return err
}
