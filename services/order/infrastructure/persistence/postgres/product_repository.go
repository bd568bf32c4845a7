package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/ordermgmt/services/order/infrastructure/persistence/postgres/db"
)

// ProductRepository implements repositories.ProductRepository over the
// catalog's products table.
type ProductRepository struct {
	q *db.Queries
}

func (r *ProductRepository) Prices(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	out := make(map[uuid.UUID]decimal.Decimal, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.q.GetProductPrices(ctx, uuidStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("query prices: %w", err)
	}
	for _, row := range rows {
		out[row.ID] = row.Price
	}
	return out, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
