package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/ordermgmt/services/order/domain"
	"github.com/ghuser/ordermgmt/services/order/domain/models"
	"github.com/ghuser/ordermgmt/services/order/domain/repositories"
)

// OrderBuilder turns line items into persisted, priced order items while
// keeping stock consistent through the Ledger. Every method must run inside
// a single unit of work; a returned error means the caller has to roll back.
type OrderBuilder struct {
	repos  repositories.Repos
	ledger *Ledger
}

// NewOrderBuilder returns a builder over the unit of work's repositories.
func NewOrderBuilder(r repositories.Repos) *OrderBuilder {
	return &OrderBuilder{repos: r, ledger: NewLedger(r.Stock)}
}

// Build inserts order's header, reserves stock for lines, prices them at the
// current product prices and bulk-inserts the items. order.Items is replaced.
func (b *OrderBuilder) Build(ctx context.Context, order *models.Order, lines []models.LineItem) error {
	if err := models.ValidateLines(lines); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err)
	}

	if err := b.repos.Orders.Insert(ctx, order); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	if _, err := b.reconcile(ctx, nil, models.AggregateLines(lines)); err != nil {
		return err
	}

	return b.writeItems(ctx, order, lines)
}

// Replace swaps order's items for lines. Stock moves by the per-product net
// difference between the old and new quantities, so unchanged lines never
// touch the ledger. Products that only appeared in the old items and no
// longer have a stock row are skipped and returned.
func (b *OrderBuilder) Replace(ctx context.Context, order *models.Order, lines []models.LineItem) ([]uuid.UUID, error) {
	if err := models.ValidateLines(lines); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err)
	}

	old, err := b.repos.Orders.Items(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	if err := b.repos.Orders.DeleteItems(ctx, order.ID); err != nil {
		return nil, fmt.Errorf("delete items: %w", err)
	}

	prev := (&models.Order{Items: old}).Quantities()
	skipped, err := b.reconcile(ctx, prev, models.AggregateLines(lines))
	if err != nil {
		return nil, err
	}

	if err := b.writeItems(ctx, order, lines); err != nil {
		return nil, err
	}
	return skipped, nil
}

// Dismantle returns every item of order to stock and deletes the order.
// Products without a stock row are skipped and returned.
func (b *OrderBuilder) Dismantle(ctx context.Context, order *models.Order) ([]uuid.UUID, error) {
	skipped, err := b.reconcile(ctx, order.Quantities(), nil)
	if err != nil {
		return nil, err
	}
	if err := b.repos.Orders.Delete(ctx, order.ID); err != nil {
		return nil, fmt.Errorf("delete order: %w", err)
	}
	return skipped, nil
}

// reconcile moves stock from the prev quantities to next, one net delta per
// product, locking rows in canonical product order. The first failure aborts.
func (b *OrderBuilder) reconcile(ctx context.Context, prev, next map[uuid.UUID]int) ([]uuid.UUID, error) {
	var skipped []uuid.UUID
	for _, id := range models.SortedProductIDs(prev, next) {
		net := next[id] - prev[id]
		if net == 0 {
			continue
		}

		s, err := b.ledger.LockStock(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrProductNotFound) && next[id] == 0 {
				skipped = append(skipped, id)
				continue
			}
			return nil, err
		}

		if net > 0 && s.Quantity < net {
			return nil, &domain.InsufficientStockError{
				ProductID: id,
				Available: s.Quantity,
				Requested: net,
			}
		}

		if _, err := b.ledger.ApplyDelta(ctx, s, -net); err != nil {
			return nil, err
		}
	}
	return skipped, nil
}

// writeItems prices lines and bulk-inserts them in caller order.
func (b *OrderBuilder) writeItems(ctx context.Context, order *models.Order, lines []models.LineItem) error {
	ids := models.SortedProductIDs(models.AggregateLines(lines))
	prices, err := b.repos.Products.Prices(ctx, ids)
	if err != nil {
		return fmt.Errorf("load prices: %w", err)
	}

	items := make([]models.OrderItem, len(lines))
	for i, l := range lines {
		price, ok := prices[l.ProductID]
		if !ok {
			return fmt.Errorf("price %s: %w", l.ProductID, domain.ErrProductNotFound)
		}
		items[i] = models.OrderItem{
			ID:            uuid.New(),
			OrderID:       order.ID,
			ProductID:     l.ProductID,
			Position:      i,
			Quantity:      l.Quantity,
			PurchasePrice: price,
		}
	}

	if err := b.repos.Orders.InsertItems(ctx, items); err != nil {
		return fmt.Errorf("insert items: %w", err)
	}
	order.Items = items
	return nil
}
