package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is the aggregate root of the order context. Items are kept in the
// order the caller supplied them.
type Order struct {
	ID        uuid.UUID
	BuyerID   uuid.UUID
	OrderDate time.Time
	Items     []OrderItem
}

// OrderItem is one priced line of an Order.
type OrderItem struct {
	ID            uuid.UUID
	OrderID       uuid.UUID
	ProductID     uuid.UUID
	Position      int
	Quantity      int
	PurchasePrice decimal.Decimal
}

// NewOrder returns an Order header for buyerID. A nil orderDate defaults to now.
func NewOrder(buyerID uuid.UUID, orderDate *time.Time, now time.Time) *Order {
	date := now.UTC()
	if orderDate != nil {
		date = orderDate.UTC()
	}
	return &Order{
		ID:        uuid.New(),
		BuyerID:   buyerID,
		OrderDate: date,
	}
}

// Subtotal is quantity times purchase price.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.PurchasePrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Total sums the item subtotals.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Quantities aggregates item quantities per product.
func (o *Order) Quantities() map[uuid.UUID]int {
	q := make(map[uuid.UUID]int, len(o.Items))
	for _, it := range o.Items {
		q[it.ProductID] += it.Quantity
	}
	return q
}

// Lines returns the order's items as caller-style line items, preserving order.
func (o *Order) Lines() []LineItem {
	lines := make([]LineItem, len(o.Items))
	for i, it := range o.Items {
		lines[i] = LineItem{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return lines
}
