// Package services contains the order context's domain services: the stock
// Ledger and the OrderBuilder that drives it. Both operate on repositories
// handed to them by a unit of work and hold no state of their own.
package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/ordermgmt/services/order/domain"
	"github.com/ghuser/ordermgmt/services/order/domain/models"
	"github.com/ghuser/ordermgmt/services/order/domain/repositories"
)

// Ledger is the only writer of stock quantities and the single place the
// quantity >= 0 invariant is enforced.
type Ledger struct {
	stock repositories.StockRepository
}

// NewLedger returns a Ledger over stock.
func NewLedger(stock repositories.StockRepository) *Ledger {
	return &Ledger{stock: stock}
}

// LockStock locks productID's stock row for the rest of the unit of work.
func (l *Ledger) LockStock(ctx context.Context, productID uuid.UUID) (*models.Stock, error) {
	s, err := l.stock.Lock(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("lock stock %s: %w", productID, err)
	}
	return s, nil
}

// Peek reads productID's stock without locking. The answer may be stale by
// the time the caller acts on it.
func (l *Ledger) Peek(ctx context.Context, productID uuid.UUID) (*models.Stock, error) {
	s, err := l.stock.Get(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("peek stock %s: %w", productID, err)
	}
	return s, nil
}

// ApplyDelta adds delta to a locked stock row: positive restocks, negative
// reserves. A result below zero or above models.MaxQuantity is rejected with
// ErrInvalidArgument and nothing is written. A zero delta writes nothing.
func (l *Ledger) ApplyDelta(ctx context.Context, s *models.Stock, delta int) (*models.Stock, error) {
	if delta == 0 {
		return s, nil
	}
	next := s.Quantity + delta
	if next < 0 || next > models.MaxQuantity {
		return nil, fmt.Errorf("%w: stock for %s would become %d", domain.ErrInvalidArgument, s.ProductID, next)
	}
	if err := l.stock.SetQuantity(ctx, s.ProductID, next); err != nil {
		return nil, fmt.Errorf("set stock %s: %w", s.ProductID, err)
	}
	return &models.Stock{ProductID: s.ProductID, Quantity: next}, nil
}
