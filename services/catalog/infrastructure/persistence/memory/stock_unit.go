package memory

import (
	"context"
	"maps"
	"time"

	"github.com/google/uuid"

	orderdomain "github.com/ghuser/ordermgmt/services/order/domain"
	ordermodels "github.com/ghuser/ordermgmt/services/order/domain/models"
	orderrepos "github.com/ghuser/ordermgmt/services/order/domain/repositories"
)

// StockUnit exposes the catalog's stock rows as the order context's unit of
// work, so stock counts in tests run through the order Ledger against the
// same rows the catalog reads. Only Repos.Stock is populated.
type StockUnit struct{ c *Catalog }

// StockUnit returns the Catalog's stock rows as an order unit of work.
func (c *Catalog) StockUnit() *StockUnit { return &StockUnit{c} }

// Do runs fn holding the catalog lock. Stock writes made by fn are discarded
// when it returns an error.
func (u *StockUnit) Do(ctx context.Context, fn func(r orderrepos.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	u.c.mu.Lock()
	defer u.c.mu.Unlock()

	snapshot := maps.Clone(u.c.stocks)
	if err := fn(orderrepos.Repos{Stock: stockRows{c: u.c, held: true}}); err != nil {
		u.c.stocks = snapshot
		return err
	}
	return nil
}

func (u *StockUnit) Reader() orderrepos.Repos {
	return orderrepos.Repos{Stock: stockRows{c: u.c}}
}

// stockRows implements the order StockRepository. held reports whether the
// caller already owns the catalog lock.
type stockRows struct {
	c    *Catalog
	held bool
}

func (r stockRows) lock() func() {
	if r.held {
		return func() {}
	}
	r.c.mu.Lock()
	return r.c.mu.Unlock
}

func (r stockRows) Lock(ctx context.Context, productID uuid.UUID) (*ordermodels.Stock, error) {
	return r.Get(ctx, productID)
}

func (r stockRows) Get(_ context.Context, productID uuid.UUID) (*ordermodels.Stock, error) {
	defer r.lock()()
	s, ok := r.c.stocks[productID]
	if !ok {
		return nil, orderdomain.ErrProductNotFound
	}
	return &ordermodels.Stock{ProductID: productID, Quantity: s.Quantity}, nil
}

func (r stockRows) SetQuantity(_ context.Context, productID uuid.UUID, quantity int) error {
	defer r.lock()()
	s, ok := r.c.stocks[productID]
	if !ok {
		return orderdomain.ErrProductNotFound
	}
	s.Quantity = quantity
	s.UpdatedAt = time.Now().UTC()
	r.c.stocks[productID] = s
	return nil
}
