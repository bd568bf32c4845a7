// Package memory is an in-process implementation of the order context's
// repositories. Units of work are serialized by a mutex and rolled back by
// restoring a snapshot, which gives the same all-or-nothing and
// no-oversell guarantees as the PostgreSQL store. Used by tests and by
// embedded single-process deployments.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/ordermgmt/services/order/domain"
	"github.com/ghuser/ordermgmt/services/order/domain/models"
	"github.com/ghuser/ordermgmt/services/order/domain/repositories"
)

type orderRow struct {
	buyerID   uuid.UUID
	orderDate time.Time
	seq       int64
}

type state struct {
	stock  map[uuid.UUID]int
	prices map[uuid.UUID]decimal.Decimal
	orders map[uuid.UUID]orderRow
	items  map[uuid.UUID][]models.OrderItem
	emails map[uuid.UUID]string
	seq    int64
}

func newState() *state {
	return &state{
		stock:  make(map[uuid.UUID]int),
		prices: make(map[uuid.UUID]decimal.Decimal),
		orders: make(map[uuid.UUID]orderRow),
		items:  make(map[uuid.UUID][]models.OrderItem),
		emails: make(map[uuid.UUID]string),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.stock {
		c.stock[k] = v
	}
	for k, v := range s.prices {
		c.prices[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.items {
		c.items[k] = append([]models.OrderItem(nil), v...)
	}
	for k, v := range s.emails {
		c.emails[k] = v
	}
	c.seq = s.seq
	return c
}

// Store implements repositories.UnitOfWork, repositories.BuyerDirectory and
// the seeding helpers tests need.
type Store struct {
	mu   sync.Mutex
	data *state
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{data: newState()}
}

// Do runs fn with exclusive access to the store. If fn returns an error every
// change it made is discarded.
func (s *Store) Do(ctx context.Context, fn func(r repositories.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(s.repos(func() func() { return func() {} })); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// Reader returns repositories that take the store lock per call.
func (s *Store) Reader() repositories.Repos {
	return s.repos(func() func() {
		s.mu.Lock()
		return s.mu.Unlock
	})
}

func (s *Store) repos(guard func() func()) repositories.Repos {
	return repositories.Repos{
		Stock:    stockRepo{s: s, guard: guard},
		Orders:   orderRepo{s: s, guard: guard},
		Products: productRepo{s: s, guard: guard},
	}
}

// Email implements repositories.BuyerDirectory.
func (s *Store) Email(_ context.Context, buyerID uuid.UUID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email, ok := s.data.emails[buyerID]
	if !ok {
		return "", fmt.Errorf("buyer %s has no email on file", buyerID)
	}
	return email, nil
}

// AddProduct registers a product with a price and an initial stock quantity.
func (s *Store) AddProduct(id uuid.UUID, price decimal.Decimal, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.prices[id] = price
	s.data.stock[id] = quantity
}

// SetPrice changes a product's current price.
func (s *Store) SetPrice(id uuid.UUID, price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.prices[id] = price
}

// SetStock overwrites a product's stock quantity.
func (s *Store) SetStock(id uuid.UUID, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.stock[id] = quantity
}

// RemoveStock deletes a product's stock row.
func (s *Store) RemoveStock(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data.stock, id)
}

// StockOf returns a product's stock quantity.
func (s *Store) StockOf(id uuid.UUID) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.data.stock[id]
	return q, ok
}

// AddBuyer records buyerID's notification address.
func (s *Store) AddBuyer(buyerID uuid.UUID, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.emails[buyerID] = email
}

// Counts reports the number of stored orders and order items.
func (s *Store) Counts() (orders, items int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, its := range s.data.items {
		items += len(its)
	}
	return len(s.data.orders), items
}

type stockRepo struct {
	s     *Store
	guard func() func()
}

func (r stockRepo) Lock(ctx context.Context, productID uuid.UUID) (*models.Stock, error) {
	return r.Get(ctx, productID)
}

func (r stockRepo) Get(_ context.Context, productID uuid.UUID) (*models.Stock, error) {
	defer r.guard()()
	q, ok := r.s.data.stock[productID]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &models.Stock{ProductID: productID, Quantity: q}, nil
}

func (r stockRepo) SetQuantity(_ context.Context, productID uuid.UUID, quantity int) error {
	defer r.guard()()
	if _, ok := r.s.data.stock[productID]; !ok {
		return domain.ErrProductNotFound
	}
	if quantity < 0 {
		return fmt.Errorf("stock for %s would become negative", productID)
	}
	r.s.data.stock[productID] = quantity
	return nil
}

type productRepo struct {
	s     *Store
	guard func() func()
}

func (r productRepo) Prices(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	defer r.guard()()
	out := make(map[uuid.UUID]decimal.Decimal, len(ids))
	for _, id := range ids {
		if p, ok := r.s.data.prices[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type orderRepo struct {
	s     *Store
	guard func() func()
}

func (r orderRepo) Insert(_ context.Context, o *models.Order) error {
	defer r.guard()()
	if _, ok := r.s.data.orders[o.ID]; ok {
		return fmt.Errorf("order %s already exists", o.ID)
	}
	r.s.data.seq++
	r.s.data.orders[o.ID] = orderRow{buyerID: o.BuyerID, orderDate: o.OrderDate, seq: r.s.data.seq}
	return nil
}

func (r orderRepo) UpdateHeader(_ context.Context, o *models.Order) error {
	defer r.guard()()
	row, ok := r.s.data.orders[o.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	row.buyerID = o.BuyerID
	row.orderDate = o.OrderDate
	r.s.data.orders[o.ID] = row
	return nil
}

func (r orderRepo) Get(_ context.Context, id uuid.UUID) (*models.Order, error) {
	defer r.guard()()
	return r.load(id)
}

func (r orderRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return r.Get(ctx, id)
}

func (r orderRepo) load(id uuid.UUID) (*models.Order, error) {
	row, ok := r.s.data.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return &models.Order{
		ID:        id,
		BuyerID:   row.buyerID,
		OrderDate: row.orderDate,
		Items:     append([]models.OrderItem(nil), r.s.data.items[id]...),
	}, nil
}

func (r orderRepo) ListByBuyer(_ context.Context, buyerID uuid.UUID, opts repositories.QueryOpts) ([]*models.Order, int, error) {
	defer r.guard()()
	type entry struct {
		id  uuid.UUID
		row orderRow
	}
	var matched []entry
	for id, row := range r.s.data.orders {
		if row.buyerID == buyerID {
			matched = append(matched, entry{id, row})
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].row.orderDate.Equal(matched[j].row.orderDate) {
			return matched[i].row.orderDate.After(matched[j].row.orderDate)
		}
		return matched[i].row.seq > matched[j].row.seq
	})

	total := len(matched)
	start := min(opts.Offset, total)
	end := total
	if opts.Limit > 0 {
		end = min(start+opts.Limit, total)
	}

	out := make([]*models.Order, 0, end-start)
	for _, e := range matched[start:end] {
		o, err := r.load(e.id)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	return out, total, nil
}

func (r orderRepo) Items(_ context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	defer r.guard()()
	return append([]models.OrderItem(nil), r.s.data.items[orderID]...), nil
}

func (r orderRepo) DeleteItems(_ context.Context, orderID uuid.UUID) error {
	defer r.guard()()
	delete(r.s.data.items, orderID)
	return nil
}

func (r orderRepo) InsertItems(_ context.Context, items []models.OrderItem) error {
	defer r.guard()()
	for _, it := range items {
		if _, ok := r.s.data.orders[it.OrderID]; !ok {
			return fmt.Errorf("order %s: %w", it.OrderID, domain.ErrOrderNotFound)
		}
		if _, ok := r.s.data.prices[it.ProductID]; !ok {
			return fmt.Errorf("product %s: %w", it.ProductID, domain.ErrProductNotFound)
		}
	}
	for _, it := range items {
		r.s.data.items[it.OrderID] = append(r.s.data.items[it.OrderID], it)
	}
	return nil
}

func (r orderRepo) Delete(_ context.Context, id uuid.UUID) error {
	defer r.guard()()
	if _, ok := r.s.data.orders[id]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(r.s.data.orders, id)
	delete(r.s.data.items, id)
	return nil
}
