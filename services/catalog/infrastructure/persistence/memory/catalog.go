// Package memory is an in-process implementation of the catalog
// repositories, used by tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	catalogdomain "github.com/ghuser/ordermgmt/services/catalog/domain"
	"github.com/ghuser/ordermgmt/services/catalog/domain/models"
	"github.com/ghuser/ordermgmt/services/catalog/domain/repositories"
)

// Catalog holds every catalog table behind one mutex. Its repository views
// share that state, so product and stock references are checked like
// foreign keys.
type Catalog struct {
	mu         sync.Mutex
	suppliers  map[uuid.UUID]models.Supplier
	categories map[uuid.UUID]models.Category
	products   map[uuid.UUID]models.Product
	stocks     map[uuid.UUID]models.Stock
	ordered    map[uuid.UUID]struct{}
	changed    []uuid.UUID
}

// NewCatalog returns an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		suppliers:  make(map[uuid.UUID]models.Supplier),
		categories: make(map[uuid.UUID]models.Category),
		products:   make(map[uuid.UUID]models.Product),
		stocks:     make(map[uuid.UUID]models.Stock),
		ordered:    make(map[uuid.UUID]struct{}),
	}
}

func (c *Catalog) Suppliers() *SupplierRepository   { return &SupplierRepository{c} }
func (c *Catalog) Categories() *CategoryRepository { return &CategoryRepository{c} }
func (c *Catalog) Products() *ProductRepository     { return &ProductRepository{c} }
func (c *Catalog) Stocks() *StockRepository         { return &StockRepository{c} }

// Changed returns the IDs of products updated or deleted, in call order.
func (c *Catalog) Changed() []uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]uuid.UUID(nil), c.changed...)
}

// MarkOrdered records that an order item references productID, so deleting
// the product fails like the order_items foreign key would.
func (c *Catalog) MarkOrdered(productID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ordered[productID] = struct{}{}
}

type SupplierRepository struct{ c *Catalog }

func (r *SupplierRepository) Save(_ context.Context, s *models.Supplier) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	r.c.suppliers[s.ID] = *s
	return nil
}

func (r *SupplierRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Supplier, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	s, ok := r.c.suppliers[id]
	if !ok {
		return nil, catalogdomain.ErrSupplierNotFound
	}
	return &s, nil
}

func (r *SupplierRepository) List(_ context.Context, search string, opts repositories.QueryOpts) ([]*models.Supplier, int, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	needle := strings.ToLower(search)
	var out []*models.Supplier
	for _, s := range r.c.suppliers {
		if strings.Contains(strings.ToLower(s.Name.String()), needle) {
			out = append(out, &s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, opts), len(out), nil
}

func (r *SupplierRepository) Update(_ context.Context, s *models.Supplier) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	if _, ok := r.c.suppliers[s.ID]; !ok {
		return catalogdomain.ErrSupplierNotFound
	}
	r.c.suppliers[s.ID] = *s
	return nil
}

func (r *SupplierRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	if _, ok := r.c.suppliers[id]; !ok {
		return catalogdomain.ErrSupplierNotFound
	}
	for _, p := range r.c.products {
		if p.SupplierID == id {
			return catalogdomain.ErrSupplierInUse
		}
	}
	delete(r.c.suppliers, id)
	return nil
}

type CategoryRepository struct{ c *Catalog }

func (r *CategoryRepository) Save(_ context.Context, cat *models.Category) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	if cat.ParentID != nil {
		if _, ok := r.c.categories[*cat.ParentID]; !ok {
			return catalogdomain.ErrCategoryNotFound
		}
	}
	r.c.categories[cat.ID] = *cat
	return nil
}

func (r *CategoryRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	cat, ok := r.c.categories[id]
	if !ok {
		return nil, catalogdomain.ErrCategoryNotFound
	}
	return &cat, nil
}

func (r *CategoryRepository) List(_ context.Context, opts repositories.QueryOpts) ([]*models.Category, int, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	out := make([]*models.Category, 0, len(r.c.categories))
	for _, cat := range r.c.categories {
		out = append(out, &cat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, opts), len(out), nil
}

type ProductRepository struct{ c *Catalog }

func (r *ProductRepository) Save(_ context.Context, p *models.Product) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	if err := r.c.checkRefs(p); err != nil {
		return err
	}
	r.c.products[p.ID] = *p
	return nil
}

func (r *ProductRepository) Update(_ context.Context, p *models.Product) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	if _, ok := r.c.products[p.ID]; !ok {
		return catalogdomain.ErrProductNotFound
	}
	if err := r.c.checkRefs(p); err != nil {
		return err
	}
	r.c.products[p.ID] = *p
	r.c.changed = append(r.c.changed, p.ID)
	return nil
}

func (r *ProductRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	p, ok := r.c.products[id]
	if !ok {
		return nil, catalogdomain.ErrProductNotFound
	}
	return &p, nil
}

func (r *ProductRepository) List(_ context.Context, f repositories.ProductFilter, opts repositories.QueryOpts) ([]*models.Product, int, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	var out []*models.Product
	for _, p := range r.c.products {
		switch {
		case f.CategoryID != nil && p.CategoryID != *f.CategoryID,
			f.SupplierID != nil && p.SupplierID != *f.SupplierID,
			f.MinPrice != nil && p.Price.LessThan(*f.MinPrice),
			f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice):
			continue
		}
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, opts), len(out), nil
}

// Delete cascades to the stock row.
func (r *ProductRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	if _, ok := r.c.products[id]; !ok {
		return catalogdomain.ErrProductNotFound
	}
	if _, ok := r.c.ordered[id]; ok {
		return catalogdomain.ErrProductInUse
	}
	delete(r.c.products, id)
	delete(r.c.stocks, id)
	r.c.changed = append(r.c.changed, id)
	return nil
}

type StockRepository struct{ c *Catalog }

func (r *StockRepository) Create(_ context.Context, s *models.Stock) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	if _, ok := r.c.products[s.ProductID]; !ok {
		return catalogdomain.ErrProductNotFound
	}
	if _, ok := r.c.stocks[s.ProductID]; ok {
		return catalogdomain.ErrStockAlreadyExists
	}
	r.c.stocks[s.ProductID] = *s
	return nil
}

func (r *StockRepository) GetByProductID(_ context.Context, productID uuid.UUID) (*models.Stock, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	s, ok := r.c.stocks[productID]
	if !ok {
		return nil, catalogdomain.ErrStockNotFound
	}
	return &s, nil
}

func (r *StockRepository) List(_ context.Context, productID *uuid.UUID, opts repositories.QueryOpts) ([]*models.Stock, int, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	var out []*models.Stock
	for id, s := range r.c.stocks {
		if productID == nil || *productID == id {
			out = append(out, &s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID.String() < out[j].ProductID.String() })
	return page(out, opts), len(out), nil
}

func (c *Catalog) checkRefs(p *models.Product) error {
	if _, ok := c.suppliers[p.SupplierID]; !ok {
		return catalogdomain.ErrSupplierNotFound
	}
	if _, ok := c.categories[p.CategoryID]; !ok {
		return catalogdomain.ErrCategoryNotFound
	}
	return nil
}

func page[T any](rows []T, opts repositories.QueryOpts) []T {
	if opts.Offset >= len(rows) {
		return nil
	}
	rows = rows[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(rows) {
		rows = rows[:opts.Limit]
	}
	return rows
}
