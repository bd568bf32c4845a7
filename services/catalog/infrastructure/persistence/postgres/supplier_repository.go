package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/ordermgmt/pkg/database"
	catalogdomain "github.com/ghuser/ordermgmt/services/catalog/domain"
	"github.com/ghuser/ordermgmt/services/catalog/domain/models"
	"github.com/ghuser/ordermgmt/services/catalog/domain/repositories"
	"github.com/ghuser/ordermgmt/services/catalog/infrastructure/persistence/postgres/db"
)

// SupplierRepository implements repositories.SupplierRepository against PostgreSQL.
type SupplierRepository struct {
	db *database.Database
}

// NewSupplierRepository returns a SupplierRepository backed by the given connection pool.
func NewSupplierRepository(d *database.Database) *SupplierRepository {
	return &SupplierRepository{db: d}
}

func (r *SupplierRepository) Save(ctx context.Context, s *models.Supplier) error {
	q := db.New(r.db.DB())
	if err := q.InsertSupplier(ctx, db.InsertSupplierParams{
		ID:        s.ID,
		Name:      s.Name.String(),
		Country:   s.Address.Country,
		City:      s.Address.City,
		Street:    s.Address.Street,
		Building:  s.Address.Building,
		CreatedAt: s.CreatedAt,
	}); err != nil {
		return fmt.Errorf("insert supplier: %w", err)
	}
	return nil
}

// GetByID returns ErrSupplierNotFound if no row matches.
func (r *SupplierRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	row, err := db.New(r.db.DB()).GetSupplier(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalogdomain.ErrSupplierNotFound
		}
		return nil, fmt.Errorf("query supplier: %w", err)
	}
	return rowToSupplier(row), nil
}

// List returns a page of suppliers ordered by name plus the matching total.
func (r *SupplierRepository) List(ctx context.Context, search string, opts repositories.QueryOpts) ([]*models.Supplier, int, error) {
	q := db.New(r.db.DB())
	rows, err := q.ListSuppliers(ctx, db.ListSuppliersParams{
		Search: search,
		Limit:  int32(opts.Limit),
		Offset: int32(opts.Offset),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("query suppliers: %w", err)
	}
	total, err := q.CountSuppliers(ctx, search)
	if err != nil {
		return nil, 0, fmt.Errorf("count suppliers: %w", err)
	}

	out := make([]*models.Supplier, len(rows))
	for i, row := range rows {
		out[i] = rowToSupplier(row)
	}
	return out, int(total), nil
}

// Update overwrites the supplier's name and address.
func (r *SupplierRepository) Update(ctx context.Context, s *models.Supplier) error {
	n, err := db.New(r.db.DB()).UpdateSupplier(ctx, db.UpdateSupplierParams{
		ID:       s.ID,
		Name:     s.Name.String(),
		Country:  s.Address.Country,
		City:     s.Address.City,
		Street:   s.Address.Street,
		Building: s.Address.Building,
	})
	if err != nil {
		return fmt.Errorf("update supplier: %w", err)
	}
	if n == 0 {
		return catalogdomain.ErrSupplierNotFound
	}
	return nil
}

// Delete removes the supplier. Products reference suppliers ON DELETE
// RESTRICT, so a supplier with products is reported as in use.
func (r *SupplierRepository) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := db.New(r.db.DB()).DeleteSupplier(ctx, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return catalogdomain.ErrSupplierInUse
		}
		return fmt.Errorf("delete supplier: %w", err)
	}
	if n == 0 {
		return catalogdomain.ErrSupplierNotFound
	}
	return nil
}

func rowToSupplier(row db.CatalogSupplier) *models.Supplier {
	return &models.Supplier{
		ID:   row.ID,
		Name: models.Name(row.Name),
		Address: models.Address{
			Country:  row.Country,
			City:     row.City,
			Street:   row.Street,
			Building: row.Building,
		},
		CreatedAt: row.CreatedAt.UTC(),
	}
}
