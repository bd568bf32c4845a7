package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/ghuser/ordermgmt/pkg/database"
	"github.com/ghuser/ordermgmt/pkg/events"
	catalogdomain "github.com/ghuser/ordermgmt/services/catalog/domain"
	domainevents "github.com/ghuser/ordermgmt/services/catalog/domain/events"
	"github.com/ghuser/ordermgmt/services/catalog/domain/models"
	"github.com/ghuser/ordermgmt/services/catalog/domain/repositories"
	"github.com/ghuser/ordermgmt/services/catalog/infrastructure/persistence/postgres/db"
)

const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// ProductRepository implements repositories.ProductRepository against PostgreSQL.
type ProductRepository struct {
	db  *database.Database
	bus *events.EventBus
}

// NewProductRepository returns a ProductRepository backed by the given connection pool
// and event bus. The bus is used to publish ProductChangedEvents on update; it may be nil.
func NewProductRepository(d *database.Database, bus *events.EventBus) *ProductRepository {
	return &ProductRepository{db: d, bus: bus}
}

// Save inserts a product.
func (r *ProductRepository) Save(ctx context.Context, p *models.Product) error {
	if err := db.New(r.db.DB()).InsertProduct(ctx, db.InsertProductParams{
		ID:         p.ID,
		SupplierID: p.SupplierID,
		CategoryID: p.CategoryID,
		Name:       p.Name.String(),
		Price:      p.Price,
		UpdatedAt:  p.UpdatedAt,
	}); err != nil {
		if ref := referenceError(err); ref != nil {
			return ref
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// Update persists p and publishes a ProductChangedEvent within the same transaction.
func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		n, err := db.New(tx).UpdateProduct(ctx, db.UpdateProductParams{
			ID:         p.ID,
			SupplierID: p.SupplierID,
			CategoryID: p.CategoryID,
			Name:       p.Name.String(),
			Price:      p.Price,
			UpdatedAt:  p.UpdatedAt,
		})
		if err != nil {
			if ref := referenceError(err); ref != nil {
				return ref
			}
			return fmt.Errorf("update product: %w", err)
		}
		if n == 0 {
			return catalogdomain.ErrProductNotFound
		}

		if r.bus != nil {
			if err := r.publishChanged(tx, p); err != nil {
				return fmt.Errorf("publish product changed: %w", err)
			}
		}
		return nil
	})
}

// Delete removes the product; its stock row goes with it. A product still
// referenced by order items is reported as in use. The deletion and its
// ProductChangedEvent commit together.
func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		n, err := db.New(tx).DeleteProduct(ctx, id)
		if err != nil {
			if isForeignKeyViolation(err) {
				return catalogdomain.ErrProductInUse
			}
			return fmt.Errorf("delete product: %w", err)
		}
		if n == 0 {
			return catalogdomain.ErrProductNotFound
		}

		if r.bus != nil {
			evt := domainevents.ProductChangedEvent{
				EventID:    uuid.New(),
				Version:    1,
				ProductID:  id,
				Deleted:    true,
				OccurredAt: time.Now().UTC(),
			}
			if err := r.publish(tx, evt); err != nil {
				return fmt.Errorf("publish product deleted: %w", err)
			}
		}
		return nil
	})
}

// GetByID returns ErrProductNotFound if no row matches.
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	row, err := db.New(r.db.DB()).GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalogdomain.ErrProductNotFound
		}
		return nil, fmt.Errorf("query product: %w", err)
	}
	return rowToProduct(row), nil
}

// List returns a filtered page of products ordered by name plus the matching total.
func (r *ProductRepository) List(ctx context.Context, f repositories.ProductFilter, opts repositories.QueryOpts) ([]*models.Product, int, error) {
	q := db.New(r.db.DB())
	category, supplier := nullUUID(f.CategoryID), nullUUID(f.SupplierID)
	minPrice, maxPrice := nullDecimal(f.MinPrice), nullDecimal(f.MaxPrice)

	rows, err := q.ListProducts(ctx, db.ListProductsParams{
		CategoryID: category,
		SupplierID: supplier,
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
		Limit:      int32(opts.Limit),
		Offset:     int32(opts.Offset),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("query products: %w", err)
	}
	total, err := q.CountProducts(ctx, db.CountProductsParams{
		CategoryID: category,
		SupplierID: supplier,
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	out := make([]*models.Product, len(rows))
	for i, row := range rows {
		out[i] = rowToProduct(row)
	}
	return out, int(total), nil
}

func (r *ProductRepository) publishChanged(tx *sql.Tx, p *models.Product) error {
	return r.publish(tx, domainevents.ProductChangedEvent{
		EventID:    uuid.New(),
		Version:    1,
		ProductID:  p.ID,
		Price:      p.Price.StringFixed(2),
		OccurredAt: p.UpdatedAt,
	})
}

func (r *ProductRepository) publish(tx *sql.Tx, event domainevents.ProductChangedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event_id", event.EventID.String())
	msg.Metadata.Set("event_version", "1")
	pub, err := r.bus.NewTxPublisher(tx)
	if err != nil {
		return fmt.Errorf("create publisher: %w", err)
	}
	return pub.Publish(domainevents.TopicProductChanged, msg)
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}

// referenceError maps a foreign key violation on products to the missing
// parent's sentinel. It returns nil for any other error.
func referenceError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgForeignKeyViolation {
		return nil
	}
	switch {
	case strings.Contains(pgErr.ConstraintName, "supplier"):
		return catalogdomain.ErrSupplierNotFound
	case strings.Contains(pgErr.ConstraintName, "category"):
		return catalogdomain.ErrCategoryNotFound
	default:
		return nil
	}
}

func rowToProduct(row db.CatalogProduct) *models.Product {
	return &models.Product{
		ID:         row.ID,
		SupplierID: row.SupplierID,
		CategoryID: row.CategoryID,
		Name:       models.Name(row.Name),
		Price:      row.Price,
		UpdatedAt:  row.UpdatedAt.UTC(),
	}
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
