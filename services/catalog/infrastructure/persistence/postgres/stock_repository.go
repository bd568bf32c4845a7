package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ghuser/ordermgmt/pkg/database"
	catalogdomain "github.com/ghuser/ordermgmt/services/catalog/domain"
	"github.com/ghuser/ordermgmt/services/catalog/domain/models"
	"github.com/ghuser/ordermgmt/services/catalog/domain/repositories"
	"github.com/ghuser/ordermgmt/services/catalog/infrastructure/persistence/postgres/db"
)

// StockRepository implements repositories.StockRepository against PostgreSQL.
// It never writes quantities after insert; those go through the order
// context's Ledger on the same table.
type StockRepository struct {
	db *database.Database
}

// NewStockRepository returns a StockRepository backed by the given connection pool.
func NewStockRepository(d *database.Database) *StockRepository {
	return &StockRepository{db: d}
}

func (r *StockRepository) Create(ctx context.Context, s *models.Stock) error {
	if err := db.New(r.db.DB()).InsertStock(ctx, db.InsertStockParams{
		ProductID: s.ProductID,
		Quantity:  int32(s.Quantity),
		UpdatedAt: s.UpdatedAt,
	}); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolation:
				return catalogdomain.ErrStockAlreadyExists
			case pgForeignKeyViolation:
				return catalogdomain.ErrProductNotFound
			}
		}
		return fmt.Errorf("insert stock: %w", err)
	}
	return nil
}

func (r *StockRepository) GetByProductID(ctx context.Context, productID uuid.UUID) (*models.Stock, error) {
	row, err := db.New(r.db.DB()).GetStock(ctx, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalogdomain.ErrStockNotFound
		}
		return nil, fmt.Errorf("query stock: %w", err)
	}
	return rowToStock(row), nil
}

func (r *StockRepository) List(ctx context.Context, productID *uuid.UUID, opts repositories.QueryOpts) ([]*models.Stock, int, error) {
	q := db.New(r.db.DB())
	filter := nullUUID(productID)
	rows, err := q.ListStocks(ctx, db.ListStocksParams{
		ProductID: filter,
		Limit:     int32(opts.Limit),
		Offset:    int32(opts.Offset),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("query stocks: %w", err)
	}
	total, err := q.CountStocks(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count stocks: %w", err)
	}

	out := make([]*models.Stock, len(rows))
	for i, row := range rows {
		out[i] = rowToStock(row)
	}
	return out, int(total), nil
}

func rowToStock(row db.CatalogStock) *models.Stock {
	return &models.Stock{
		ProductID: row.ProductID,
		Quantity:  int(row.Quantity),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}
