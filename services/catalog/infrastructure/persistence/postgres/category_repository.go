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

// CategoryRepository implements repositories.CategoryRepository against PostgreSQL.
type CategoryRepository struct {
	db *database.Database
}

// NewCategoryRepository returns a CategoryRepository backed by the given connection pool.
func NewCategoryRepository(d *database.Database) *CategoryRepository {
	return &CategoryRepository{db: d}
}

// Save inserts a category. A parent removed concurrently surfaces as
// ErrCategoryNotFound.
func (r *CategoryRepository) Save(ctx context.Context, c *models.Category) error {
	var parent uuid.NullUUID
	if c.ParentID != nil {
		parent = uuid.NullUUID{UUID: *c.ParentID, Valid: true}
	}
	if err := db.New(r.db.DB()).InsertCategory(ctx, db.InsertCategoryParams{
		ID:        c.ID,
		Name:      c.Name.String(),
		ParentID:  parent,
		CreatedAt: c.CreatedAt,
	}); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return catalogdomain.ErrCategoryNotFound
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// GetByID returns ErrCategoryNotFound if no row matches.
func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	row, err := db.New(r.db.DB()).GetCategory(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalogdomain.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("query category: %w", err)
	}
	return rowToCategory(row), nil
}

func (r *CategoryRepository) List(ctx context.Context, opts repositories.QueryOpts) ([]*models.Category, int, error) {
	q := db.New(r.db.DB())
	rows, err := q.ListCategories(ctx, db.ListCategoriesParams{
		Limit:  int32(opts.Limit),
		Offset: int32(opts.Offset),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("query categories: %w", err)
	}
	total, err := q.CountCategories(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}

	out := make([]*models.Category, len(rows))
	for i, row := range rows {
		out[i] = rowToCategory(row)
	}
	return out, int(total), nil
}

func rowToCategory(row db.CatalogCategory) *models.Category {
	c := &models.Category{
		ID:        row.ID,
		Name:      models.Name(row.Name),
		CreatedAt: row.CreatedAt.UTC(),
	}
	if row.ParentID.Valid {
		parent := row.ParentID.UUID
		c.ParentID = &parent
	}
	return c
}
