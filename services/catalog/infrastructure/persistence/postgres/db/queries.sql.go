package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const insertSupplier = `-- name: InsertSupplier :exec
INSERT INTO suppliers (id, name, country, city, street, building, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`

type InsertSupplierParams struct {
	ID        uuid.UUID
	Name      string
	Country   string
	City      string
	Street    string
	Building  string
	CreatedAt time.Time
}

func (q *Queries) InsertSupplier(ctx context.Context, arg InsertSupplierParams) error {
	_, err := q.db.ExecContext(ctx, insertSupplier,
		arg.ID,
		arg.Name,
		arg.Country,
		arg.City,
		arg.Street,
		arg.Building,
		arg.CreatedAt,
	)
	return err
}

const getSupplier = `-- name: GetSupplier :one
SELECT id, name, country, city, street, building, created_at FROM suppliers
WHERE id = $1
`

func (q *Queries) GetSupplier(ctx context.Context, id uuid.UUID) (CatalogSupplier, error) {
	row := q.db.QueryRowContext(ctx, getSupplier, id)
	var i CatalogSupplier
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Country,
		&i.City,
		&i.Street,
		&i.Building,
		&i.CreatedAt,
	)
	return i, err
}

const listSuppliers = `-- name: ListSuppliers :many
SELECT id, name, country, city, street, building, created_at FROM suppliers
WHERE $1::text = '' OR name ILIKE '%' || $1::text || '%'
ORDER BY name, id
LIMIT NULLIF($2::int, 0) OFFSET $3
`

type ListSuppliersParams struct {
	Search string
	Limit  int32
	Offset int32
}

func (q *Queries) ListSuppliers(ctx context.Context, arg ListSuppliersParams) ([]CatalogSupplier, error) {
	rows, err := q.db.QueryContext(ctx, listSuppliers, arg.Search, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CatalogSupplier
	for rows.Next() {
		var i CatalogSupplier
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Country,
			&i.City,
			&i.Street,
			&i.Building,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countSuppliers = `-- name: CountSuppliers :one
SELECT COUNT(*) FROM suppliers
WHERE $1::text = '' OR name ILIKE '%' || $1::text || '%'
`

func (q *Queries) CountSuppliers(ctx context.Context, search string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countSuppliers, search)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const updateSupplier = `-- name: UpdateSupplier :execrows
UPDATE suppliers
SET name = $2, country = $3, city = $4, street = $5, building = $6
WHERE id = $1
`

type UpdateSupplierParams struct {
	ID       uuid.UUID
	Name     string
	Country  string
	City     string
	Street   string
	Building string
}

func (q *Queries) UpdateSupplier(ctx context.Context, arg UpdateSupplierParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateSupplier,
		arg.ID,
		arg.Name,
		arg.Country,
		arg.City,
		arg.Street,
		arg.Building,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteSupplier = `-- name: DeleteSupplier :execrows
DELETE FROM suppliers WHERE id = $1
`

func (q *Queries) DeleteSupplier(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteSupplier, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const insertCategory = `-- name: InsertCategory :exec
INSERT INTO categories (id, name, parent_id, created_at)
VALUES ($1, $2, $3, $4)
`

type InsertCategoryParams struct {
	ID        uuid.UUID
	Name      string
	ParentID  uuid.NullUUID
	CreatedAt time.Time
}

func (q *Queries) InsertCategory(ctx context.Context, arg InsertCategoryParams) error {
	_, err := q.db.ExecContext(ctx, insertCategory, arg.ID, arg.Name, arg.ParentID, arg.CreatedAt)
	return err
}

const getCategory = `-- name: GetCategory :one
SELECT id, name, parent_id, created_at FROM categories
WHERE id = $1
`

func (q *Queries) GetCategory(ctx context.Context, id uuid.UUID) (CatalogCategory, error) {
	row := q.db.QueryRowContext(ctx, getCategory, id)
	var i CatalogCategory
	err := row.Scan(&i.ID, &i.Name, &i.ParentID, &i.CreatedAt)
	return i, err
}

const listCategories = `-- name: ListCategories :many
SELECT id, name, parent_id, created_at FROM categories
ORDER BY name, id
LIMIT NULLIF($1::int, 0) OFFSET $2
`

type ListCategoriesParams struct {
	Limit  int32
	Offset int32
}

func (q *Queries) ListCategories(ctx context.Context, arg ListCategoriesParams) ([]CatalogCategory, error) {
	rows, err := q.db.QueryContext(ctx, listCategories, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CatalogCategory
	for rows.Next() {
		var i CatalogCategory
		if err := rows.Scan(&i.ID, &i.Name, &i.ParentID, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countCategories = `-- name: CountCategories :one
SELECT COUNT(*) FROM categories
`

func (q *Queries) CountCategories(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countCategories)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const insertProduct = `-- name: InsertProduct :exec
INSERT INTO products (id, supplier_id, category_id, name, price, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
`

type InsertProductParams struct {
	ID         uuid.UUID
	SupplierID uuid.UUID
	CategoryID uuid.UUID
	Name       string
	Price      decimal.Decimal
	UpdatedAt  time.Time
}

func (q *Queries) InsertProduct(ctx context.Context, arg InsertProductParams) error {
	_, err := q.db.ExecContext(ctx, insertProduct,
		arg.ID,
		arg.SupplierID,
		arg.CategoryID,
		arg.Name,
		arg.Price,
		arg.UpdatedAt,
	)
	return err
}

const updateProduct = `-- name: UpdateProduct :execrows
UPDATE products
SET supplier_id = $2, category_id = $3, name = $4, price = $5, updated_at = $6
WHERE id = $1
`

type UpdateProductParams struct {
	ID         uuid.UUID
	SupplierID uuid.UUID
	CategoryID uuid.UUID
	Name       string
	Price      decimal.Decimal
	UpdatedAt  time.Time
}

func (q *Queries) UpdateProduct(ctx context.Context, arg UpdateProductParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateProduct,
		arg.ID,
		arg.SupplierID,
		arg.CategoryID,
		arg.Name,
		arg.Price,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getProduct = `-- name: GetProduct :one
SELECT id, supplier_id, category_id, name, price, updated_at FROM products
WHERE id = $1
`

func (q *Queries) GetProduct(ctx context.Context, id uuid.UUID) (CatalogProduct, error) {
	row := q.db.QueryRowContext(ctx, getProduct, id)
	var i CatalogProduct
	err := row.Scan(
		&i.ID,
		&i.SupplierID,
		&i.CategoryID,
		&i.Name,
		&i.Price,
		&i.UpdatedAt,
	)
	return i, err
}

const deleteProduct = `-- name: DeleteProduct :execrows
DELETE FROM products WHERE id = $1
`

func (q *Queries) DeleteProduct(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteProduct, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listProducts = `-- name: ListProducts :many
SELECT id, supplier_id, category_id, name, price, updated_at FROM products
WHERE ($1::uuid IS NULL OR category_id = $1::uuid)
  AND ($2::uuid IS NULL OR supplier_id = $2::uuid)
  AND ($3::numeric IS NULL OR price >= $3::numeric)
  AND ($4::numeric IS NULL OR price <= $4::numeric)
ORDER BY name, id
LIMIT NULLIF($5::int, 0) OFFSET $6
`

type ListProductsParams struct {
	CategoryID uuid.NullUUID
	SupplierID uuid.NullUUID
	MinPrice   decimal.NullDecimal
	MaxPrice   decimal.NullDecimal
	Limit      int32
	Offset     int32
}

func (q *Queries) ListProducts(ctx context.Context, arg ListProductsParams) ([]CatalogProduct, error) {
	rows, err := q.db.QueryContext(ctx, listProducts,
		arg.CategoryID,
		arg.SupplierID,
		arg.MinPrice,
		arg.MaxPrice,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CatalogProduct
	for rows.Next() {
		var i CatalogProduct
		if err := rows.Scan(
			&i.ID,
			&i.SupplierID,
			&i.CategoryID,
			&i.Name,
			&i.Price,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countProducts = `-- name: CountProducts :one
SELECT COUNT(*) FROM products
WHERE ($1::uuid IS NULL OR category_id = $1::uuid)
  AND ($2::uuid IS NULL OR supplier_id = $2::uuid)
  AND ($3::numeric IS NULL OR price >= $3::numeric)
  AND ($4::numeric IS NULL OR price <= $4::numeric)
`

type CountProductsParams struct {
	CategoryID uuid.NullUUID
	SupplierID uuid.NullUUID
	MinPrice   decimal.NullDecimal
	MaxPrice   decimal.NullDecimal
}

func (q *Queries) CountProducts(ctx context.Context, arg CountProductsParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countProducts,
		arg.CategoryID,
		arg.SupplierID,
		arg.MinPrice,
		arg.MaxPrice,
	)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const insertStock = `-- name: InsertStock :exec
INSERT INTO stocks (product_id, quantity, updated_at)
VALUES ($1, $2, $3)
`

type InsertStockParams struct {
	ProductID uuid.UUID
	Quantity  int32
	UpdatedAt time.Time
}

func (q *Queries) InsertStock(ctx context.Context, arg InsertStockParams) error {
	_, err := q.db.ExecContext(ctx, insertStock, arg.ProductID, arg.Quantity, arg.UpdatedAt)
	return err
}

const getStock = `-- name: GetStock :one
SELECT product_id, quantity, updated_at FROM stocks
WHERE product_id = $1
`

func (q *Queries) GetStock(ctx context.Context, productID uuid.UUID) (CatalogStock, error) {
	row := q.db.QueryRowContext(ctx, getStock, productID)
	var i CatalogStock
	err := row.Scan(&i.ProductID, &i.Quantity, &i.UpdatedAt)
	return i, err
}

const listStocks = `-- name: ListStocks :many
SELECT product_id, quantity, updated_at FROM stocks
WHERE $1::uuid IS NULL OR product_id = $1::uuid
ORDER BY product_id
LIMIT NULLIF($2::int, 0) OFFSET $3
`

type ListStocksParams struct {
	ProductID uuid.NullUUID
	Limit     int32
	Offset    int32
}

func (q *Queries) ListStocks(ctx context.Context, arg ListStocksParams) ([]CatalogStock, error) {
	rows, err := q.db.QueryContext(ctx, listStocks, arg.ProductID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CatalogStock
	for rows.Next() {
		var i CatalogStock
		if err := rows.Scan(&i.ProductID, &i.Quantity, &i.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countStocks = `-- name: CountStocks :one
SELECT COUNT(*) FROM stocks
WHERE $1::uuid IS NULL OR product_id = $1::uuid
`

func (q *Queries) CountStocks(ctx context.Context, productID uuid.NullUUID) (int64, error) {
	row := q.db.QueryRowContext(ctx, countStocks, productID)
	var count int64
	err := row.Scan(&count)
	return count, err
}
