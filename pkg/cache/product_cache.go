package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	// ProductCacheTTL is the time-to-live for cached products.
	ProductCacheTTL = time.Hour

	productCacheKeyPrefix = "product"
)

// CachedProduct is the read model stored in Redis for GET /products/{id}.
type CachedProduct struct {
	ID         uuid.UUID
	SupplierID uuid.UUID
	CategoryID uuid.UUID
	Name       string
	Price      decimal.Decimal
	UpdatedAt  time.Time
}

// ProductCache stores products as Redis hashes.
// Key format: "product:{productID}"
type ProductCache struct {
	client *RedisClient
}

// NewProductCache creates a new ProductCache backed by the given RedisClient.
func NewProductCache(r *RedisClient) *ProductCache {
	return &ProductCache{client: r}
}

// Get retrieves a cached product.
// Returns redis.Nil error when the key does not exist or has expired.
func (c *ProductCache) Get(ctx context.Context, id uuid.UUID) (*CachedProduct, error) {
	vals, err := c.client.Client().HGetAll(ctx, c.key(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if len(vals) == 0 {
		return nil, redis.Nil
	}
	return parseProduct(vals)
}

// Set writes p as a Redis hash and refreshes its TTL in one pipeline.
func (c *ProductCache) Set(ctx context.Context, p *CachedProduct) error {
	key := c.key(p.ID)
	pipe := c.client.Client().TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, productFields(p)...)
	pipe.Expire(ctx, key, ProductCacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Delete evicts a cached product. Called after every catalog write.
func (c *ProductCache) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Client().Del(ctx, c.key(id)).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

func (c *ProductCache) key(id uuid.UUID) string {
	return fmt.Sprintf("%s:%s", productCacheKeyPrefix, id)
}

func productFields(p *CachedProduct) []any {
	return []any{
		"id", p.ID.String(),
		"supplier_id", p.SupplierID.String(),
		"category_id", p.CategoryID.String(),
		"name", p.Name,
		"price", p.Price.StringFixed(2),
		"updated_at", p.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func parseProduct(vals map[string]string) (*CachedProduct, error) {
	id, err := uuid.Parse(vals["id"])
	if err != nil {
		return nil, fmt.Errorf("cache parse id: %w", err)
	}
	supplierID, err := uuid.Parse(vals["supplier_id"])
	if err != nil {
		return nil, fmt.Errorf("cache parse supplier_id: %w", err)
	}
	categoryID, err := uuid.Parse(vals["category_id"])
	if err != nil {
		return nil, fmt.Errorf("cache parse category_id: %w", err)
	}
	price, err := decimal.NewFromString(vals["price"])
	if err != nil {
		return nil, fmt.Errorf("cache parse price: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, vals["updated_at"])
	if err != nil {
		return nil, fmt.Errorf("cache parse updated_at: %w", err)
	}
	return &CachedProduct{
		ID:         id,
		SupplierID: supplierID,
		CategoryID: categoryID,
		Name:       vals["name"],
		Price:      price,
		UpdatedAt:  updatedAt,
	}, nil
}
