package handlers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/ordermgmt/services/catalog/domain/models"
)

// CreateSupplierRequest is the request body for POST /api/suppliers and
// PUT /api/suppliers/{id}.
type CreateSupplierRequest struct {
	Name     string `json:"name"     validate:"required,min=1,max=255" example:"Acme Tools"`
	Country  string `json:"country"  validate:"max=255"                example:"NL"`
	City     string `json:"city"     validate:"max=255"                example:"Utrecht"`
	Street   string `json:"street"   validate:"max=255"                example:"Oudegracht"`
	Building string `json:"building" validate:"max=64"                 example:"12A"`
} // @name CreateSupplierRequest

// SupplierResponse is the representation of a supplier.
type SupplierResponse struct {
	ID        uuid.UUID `json:"id"         example:"123e4567-e89b-12d3-a456-426614174000"`
	Name      string    `json:"name"       example:"Acme Tools"`
	Country   string    `json:"country"    example:"NL"`
	City      string    `json:"city"       example:"Utrecht"`
	Street    string    `json:"street"     example:"Oudegracht"`
	Building  string    `json:"building"   example:"12A"`
	CreatedAt time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
} // @name SupplierResponse

// SupplierListResponse is a page of suppliers.
type SupplierListResponse struct {
	Suppliers []SupplierResponse `json:"suppliers"`
	Total     int                `json:"total"  example:"42"`
	Limit     int                `json:"limit"  example:"20"`
	Offset    int                `json:"offset" example:"0"`
} // @name SupplierListResponse

// CreateCategoryRequest is the request body for POST /api/categories.
type CreateCategoryRequest struct {
	Name     string  `json:"name"                validate:"required,min=1,max=255" example:"Hand tools"`
	ParentID *string `json:"parent_id,omitempty" validate:"omitempty,uuid"         example:"123e4567-e89b-12d3-a456-426614174000"`
} // @name CreateCategoryRequest

// CategoryResponse is the representation of a category.
type CategoryResponse struct {
	ID        uuid.UUID  `json:"id"                  example:"123e4567-e89b-12d3-a456-426614174000"`
	Name      string     `json:"name"                example:"Hand tools"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	CreatedAt time.Time  `json:"created_at"          example:"2024-01-15T10:30:00Z"`
} // @name CategoryResponse

// CategoryListResponse is a page of categories.
type CategoryListResponse struct {
	Categories []CategoryResponse `json:"categories"`
	Total      int                `json:"total"  example:"42"`
	Limit      int                `json:"limit"  example:"20"`
	Offset     int                `json:"offset" example:"0"`
} // @name CategoryListResponse

// ProductRequest is the request body for POST /api/products and PUT /api/products/{id}.
type ProductRequest struct {
	SupplierID string          `json:"supplier_id" validate:"required,uuid"             example:"123e4567-e89b-12d3-a456-426614174000"`
	CategoryID string          `json:"category_id" validate:"required,uuid"             example:"123e4567-e89b-12d3-a456-426614174000"`
	Name       string          `json:"name"        validate:"required,min=1,max=255"    example:"Claw hammer"`
	Price      decimal.Decimal `json:"price"       validate:"money" swaggertype:"string" example:"12.50"`
} // @name ProductRequest

// ProductResponse is the representation of a product.
type ProductResponse struct {
	ID         uuid.UUID `json:"id"          example:"123e4567-e89b-12d3-a456-426614174000"`
	SupplierID uuid.UUID `json:"supplier_id" example:"123e4567-e89b-12d3-a456-426614174000"`
	CategoryID uuid.UUID `json:"category_id" example:"123e4567-e89b-12d3-a456-426614174000"`
	Name       string    `json:"name"        example:"Claw hammer"`
	Price      string    `json:"price"       example:"12.50"`
	UpdatedAt  time.Time `json:"updated_at"  example:"2024-01-15T10:30:00Z"`
} // @name ProductResponse

// ProductListResponse is a page of products.
type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Total    int               `json:"total"  example:"42"`
	Limit    int               `json:"limit"  example:"20"`
	Offset   int               `json:"offset" example:"0"`
} // @name ProductListResponse

// CreateStockRequest is the request body for POST /api/stocks.
type CreateStockRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid" example:"123e4567-e89b-12d3-a456-426614174000"`
	Quantity  int    `json:"quantity"   validate:"gte=0,lte=2147483647" example:"10"`
} // @name CreateStockRequest

// SetStockRequest is the request body for PUT /api/stocks/{productID}.
type SetStockRequest struct {
	Quantity int `json:"quantity" validate:"gte=0,lte=2147483647" example:"10"`
} // @name SetStockRequest

// StockResponse is the on-hand quantity of a product.
type StockResponse struct {
	ProductID uuid.UUID `json:"product_id" example:"123e4567-e89b-12d3-a456-426614174000"`
	Quantity  int       `json:"quantity"   example:"10"`
	UpdatedAt time.Time `json:"updated_at" example:"2024-01-15T10:30:00Z"`
} // @name StockResponse

// StockListResponse is a page of stock rows.
type StockListResponse struct {
	Stocks []StockResponse `json:"stocks"`
	Total  int             `json:"total"  example:"42"`
	Limit  int             `json:"limit"  example:"20"`
	Offset int             `json:"offset" example:"0"`
} // @name StockListResponse

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"product not found"`
} // @name CatalogErrorResponse

func toSupplierResponse(s *models.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:        s.ID,
		Name:      s.Name.String(),
		Country:   s.Address.Country,
		City:      s.Address.City,
		Street:    s.Address.Street,
		Building:  s.Address.Building,
		CreatedAt: s.CreatedAt,
	}
}

func toCategoryResponse(c *models.Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID,
		Name:      c.Name.String(),
		ParentID:  c.ParentID,
		CreatedAt: c.CreatedAt,
	}
}

func toProductResponse(p *models.Product) ProductResponse {
	return ProductResponse{
		ID:         p.ID,
		SupplierID: p.SupplierID,
		CategoryID: p.CategoryID,
		Name:       p.Name.String(),
		Price:      p.Price.StringFixed(2),
		UpdatedAt:  p.UpdatedAt,
	}
}

func toStockResponse(s *models.Stock) StockResponse {
	return StockResponse{
		ProductID: s.ProductID,
		Quantity:  s.Quantity,
		UpdatedAt: s.UpdatedAt,
	}
}
