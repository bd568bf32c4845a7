package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable item from one supplier in one category.
type Product struct {
	ID         uuid.UUID
	SupplierID uuid.UUID
	CategoryID uuid.UUID
	Name       Name
	Price      decimal.Decimal
	UpdatedAt  time.Time
}

// NewProduct constructs a Product with generated ID and current timestamp.
func NewProduct(supplierID, categoryID uuid.UUID, name Name, price decimal.Decimal) *Product {
	return &Product{
		ID:         uuid.New(),
		SupplierID: supplierID,
		CategoryID: categoryID,
		Name:       name,
		Price:      price,
		UpdatedAt:  time.Now().UTC(),
	}
}

// Stock is the on-hand quantity of one product.
type Stock struct {
	ProductID uuid.UUID
	Quantity  int
	UpdatedAt time.Time
}
