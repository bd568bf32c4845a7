package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CatalogSupplier struct {
	ID        uuid.UUID
	Name      string
	Country   string
	City      string
	Street    string
	Building  string
	CreatedAt time.Time
}

type CatalogCategory struct {
	ID        uuid.UUID
	Name      string
	ParentID  uuid.NullUUID
	CreatedAt time.Time
}

type CatalogProduct struct {
	ID         uuid.UUID
	SupplierID uuid.UUID
	CategoryID uuid.UUID
	Name       string
	Price      decimal.Decimal
	UpdatedAt  time.Time
}

type CatalogStock struct {
	ProductID uuid.UUID
	Quantity  int32
	UpdatedAt time.Time
}
