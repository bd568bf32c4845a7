package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderOrder struct {
	ID        uuid.UUID
	BuyerID   uuid.UUID
	OrderDate time.Time
	Seq       int64
}

type OrderOrderItem struct {
	ID            uuid.UUID
	OrderID       uuid.UUID
	ProductID     uuid.UUID
	Position      int32
	Quantity      int32
	PurchasePrice decimal.Decimal
}

type OrderStock struct {
	ProductID uuid.UUID
	Quantity  int32
}
