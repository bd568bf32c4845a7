package models

import (
	"math"

	"github.com/google/uuid"
)

// MaxQuantity is the largest quantity a stock row or order line can hold.
const MaxQuantity = math.MaxInt32

// Stock is the available quantity of one product. Quantity is never negative.
type Stock struct {
	ProductID uuid.UUID
	Quantity  int
}
