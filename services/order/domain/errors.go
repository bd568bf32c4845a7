package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Sentinel errors for the order domain. Use errors.Is() to check these.
var (
	// ErrOrderNotFound indicates the requested order does not exist.
	ErrOrderNotFound = errors.New("order not found")

	// ErrProductNotFound indicates a referenced product has no stock record.
	ErrProductNotFound = errors.New("product not found")

	// ErrInvalidArgument indicates malformed input: empty line list,
	// non-positive quantity, nil id, or a ledger delta that would drive
	// stock negative.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInsufficientStock matches any *InsufficientStockError.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// InsufficientStockError reports the first product whose stock could not
// cover the requested quantity.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available %d, requested %d",
		e.ProductID, e.Available, e.Requested)
}

// Is makes errors.Is(err, ErrInsufficientStock) true.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
