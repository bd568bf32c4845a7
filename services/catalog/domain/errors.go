package domain

import "errors"

// Sentinel errors for the catalog domain. Use errors.Is() to check these.
var (
	ErrSupplierNotFound = errors.New("supplier not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrStockNotFound    = errors.New("stock not found")

	// ErrStockAlreadyExists indicates the product already has a stock row.
	ErrStockAlreadyExists = errors.New("stock already exists for product")

	// ErrSupplierInUse and ErrProductInUse reject deleting a row that
	// products or order items still reference.
	ErrSupplierInUse = errors.New("supplier still has products")
	ErrProductInUse  = errors.New("product is referenced by orders")

	// ErrInvalidInput indicates a catalog value violates domain constraints.
	ErrInvalidInput = errors.New("invalid catalog input")
)
