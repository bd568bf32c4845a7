// Package services contains stateless domain services for the catalog bounded context.
// Domain services enforce business rules that operate purely on domain types
// and have zero external dependencies beyond the domain layer.
package services

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/ordermgmt/services/catalog/domain/models"
)

// maxPrice is the largest value a NUMERIC(10,2) column holds.
var maxPrice = decimal.RequireFromString("99999999.99")

// ValidateName enforces business rules for Name beyond the structural
// constraints enforced by the Name constructor (length 1–255).
//
// Business rules:
//   - No leading or trailing whitespace
//   - No control characters (Unicode category Cc)
//   - Must not be only whitespace characters
func ValidateName(name models.Name) error {
	s := name.String()

	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("name must not be only whitespace")
	}

	if s != strings.TrimSpace(s) {
		return fmt.Errorf("name must not have leading or trailing whitespace")
	}

	for _, r := range s {
		if unicode.IsControl(r) {
			return fmt.Errorf("name must not contain control characters")
		}
	}

	return nil
}

// ValidatePrice accepts non-negative prices with at most two decimal places
// that fit NUMERIC(10,2).
func ValidatePrice(p decimal.Decimal) error {
	if p.IsNegative() {
		return fmt.Errorf("price must not be negative")
	}
	if p.GreaterThan(maxPrice) {
		return fmt.Errorf("price must not exceed %s", maxPrice.StringFixed(2))
	}
	if !p.Equal(p.Truncate(2)) {
		return fmt.Errorf("price must have at most two decimal places")
	}
	return nil
}

// ValidateProduct performs cross-field validation on a Product before it is
// persisted.
func ValidateProduct(p *models.Product) error {
	if p == nil {
		return fmt.Errorf("product cannot be nil")
	}
	if err := ValidateName(p.Name); err != nil {
		return fmt.Errorf("invalid name: %w", err)
	}
	if err := ValidatePrice(p.Price); err != nil {
		return fmt.Errorf("invalid price: %w", err)
	}
	if p.SupplierID == uuid.Nil {
		return fmt.Errorf("supplier_id must be set")
	}
	if p.CategoryID == uuid.Nil {
		return fmt.Errorf("category_id must be set")
	}
	return nil
}

// MaxQuantity is the largest value the INTEGER quantity column holds.
const MaxQuantity = math.MaxInt32

// ValidateQuantity rejects stock quantities outside [0, MaxQuantity].
func ValidateQuantity(q int) error {
	if q < 0 {
		return fmt.Errorf("quantity must not be negative")
	}
	if q > MaxQuantity {
		return fmt.Errorf("quantity must be at most %d", MaxQuantity)
	}
	return nil
}
