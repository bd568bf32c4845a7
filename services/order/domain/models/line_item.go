package models

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// LineItem is a caller-supplied request for quantity units of a product.
type LineItem struct {
	ProductID uuid.UUID
	Quantity  int
}

// ValidateLines checks structural constraints on a line list.
func ValidateLines(lines []LineItem) error {
	if len(lines) == 0 {
		return fmt.Errorf("order must contain at least one item")
	}
	for i, l := range lines {
		if l.ProductID == uuid.Nil {
			return fmt.Errorf("item %d: product id is required", i)
		}
		if l.Quantity <= 0 {
			return fmt.Errorf("item %d: quantity must be positive, got %d", i, l.Quantity)
		}
		if l.Quantity > MaxQuantity {
			return fmt.Errorf("item %d: quantity must be at most %d, got %d", i, MaxQuantity, l.Quantity)
		}
	}
	for id, q := range AggregateLines(lines) {
		if q > MaxQuantity {
			return fmt.Errorf("product %s: total quantity must be at most %d, got %d", id, MaxQuantity, q)
		}
	}
	return nil
}

// AggregateLines sums quantities per product.
func AggregateLines(lines []LineItem) map[uuid.UUID]int {
	q := make(map[uuid.UUID]int, len(lines))
	for _, l := range lines {
		q[l.ProductID] += l.Quantity
	}
	return q
}

// SortedProductIDs returns the union of the maps' keys in canonical lock order.
func SortedProductIDs(qs ...map[uuid.UUID]int) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	for _, q := range qs {
		for id := range q {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	return ids
}
