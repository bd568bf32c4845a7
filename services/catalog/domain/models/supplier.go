package models

import (
	"time"

	"github.com/google/uuid"
)

// Address is a supplier's postal location.
type Address struct {
	Country  string
	City     string
	Street   string
	Building string
}

// Supplier is an organization that provides products.
type Supplier struct {
	ID        uuid.UUID
	Name      Name
	Address   Address
	CreatedAt time.Time
}

// NewSupplier constructs a Supplier with generated ID and current timestamp.
func NewSupplier(name Name, addr Address) *Supplier {
	return &Supplier{
		ID:        uuid.New(),
		Name:      name,
		Address:   addr,
		CreatedAt: time.Now().UTC(),
	}
}
