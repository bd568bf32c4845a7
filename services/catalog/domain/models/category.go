package models

import (
	"time"

	"github.com/google/uuid"
)

// Category groups products. ParentID is stored but never traversed.
type Category struct {
	ID        uuid.UUID
	Name      Name
	ParentID  *uuid.UUID
	CreatedAt time.Time
}

// NewCategory constructs a Category with generated ID and current timestamp.
func NewCategory(name Name, parentID *uuid.UUID) *Category {
	return &Category{
		ID:        uuid.New(),
		Name:      name,
		ParentID:  parentID,
		CreatedAt: time.Now().UTC(),
	}
}
