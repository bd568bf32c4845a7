package events

import (
	"time"

	"github.com/google/uuid"
)

// TopicProductChanged is the Watermill topic published when a product is
// changed or deleted.
const TopicProductChanged = "catalog.product_changed"

// ProductChangedEvent is published in the same transaction as the product
// update. The worker consumes it to evict cached copies on every instance.
type ProductChangedEvent struct {
	EventID    uuid.UUID `json:"event_id"` // Unique publish-time identifier for deduplication
	Version    int       `json:"version"`  // Schema version; increment on breaking changes
	ProductID  uuid.UUID `json:"product_id"`
	Price      string    `json:"price,omitempty"` // Empty when Deleted
	Deleted    bool      `json:"deleted,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
