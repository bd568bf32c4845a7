package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// contextKey is an unexported type to prevent key collisions in context.
type contextKey string

const buyerIDKey contextKey = "buyer_id"

// ErrBuyerIDNotFound is returned when no BuyerID exists in the request context.
// Handlers should return 401 when this error occurs.
var ErrBuyerIDNotFound = errors.New("buyer_id not found in context")

// BuyerIDFromCtx extracts the authenticated buyer ID from the request context.
// Returns uuid.Nil and ErrBuyerIDNotFound if no BuyerID is set (unauthenticated request).
func BuyerIDFromCtx(ctx context.Context) (uuid.UUID, error) {
	buyerID, ok := ctx.Value(buyerIDKey).(uuid.UUID)
	if !ok || buyerID == uuid.Nil {
		return uuid.Nil, ErrBuyerIDNotFound
	}
	return buyerID, nil
}

// WithBuyerID returns a new context with the given BuyerID attached.
// Used by authentication middleware after validating the session.
func WithBuyerID(ctx context.Context, buyerID uuid.UUID) context.Context {
	return context.WithValue(ctx, buyerIDKey, buyerID)
}
