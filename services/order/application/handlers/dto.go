package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/ordermgmt/services/order/domain/models"
)

// OrderItemRequest is one requested line. Prices are always taken from the
// catalog; a purchase_price field sent by the client is ignored.
type OrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid" example:"123e4567-e89b-12d3-a456-426614174000"`
	Quantity  int    `json:"quantity"   validate:"gt=0,lte=2147483647" example:"2"`
} // @name OrderItemRequest

// CreateOrderRequest is the request body for POST /api/orders.
type CreateOrderRequest struct {
	Items []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
} // @name CreateOrderRequest

// UpdateOrderRequest is the request body for PUT /api/orders/{id}.
// Omitting items performs a header-only update.
type UpdateOrderRequest struct {
	BuyerID   *string            `json:"buyer_id,omitempty"   validate:"omitempty,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	OrderDate *time.Time         `json:"order_date,omitempty" example:"2024-01-15T10:30:00Z"`
	Items     []OrderItemRequest `json:"items,omitempty"      validate:"omitempty,dive"`
} // @name UpdateOrderRequest

// OrderItemResponse is one priced order line.
type OrderItemResponse struct {
	ID            uuid.UUID `json:"id"             example:"123e4567-e89b-12d3-a456-426614174000"`
	ProductID     uuid.UUID `json:"product_id"     example:"123e4567-e89b-12d3-a456-426614174000"`
	Quantity      int       `json:"quantity"       example:"2"`
	PurchasePrice string    `json:"purchase_price" example:"12.50"`
	Subtotal      string    `json:"subtotal"       example:"25.00"`
} // @name OrderItemResponse

// OrderResponse is the representation of an order with its items.
type OrderResponse struct {
	ID        uuid.UUID           `json:"id"         example:"123e4567-e89b-12d3-a456-426614174000"`
	BuyerID   uuid.UUID           `json:"buyer_id"   example:"550e8400-e29b-41d4-a716-446655440000"`
	OrderDate time.Time           `json:"order_date" example:"2024-01-15T10:30:00Z"`
	Items     []OrderItemResponse `json:"items"`
	Total     string              `json:"total"      example:"25.00"`
} // @name OrderResponse

// OrderListResponse is a page of the caller's orders.
type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int             `json:"total"  example:"42"`
	Limit  int             `json:"limit"  example:"20"`
	Offset int             `json:"offset" example:"0"`
} // @name OrderListResponse

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"order not found"`
} // @name ErrorResponse

func toOrderResponse(o *models.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemResponse{
			ID:            it.ID,
			ProductID:     it.ProductID,
			Quantity:      it.Quantity,
			PurchasePrice: it.PurchasePrice.StringFixed(2),
			Subtotal:      it.Subtotal().StringFixed(2),
		}
	}
	return OrderResponse{
		ID:        o.ID,
		BuyerID:   o.BuyerID,
		OrderDate: o.OrderDate,
		Items:     items,
		Total:     o.Total().StringFixed(2),
	}
}

// toLines converts validated request lines. Validation guarantees the ids parse.
func toLines(req []OrderItemRequest) []models.LineItem {
	if req == nil {
		return nil
	}
	lines := make([]models.LineItem, len(req))
	for i, it := range req {
		lines[i] = models.LineItem{
			ProductID: uuid.MustParse(it.ProductID),
			Quantity:  it.Quantity,
		}
	}
	return lines
}
