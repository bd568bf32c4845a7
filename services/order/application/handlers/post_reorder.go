package handlers

import (
	"net/http"

	"github.com/ghuser/ordermgmt/pkg/auth"
	"github.com/ghuser/ordermgmt/pkg/errhttp"
	"github.com/ghuser/ordermgmt/pkg/httpx"
	appsvcs "github.com/ghuser/ordermgmt/services/order/application/services"
)

// PostReorderHandler handles POST /api/orders/{id}/reorder requests.
type PostReorderHandler struct {
	svc *appsvcs.Services
	ew  *errhttp.Writer
}

// NewPostReorderHandler returns a PostReorderHandler.
func NewPostReorderHandler(svc *appsvcs.Services, ew *errhttp.Writer) *PostReorderHandler {
	return &PostReorderHandler{svc: svc, ew: ew}
}

// Execute places a new order with the same products and quantities as one of
// the buyer's previous orders, at current prices.
//
//	@Summary	Reorder
//	@Tags		orders
//	@Security	SessionCookie
//	@Produce	json
//	@Param		id	path		string	true	"Original order ID"
//	@Success	201	{object}	OrderResponse
//	@Failure	400	{object}	ErrorResponse
//	@Failure	401	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Failure	409	{object}	errhttp.InsufficientStockResponse
//	@Router		/api/orders/{id}/reorder [post]
func (h *PostReorderHandler) Execute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	buyerID, err := auth.BuyerIDFromCtx(ctx)
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}
	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}

	if _, err := h.svc.Order.GetForBuyer(ctx, buyerID, id); err != nil {
		h.ew.Write(w, r, err)
		return
	}
	order, err := h.svc.Order.Reorder(ctx, id, buyerID)
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}
	httpx.Created(w, "/api/orders/"+order.ID.String(), toOrderResponse(order))
}
