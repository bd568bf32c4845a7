package handlers

import (
	"net/http"

	"github.com/ghuser/ordermgmt/pkg/auth"
	"github.com/ghuser/ordermgmt/pkg/errhttp"
	"github.com/ghuser/ordermgmt/pkg/httpx"
	appsvcs "github.com/ghuser/ordermgmt/services/order/application/services"
)

// DeleteOrderHandler handles DELETE /api/orders/{id} requests.
type DeleteOrderHandler struct {
	svc *appsvcs.Services
	ew  *errhttp.Writer
}

// NewDeleteOrderHandler returns a DeleteOrderHandler.
func NewDeleteOrderHandler(svc *appsvcs.Services, ew *errhttp.Writer) *DeleteOrderHandler {
	return &DeleteOrderHandler{svc: svc, ew: ew}
}

// Execute deletes one of the buyer's orders and returns its items to stock.
//
//	@Summary	Delete order
//	@Tags		orders
//	@Security	SessionCookie
//	@Param		id	path	string	true	"Order ID"
//	@Success	204
//	@Failure	400	{object}	ErrorResponse
//	@Failure	401	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/orders/{id} [delete]
func (h *DeleteOrderHandler) Execute(w http.ResponseWriter, r *http.Request) {
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
	if err := h.svc.Order.Delete(ctx, id); err != nil {
		h.ew.Write(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
