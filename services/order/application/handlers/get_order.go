package handlers

import (
	"net/http"

	"github.com/ghuser/ordermgmt/pkg/auth"
	"github.com/ghuser/ordermgmt/pkg/errhttp"
	"github.com/ghuser/ordermgmt/pkg/httpx"
	appsvcs "github.com/ghuser/ordermgmt/services/order/application/services"
)

// GetOrderHandler handles GET /api/orders/{id} requests.
type GetOrderHandler struct {
	svc *appsvcs.Services
	ew  *errhttp.Writer
}

// NewGetOrderHandler returns a GetOrderHandler.
func NewGetOrderHandler(svc *appsvcs.Services, ew *errhttp.Writer) *GetOrderHandler {
	return &GetOrderHandler{svc: svc, ew: ew}
}

// Execute returns one of the buyer's orders.
//
//	@Summary	Get order
//	@Tags		orders
//	@Security	SessionCookie
//	@Produce	json
//	@Param		id	path		string	true	"Order ID"
//	@Success	200	{object}	OrderResponse
//	@Failure	400	{object}	ErrorResponse
//	@Failure	401	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/orders/{id} [get]
func (h *GetOrderHandler) Execute(w http.ResponseWriter, r *http.Request) {
	buyerID, err := auth.BuyerIDFromCtx(r.Context())
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}
	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}

	order, err := h.svc.Order.GetForBuyer(r.Context(), buyerID, id)
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderResponse(order))
}
