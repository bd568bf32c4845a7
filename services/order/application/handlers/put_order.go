package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ghuser/ordermgmt/pkg/auth"
	"github.com/ghuser/ordermgmt/pkg/errhttp"
	"github.com/ghuser/ordermgmt/pkg/httpx"
	pkgvalidator "github.com/ghuser/ordermgmt/pkg/validator"
	appsvcs "github.com/ghuser/ordermgmt/services/order/application/services"
)

// PutOrderHandler handles PUT /api/orders/{id} requests.
type PutOrderHandler struct {
	svc *appsvcs.Services
	ew  *errhttp.Writer
}

// NewPutOrderHandler returns a PutOrderHandler.
func NewPutOrderHandler(svc *appsvcs.Services, ew *errhttp.Writer) *PutOrderHandler {
	return &PutOrderHandler{svc: svc, ew: ew}
}

// Execute updates one of the buyer's orders. When items are sent they replace
// the existing items and stock moves by the per-product difference.
//
//	@Summary	Update order
//	@Tags		orders
//	@Security	SessionCookie
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Order ID"
//	@Param		request	body		UpdateOrderRequest	true	"Fields to change"
//	@Success	200		{object}	OrderResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	401		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Failure	409		{object}	errhttp.InsufficientStockResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/api/orders/{id} [put]
func (h *PutOrderHandler) Execute(w http.ResponseWriter, r *http.Request) {
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

	req, ok := pkgvalidator.ValidateRequest[UpdateOrderRequest](w, r)
	if !ok {
		return
	}

	if _, err := h.svc.Order.GetForBuyer(ctx, buyerID, id); err != nil {
		h.ew.Write(w, r, err)
		return
	}

	params := appsvcs.UpdateParams{
		OrderDate: req.OrderDate,
		Lines:     toLines(req.Items),
	}
	if req.BuyerID != nil {
		newBuyer := uuid.MustParse(*req.BuyerID)
		params.BuyerID = &newBuyer
	}

	order, err := h.svc.Order.Update(ctx, id, params)
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderResponse(order))
}
