package handlers

import (
	"net/http"

	"github.com/ghuser/ordermgmt/pkg/auth"
	"github.com/ghuser/ordermgmt/pkg/errhttp"
	"github.com/ghuser/ordermgmt/pkg/httpx"
	appsvcs "github.com/ghuser/ordermgmt/services/order/application/services"
	"github.com/ghuser/ordermgmt/services/order/domain/repositories"
)

// ListOrdersHandler handles GET /api/orders requests.
type ListOrdersHandler struct {
	svc *appsvcs.Services
	ew  *errhttp.Writer
}

// NewListOrdersHandler returns a ListOrdersHandler.
func NewListOrdersHandler(svc *appsvcs.Services, ew *errhttp.Writer) *ListOrdersHandler {
	return &ListOrdersHandler{svc: svc, ew: ew}
}

// Execute lists the authenticated buyer's orders, newest first.
//
//	@Summary	List my orders
//	@Tags		orders
//	@Security	SessionCookie
//	@Produce	json
//	@Param		limit	query		int	false	"Page size (default 20, max 100)"
//	@Param		offset	query		int	false	"Records to skip"
//	@Success	200		{object}	OrderListResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	401		{object}	ErrorResponse
//	@Router		/api/orders [get]
func (h *ListOrdersHandler) Execute(w http.ResponseWriter, r *http.Request) {
	buyerID, err := auth.BuyerIDFromCtx(r.Context())
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}
	limit, offset, err := httpx.Page(r)
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}

	orders, total, err := h.svc.Order.List(r.Context(), buyerID, repositories.QueryOpts{Limit: limit, Offset: offset})
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}

	resp := OrderListResponse{
		Orders: make([]OrderResponse, len(orders)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	for i, o := range orders {
		resp.Orders[i] = toOrderResponse(o)
	}
	httpx.JSON(w, http.StatusOK, resp)
}
