package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ghuser/ordermgmt/pkg/auth"
	"github.com/ghuser/ordermgmt/pkg/cache"
	"github.com/ghuser/ordermgmt/pkg/errhttp"
	"github.com/ghuser/ordermgmt/pkg/httpx"
	"github.com/ghuser/ordermgmt/pkg/logger"
	pkgvalidator "github.com/ghuser/ordermgmt/pkg/validator"
	appsvcs "github.com/ghuser/ordermgmt/services/order/application/services"
)

const (
	idempotencyHeader = "Idempotency-Key"
	replayedHeader    = "Idempotent-Replayed"
	maxIdempotencyKey = 255
)

// PostOrderHandler handles POST /api/orders requests.
type PostOrderHandler struct {
	svc *appsvcs.Services
	ew  *errhttp.Writer
	log logger.Logger
}

// NewPostOrderHandler returns a PostOrderHandler backed by the given services.
func NewPostOrderHandler(svc *appsvcs.Services, ew *errhttp.Writer, log logger.Logger) *PostOrderHandler {
	return &PostOrderHandler{svc: svc, ew: ew, log: log}
}

// Execute places an order for the authenticated buyer.
//
//	@Summary		Place order
//	@Description	Reserves stock for every line and prices items at current product prices, all or nothing.
//	@Description	Send an Idempotency-Key header to make retries safe.
//	@Tags			orders
//	@Security		SessionCookie
//	@Accept			json
//	@Produce		json
//	@Param			Idempotency-Key	header		string				false	"Client-chosen key; a retry with the same key replays the first response"
//	@Param			request			body		CreateOrderRequest	true	"Order lines"
//	@Success		201				{object}	OrderResponse
//	@Failure		400				{object}	ErrorResponse
//	@Failure		401				{object}	ErrorResponse
//	@Failure		404				{object}	ErrorResponse
//	@Failure		409				{object}	errhttp.InsufficientStockResponse
//	@Failure		422				{object}	ErrorResponse
//	@Failure		503				{object}	ErrorResponse
//	@Router			/api/orders [post]
func (h *PostOrderHandler) Execute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	buyerID, err := auth.BuyerIDFromCtx(ctx)
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}

	req, ok := pkgvalidator.ValidateRequest[CreateOrderRequest](w, r)
	if !ok {
		return
	}

	key := r.Header.Get(idempotencyHeader)
	if len(key) > maxIdempotencyKey {
		httpx.JSONError(w, http.StatusBadRequest, "Idempotency-Key is too long")
		return
	}
	scope := "orders:" + buyerID.String()
	claimed := false
	if key != "" && h.svc.Idempotency != nil {
		stored, err := h.svc.Idempotency.Claim(ctx, scope, key)
		switch {
		case errors.Is(err, cache.ErrRequestInFlight):
			httpx.JSONError(w, http.StatusConflict, err.Error())
			return
		case err != nil:
			h.log.WarnContext(ctx, "idempotency store unavailable, processing without key", "error", err)
		case stored != "":
			w.Header().Set(replayedHeader, "true")
			httpx.RawJSON(w, http.StatusCreated, []byte(stored))
			return
		default:
			claimed = true
		}
	}

	order, err := h.svc.Order.Create(ctx, buyerID, toLines(req.Items))
	if err != nil {
		if claimed {
			if rerr := h.svc.Idempotency.Release(ctx, scope, key); rerr != nil {
				h.log.WarnContext(ctx, "idempotency release failed", "error", rerr)
			}
		}
		h.ew.Write(w, r, err)
		return
	}

	resp := toOrderResponse(order)
	if claimed {
		body, err := json.Marshal(resp)
		if err == nil {
			err = h.svc.Idempotency.Complete(ctx, scope, key, string(body))
		}
		if err != nil {
			h.log.WarnContext(ctx, "idempotency complete failed", "order_id", order.ID, "error", err)
		}
	}

	httpx.Created(w, "/api/orders/"+order.ID.String(), resp)
}
