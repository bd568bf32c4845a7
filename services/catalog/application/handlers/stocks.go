package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ghuser/ordermgmt/pkg/errhttp"
	"github.com/ghuser/ordermgmt/pkg/httpx"
	"github.com/ghuser/ordermgmt/pkg/validator"
	appsvcs "github.com/ghuser/ordermgmt/services/catalog/application/services"
	"github.com/ghuser/ordermgmt/services/catalog/domain/repositories"
)

// ListStocksHandler handles GET /api/stocks requests.
type ListStocksHandler struct {
	svc *appsvcs.Services
	ew  *errhttp.Writer
}

// NewListStocksHandler returns a ListStocksHandler.
func NewListStocksHandler(svc *appsvcs.Services, ew *errhttp.Writer) *ListStocksHandler {
	return &ListStocksHandler{svc: svc, ew: ew}
}

// Execute lists stock rows, optionally for one product.
//
//	@Summary	List stock
//	@Tags		catalog
//	@Security	SessionCookie
//	@Produce	json
//	@Param		product	query		string	false	"Product ID"
//	@Param		limit	query		int		false	"Page size (default 20, max 100)"
//	@Param		offset	query		int		false	"Records to skip"
//	@Success	200		{object}	StockListResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	401		{object}	ErrorResponse
//	@Router		/api/stocks [get]
func (h *ListStocksHandler) Execute(w http.ResponseWriter, r *http.Request) {
	productID, err := httpx.QueryUUID(r, "product")
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}
	limit, offset, err := httpx.Page(r)
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}
	stocks, total, err := h.svc.Catalog.ListStocks(r.Context(), productID, repositories.QueryOpts{Limit: limit, Offset: offset})
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}

	resp := StockListResponse{
		Stocks: make([]StockResponse, len(stocks)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	for i, s := range stocks {
		resp.Stocks[i] = toStockResponse(s)
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// GetStockHandler handles GET /api/stocks/{productID} requests.
type GetStockHandler struct {
	svc *appsvcs.Services
	ew  *errhttp.Writer
}

// NewGetStockHandler returns a GetStockHandler.
func NewGetStockHandler(svc *appsvcs.Services, ew *errhttp.Writer) *GetStockHandler {
	return &GetStockHandler{svc: svc, ew: ew}
}

// Execute returns a product's stock row.
//
//	@Summary	Get stock
//	@Tags		catalog
//	@Security	SessionCookie
//	@Produce	json
//	@Param		productID	path		string	true	"Product ID"
//	@Success	200			{object}	StockResponse
//	@Failure	400			{object}	ErrorResponse
//	@Failure	401			{object}	ErrorResponse
//	@Failure	404			{object}	ErrorResponse
//	@Router		/api/stocks/{productID} [get]
func (h *GetStockHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamUUID(r, "productID")
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}
	st, err := h.svc.Catalog.GetStock(r.Context(), id)
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toStockResponse(st))
}

// PostStockHandler handles POST /api/stocks requests.
type PostStockHandler struct {
	svc *appsvcs.Services
	ew  *errhttp.Writer
}

// NewPostStockHandler returns a PostStockHandler.
func NewPostStockHandler(svc *appsvcs.Services, ew *errhttp.Writer) *PostStockHandler {
	return &PostStockHandler{svc: svc, ew: ew}
}

// Execute creates the stock row for a product.
//
//	@Summary	Create stock
//	@Tags		catalog
//	@Accept		json
//	@Produce	json
//	@Param		body	body		CreateStockRequest	true	"Stock"
//	@Success	201		{object}	StockResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse	"Product not found"
//	@Failure	409		{object}	ErrorResponse	"Stock already exists"
//	@Failure	422		{object}	ErrorResponse
//	@Router		/api/stocks [post]
func (h *PostStockHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := validator.ValidateRequest[CreateStockRequest](w, r)
	if !ok {
		return
	}
	st, err := h.svc.Catalog.CreateStock(r.Context(), uuid.MustParse(req.ProductID), req.Quantity)
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}
	httpx.Created(w, "/api/stocks/"+st.ProductID.String(), toStockResponse(st))
}

// PutStockHandler handles PUT /api/stocks/{productID} requests.
type PutStockHandler struct {
	svc *appsvcs.Services
	ew  *errhttp.Writer
}

// NewPutStockHandler returns a PutStockHandler.
func NewPutStockHandler(svc *appsvcs.Services, ew *errhttp.Writer) *PutStockHandler {
	return &PutStockHandler{svc: svc, ew: ew}
}

// Execute overwrites a product's on-hand quantity.
//
//	@Summary	Set stock
//	@Tags		catalog
//	@Accept		json
//	@Produce	json
//	@Param		productID	path		string			true	"Product ID"
//	@Param		body		body		SetStockRequest	true	"Quantity"
//	@Success	200			{object}	StockResponse
//	@Failure	400			{object}	ErrorResponse
//	@Failure	404			{object}	ErrorResponse
//	@Failure	422			{object}	ErrorResponse
//	@Router		/api/stocks/{productID} [put]
func (h *PutStockHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamUUID(r, "productID")
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}
	req, ok := validator.ValidateRequest[SetStockRequest](w, r)
	if !ok {
		return
	}
	st, err := h.svc.Catalog.SetStock(r.Context(), id, req.Quantity)
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toStockResponse(st))
}
