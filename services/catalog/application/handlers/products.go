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

// PostProductHandler handles POST /api/products requests.
type PostProductHandler struct {
	svc *appsvcs.Services
	ew  *errhttp.Writer
}

// NewPostProductHandler returns a PostProductHandler.
func NewPostProductHandler(svc *appsvcs.Services, ew *errhttp.Writer) *PostProductHandler {
	return &PostProductHandler{svc: svc, ew: ew}
}

// Execute creates a product.
//
//	@Summary	Create product
//	@Tags		catalog
//	@Accept		json
//	@Produce	json
//	@Param		body	body		ProductRequest	true	"Product"
//	@Success	201		{object}	ProductResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse	"Supplier or category not found"
//	@Failure	422		{object}	ErrorResponse
//	@Router		/api/products [post]
func (h *PostProductHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := validator.ValidateRequest[ProductRequest](w, r)
	if !ok {
		return
	}
	p, err := h.svc.Catalog.CreateProduct(r.Context(), toProductInput(req))
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}
	httpx.Created(w, "/api/products/"+p.ID.String(), toProductResponse(p))
}

// PutProductHandler handles PUT /api/products/{id} requests.
type PutProductHandler struct {
	svc *appsvcs.Services
	ew  *errhttp.Writer
}

// NewPutProductHandler returns a PutProductHandler.
func NewPutProductHandler(svc *appsvcs.Services, ew *errhttp.Writer) *PutProductHandler {
	return &PutProductHandler{svc: svc, ew: ew}
}

// Execute replaces a product's fields. Orders already placed keep their
// purchase price.
//
//	@Summary	Update product
//	@Tags		catalog
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"Product ID"
//	@Param		body	body		ProductRequest	true	"Product"
//	@Success	200		{object}	ProductResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/api/products/{id} [put]
func (h *PutProductHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}
	req, ok := validator.ValidateRequest[ProductRequest](w, r)
	if !ok {
		return
	}
	p, err := h.svc.Catalog.UpdateProduct(r.Context(), id, toProductInput(req))
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toProductResponse(p))
}

// DeleteProductHandler handles DELETE /api/products/{id} requests.
type DeleteProductHandler struct {
	svc *appsvcs.Services
	ew  *errhttp.Writer
}

// NewDeleteProductHandler returns a DeleteProductHandler.
func NewDeleteProductHandler(svc *appsvcs.Services, ew *errhttp.Writer) *DeleteProductHandler {
	return &DeleteProductHandler{svc: svc, ew: ew}
}

// Execute removes a product and its stock row.
//
//	@Summary	Delete product
//	@Tags		catalog
//	@Param		id	path	string	true	"Product ID"
//	@Success	204
//	@Failure	400	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Failure	409	{object}	ErrorResponse	"Product appears on an order"
//	@Router		/api/products/{id} [delete]
func (h *DeleteProductHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}
	if err := h.svc.Catalog.DeleteProduct(r.Context(), id); err != nil {
		h.ew.Write(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListProductsHandler handles GET /api/products requests.
type ListProductsHandler struct {
	svc *appsvcs.Services
	ew  *errhttp.Writer
}

// NewListProductsHandler returns a ListProductsHandler.
func NewListProductsHandler(svc *appsvcs.Services, ew *errhttp.Writer) *ListProductsHandler {
	return &ListProductsHandler{svc: svc, ew: ew}
}

// Execute lists products matching the query filters.
//
//	@Summary	List products
//	@Tags		catalog
//	@Produce	json
//	@Param		category	query		string	false	"Category ID"
//	@Param		supplier	query		string	false	"Supplier ID"
//	@Param		min_price	query		string	false	"Minimum price, inclusive"
//	@Param		max_price	query		string	false	"Maximum price, inclusive"
//	@Param		limit		query		int		false	"Page size (default 20, max 100)"
//	@Param		offset		query		int		false	"Records to skip"
//	@Success	200			{object}	ProductListResponse
//	@Failure	400			{object}	ErrorResponse
//	@Failure	422			{object}	ErrorResponse
//	@Router		/api/products [get]
func (h *ListProductsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	f, err := productFilter(r)
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}
	limit, offset, err := httpx.Page(r)
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}
	products, total, err := h.svc.Catalog.ListProducts(r.Context(), f, repositories.QueryOpts{Limit: limit, Offset: offset})
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}

	resp := ProductListResponse{
		Products: make([]ProductResponse, len(products)),
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	}
	for i, p := range products {
		resp.Products[i] = toProductResponse(p)
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// GetProductHandler handles GET /api/products/{id} requests.
type GetProductHandler struct {
	svc *appsvcs.Services
	ew  *errhttp.Writer
}

// NewGetProductHandler returns a GetProductHandler.
func NewGetProductHandler(svc *appsvcs.Services, ew *errhttp.Writer) *GetProductHandler {
	return &GetProductHandler{svc: svc, ew: ew}
}

// Execute returns one product, served from cache when warm.
//
//	@Summary	Get product
//	@Tags		catalog
//	@Produce	json
//	@Param		id	path		string	true	"Product ID"
//	@Success	200	{object}	ProductResponse
//	@Failure	400	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/products/{id} [get]
func (h *GetProductHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}
	p, err := h.svc.Catalog.GetProduct(r.Context(), id)
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toProductResponse(p))
}

func toProductInput(req *ProductRequest) appsvcs.ProductInput {
	return appsvcs.ProductInput{
		SupplierID: uuid.MustParse(req.SupplierID),
		CategoryID: uuid.MustParse(req.CategoryID),
		Name:       req.Name,
		Price:      req.Price,
	}
}

func productFilter(r *http.Request) (repositories.ProductFilter, error) {
	var (
		f   repositories.ProductFilter
		err error
	)
	if f.CategoryID, err = httpx.QueryUUID(r, "category"); err != nil {
		return f, err
	}
	if f.SupplierID, err = httpx.QueryUUID(r, "supplier"); err != nil {
		return f, err
	}
	if f.MinPrice, err = httpx.QueryDecimal(r, "min_price"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = httpx.QueryDecimal(r, "max_price"); err != nil {
		return f, err
	}
	return f, nil
}
