package handlers

import (
	"net/http"

	"github.com/ghuser/ordermgmt/pkg/errhttp"
	"github.com/ghuser/ordermgmt/pkg/httpx"
	"github.com/ghuser/ordermgmt/pkg/validator"
	appsvcs "github.com/ghuser/ordermgmt/services/catalog/application/services"
	"github.com/ghuser/ordermgmt/services/catalog/domain/repositories"
)

// PostSupplierHandler handles POST /api/suppliers requests.
type PostSupplierHandler struct {
	svc *appsvcs.Services
	ew  *errhttp.Writer
}

// NewPostSupplierHandler returns a PostSupplierHandler.
func NewPostSupplierHandler(svc *appsvcs.Services, ew *errhttp.Writer) *PostSupplierHandler {
	return &PostSupplierHandler{svc: svc, ew: ew}
}

// Execute creates a supplier.
//
//	@Summary	Create supplier
//	@Tags		catalog
//	@Accept		json
//	@Produce	json
//	@Param		body	body		CreateSupplierRequest	true	"Supplier"
//	@Success	201		{object}	SupplierResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/api/suppliers [post]
func (h *PostSupplierHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := validator.ValidateRequest[CreateSupplierRequest](w, r)
	if !ok {
		return
	}
	sup, err := h.svc.Catalog.CreateSupplier(r.Context(), appsvcs.SupplierInput{
		Name:     req.Name,
		Country:  req.Country,
		City:     req.City,
		Street:   req.Street,
		Building: req.Building,
	})
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}
	httpx.Created(w, "/api/suppliers/"+sup.ID.String(), toSupplierResponse(sup))
}

// ListSuppliersHandler handles GET /api/suppliers requests.
type ListSuppliersHandler struct {
	svc *appsvcs.Services
	ew  *errhttp.Writer
}

// NewListSuppliersHandler returns a ListSuppliersHandler.
func NewListSuppliersHandler(svc *appsvcs.Services, ew *errhttp.Writer) *ListSuppliersHandler {
	return &ListSuppliersHandler{svc: svc, ew: ew}
}

// Execute lists suppliers, optionally filtered by name.
//
//	@Summary	List suppliers
//	@Tags		catalog
//	@Produce	json
//	@Param		search	query		string	false	"Case-insensitive name substring"
//	@Param		limit	query		int		false	"Page size (default 20, max 100)"
//	@Param		offset	query		int		false	"Records to skip"
//	@Success	200		{object}	SupplierListResponse
//	@Failure	400		{object}	ErrorResponse
//	@Router		/api/suppliers [get]
func (h *ListSuppliersHandler) Execute(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := httpx.Page(r)
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}
	sups, total, err := h.svc.Catalog.ListSuppliers(r.Context(), r.URL.Query().Get("search"),
		repositories.QueryOpts{Limit: limit, Offset: offset})
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}

	resp := SupplierListResponse{
		Suppliers: make([]SupplierResponse, len(sups)),
		Total:     total,
		Limit:     limit,
		Offset:    offset,
	}
	for i, s := range sups {
		resp.Suppliers[i] = toSupplierResponse(s)
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// GetSupplierHandler handles GET /api/suppliers/{id} requests.
type GetSupplierHandler struct {
	svc *appsvcs.Services
	ew  *errhttp.Writer
}

// NewGetSupplierHandler returns a GetSupplierHandler.
func NewGetSupplierHandler(svc *appsvcs.Services, ew *errhttp.Writer) *GetSupplierHandler {
	return &GetSupplierHandler{svc: svc, ew: ew}
}

// Execute returns one supplier.
//
//	@Summary	Get supplier
//	@Tags		catalog
//	@Produce	json
//	@Param		id	path		string	true	"Supplier ID"
//	@Success	200	{object}	SupplierResponse
//	@Failure	400	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/suppliers/{id} [get]
func (h *GetSupplierHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}
	sup, err := h.svc.Catalog.GetSupplier(r.Context(), id)
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toSupplierResponse(sup))
}

// PutSupplierHandler handles PUT /api/suppliers/{id} requests.
type PutSupplierHandler struct {
	svc *appsvcs.Services
	ew  *errhttp.Writer
}

// NewPutSupplierHandler returns a PutSupplierHandler.
func NewPutSupplierHandler(svc *appsvcs.Services, ew *errhttp.Writer) *PutSupplierHandler {
	return &PutSupplierHandler{svc: svc, ew: ew}
}

// Execute replaces a supplier's name and address.
//
//	@Summary	Update supplier
//	@Tags		catalog
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"Supplier ID"
//	@Param		body	body		CreateSupplierRequest	true	"Supplier"
//	@Success	200		{object}	SupplierResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/api/suppliers/{id} [put]
func (h *PutSupplierHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}
	req, ok := validator.ValidateRequest[CreateSupplierRequest](w, r)
	if !ok {
		return
	}
	sup, err := h.svc.Catalog.UpdateSupplier(r.Context(), id, appsvcs.SupplierInput{
		Name:     req.Name,
		Country:  req.Country,
		City:     req.City,
		Street:   req.Street,
		Building: req.Building,
	})
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toSupplierResponse(sup))
}

// DeleteSupplierHandler handles DELETE /api/suppliers/{id} requests.
type DeleteSupplierHandler struct {
	svc *appsvcs.Services
	ew  *errhttp.Writer
}

// NewDeleteSupplierHandler returns a DeleteSupplierHandler.
func NewDeleteSupplierHandler(svc *appsvcs.Services, ew *errhttp.Writer) *DeleteSupplierHandler {
	return &DeleteSupplierHandler{svc: svc, ew: ew}
}

// Execute removes a supplier without products.
//
//	@Summary	Delete supplier
//	@Tags		catalog
//	@Param		id	path	string	true	"Supplier ID"
//	@Success	204
//	@Failure	400	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Failure	409	{object}	ErrorResponse	"Supplier still has products"
//	@Router		/api/suppliers/{id} [delete]
func (h *DeleteSupplierHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}
	if err := h.svc.Catalog.DeleteSupplier(r.Context(), id); err != nil {
		h.ew.Write(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
