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

// PostCategoryHandler handles POST /api/categories requests.
type PostCategoryHandler struct {
	svc *appsvcs.Services
	ew  *errhttp.Writer
}

// NewPostCategoryHandler returns a PostCategoryHandler.
func NewPostCategoryHandler(svc *appsvcs.Services, ew *errhttp.Writer) *PostCategoryHandler {
	return &PostCategoryHandler{svc: svc, ew: ew}
}

// Execute creates a category.
//
//	@Summary	Create category
//	@Tags		catalog
//	@Accept		json
//	@Produce	json
//	@Param		body	body		CreateCategoryRequest	true	"Category"
//	@Success	201		{object}	CategoryResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse	"Parent category not found"
//	@Failure	422		{object}	ErrorResponse
//	@Router		/api/categories [post]
func (h *PostCategoryHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := validator.ValidateRequest[CreateCategoryRequest](w, r)
	if !ok {
		return
	}
	var parent *uuid.UUID
	if req.ParentID != nil {
		id := uuid.MustParse(*req.ParentID)
		parent = &id
	}
	c, err := h.svc.Catalog.CreateCategory(r.Context(), req.Name, parent)
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}
	httpx.Created(w, "/api/categories/"+c.ID.String(), toCategoryResponse(c))
}

// ListCategoriesHandler handles GET /api/categories requests.
type ListCategoriesHandler struct {
	svc *appsvcs.Services
	ew  *errhttp.Writer
}

// NewListCategoriesHandler returns a ListCategoriesHandler.
func NewListCategoriesHandler(svc *appsvcs.Services, ew *errhttp.Writer) *ListCategoriesHandler {
	return &ListCategoriesHandler{svc: svc, ew: ew}
}

// Execute lists categories.
//
//	@Summary	List categories
//	@Tags		catalog
//	@Produce	json
//	@Param		limit	query		int	false	"Page size (default 20, max 100)"
//	@Param		offset	query		int	false	"Records to skip"
//	@Success	200		{object}	CategoryListResponse
//	@Failure	400		{object}	ErrorResponse
//	@Router		/api/categories [get]
func (h *ListCategoriesHandler) Execute(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := httpx.Page(r)
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}
	cats, total, err := h.svc.Catalog.ListCategories(r.Context(), repositories.QueryOpts{Limit: limit, Offset: offset})
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}

	resp := CategoryListResponse{
		Categories: make([]CategoryResponse, len(cats)),
		Total:      total,
		Limit:      limit,
		Offset:     offset,
	}
	for i, c := range cats {
		resp.Categories[i] = toCategoryResponse(c)
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// GetCategoryHandler handles GET /api/categories/{id} requests.
type GetCategoryHandler struct {
	svc *appsvcs.Services
	ew  *errhttp.Writer
}

// NewGetCategoryHandler returns a GetCategoryHandler.
func NewGetCategoryHandler(svc *appsvcs.Services, ew *errhttp.Writer) *GetCategoryHandler {
	return &GetCategoryHandler{svc: svc, ew: ew}
}

// Execute returns one category.
//
//	@Summary	Get category
//	@Tags		catalog
//	@Produce	json
//	@Param		id	path		string	true	"Category ID"
//	@Success	200	{object}	CategoryResponse
//	@Failure	400	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/categories/{id} [get]
func (h *GetCategoryHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}
	c, err := h.svc.Catalog.GetCategory(r.Context(), id)
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toCategoryResponse(c))
}
