package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/ordermgmt/pkg/app"
	"github.com/ghuser/ordermgmt/pkg/auth"
	"github.com/ghuser/ordermgmt/pkg/errhttp"
	"github.com/ghuser/ordermgmt/services/catalog/application/handlers"
	appsvcs "github.com/ghuser/ordermgmt/services/catalog/application/services"
)

// CatalogRoutes registers catalog endpoints on the provided chi router.
func CatalogRoutes(r chi.Router, a *app.Application) {
	Register(r, appsvcs.New(a), a.Errors, auth.RequireAuth(a.SessionStore, a.Logger))
}

// Register mounts the catalog endpoints. Only stock reads require a session.
func Register(
	r chi.Router,
	svcs *appsvcs.Services,
	ew *errhttp.Writer,
	requireAuth func(http.Handler) http.Handler,
) {
	r.Route("/api/suppliers", func(r chi.Router) {
		r.Post("/", handlers.NewPostSupplierHandler(svcs, ew).Execute)
		r.Get("/", handlers.NewListSuppliersHandler(svcs, ew).Execute)
		r.Get("/{id}", handlers.NewGetSupplierHandler(svcs, ew).Execute)
		r.Put("/{id}", handlers.NewPutSupplierHandler(svcs, ew).Execute)
		r.Delete("/{id}", handlers.NewDeleteSupplierHandler(svcs, ew).Execute)
	})
	r.Route("/api/categories", func(r chi.Router) {
		r.Post("/", handlers.NewPostCategoryHandler(svcs, ew).Execute)
		r.Get("/", handlers.NewListCategoriesHandler(svcs, ew).Execute)
		r.Get("/{id}", handlers.NewGetCategoryHandler(svcs, ew).Execute)
	})
	r.Route("/api/products", func(r chi.Router) {
		r.Post("/", handlers.NewPostProductHandler(svcs, ew).Execute)
		r.Get("/", handlers.NewListProductsHandler(svcs, ew).Execute)
		r.Get("/{id}", handlers.NewGetProductHandler(svcs, ew).Execute)
		r.Put("/{id}", handlers.NewPutProductHandler(svcs, ew).Execute)
		r.Delete("/{id}", handlers.NewDeleteProductHandler(svcs, ew).Execute)
	})
	r.Route("/api/stocks", func(r chi.Router) {
		r.Post("/", handlers.NewPostStockHandler(svcs, ew).Execute)
		r.Put("/{productID}", handlers.NewPutStockHandler(svcs, ew).Execute)
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", handlers.NewListStocksHandler(svcs, ew).Execute)
			r.Get("/{productID}", handlers.NewGetStockHandler(svcs, ew).Execute)
		})
	})
}
