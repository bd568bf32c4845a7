package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/ordermgmt/pkg/app"
	"github.com/ghuser/ordermgmt/pkg/auth"
	"github.com/ghuser/ordermgmt/pkg/errhttp"
	"github.com/ghuser/ordermgmt/pkg/logger"
	"github.com/ghuser/ordermgmt/services/order/application/handlers"
	appsvcs "github.com/ghuser/ordermgmt/services/order/application/services"
)

// OrderRoutes registers order endpoints on the provided chi router.
func OrderRoutes(r chi.Router, a *app.Application) {
	Register(r, appsvcs.New(a), a.Errors, a.Logger, auth.RequireAuth(a.SessionStore, a.Logger))
}

// Register mounts the order endpoints behind requireAuth.
func Register(
	r chi.Router,
	svcs *appsvcs.Services,
	ew *errhttp.Writer,
	log logger.Logger,
	requireAuth func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Route("/api/orders", func(r chi.Router) {
			r.Post("/", handlers.NewPostOrderHandler(svcs, ew, log).Execute)
			r.Get("/", handlers.NewListOrdersHandler(svcs, ew).Execute)
			r.Get("/{id}", handlers.NewGetOrderHandler(svcs, ew).Execute)
			r.Put("/{id}", handlers.NewPutOrderHandler(svcs, ew).Execute)
			r.Delete("/{id}", handlers.NewDeleteOrderHandler(svcs, ew).Execute)
			r.Post("/{id}/reorder", handlers.NewPostReorderHandler(svcs, ew).Execute)
		})
	})
}
