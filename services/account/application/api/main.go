package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/ghuser/ordermgmt/pkg/app"
	"github.com/ghuser/ordermgmt/pkg/auth"
	"github.com/ghuser/ordermgmt/pkg/errhttp"
	"github.com/ghuser/ordermgmt/services/account/application/handlers"
	appsvcs "github.com/ghuser/ordermgmt/services/account/application/services"
)

// AccountRoutes registers account endpoints on the provided chi router.
func AccountRoutes(r chi.Router, a *app.Application) {
	Register(r, appsvcs.New(a), a.Errors, a.SessionStore, auth.RequireAuth(a.SessionStore, a.Logger))
}

// Register mounts the account endpoints. /api/me and /api/logout require a session.
func Register(
	r chi.Router,
	svcs *appsvcs.Services,
	ew *errhttp.Writer,
	store sessions.Store,
	requireAuth func(http.Handler) http.Handler,
) {
	r.Post("/api/register", handlers.NewRegisterHandler(svcs, ew).Execute)
	r.Get("/api/verify-email/{token}", handlers.NewVerifyEmailHandler(svcs, ew, store).Execute)
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/api/me", handlers.NewMeHandler(svcs, ew).Execute)
		r.Post("/api/logout", handlers.NewLogoutHandler(ew, store).Execute)
	})
}
