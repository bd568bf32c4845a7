package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/ghuser/ordermgmt/pkg/auth"
	"github.com/ghuser/ordermgmt/pkg/errhttp"
)

// LogoutHandler handles POST /api/logout requests.
type LogoutHandler struct {
	ew    *errhttp.Writer
	store sessions.Store
}

// NewLogoutHandler returns a LogoutHandler.
func NewLogoutHandler(ew *errhttp.Writer, store sessions.Store) *LogoutHandler {
	return &LogoutHandler{ew: ew, store: store}
}

// Execute expires the caller's session.
//
//	@Summary	Log out
//	@Tags		accounts
//	@Security	SessionCookie
//	@Success	204
//	@Failure	401	{object}	ErrorResponse
//	@Router		/api/logout [post]
func (h *LogoutHandler) Execute(w http.ResponseWriter, r *http.Request) {
	if err := auth.EndSession(h.store, w, r); err != nil {
		h.ew.Write(w, r, fmt.Errorf("end session: %w", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
