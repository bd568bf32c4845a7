package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/ghuser/ordermgmt/pkg/auth"
	"github.com/ghuser/ordermgmt/pkg/errhttp"
	"github.com/ghuser/ordermgmt/pkg/httpx"
	appsvcs "github.com/ghuser/ordermgmt/services/account/application/services"
)

// VerifyEmailHandler handles GET /api/verify-email/{token} requests.
type VerifyEmailHandler struct {
	svc   *appsvcs.Services
	ew    *errhttp.Writer
	store sessions.Store
}

// NewVerifyEmailHandler returns a VerifyEmailHandler. The session store is
// used to sign the verified user in.
func NewVerifyEmailHandler(svc *appsvcs.Services, ew *errhttp.Writer, store sessions.Store) *VerifyEmailHandler {
	return &VerifyEmailHandler{svc: svc, ew: ew, store: store}
}

// Execute consumes a verification token and starts a session for its owner.
//
//	@Summary	Verify email
//	@Tags		accounts
//	@Produce	json
//	@Param		token	path		string	true	"Verification token"
//	@Success	200		{object}	VerifyEmailResponse
//	@Failure	404		{object}	ErrorResponse
//	@Router		/api/verify-email/{token} [get]
func (h *VerifyEmailHandler) Execute(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Account.Verify(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}
	if err := auth.StartSession(h.store, w, r, a.User.ID); err != nil {
		h.ew.Write(w, r, fmt.Errorf("start session: %w", err))
		return
	}
	httpx.JSON(w, http.StatusOK, VerifyEmailResponse{
		Message: "email verified",
		User:    toAccountResponse(a),
	})
}
