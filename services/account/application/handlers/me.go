package handlers

import (
	"net/http"

	"github.com/ghuser/ordermgmt/pkg/auth"
	"github.com/ghuser/ordermgmt/pkg/errhttp"
	"github.com/ghuser/ordermgmt/pkg/httpx"
	appsvcs "github.com/ghuser/ordermgmt/services/account/application/services"
)

// MeHandler handles GET /api/me requests.
type MeHandler struct {
	svc *appsvcs.Services
	ew  *errhttp.Writer
}

// NewMeHandler returns a MeHandler.
func NewMeHandler(svc *appsvcs.Services, ew *errhttp.Writer) *MeHandler {
	return &MeHandler{svc: svc, ew: ew}
}

// Execute returns the signed-in user's account.
//
//	@Summary	Current user
//	@Tags		accounts
//	@Security	SessionCookie
//	@Produce	json
//	@Success	200	{object}	AccountResponse
//	@Failure	401	{object}	ErrorResponse
//	@Failure	403	{object}	ErrorResponse
//	@Router		/api/me [get]
func (h *MeHandler) Execute(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.BuyerIDFromCtx(r.Context())
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}
	a, err := h.svc.Account.Get(r.Context(), userID)
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAccountResponse(a))
}
