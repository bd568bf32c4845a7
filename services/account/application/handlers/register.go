package handlers

import (
	"net/http"

	"github.com/ghuser/ordermgmt/pkg/errhttp"
	"github.com/ghuser/ordermgmt/pkg/httpx"
	"github.com/ghuser/ordermgmt/pkg/validator"
	appsvcs "github.com/ghuser/ordermgmt/services/account/application/services"
	"github.com/ghuser/ordermgmt/services/account/domain/models"
)

// RegisterHandler handles POST /api/register requests.
type RegisterHandler struct {
	svc *appsvcs.Services
	ew  *errhttp.Writer
}

// NewRegisterHandler returns a RegisterHandler.
func NewRegisterHandler(svc *appsvcs.Services, ew *errhttp.Writer) *RegisterHandler {
	return &RegisterHandler{svc: svc, ew: ew}
}

// Execute registers an account and sends the verification email.
//
//	@Summary		Register account
//	@Description	Creates an unverified account and emails a verification link.
//	@Tags			accounts
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RegisterRequest	true	"Registration"
//	@Success		201		{object}	AccountResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/api/register [post]
func (h *RegisterHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := validator.ValidateRequest[RegisterRequest](w, r)
	if !ok {
		return
	}
	a, err := h.svc.Account.Register(r.Context(), appsvcs.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Profile: models.Profile{
			FirstName:  req.FirstName,
			LastName:   req.LastName,
			MiddleName: req.MiddleName,
			Age:        req.Age,
		},
	})
	if err != nil {
		h.ew.Write(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toAccountResponse(a))
}
