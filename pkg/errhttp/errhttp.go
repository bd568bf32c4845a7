// Package errhttp maps domain sentinel errors to HTTP status codes.
// Add a case to mapErrorToStatus for each new domain sentinel error.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/ghuser/ordermgmt/pkg/auth"
	"github.com/ghuser/ordermgmt/pkg/database"
	"github.com/ghuser/ordermgmt/pkg/httpx"
	"github.com/ghuser/ordermgmt/pkg/logger"
	accountdomain "github.com/ghuser/ordermgmt/services/account/domain"
	catalogdomain "github.com/ghuser/ordermgmt/services/catalog/domain"
	orderdomain "github.com/ghuser/ordermgmt/services/order/domain"
)

// InsufficientStockResponse is the 409 body for a rejected reservation.
type InsufficientStockResponse struct {
	Error     string    `json:"error"      example:"insufficient stock"`
	ProductID uuid.UUID `json:"product_id" example:"123e4567-e89b-12d3-a456-426614174000"`
	Available int       `json:"available"  example:"6"`
	Requested int       `json:"requested"  example:"7"`
} // @name InsufficientStockResponse

// Writer writes error responses. 5xx errors are logged; in production their
// message is replaced with the status text.
type Writer struct {
	log          logger.Logger
	isProduction bool
}

// New returns a Writer.
func New(log logger.Logger, isProduction bool) *Writer {
	return &Writer{log: log, isProduction: isProduction}
}

// Write maps err to a status code and writes a JSON error response.
func (ew *Writer) Write(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToStatus(err)
	if status >= http.StatusInternalServerError {
		ew.log.ErrorContext(r.Context(), "request failed", "status", status, "error", err)
	}
	writeError(w, err, status, ew.isProduction)
}

// WriteError maps err to an HTTP status code and writes a JSON error response.
// Uses errors.Is() so wrapped sentinel errors are matched correctly.
// Defaults to 500 Internal Server Error for unrecognized errors.
func WriteError(w http.ResponseWriter, err error) {
	writeError(w, err, mapErrorToStatus(err), false)
}

func writeError(w http.ResponseWriter, err error, status int, isProduction bool) {
	var ise *orderdomain.InsufficientStockError
	if errors.As(err, &ise) {
		httpx.JSON(w, status, InsufficientStockResponse{
			Error:     orderdomain.ErrInsufficientStock.Error(),
			ProductID: ise.ProductID,
			Available: ise.Available,
			Requested: ise.Requested,
		})
		return
	}
	httpx.JSONError(w, status, httpx.SafeError(err, status, isProduction))
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, orderdomain.ErrOrderNotFound),
		errors.Is(err, orderdomain.ErrProductNotFound),
		errors.Is(err, catalogdomain.ErrSupplierNotFound),
		errors.Is(err, catalogdomain.ErrCategoryNotFound),
		errors.Is(err, catalogdomain.ErrProductNotFound),
		errors.Is(err, catalogdomain.ErrStockNotFound),
		errors.Is(err, accountdomain.ErrUserNotFound),
		errors.Is(err, accountdomain.ErrInvalidToken):
		return http.StatusNotFound // 404
	case errors.Is(err, orderdomain.ErrInsufficientStock),
		errors.Is(err, catalogdomain.ErrStockAlreadyExists),
		errors.Is(err, catalogdomain.ErrSupplierInUse),
		errors.Is(err, catalogdomain.ErrProductInUse),
		errors.Is(err, accountdomain.ErrUsernameTaken),
		errors.Is(err, accountdomain.ErrEmailTaken):
		return http.StatusConflict // 409
	case errors.Is(err, orderdomain.ErrInvalidArgument),
		errors.Is(err, catalogdomain.ErrInvalidInput),
		errors.Is(err, accountdomain.ErrInvalidInput):
		return http.StatusUnprocessableEntity // 422
	case errors.Is(err, httpx.ErrBadParam):
		return http.StatusBadRequest // 400
	case errors.Is(err, auth.ErrBuyerIDNotFound):
		return http.StatusUnauthorized // 401
	case errors.Is(err, accountdomain.ErrAccountInactive):
		return http.StatusForbidden // 403
	case errors.Is(err, database.ErrRetryable):
		return http.StatusServiceUnavailable // 503
	default:
		return http.StatusInternalServerError // 500
	}
}
