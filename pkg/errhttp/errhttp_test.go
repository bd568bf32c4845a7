package errhttp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/ghuser/ordermgmt/pkg/auth"
	"github.com/ghuser/ordermgmt/pkg/database"
	"github.com/ghuser/ordermgmt/pkg/httpx"
	"github.com/ghuser/ordermgmt/pkg/logger"
	accountdomain "github.com/ghuser/ordermgmt/services/account/domain"
	catalogdomain "github.com/ghuser/ordermgmt/services/catalog/domain"
	orderdomain "github.com/ghuser/ordermgmt/services/order/domain"
)

func TestWriteError_StatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"ErrOrderNotFound", orderdomain.ErrOrderNotFound, http.StatusNotFound},
		{"order ErrProductNotFound", orderdomain.ErrProductNotFound, http.StatusNotFound},
		{"catalog ErrSupplierNotFound", catalogdomain.ErrSupplierNotFound, http.StatusNotFound},
		{"account ErrInvalidToken", accountdomain.ErrInvalidToken, http.StatusNotFound},
		{"ErrInvalidArgument", orderdomain.ErrInvalidArgument, http.StatusUnprocessableEntity},
		{"catalog ErrInvalidInput", catalogdomain.ErrInvalidInput, http.StatusUnprocessableEntity},
		{"InsufficientStockError", &orderdomain.InsufficientStockError{}, http.StatusConflict},
		{"ErrStockAlreadyExists", catalogdomain.ErrStockAlreadyExists, http.StatusConflict},
		{"ErrSupplierInUse", catalogdomain.ErrSupplierInUse, http.StatusConflict},
		{"wrapped ErrProductInUse", fmt.Errorf("delete product: %w", catalogdomain.ErrProductInUse), http.StatusConflict},
		{"ErrUsernameTaken", accountdomain.ErrUsernameTaken, http.StatusConflict},
		{"ErrBuyerIDNotFound", auth.ErrBuyerIDNotFound, http.StatusUnauthorized},
		{"ErrBadParam", fmt.Errorf("%w: id", httpx.ErrBadParam), http.StatusBadRequest},
		{"ErrAccountInactive", accountdomain.ErrAccountInactive, http.StatusForbidden},
		{"ErrRetryable", fmt.Errorf("%w: deadlock", database.ErrRetryable), http.StatusServiceUnavailable},
		{"wrapped ErrOrderNotFound", fmt.Errorf("get order: %w", orderdomain.ErrOrderNotFound), http.StatusNotFound},
		{"wrapped ErrInvalidArgument", fmt.Errorf("%w: empty", orderdomain.ErrInvalidArgument), http.StatusUnprocessableEntity},
		{"unknown error", errors.New("something unexpected"), http.StatusInternalServerError},
		{"generic wrapped error", fmt.Errorf("context: %w", errors.New("db down")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestWriteError_JSONBody(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, orderdomain.ErrOrderNotFound)

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body is not valid JSON: %v", err)
	}
	if body["error"] != "order not found" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestWriteError_InsufficientStockBody(t *testing.T) {
	pid := uuid.New()
	w := httptest.NewRecorder()
	WriteError(w, fmt.Errorf("create order: %w", &orderdomain.InsufficientStockError{
		ProductID: pid, Available: 6, Requested: 7,
	}))

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	var body InsufficientStockResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.ProductID != pid || body.Available != 6 || body.Requested != 7 || body.Error != "insufficient stock" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestWriteError_ContentType(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, orderdomain.ErrOrderNotFound)

	ct := w.Header().Get("Content-Type")
	if ct == "" {
		t.Fatal("Content-Type header not set")
	}
}

func TestWriter_HidesInternalErrorsInProduction(t *testing.T) {
	var logs bytes.Buffer
	ew := New(logger.NewWithWriter(&logs, "info"), true)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	ew.Write(w, r, errors.New("pq: relation \"orders\" does not exist"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "relation") {
		t.Fatalf("internal detail leaked: %s", w.Body.String())
	}
	if !strings.Contains(logs.String(), "relation") {
		t.Fatalf("expected the error to be logged, got %s", logs.String())
	}
}

func TestWriter_ShowsClientErrorsInProduction(t *testing.T) {
	ew := New(logger.Discard(), true)
	w := httptest.NewRecorder()
	ew.Write(w, httptest.NewRequest(http.MethodGet, "/", nil), orderdomain.ErrOrderNotFound)

	if !strings.Contains(w.Body.String(), "order not found") {
		t.Fatalf("expected client error message, got %s", w.Body.String())
	}
}
