package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Pagination defaults for list endpoints.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ErrBadParam marks a malformed path or query parameter.
var ErrBadParam = errors.New("bad request parameter")

// URLParamUUID parses the chi URL parameter name as a UUID.
func URLParamUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s must be a valid UUID", ErrBadParam, name)
	}
	return id, nil
}

// QueryUUID parses an optional UUID query parameter. It returns nil when the
// parameter is absent.
func QueryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a valid UUID", ErrBadParam, name)
	}
	return &id, nil
}

// QueryDecimal parses an optional decimal query parameter. It returns nil
// when the parameter is absent.
func QueryDecimal(r *http.Request, name string) (*decimal.Decimal, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a decimal number", ErrBadParam, name)
	}
	return &d, nil
}

// Page reads limit and offset query parameters. limit defaults to
// DefaultLimit and is capped at MaxLimit.
func Page(r *http.Request) (limit, offset int, err error) {
	limit, err = queryInt(r, "limit", DefaultLimit)
	if err != nil {
		return 0, 0, err
	}
	offset, err = queryInt(r, "offset", 0)
	if err != nil {
		return 0, 0, err
	}
	if limit <= 0 || offset < 0 {
		return 0, 0, fmt.Errorf("%w: limit must be positive and offset non-negative", ErrBadParam)
	}
	return min(limit, MaxLimit), offset, nil
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrBadParam, name)
	}
	return n, nil
}
