package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestURLParamUUID(t *testing.T) {
	id := uuid.New()
	r := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", id.String())
	got, err := URLParamUUID(r, "id")
	if err != nil || got != id {
		t.Fatalf("got %s, %v", got, err)
	}

	r = withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", "nope")
	if _, err := URLParamUUID(r, "id"); !errors.Is(err, ErrBadParam) {
		t.Fatalf("expected ErrBadParam, got %v", err)
	}
}

func TestPage(t *testing.T) {
	tests := []struct {
		query      string
		wantLimit  int
		wantOffset int
		wantErr    bool
	}{
		{"", DefaultLimit, 0, false},
		{"?limit=5&offset=10", 5, 10, false},
		{"?limit=1000", MaxLimit, 0, false},
		{"?limit=0", 0, 0, true},
		{"?offset=-1", 0, 0, true},
		{"?limit=abc", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			limit, offset, err := Page(httptest.NewRequest(http.MethodGet, "/"+tt.query, nil))
			if tt.wantErr {
				if !errors.Is(err, ErrBadParam) {
					t.Fatalf("expected ErrBadParam, got %v", err)
				}
				return
			}
			if err != nil || limit != tt.wantLimit || offset != tt.wantOffset {
				t.Fatalf("got limit=%d offset=%d err=%v", limit, offset, err)
			}
		})
	}
}

func TestQueryUUID(t *testing.T) {
	if got, err := QueryUUID(httptest.NewRequest(http.MethodGet, "/", nil), "category"); got != nil || err != nil {
		t.Fatalf("absent: got %v, %v", got, err)
	}
	id := uuid.New()
	got, err := QueryUUID(httptest.NewRequest(http.MethodGet, "/?category="+id.String(), nil), "category")
	if err != nil || got == nil || *got != id {
		t.Fatalf("got %v, %v", got, err)
	}
	if _, err := QueryUUID(httptest.NewRequest(http.MethodGet, "/?category=x", nil), "category"); !errors.Is(err, ErrBadParam) {
		t.Fatalf("expected ErrBadParam, got %v", err)
	}
}

func TestQueryDecimal(t *testing.T) {
	got, err := QueryDecimal(httptest.NewRequest(http.MethodGet, "/?min_price=9.50", nil), "min_price")
	if err != nil || got == nil || got.String() != "9.5" {
		t.Fatalf("got %v, %v", got, err)
	}
	if _, err := QueryDecimal(httptest.NewRequest(http.MethodGet, "/?min_price=cheap", nil), "min_price"); !errors.Is(err, ErrBadParam) {
		t.Fatalf("expected ErrBadParam, got %v", err)
	}
}
