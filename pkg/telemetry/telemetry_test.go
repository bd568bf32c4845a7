package telemetry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/getsentry/sentry-go"
	"go.opentelemetry.io/otel"

	"github.com/ghuser/ordermgmt/pkg/config"
)

func baseConfig() *config.Config {
	return &config.Config{
		ServiceName:    "ordermgmt-api",
		ServiceVersion: "test",
		Environment:    "testing",
	}
}

func scrape(t *testing.T, handler http.Handler) string {
	t.Helper()
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.Contains(ct, "text/plain") {
		t.Errorf("expected text/plain content-type, got %q", ct)
	}
	body, err := io.ReadAll(rr.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	return string(body)
}

func TestSetup_ExportsOrderCountersWithNamespace(t *testing.T) {
	shutdown, handler, err := Setup(context.Background(), baseConfig())
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer shutdown(context.Background()) //nolint:errcheck

	created, err := otel.Meter("github.com/ghuser/ordermgmt/services/order").Int64Counter("orders.created")
	if err != nil {
		t.Fatalf("counter: %v", err)
	}
	created.Add(context.Background(), 2)

	body := scrape(t, handler)
	if !strings.Contains(body, "orders_created") {
		t.Errorf("orders.created missing from /metrics:\n%s", body)
	}
	if !strings.Contains(body, `service_namespace="ordermgmt"`) {
		t.Errorf("service namespace missing from target_info:\n%s", body)
	}
	if !strings.Contains(body, `service_name="ordermgmt-api"`) {
		t.Errorf("service name missing from target_info:\n%s", body)
	}
}

func TestSetup_ShutdownWithoutOtlp(t *testing.T) {
	shutdown, _, err := Setup(context.Background(), baseConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetupSentry_EmptyDSNIsNoop(t *testing.T) {
	if err := SetupSentry(baseConfig()); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}

func TestScrubEvent_RemovesBuyerIdentity(t *testing.T) {
	event := &sentry.Event{
		User: sentry.User{ID: "buyer-1", Email: "buyer@example.com", IPAddress: "10.0.0.7", Username: "buyer"},
		Request: &sentry.Request{
			URL:     "https://shop.example.com/api/orders",
			Method:  http.MethodPost,
			Cookies: "session=abc",
			Data:    `{"email":"buyer@example.com","password":"hunter22"}`,
			Headers: map[string]string{
				"cookie":          "session=abc",
				"Authorization":   "Bearer x",
				"Idempotency-Key": "k-1",
				"Content-Type":    "application/json",
			},
		},
	}

	got := scrubEvent(event, nil)

	if got.User.Email != "" || got.User.IPAddress != "" || got.User.Username != "" {
		t.Errorf("user not scrubbed: %+v", got.User)
	}
	if got.User.ID != "buyer-1" {
		t.Errorf("buyer id should survive for grouping, got %q", got.User.ID)
	}
	if got.Request.Cookies != "" || got.Request.Data != "" {
		t.Errorf("request not scrubbed: cookies=%q data=%q", got.Request.Cookies, got.Request.Data)
	}
	for _, h := range []string{"cookie", "Authorization", "Idempotency-Key"} {
		if _, ok := got.Request.Headers[h]; ok {
			t.Errorf("header %s kept", h)
		}
	}
	if got.Request.Headers["Content-Type"] != "application/json" {
		t.Error("harmless headers must be kept")
	}
	if got.Request.URL == "" {
		t.Error("URL must be kept")
	}
}

func TestScrubEvent_NilRequest(t *testing.T) {
	got := scrubEvent(&sentry.Event{User: sentry.User{Email: "a@b.c"}}, nil)
	if got == nil || got.User.Email != "" {
		t.Fatalf("unexpected %+v", got)
	}
}
