package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/ghuser/ordermgmt/pkg/auth"
	"github.com/ghuser/ordermgmt/pkg/errhttp"
	"github.com/ghuser/ordermgmt/pkg/logger"
	"github.com/ghuser/ordermgmt/pkg/notify"
	"github.com/ghuser/ordermgmt/services/account/application/api"
	"github.com/ghuser/ordermgmt/services/account/application/handlers"
	appsvcs "github.com/ghuser/ordermgmt/services/account/application/services"
	"github.com/ghuser/ordermgmt/services/account/infrastructure/persistence/memory"
)

type outbox struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (o *outbox) Enqueue(_ context.Context, n notify.Notification) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, n)
}

// lastLink extracts the verification path from the most recent email.
func (o *outbox) lastLink(t *testing.T) string {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.sent) == 0 {
		t.Fatal("no notification sent")
	}
	body := o.sent[len(o.sent)-1].Body
	i := strings.Index(body, "/api/verify-email/")
	if i < 0 {
		t.Fatalf("no verification link in %q", body)
	}
	return strings.Fields(body[i:])[0]
}

func newRouter(t *testing.T) (*chi.Mux, *outbox) {
	t.Helper()
	log := logger.Discard()
	box := &outbox{}
	store := sessions.NewCookieStore(
		[]byte("test-auth-key-must-be-32-bytes!!"),
		[]byte("test-enc-key-must-be-32-bytes!!!"),
	)
	svcs := &appsvcs.Services{
		Account: appsvcs.NewAccountService(memory.NewAccountRepository(), box, "http://test", log),
	}
	r := chi.NewRouter()
	api.Register(r, svcs, errhttp.New(log, false), store, auth.RequireAuth(store, log))
	return r, box
}

func call(t *testing.T, r http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func mustStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, w.Code, w.Body.String())
	}
}

const aliceBody = `{"username":"alice","email":"alice@example.com","password":"correct horse","first_name":"Alice","age":31}`

func TestRegisterVerifyMe(t *testing.T) {
	r, box := newRouter(t)

	w := call(t, r, http.MethodPost, "/api/register", aliceBody)
	mustStatus(t, w, http.StatusCreated)
	if strings.Contains(w.Body.String(), "password") {
		t.Fatalf("response leaks password: %s", w.Body.String())
	}
	var created handlers.AccountResponse
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.EmailVerified || !created.IsActive || created.Age == nil || *created.Age != 31 {
		t.Fatalf("unexpected account: %+v", created)
	}

	mustStatus(t, call(t, r, http.MethodGet, "/api/me", ""), http.StatusUnauthorized)

	link := box.lastLink(t)
	w = call(t, r, http.MethodGet, link, "")
	mustStatus(t, w, http.StatusOK)
	var verified handlers.VerifyEmailResponse
	if err := json.NewDecoder(w.Body).Decode(&verified); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !verified.User.EmailVerified || verified.User.ID != created.ID {
		t.Fatalf("unexpected verify response: %+v", verified)
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie")
	}

	w = call(t, r, http.MethodGet, "/api/me", "", cookies...)
	mustStatus(t, w, http.StatusOK)
	var me handlers.AccountResponse
	if err := json.NewDecoder(w.Body).Decode(&me); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if me.Username != "alice" {
		t.Errorf("unexpected /me: %+v", me)
	}

	mustStatus(t, call(t, r, http.MethodGet, link, ""), http.StatusNotFound)

	w = call(t, r, http.MethodPost, "/api/logout", "", cookies...)
	mustStatus(t, w, http.StatusNoContent)
	expired := w.Result().Cookies()
	if len(expired) == 0 || expired[0].MaxAge >= 0 {
		t.Fatalf("expected an expired session cookie, got %+v", expired)
	}
}

func TestRegisterErrors(t *testing.T) {
	r, _ := newRouter(t)
	mustStatus(t, call(t, r, http.MethodPost, "/api/register", aliceBody), http.StatusCreated)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{`, http.StatusBadRequest},
		{"missing password", `{"username":"bob","email":"bob@example.com"}`, http.StatusUnprocessableEntity},
		{"bad username", `{"username":"b o b","email":"bob@example.com","password":"correct horse"}`, http.StatusUnprocessableEntity},
		{"duplicate username", `{"username":"alice","email":"x@example.com","password":"correct horse"}`, http.StatusConflict},
		{"duplicate email", `{"username":"bob","email":"alice@example.com","password":"correct horse"}`, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mustStatus(t, call(t, r, http.MethodPost, "/api/register", tt.body), tt.want)
		})
	}
}

func TestVerifyUnknownToken(t *testing.T) {
	r, _ := newRouter(t)
	mustStatus(t, call(t, r, http.MethodGet, "/api/verify-email/nope", ""), http.StatusNotFound)
}
