package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/ghuser/ordermgmt/pkg/logger"
)

// newTestStore returns a gorilla CookieStore (no Redis required) for unit tests.
// In production the RedisStore is used; the sessions.Store interface is identical.
func newTestStore() sessions.Store {
	return sessions.NewCookieStore(
		[]byte("test-auth-key-must-be-32-bytes!!"),
		[]byte("test-enc-key-must-be-32-bytes!!!"),
	)
}

// newTestLogger creates a logger that discards output.
func newTestLogger() logger.Logger {
	return logger.Discard()
}

// requestWithSession builds an *http.Request that carries a valid session
// cookie containing the given buyerID.
func requestWithSession(t *testing.T, store sessions.Store, buyerID uuid.UUID) *http.Request {
	t.Helper()

	// Write the session cookie into a recorder, then copy it to the real request.
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/orders", nil)

	session, err := store.Get(r, sessionName)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	session.Values[sessionBuyerIDKey] = buyerID.String()
	if err := session.Save(r, w); err != nil {
		t.Fatalf("save session: %v", err)
	}

	// Copy Set-Cookie header from recorder to a fresh request.
	req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestRequireAuth_ValidSession(t *testing.T) {
	store := newTestStore()
	log := newTestLogger()
	buyerID := uuid.New()

	var capturedBuyerID uuid.UUID
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedBuyerID, _ = BuyerIDFromCtx(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	r := requestWithSession(t, store, buyerID)
	w := httptest.NewRecorder()
	RequireAuth(store, log)(next).ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if capturedBuyerID != buyerID {
		t.Fatalf("expected BuyerID %v in context, got %v", buyerID, capturedBuyerID)
	}
}

func TestRequireAuth_MissingCookie(t *testing.T) {
	store := newTestStore()
	log := newTestLogger()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	})

	r := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
	w := httptest.NewRecorder()
	RequireAuth(store, log)(next).ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireAuth_SessionMissingBuyerID(t *testing.T) {
	store := newTestStore()
	log := newTestLogger()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	})

	// Build a session with no buyer_id value.
	writeReq := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
	w1 := httptest.NewRecorder()
	session, _ := store.Get(writeReq, sessionName)
	// intentionally no session.Values[sessionBuyerIDKey]
	_ = session.Save(writeReq, w1)

	r := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
	for _, c := range w1.Result().Cookies() {
		r.AddCookie(c)
	}

	w := httptest.NewRecorder()
	RequireAuth(store, log)(next).ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireAuth_InvalidBuyerIDInSession(t *testing.T) {
	store := newTestStore()
	log := newTestLogger()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	})

	writeReq := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
	w1 := httptest.NewRecorder()
	session, _ := store.Get(writeReq, sessionName)
	session.Values[sessionBuyerIDKey] = "not-a-valid-uuid"
	_ = session.Save(writeReq, w1)

	r := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
	for _, c := range w1.Result().Cookies() {
		r.AddCookie(c)
	}

	w := httptest.NewRecorder()
	RequireAuth(store, log)(next).ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestStartSession_ThenRequireAuth(t *testing.T) {
	store := newTestStore()
	buyerID := uuid.New()

	loginReq := httptest.NewRequest(http.MethodGet, "/api/accounts/verify-email/token", nil)
	loginRec := httptest.NewRecorder()
	if err := StartSession(store, loginRec, loginReq, buyerID); err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	r := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	for _, c := range loginRec.Result().Cookies() {
		r.AddCookie(c)
	}

	var got uuid.UUID
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = BuyerIDFromCtx(r.Context())
	})
	w := httptest.NewRecorder()
	RequireAuth(store, newTestLogger())(next).ServeHTTP(w, r)

	if got != buyerID {
		t.Fatalf("expected %v, got %v", buyerID, got)
	}
}

func TestEndSession_ExpiresCookie(t *testing.T) {
	store := newTestStore()
	r := requestWithSession(t, store, uuid.New())
	w := httptest.NewRecorder()

	if err := EndSession(store, w, r); err != nil {
		t.Fatalf("EndSession: %v", err)
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 || cookies[0].MaxAge >= 0 {
		t.Fatalf("expected an expiring cookie, got %+v", cookies)
	}
}
