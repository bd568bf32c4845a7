package auth

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/ghuser/ordermgmt/pkg/httpx"
	"github.com/ghuser/ordermgmt/pkg/logger"
)

const sessionName = "ordermgmt_session"
const sessionBuyerIDKey = "buyer_id"

// RequireAuth is a chi middleware that enforces authentication via session cookies.
// It reads the session cookie, extracts the BuyerID, and injects it into the request context.
// Returns 401 Unauthorized if the session is missing, invalid, or lacks a valid buyer_id.
//
// After this middleware, handlers can safely call auth.BuyerIDFromCtx(r.Context()).
func RequireAuth(store sessions.Store, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := store.Get(r, sessionName)
			if err != nil {
				log.WarnContext(r.Context(), "invalid session cookie", "error", err)
				httpx.JSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
				return
			}

			buyerIDStr, ok := session.Values[sessionBuyerIDKey].(string)
			if !ok || buyerIDStr == "" {
				log.WarnContext(r.Context(), "session missing buyer_id")
				httpx.JSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
				return
			}

			buyerID, err := uuid.Parse(buyerIDStr)
			if err != nil {
				log.WarnContext(r.Context(), "invalid buyer_id in session", "buyer_id", buyerIDStr, "error", err)
				httpx.JSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid session data"})
				return
			}

			ctx := WithBuyerID(r.Context(), buyerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StartSession binds buyerID to the caller's session and writes the cookie.
func StartSession(store sessions.Store, w http.ResponseWriter, r *http.Request, buyerID uuid.UUID) error {
	session, err := store.Get(r, sessionName)
	if err != nil {
		// A tampered cookie still yields a usable fresh session.
		session, err = store.New(r, sessionName)
		if err != nil {
			return err
		}
	}
	session.Values[sessionBuyerIDKey] = buyerID.String()
	return session.Save(r, w)
}

// EndSession expires the caller's session.
func EndSession(store sessions.Store, w http.ResponseWriter, r *http.Request) error {
	session, err := store.Get(r, sessionName)
	if err != nil {
		return nil
	}
	session.Options.MaxAge = -1
	return session.Save(r, w)
}
