package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"

	sessionStore "complaintdesk/internal/adapters/storage/session"
	"complaintdesk/internal/domain/category"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const clientIDContextKey contextKey = "client_id"

const clientCookieName = "portal_client"

// SecureCookies controls the Secure flag on the identity cookie. Set to true
// in production so the client id never travels over plain HTTP.
var SecureCookies = false

// ClientIdentity returns middleware that assigns every browser a stable
// anonymous client id via a long-lived cookie. The id keys per-browser state
// (admin sessions, flashes, the double-submit guard); it carries no account
// identity of its own.
// POST: the request context always holds a non-empty client id
func ClientIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := ""
		if cookie, err := r.Cookie(clientCookieName); err == nil && validClientID(cookie.Value) {
			clientID = cookie.Value
		}
		if clientID == "" {
			id, err := generateClientID()
			if err != nil {
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			clientID = id
			http.SetCookie(w, &http.Cookie{
				Name:     clientCookieName,
				Value:    clientID,
				HttpOnly: true,
				Secure:   SecureCookies,
				SameSite: http.SameSiteLaxMode,
				Path:     "/",
				MaxAge:   86400 * 365,
			})
		}
		ctx := context.WithValue(r.Context(), clientIDContextKey, clientID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIDFromContext extracts the client id set by ClientIdentity.
func ClientIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(clientIDContextKey).(string)
	return id, ok && id != ""
}

// ContextWithClientID returns a context with the given client id set.
// Intended for use in tests.
func ContextWithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, clientIDContextKey, clientID)
}

// RequireAdminSession returns middleware that gates a category's admin pages
// on a stored session. The check is presence-only: any stored token passes,
// and a stale one is caught later when the backend rejects it.
// POST: requests without a stored session are redirected to the category's
// auth screen and never reach the handler
func RequireAdminSession(cat category.Category, sessions sessionStore.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID, ok := ClientIDFromContext(r.Context())
			if !ok {
				http.Redirect(w, r, "/"+string(cat)+"/admin/auth", http.StatusSeeOther)
				return
			}
			_, err := sessions.Get(r.Context(), clientID, cat)
			if errors.Is(err, sessionStore.ErrNotFound) {
				http.Redirect(w, r, "/"+string(cat)+"/admin/auth", http.StatusSeeOther)
				return
			}
			if err != nil {
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func validClientID(s string) bool {
	if len(s) != 64 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

func generateClientID() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
