// Package session gives every browser a stable session id carried in a
// cookie. The id keys the visitor's cart; no other data lives here.
//
// Usage (middleware):
//
//	r.Use(session.Middleware(session.DefaultOptions()))
//
// Usage (handler):
//
//	sid := session.ID(r.Context())
package session

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Options configures the session cookie.
type Options struct {
	CookieName string
	TTL        time.Duration
	HTTPOnly   bool
	Secure     bool
	SameSite   http.SameSite
	Path       string
}

// DefaultOptions returns the cookie settings used by the storefront.
func DefaultOptions() Options {
	return Options{
		CookieName: "duka_session",
		TTL:        2 * time.Hour,
		HTTPOnly:   true,
		SameSite:   http.SameSiteLaxMode,
		Path:       "/",
	}
}

type ctxKey struct{}

// NewID returns a fresh random session id.
func NewID() string { return uuid.NewString() }

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Middleware resolves the session id from the cookie, minting a new one
// when the cookie is missing or malformed, and refreshes the cookie so the
// session expires TTL after the last request.
func Middleware(opts Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if cookie, err := r.Cookie(opts.CookieName); err == nil && validID(cookie.Value) {
				id = cookie.Value
			} else {
				id = NewID()
			}

			http.SetCookie(w, &http.Cookie{
				Name:     opts.CookieName,
				Value:    id,
				Path:     opts.Path,
				MaxAge:   int(opts.TTL.Seconds()),
				HttpOnly: opts.HTTPOnly,
				Secure:   opts.Secure,
				SameSite: opts.SameSite,
			})

			next.ServeHTTP(w, r.WithContext(WithID(r.Context(), id)))
		})
	}
}

// WithID returns a copy of ctx carrying session id.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// ID returns the session id stored in ctx, or "" outside the middleware.
func ID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
