package session

import (
	"errors"
	"net/http"

	"winelabel/internal/notify"
)

const (
	LoginPath = "/login"
	HomePath  = "/products"
)

// RequireAuthentication sends anonymous users to the login screen. Identities older
// than VerifyInterval are checked with the backend first.
func (m *Manager) RequireAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if !m.IsAuthenticated(ctx) {
			Redirect(w, r, LoginPath)
			return
		}
		if m.stale(ctx) {
			if err := m.Refresh(ctx); errors.Is(err, ErrSessionExpired) {
				m.Flash(ctx, notify.Notification{
					Title:       "Session expired",
					Description: "Please sign in again.",
					Variant:     notify.VariantDestructive,
				})
				Redirect(w, r, LoginPath)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RedirectAuthenticated sends signed-in users away from the login and registration
// screens.
func (m *Manager) RedirectAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.IsAuthenticated(r.Context()) {
			Redirect(w, r, HomePath)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Redirect issues a See Other, using HX-Redirect for HTMX requests.
func Redirect(w http.ResponseWriter, r *http.Request, target string) {
	if IsHTMX(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true" || r.Header.Get("HX-Boosted") == "true"
}
