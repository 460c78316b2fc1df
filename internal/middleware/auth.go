package middleware

import (
	"net/http"
	"net/url"

	"github.com/gorilla/sessions"
)

// RequireAuth redirects unauthenticated requests to the sign-in page,
// carrying the original path in ?redirect= so control returns there
// after sign-in. No write handler runs without a session.
func RequireAuth(store *sessions.CookieStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, _ := store.Get(r, "session")
			userID := session.Values["user_id"]

			if userID == nil {
				target := "/login?redirect=" + url.QueryEscape(r.URL.Path)
				// HTMX requests navigate via header, not a 3xx the
				// fragment swapper would follow in place.
				if r.Header.Get("HX-Request") == "true" {
					w.Header().Set("HX-Redirect", target)
					w.WriteHeader(http.StatusOK)
					return
				}
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
