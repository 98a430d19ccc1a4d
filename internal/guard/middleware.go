package guard

import (
	"net/http"

	"github.com/dwikikusuma/storefront/internal/session"
)

// Middleware applies the access decision before any handler runs. The
// session middleware must have attached the projection to the request
// context already.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := Decide(r.URL.Path, r.URL.RawQuery, session.FromContext(r.Context()))
		if !d.Allow {
			http.Redirect(w, r, d.RedirectURL, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
