package guard

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/dwikikusuma/storefront/internal/session"
)

func anon() session.Session {
	return session.Anonymous()
}

func user() session.Session {
	return session.Session{Authenticated: true, UserID: "u1", Role: session.RoleUser}
}

func admin() session.Session {
	return session.Session{Authenticated: true, UserID: "u2", Role: session.RoleAdmin}
}

func callbackOf(t *testing.T, redirectURL string) string {
	t.Helper()
	u, err := url.Parse(redirectURL)
	if err != nil {
		t.Fatalf("parse redirect %q: %v", redirectURL, err)
	}
	return u.Query().Get("callbackUrl")
}

func TestDecide(t *testing.T) {
	t.Run("login while authenticated -> shop", func(t *testing.T) {
		for _, sess := range []session.Session{user(), admin()} {
			d := Decide("/login", "", sess)
			if d.Allow || d.RedirectURL != "/shop" {
				t.Fatalf("got %+v", d)
			}
		}
	})

	t.Run("login while anonymous -> allow", func(t *testing.T) {
		if d := Decide("/login", "", anon()); !d.Allow {
			t.Fatalf("got %+v", d)
		}
	})

	t.Run("cart while anonymous -> login with callback", func(t *testing.T) {
		d := Decide("/cart", "", anon())
		if d.Allow {
			t.Fatalf("got %+v", d)
		}
		if got := callbackOf(t, d.RedirectURL); got != "/cart" {
			t.Fatalf("callbackUrl = %q", got)
		}
	})

	t.Run("cart while authenticated -> allow", func(t *testing.T) {
		if d := Decide("/cart", "", user()); !d.Allow {
			t.Fatalf("got %+v", d)
		}
	})

	t.Run("product while anonymous -> login with callback", func(t *testing.T) {
		d := Decide("/product/42", "", anon())
		if d.Allow {
			t.Fatalf("got %+v", d)
		}
		if got := callbackOf(t, d.RedirectURL); got != "/product/42" {
			t.Fatalf("callbackUrl = %q", got)
		}
	})

	t.Run("product as non-admin -> shop", func(t *testing.T) {
		d := Decide("/product/42", "", user())
		if d.Allow || d.RedirectURL != "/shop" {
			t.Fatalf("got %+v", d)
		}
	})

	t.Run("product as admin -> allow", func(t *testing.T) {
		if d := Decide("/product/42", "", admin()); !d.Allow {
			t.Fatalf("got %+v", d)
		}
	})

	t.Run("other routes -> allow regardless of session", func(t *testing.T) {
		for _, sess := range []session.Session{anon(), user(), admin()} {
			if d := Decide("/shop", "", sess); !d.Allow {
				t.Fatalf("got %+v", d)
			}
		}
	})

	t.Run("guarded prefixes stop at segment boundaries", func(t *testing.T) {
		for _, path := range []string{"/cartoon", "/products", "/productivity", "/login-help"} {
			if d := Decide(path, "", anon()); !d.Allow {
				t.Fatalf("%s: got %+v, want allow", path, d)
			}
		}
	})

	t.Run("callback preserves query string", func(t *testing.T) {
		d := Decide("/cart/checkout", "step=2&promo=SAVE", anon())
		if got := callbackOf(t, d.RedirectURL); got != "/cart/checkout?step=2&promo=SAVE" {
			t.Fatalf("callbackUrl = %q", got)
		}
	})

	t.Run("stateless: same input, same decision", func(t *testing.T) {
		first := Decide("/product/42", "", user())
		for i := 0; i < 5; i++ {
			if got := Decide("/product/42", "", user()); got != first {
				t.Fatalf("decision drifted: %+v != %+v", got, first)
			}
		}
	})
}

func TestMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	h := Middleware(next)

	t.Run("redirects anonymous cart request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/cart", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusFound {
			t.Fatalf("status = %d", rec.Code)
		}
		loc := rec.Header().Get("Location")
		if got := callbackOf(t, loc); got != "/cart" {
			t.Fatalf("callbackUrl = %q (Location %q)", got, loc)
		}
	})

	t.Run("passes authenticated cart request through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/cart", nil)
		req = req.WithContext(session.WithContext(req.Context(), user()))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d", rec.Code)
		}
	})
}
