// Package guard decides, per navigation, whether a route is shown as-is or
// redirected based on the current session. Decisions are pure: the same
// (path, query, session) triple always yields the same result.
package guard

import (
	"net/url"
	"strings"

	"github.com/dwikikusuma/storefront/internal/session"
)

const (
	LoginPath     = "/login"
	CartPrefix    = "/cart"
	ProductPrefix = "/product"
	ShopPath      = "/shop"
)

type Decision struct {
	Allow       bool
	RedirectURL string
}

func allow() Decision {
	return Decision{Allow: true}
}

func redirect(target string) Decision {
	return Decision{RedirectURL: target}
}

// underPrefix matches the prefix exactly or on a segment boundary, so
// /cart and /cart/checkout are guarded while /cartoon is not.
func underPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// Decide evaluates the access rules for a request path. rawQuery is the
// request's encoded query string, preserved in the login callback so a
// successful sign-in can forward the user back.
func Decide(path, rawQuery string, sess session.Session) Decision {
	switch {
	case underPrefix(path, LoginPath):
		if sess.Authenticated {
			return redirect(ShopPath)
		}
		return allow()

	case underPrefix(path, CartPrefix):
		if !sess.Authenticated {
			return redirect(loginWithCallback(path, rawQuery))
		}
		return allow()

	case underPrefix(path, ProductPrefix):
		if !sess.Authenticated {
			return redirect(loginWithCallback(path, rawQuery))
		}
		if !sess.IsAdmin() {
			return redirect(ShopPath)
		}
		return allow()
	}

	return allow()
}

func loginWithCallback(path, rawQuery string) string {
	target := path
	if rawQuery != "" {
		target += "?" + rawQuery
	}
	q := url.Values{}
	q.Set("callbackUrl", target)
	return LoginPath + "?" + q.Encode()
}
