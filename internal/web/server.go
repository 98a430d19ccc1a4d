// Package web exposes the storefront over HTTP: product browsing, the
// cart, and the admin product table, all guarded per navigation.
package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
	"github.com/dwikikusuma/storefront/internal/guard"
	"github.com/dwikikusuma/storefront/internal/session"
)

type Server struct {
	log        *slog.Logger
	verifier   *session.Verifier
	identities *session.IdentityStore
	carts      *cartapp.Registry
	catalog    *catalogapp.Service
	checkout   *checkoutapp.Service

	mu   sync.Mutex
	seen map[string]session.Identity
}

func NewServer(
	log *slog.Logger,
	verifier *session.Verifier,
	identities *session.IdentityStore,
	carts *cartapp.Registry,
	catalog *catalogapp.Service,
	checkout *checkoutapp.Service,
) *Server {
	return &Server{
		log:        log,
		verifier:   verifier,
		identities: identities,
		carts:      carts,
		catalog:    catalog,
		checkout:   checkout,
		seen:       make(map[string]session.Identity),
	}
}

// Routes assembles the handler chain: request ID, session projection,
// route guard, then the mux.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	mux.HandleFunc("GET /login", s.handleLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)

	mux.HandleFunc("GET /shop", s.handleShopList)
	mux.HandleFunc("GET /shop/{id}", s.handleShopDetail)

	mux.HandleFunc("GET /cart", s.handleCartView)
	mux.HandleFunc("POST /cart/items", s.handleCartAdd)
	mux.HandleFunc("PUT /cart/items/{lineID}", s.handleCartUpdate)
	mux.HandleFunc("DELETE /cart/items/{lineID}", s.handleCartRemove)

	mux.HandleFunc("GET /product", s.handleProductList)
	mux.HandleFunc("POST /product", s.handleProductCreate)
	mux.HandleFunc("PUT /product/{id}", s.handleProductUpdate)
	mux.HandleFunc("DELETE /product/{id}", s.handleProductDelete)

	var h http.Handler = mux
	h = guard.Middleware(h)
	h = s.withSession(h)
	h = s.withRequestID(h)
	return h
}

type envelope struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("write response", slog.Any("err", err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	status, code := httpStatusFromErr(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "something went wrong"
	}
	s.writeJSON(w, status, envelope{Success: false, Code: code, Message: msg})
}
