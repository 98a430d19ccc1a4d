package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	catalogdomain "github.com/dwikikusuma/storefront/internal/catalog/domain"
	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
	"github.com/dwikikusuma/storefront/internal/guard"
	"github.com/dwikikusuma/storefront/internal/session"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Message: "sign in to continue",
		Data: map[string]string{
			"callbackUrl": r.URL.Query().Get("callbackUrl"),
		},
	})
}

// handleLogout drops everything derived from the session: the cart
// projection, its persisted snapshot, and the identity snapshot. The
// session itself is destroyed by the external auth service.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if sess.Authenticated {
		s.carts.For(r.Context(), sess.UserID).Clear(r.Context())
		if err := s.identities.Delete(r.Context(), sess.UserID); err != nil {
			s.log.Warn("identity snapshot delete failed", slog.Any("err", err))
		}
		s.forgetIdentity(sess.UserID)
	}

	http.SetCookie(w, &http.Cookie{Name: "session", Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, guard.LoginPath, http.StatusSeeOther)
}

type productJSON struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       float64  `json:"price"`
	Category    string   `json:"category,omitempty"`
	Images      []string `json:"images,omitempty"`
}

func toProductJSON(p catalogdomain.Product) productJSON {
	return productJSON{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		Images:      p.Images,
	}
}

func (s *Server) handleShopList(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())

	products, err := s.catalog.ListProducts(r.Context(), sess.BearerToken)
	if err != nil {
		s.respondError(w, err)
		return
	}

	out := make([]productJSON, 0, len(products))
	for _, p := range products {
		out = append(out, toProductJSON(p))
	}
	s.writeJSON(w, http.StatusOK, envelope{Success: true, Data: out})
}

func (s *Server) handleShopDetail(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())

	p, err := s.catalog.GetProduct(r.Context(), sess.BearerToken, r.PathValue("id"))
	if errors.Is(err, catalogapp.ErrNotFound) {
		// Recoverable: the page offers the way back instead of crashing.
		s.writeJSON(w, http.StatusNotFound, envelope{
			Success: false,
			Code:    "NOT_FOUND",
			Message: "Product not found",
			Data:    map[string]string{"backTo": guard.ShopPath},
		})
		return
	}
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{Success: true, Data: toProductJSON(p)})
}

type quoteLineJSON struct {
	LineID    string  `json:"lineId"`
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	LineTotal float64 `json:"lineTotal"`
}

type cartViewJSON struct {
	Items     []quoteLineJSON `json:"items"`
	ItemCount int             `json:"itemCount"`
	Total     float64         `json:"total"`
}

func (s *Server) handleCartView(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())

	quote, err := s.checkout.Quote(r.Context(), sess)
	if errors.Is(err, checkoutapp.ErrEmptyCart) {
		s.writeJSON(w, http.StatusOK, envelope{Success: true, Data: cartViewJSON{Items: []quoteLineJSON{}}})
		return
	}
	if s.redirectIfUnauthenticated(w, r, err) {
		return
	}
	if err != nil {
		s.respondError(w, err)
		return
	}

	view := cartViewJSON{
		Items:     make([]quoteLineJSON, 0, len(quote.Lines)),
		ItemCount: quote.ItemCount,
		Total:     quote.Total,
	}
	for _, l := range quote.Lines {
		view.Items = append(view.Items, quoteLineJSON{
			LineID:    l.LineID,
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.LineTotal,
		})
	}
	s.writeJSON(w, http.StatusOK, envelope{Success: true, Data: view})
}

func (s *Server) handleCartAdd(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())

	var body struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, cartapp.ErrInvalidInput)
		return
	}
	if body.Quantity == 0 {
		body.Quantity = 1
	}

	ctrl := s.carts.For(r.Context(), sess.UserID)
	ack, err := ctrl.AddItem(r.Context(), sess, body.ProductID, body.Quantity)
	if s.redirectIfUnauthenticated(w, r, err) {
		return
	}
	if errors.Is(err, cartapp.ErrAlreadyInCart) {
		// Informational short circuit, not a failure.
		s.writeJSON(w, http.StatusOK, envelope{
			Success: false,
			Code:    "ALREADY_IN_CART",
			Message: "This product is already in your cart",
			Data:    ctrl.Snapshot(),
		})
		return
	}
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{
		Success: ack.Success,
		Message: ack.Message,
		Data:    ctrl.Snapshot(),
	})
}

func (s *Server) handleCartUpdate(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())

	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, cartapp.ErrInvalidInput)
		return
	}

	ctrl := s.carts.For(r.Context(), sess.UserID)
	err := ctrl.UpdateQuantity(r.Context(), sess, r.PathValue("lineID"), body.Quantity)
	if s.redirectIfUnauthenticated(w, r, err) {
		return
	}
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Message: "Cart updated successfully",
		Data:    ctrl.Snapshot(),
	})
}

func (s *Server) handleCartRemove(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())

	ctrl := s.carts.For(r.Context(), sess.UserID)
	err := ctrl.RemoveItem(r.Context(), sess, r.PathValue("lineID"))
	if s.redirectIfUnauthenticated(w, r, err) {
		return
	}
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Message: "Item removed from cart",
		Data:    ctrl.Snapshot(),
	})
}

func (s *Server) handleProductList(w http.ResponseWriter, r *http.Request) {
	s.handleShopList(w, r)
}

func (s *Server) handleProductCreate(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())

	p, ok := s.decodeProduct(w, r)
	if !ok {
		return
	}
	ack, err := s.catalog.CreateProduct(r.Context(), sess.BearerToken, p)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{Success: ack.Success, Message: ack.Message})
}

func (s *Server) handleProductUpdate(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())

	p, ok := s.decodeProduct(w, r)
	if !ok {
		return
	}
	p.ID = r.PathValue("id")
	ack, err := s.catalog.UpdateProduct(r.Context(), sess.BearerToken, p)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{Success: ack.Success, Message: ack.Message})
}

func (s *Server) handleProductDelete(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())

	ack, err := s.catalog.DeleteProduct(r.Context(), sess.BearerToken, r.PathValue("id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{Success: ack.Success, Message: ack.Message})
}

func (s *Server) decodeProduct(w http.ResponseWriter, r *http.Request) (catalogdomain.Product, bool) {
	var body productJSON
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, catalogapp.ErrInvalidInput)
		return catalogdomain.Product{}, false
	}
	return catalogdomain.Product{
		ID:          body.ID,
		Name:        body.Name,
		Description: body.Description,
		Price:       body.Price,
		Category:    body.Category,
		Images:      body.Images,
	}, true
}

// redirectIfUnauthenticated turns the controller-level Unauthenticated
// error into the login redirect the guard would have issued.
func (s *Server) redirectIfUnauthenticated(w http.ResponseWriter, r *http.Request, err error) bool {
	if errors.Is(err, cartapp.ErrUnauthenticated) {
		http.Redirect(w, r, guard.LoginPath, http.StatusSeeOther)
		return true
	}
	return false
}
