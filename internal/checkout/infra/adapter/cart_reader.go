package adapter

import (
	"context"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
	"github.com/dwikikusuma/storefront/internal/session"
)

type CartControllerReader struct {
	carts *cartapp.Registry
}

func NewCartControllerReader(carts *cartapp.Registry) *CartControllerReader {
	return &CartControllerReader{carts: carts}
}

func (r *CartControllerReader) GetCart(ctx context.Context, sess session.Session) ([]checkoutapp.CartLine, error) {
	ctrl := r.carts.For(ctx, sess.UserID)
	rc, err := ctrl.FetchCart(ctx, sess)
	if err != nil {
		return nil, err
	}

	lines := make([]checkoutapp.CartLine, 0, len(rc.Lines))
	for _, l := range rc.Lines {
		lines = append(lines, checkoutapp.CartLine{
			LineID:    l.LineID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
		})
	}
	return lines, nil
}
