package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/dwikikusuma/storefront/internal/checkout/domain"
	"github.com/dwikikusuma/storefront/internal/session"
	"golang.org/x/sync/errgroup"
)

type CartReader interface {
	GetCart(ctx context.Context, sess session.Session) ([]CartLine, error)
}

type CartLine struct {
	LineID    string
	ProductID string
	Quantity  int
}

type CatalogReader interface {
	GetProduct(ctx context.Context, sess session.Session, productID string) (Product, error)
}

type Product struct {
	ID    string
	Name  string
	Price float64
}

var ErrEmptyCart = errors.New("cart is empty")

// Service derives the cart view shown at checkout: each line joined with
// its product, line totals, and the grand total.
type Service struct {
	cart    CartReader
	catalog CatalogReader

	maxConcurrent int
}

func NewService(cart CartReader, catalog CatalogReader, maxConcurrent int) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}

	return &Service{
		cart:          cart,
		catalog:       catalog,
		maxConcurrent: maxConcurrent,
	}
}

func (s *Service) Quote(ctx context.Context, sess session.Session) (domain.Quote, error) {
	items, err := s.cart.GetCart(ctx, sess)
	if err != nil {
		return domain.Quote{}, err
	}

	if len(items) == 0 {
		return domain.Quote{}, ErrEmptyCart
	}

	lines := make([]domain.QuoteLine, len(items))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for idx := range items {
		g.Go(func() error {
			it := items[idx]
			if it.Quantity <= 0 {
				return fmt.Errorf("quantity must be greater than zero: %d", it.Quantity)
			}

			product, err := s.catalog.GetProduct(ctx, sess, it.ProductID)
			if err != nil {
				return fmt.Errorf("failed to get product %s: %w", it.ProductID, err)
			}

			lines[idx] = domain.QuoteLine{
				LineID:    it.LineID,
				ProductID: product.ID,
				Name:      product.Name,
				Quantity:  it.Quantity,
				UnitPrice: product.Price,
				LineTotal: product.Price * float64(it.Quantity),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return domain.Quote{}, err
	}

	quote := domain.Quote{Lines: lines}
	for _, line := range lines {
		quote.Total += line.LineTotal
		quote.ItemCount += line.Quantity
	}

	return quote, nil
}
