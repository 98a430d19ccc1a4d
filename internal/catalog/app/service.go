package app

import (
	"context"
	"errors"
	"strings"

	"github.com/dwikikusuma/storefront/internal/catalog/domain"
	"github.com/dwikikusuma/storefront/internal/querycache"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// Service fronts the remote product service. The product list is cached
// under a stable resource key; admin mutations invalidate it so the next
// read hits the remote again.
type Service struct {
	gw       ProductGateway
	products *querycache.Resource[[]domain.Product]
}

func NewService(gw ProductGateway) *Service {
	return &Service{
		gw:       gw,
		products: querycache.NewResource[[]domain.Product]("products"),
	}
}

func (s *Service) ListProducts(ctx context.Context, bearer string) ([]domain.Product, error) {
	return s.products.Get(ctx, func(ctx context.Context) ([]domain.Product, error) {
		return s.gw.List(ctx, bearer)
	})
}

func (s *Service) GetProduct(ctx context.Context, bearer string, id string) (domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Product{}, ErrInvalidInput
	}
	return s.gw.Get(ctx, bearer, id)
}

func (s *Service) CreateProduct(ctx context.Context, bearer string, p domain.Product) (Ack, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	if p.Name == "" || p.Price <= 0 {
		return Ack{}, ErrInvalidInput
	}

	ack, err := s.gw.Create(ctx, bearer, p)
	if err != nil {
		return Ack{}, err
	}
	if ack.Success {
		s.products.Invalidate()
	}
	return ack, nil
}

func (s *Service) UpdateProduct(ctx context.Context, bearer string, p domain.Product) (Ack, error) {
	if strings.TrimSpace(p.ID) == "" {
		return Ack{}, ErrInvalidInput
	}
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" || p.Price <= 0 {
		return Ack{}, ErrInvalidInput
	}

	ack, err := s.gw.Update(ctx, bearer, p)
	if err != nil {
		return Ack{}, err
	}
	if ack.Success {
		s.products.Invalidate()
	}
	return ack, nil
}

func (s *Service) DeleteProduct(ctx context.Context, bearer string, id string) (Ack, error) {
	if strings.TrimSpace(id) == "" {
		return Ack{}, ErrInvalidInput
	}

	ack, err := s.gw.Delete(ctx, bearer, id)
	if err != nil {
		return Ack{}, err
	}
	if ack.Success {
		s.products.Invalidate()
	}
	return ack, nil
}
