package app

import (
	"context"

	"github.com/dwikikusuma/storefront/internal/catalog/domain"
)

// Ack is the remote product service's acknowledgement of a mutation.
type Ack struct {
	Success bool
	Message string
}

// ProductGateway is the remote product service.
type ProductGateway interface {
	List(ctx context.Context, bearer string) ([]domain.Product, error)
	Get(ctx context.Context, bearer string, id string) (domain.Product, error)
	Create(ctx context.Context, bearer string, p domain.Product) (Ack, error)
	Update(ctx context.Context, bearer string, p domain.Product) (Ack, error)
	Delete(ctx context.Context, bearer string, id string) (Ack, error)
}
