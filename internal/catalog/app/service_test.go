package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/dwikikusuma/storefront/internal/catalog/domain"
)

type fakeGateway struct {
	listCalls atomic.Int64
	products  []domain.Product
	missing   bool
}

func (g *fakeGateway) List(ctx context.Context, bearer string) ([]domain.Product, error) {
	g.listCalls.Add(1)
	return g.products, nil
}

func (g *fakeGateway) Get(ctx context.Context, bearer string, id string) (domain.Product, error) {
	if g.missing {
		return domain.Product{}, ErrNotFound
	}
	return domain.Product{ID: id}, nil
}

func (g *fakeGateway) Create(ctx context.Context, bearer string, p domain.Product) (Ack, error) {
	g.products = append(g.products, p)
	return Ack{Success: true, Message: "Product created"}, nil
}

func (g *fakeGateway) Update(ctx context.Context, bearer string, p domain.Product) (Ack, error) {
	return Ack{Success: true, Message: "Product updated"}, nil
}

func (g *fakeGateway) Delete(ctx context.Context, bearer string, id string) (Ack, error) {
	return Ack{Success: true, Message: "Product deleted"}, nil
}

func TestCreateProductValidation(t *testing.T) {
	svc := NewService(&fakeGateway{})

	t.Run("empty name -> invalid", func(t *testing.T) {
		_, err := svc.CreateProduct(context.Background(), "tok", domain.Product{Name: "   ", Price: 10})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("non-positive price -> invalid", func(t *testing.T) {
		_, err := svc.CreateProduct(context.Background(), "tok", domain.Product{Name: "Keyboard", Price: 0})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("empty id on get -> invalid", func(t *testing.T) {
		_, err := svc.GetProduct(context.Background(), "tok", "  ")
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestListProductsCachedUntilMutation(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{products: []domain.Product{{ID: "p1", Name: "Keyboard", Price: 49.9}}}
	svc := NewService(gw)

	for i := 0; i < 3; i++ {
		if _, err := svc.ListProducts(ctx, "tok"); err != nil {
			t.Fatalf("list: %v", err)
		}
	}
	if n := gw.listCalls.Load(); n != 1 {
		t.Fatalf("expected 1 remote list call, got %d", n)
	}

	if _, err := svc.CreateProduct(ctx, "tok", domain.Product{Name: "Mouse", Price: 19.9}); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.ListProducts(ctx, "tok")
	if err != nil {
		t.Fatalf("list after create: %v", err)
	}
	if n := gw.listCalls.Load(); n != 2 {
		t.Fatalf("mutation must invalidate the list cache, got %d calls", n)
	}
	if len(got) != 2 {
		t.Fatalf("expected refetched list, got %+v", got)
	}
}
