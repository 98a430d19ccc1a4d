package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/dwikikusuma/storefront/internal/session"
)

type fakeGateway struct {
	mu    sync.Mutex
	cart  domain.RemoteCart
	calls int

	failFetch  error
	failAdd    error
	failSet    error
	failRemove error
	refuseAdd  bool

	nextLineID int
}

func (g *fakeGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func (g *fakeGateway) Fetch(ctx context.Context, bearer string) (domain.RemoteCart, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.failFetch != nil {
		return domain.RemoteCart{}, g.failFetch
	}
	return g.cart, nil
}

func (g *fakeGateway) AddLines(ctx context.Context, bearer string, lines []domain.Line) (Ack, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.failAdd != nil {
		return Ack{}, g.failAdd
	}
	if g.refuseAdd {
		return Ack{Success: false, Message: "out of stock"}, nil
	}
	for _, l := range lines {
		g.nextLineID++
		g.cart.Lines = append(g.cart.Lines, domain.RemoteLine{
			LineID:    string(rune('a' + g.nextLineID)),
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
		})
	}
	return Ack{Success: true, Message: "added to cart"}, nil
}

func (g *fakeGateway) SetQuantity(ctx context.Context, bearer string, lineID string, quantity int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.failSet != nil {
		return g.failSet
	}
	for i := range g.cart.Lines {
		if g.cart.Lines[i].LineID == lineID {
			g.cart.Lines[i].Quantity = quantity
		}
	}
	return nil
}

func (g *fakeGateway) Remove(ctx context.Context, bearer string, lineID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.failRemove != nil {
		return g.failRemove
	}
	kept := g.cart.Lines[:0]
	for _, l := range g.cart.Lines {
		if l.LineID != lineID {
			kept = append(kept, l)
		}
	}
	g.cart.Lines = kept
	return nil
}

type memStore struct {
	mu    sync.Mutex
	saved map[string]domain.Snapshot
}

func newMemStore() *memStore {
	return &memStore{saved: make(map[string]domain.Snapshot)}
}

func (m *memStore) Save(ctx context.Context, userID string, s domain.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[userID] = s.Clone()
	return nil
}

func (m *memStore) Load(ctx context.Context, userID string) (domain.Snapshot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.saved[userID]
	return s.Clone(), ok, nil
}

func (m *memStore) Clear(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.saved, userID)
	return nil
}

func signedIn() session.Session {
	return session.Session{Authenticated: true, UserID: "u1", Role: session.RoleUser, BearerToken: "tok"}
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestController(t *testing.T) (*Controller, *fakeGateway, *memStore) {
	t.Helper()
	gw := &fakeGateway{}
	store := newMemStore()
	c := NewController(context.Background(), "u1", gw, store, discard())
	return c, gw, store
}

func assertInvariant(t *testing.T, s domain.Snapshot) {
	t.Helper()
	sum := 0
	for _, l := range s.Lines {
		sum += l.Quantity
	}
	if s.ItemCount != sum {
		t.Fatalf("itemCount %d != sum of quantities %d", s.ItemCount, sum)
	}
}

func TestAddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("unauthenticated -> ErrUnauthenticated, no call, no state change", func(t *testing.T) {
		c, gw, _ := newTestController(t)
		_, err := c.AddItem(ctx, session.Anonymous(), "p1", 2)
		if !errors.Is(err, ErrUnauthenticated) {
			t.Fatalf("expected ErrUnauthenticated, got %v", err)
		}
		if gw.callCount() != 0 {
			t.Fatalf("expected no network calls, got %d", gw.callCount())
		}
		if got := c.Snapshot(); got.ItemCount != 0 || len(got.Lines) != 0 {
			t.Fatalf("state changed: %+v", got)
		}
	})

	t.Run("empty product id -> ErrInvalidInput", func(t *testing.T) {
		c, gw, _ := newTestController(t)
		if _, err := c.AddItem(ctx, signedIn(), "   ", 1); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
		if gw.callCount() != 0 {
			t.Fatal("validation failure must not reach the remote")
		}
	})

	t.Run("success appends line and refetches", func(t *testing.T) {
		c, gw, store := newTestController(t)
		ack, err := c.AddItem(ctx, signedIn(), "p1", 1)
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		if !ack.Success {
			t.Fatalf("expected success ack, got %+v", ack)
		}

		got := c.Snapshot()
		assertInvariant(t, got)
		if len(got.Lines) != 1 || got.Lines[0].ProductID != "p1" || got.ItemCount != 1 {
			t.Fatalf("unexpected state: %+v", got)
		}
		// add + refetch
		if gw.callCount() != 2 {
			t.Fatalf("expected add then refetch, got %d calls", gw.callCount())
		}
		if saved, ok, _ := store.Load(ctx, "u1"); !ok || saved.ItemCount != 1 {
			t.Fatalf("snapshot not persisted: %+v ok=%v", saved, ok)
		}
	})

	t.Run("already in cart -> notice, state unchanged", func(t *testing.T) {
		c, gw, _ := newTestController(t)
		if _, err := c.AddItem(ctx, signedIn(), "p1", 1); err != nil {
			t.Fatalf("first add: %v", err)
		}
		before := c.Snapshot()
		calls := gw.callCount()

		_, err := c.AddItem(ctx, signedIn(), "p1", 1)
		if !errors.Is(err, ErrAlreadyInCart) {
			t.Fatalf("expected ErrAlreadyInCart, got %v", err)
		}
		if gw.callCount() != calls {
			t.Fatal("already-in-cart short circuit must not hit the remote")
		}
		after := c.Snapshot()
		if len(after.Lines) != len(before.Lines) || after.ItemCount != before.ItemCount {
			t.Fatalf("state changed: %+v -> %+v", before, after)
		}
	})

	t.Run("remote refusal surfaces message, state unchanged", func(t *testing.T) {
		c, _, _ := newTestController(t)
		gw := c.gw.(*fakeGateway)
		gw.refuseAdd = true

		ack, err := c.AddItem(ctx, signedIn(), "p1", 1)
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		if ack.Success || ack.Message != "out of stock" {
			t.Fatalf("expected refusal ack, got %+v", ack)
		}
		if got := c.Snapshot(); got.ItemCount != 0 {
			t.Fatalf("state changed on refusal: %+v", got)
		}
	})

	t.Run("remote error leaves state unchanged", func(t *testing.T) {
		c, _, _ := newTestController(t)
		gw := c.gw.(*fakeGateway)
		gw.failAdd = errors.New("network down")

		if _, err := c.AddItem(ctx, signedIn(), "p1", 1); err == nil {
			t.Fatal("expected error")
		}
		if got := c.Snapshot(); got.ItemCount != 0 {
			t.Fatalf("state changed on failure: %+v", got)
		}
	})
}

func TestUpdateQuantityBounds(t *testing.T) {
	ctx := context.Background()

	t.Run("0 and 100 rejected with zero network calls", func(t *testing.T) {
		c, gw, _ := newTestController(t)
		for _, qty := range []int{0, 100} {
			if err := c.UpdateQuantity(ctx, signedIn(), "l1", qty); !errors.Is(err, ErrInvalidQuantity) {
				t.Fatalf("qty %d: expected ErrInvalidQuantity, got %v", qty, err)
			}
		}
		if gw.callCount() != 0 {
			t.Fatalf("expected 0 calls, got %d", gw.callCount())
		}
	})

	t.Run("1 and 99 succeed", func(t *testing.T) {
		c, _, _ := newTestController(t)
		if _, err := c.AddItem(ctx, signedIn(), "p1", 2); err != nil {
			t.Fatalf("seed: %v", err)
		}
		lineID := c.gw.(*fakeGateway).cart.Lines[0].LineID

		for _, qty := range []int{1, 99} {
			if err := c.UpdateQuantity(ctx, signedIn(), lineID, qty); err != nil {
				t.Fatalf("qty %d: %v", qty, err)
			}
			got := c.Snapshot()
			assertInvariant(t, got)
			if got.Lines[0].Quantity != qty {
				t.Fatalf("quantity not reconciled: %+v", got)
			}
		}
	})
}

func TestRemoveItem(t *testing.T) {
	ctx := context.Background()

	t.Run("remove twice converges to same cart", func(t *testing.T) {
		c, gw, _ := newTestController(t)
		if _, err := c.AddItem(ctx, signedIn(), "p1", 2); err != nil {
			t.Fatalf("seed: %v", err)
		}
		lineID := gw.cart.Lines[0].LineID

		if err := c.RemoveItem(ctx, signedIn(), lineID); err != nil {
			t.Fatalf("first remove: %v", err)
		}
		first := c.Snapshot()

		if err := c.RemoveItem(ctx, signedIn(), lineID); err != nil {
			t.Fatalf("second remove should be a no-op: %v", err)
		}
		second := c.Snapshot()

		if first.ItemCount != 0 || second.ItemCount != 0 || len(second.Lines) != 0 {
			t.Fatalf("remove not idempotent: %+v vs %+v", first, second)
		}
	})

	t.Run("remote failure -> ErrRemovalFailed", func(t *testing.T) {
		c, _, _ := newTestController(t)
		gw := c.gw.(*fakeGateway)
		gw.failRemove = errors.New("boom")

		if err := c.RemoveItem(ctx, signedIn(), "l1"); !errors.Is(err, ErrRemovalFailed) {
			t.Fatalf("expected ErrRemovalFailed, got %v", err)
		}
	})
}

func TestFetchCartReplacesState(t *testing.T) {
	ctx := context.Background()
	c, gw, _ := newTestController(t)

	gw.cart = domain.RemoteCart{
		OwnerID: "u1",
		Lines: []domain.RemoteLine{
			{LineID: "l1", ProductID: "p1", Quantity: 3},
			{LineID: "l2", ProductID: "p2", Quantity: 1},
		},
	}

	if _, err := c.FetchCart(ctx, signedIn()); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	got := c.Snapshot()
	assertInvariant(t, got)
	if got.ItemCount != 4 || len(got.Lines) != 2 {
		t.Fatalf("unexpected state: %+v", got)
	}

	t.Run("fetch failure leaves prior state", func(t *testing.T) {
		gw.failFetch = errors.New("unreachable")
		c.cache.Invalidate()

		if _, err := c.FetchCart(ctx, signedIn()); err == nil {
			t.Fatal("expected fetch error")
		}
		if after := c.Snapshot(); after.ItemCount != 4 {
			t.Fatalf("state changed on failed fetch: %+v", after)
		}
	})
}

func TestClearWipesStateAndSnapshot(t *testing.T) {
	ctx := context.Background()
	c, _, store := newTestController(t)
	if _, err := c.AddItem(ctx, signedIn(), "p1", 2); err != nil {
		t.Fatalf("seed: %v", err)
	}

	c.Clear(ctx)

	if got := c.Snapshot(); got.ItemCount != 0 || len(got.Lines) != 0 {
		t.Fatalf("state not cleared: %+v", got)
	}
	if _, ok, _ := store.Load(ctx, "u1"); ok {
		t.Fatal("persisted snapshot not cleared")
	}
}

func TestControllerSeedsFromSnapshotStore(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{}
	store := newMemStore()

	snap := domain.Snapshot{Lines: []domain.Line{{ProductID: "p1", Quantity: 2}}}
	snap.Recount()
	if err := store.Save(ctx, "u1", snap); err != nil {
		t.Fatalf("save: %v", err)
	}

	c := NewController(ctx, "u1", gw, store, discard())
	got := c.Snapshot()
	if got.ItemCount != 2 || !got.Has("p1") {
		t.Fatalf("controller did not seed from store: %+v", got)
	}
}

func TestRegistryReturnsSameController(t *testing.T) {
	r := NewRegistry(&fakeGateway{}, newMemStore(), discard())
	a := r.For(context.Background(), "u1")
	b := r.For(context.Background(), "u1")
	other := r.For(context.Background(), "u2")

	if a != b {
		t.Fatal("expected one controller per user")
	}
	if a == other {
		t.Fatal("controllers must not be shared across users")
	}
}
