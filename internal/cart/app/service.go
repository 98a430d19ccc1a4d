package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/dwikikusuma/storefront/internal/querycache"
	"github.com/dwikikusuma/storefront/internal/session"
)

var (
	ErrUnauthenticated = errors.New("sign in required")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidQuantity = errors.New("quantity out of range")
	ErrAlreadyInCart   = errors.New("product already in cart")
	ErrRemovalFailed   = errors.New("failed to remove item")
	ErrRemoteCall      = errors.New("remote call failed")
)

// Pending exposes which mutation kinds are currently in flight. It is
// derived state for the UI, nothing in the controller branches on it.
type Pending struct {
	Adding   bool
	Updating bool
	Removing bool
}

// Controller keeps one user's derived cart state convergent with the
// remote cart. Reads go through the query cache (single-flight); every
// confirmed mutation invalidates the cache and refetches, and the refetched
// cart fully replaces local state.
type Controller struct {
	userID string
	gw     CartGateway
	store  SnapshotStore
	cache  *querycache.Resource[domain.RemoteCart]
	log    *slog.Logger

	mu      sync.Mutex
	state   domain.Snapshot
	pending Pending
}

func NewController(ctx context.Context, userID string, gw CartGateway, store SnapshotStore, log *slog.Logger) *Controller {
	c := &Controller{
		userID: userID,
		gw:     gw,
		store:  store,
		cache:  querycache.NewResource[domain.RemoteCart]("cart"),
		log:    log,
	}

	// Seed from the persisted cache so the projection survives a restart.
	// The next fetch replaces it wholesale.
	if snap, ok, err := store.Load(ctx, userID); err != nil {
		log.Warn("cart snapshot load failed", slog.Any("err", err))
	} else if ok {
		c.state = snap
	}
	return c
}

// Snapshot returns a copy of the derived cart state.
func (c *Controller) Snapshot() domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

func (c *Controller) Pending() Pending {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// FetchCart retrieves the remote cart and replaces the derived state with
// it. No merge logic is applied: last fetch wins. On failure the derived
// state is left untouched.
func (c *Controller) FetchCart(ctx context.Context, sess session.Session) (domain.RemoteCart, error) {
	if !sess.Authenticated {
		return domain.RemoteCart{}, ErrUnauthenticated
	}

	rc, err := c.cache.Get(ctx, func(ctx context.Context) (domain.RemoteCart, error) {
		return c.gw.Fetch(ctx, sess.BearerToken)
	})
	if err != nil {
		return domain.RemoteCart{}, err
	}

	c.reconcile(ctx, rc)
	return rc, nil
}

// AddItem adds a product to the cart. A product already present is a
// deliberate no-op reported as ErrAlreadyInCart, not an increment.
func (c *Controller) AddItem(ctx context.Context, sess session.Session, productID string, quantity int) (Ack, error) {
	if !sess.Authenticated {
		return Ack{}, ErrUnauthenticated
	}
	if strings.TrimSpace(productID) == "" {
		return Ack{}, ErrInvalidInput
	}
	if !domain.ValidQuantity(quantity) {
		return Ack{}, ErrInvalidQuantity
	}

	c.mu.Lock()
	if c.state.Has(productID) {
		c.mu.Unlock()
		return Ack{}, ErrAlreadyInCart
	}
	c.pending.Adding = true
	c.mu.Unlock()
	defer c.clearPending(func(p *Pending) { p.Adding = false })

	ack, err := c.gw.AddLines(ctx, sess.BearerToken, []domain.Line{{ProductID: productID, Quantity: quantity}})
	if err != nil {
		return Ack{}, err
	}
	if !ack.Success {
		// The remote refused without erroring; surface its message and
		// leave the derived state alone.
		return ack, nil
	}

	c.mu.Lock()
	if !c.state.Has(productID) {
		c.state.Lines = append(c.state.Lines, domain.Line{ProductID: productID, Quantity: quantity})
		c.state.Recount()
	}
	snap := c.state.Clone()
	c.mu.Unlock()
	c.persist(ctx, snap)

	c.refresh(ctx, sess)
	return ack, nil
}

// UpdateQuantity changes one line's quantity. Values outside [1,99] are
// rejected before any network call.
func (c *Controller) UpdateQuantity(ctx context.Context, sess session.Session, lineID string, quantity int) error {
	if !domain.ValidQuantity(quantity) {
		return ErrInvalidQuantity
	}
	if !sess.Authenticated {
		return ErrUnauthenticated
	}
	if strings.TrimSpace(lineID) == "" {
		return ErrInvalidInput
	}

	c.setPending(func(p *Pending) { p.Updating = true })
	defer c.clearPending(func(p *Pending) { p.Updating = false })

	if err := c.gw.SetQuantity(ctx, sess.BearerToken, lineID, quantity); err != nil {
		return err
	}

	c.refresh(ctx, sess)
	return nil
}

// RemoveItem deletes one line. Removing a line that no longer exists is a
// successful no-op per the remote contract; any remote failure surfaces as
// ErrRemovalFailed.
func (c *Controller) RemoveItem(ctx context.Context, sess session.Session, lineID string) error {
	if !sess.Authenticated {
		return ErrUnauthenticated
	}

	c.setPending(func(p *Pending) { p.Removing = true })
	defer c.clearPending(func(p *Pending) { p.Removing = false })

	if err := c.gw.Remove(ctx, sess.BearerToken, lineID); err != nil {
		return fmt.Errorf("%w: %v", ErrRemovalFailed, err)
	}

	c.refresh(ctx, sess)
	return nil
}

// Clear wipes the derived state and its persisted snapshot. Called on
// sign-out and on observing an unauthenticated session for a cart route.
func (c *Controller) Clear(ctx context.Context) {
	c.mu.Lock()
	c.state = domain.Snapshot{}
	c.mu.Unlock()

	c.cache.Invalidate()
	if err := c.store.Clear(ctx, c.userID); err != nil {
		c.log.Warn("cart snapshot clear failed", slog.Any("err", err))
	}
}

// refresh invalidates the cached cart and refetches it. The triggering
// mutation already succeeded, so a failed refetch is logged and the next
// read tries again.
func (c *Controller) refresh(ctx context.Context, sess session.Session) {
	c.cache.Invalidate()
	if _, err := c.FetchCart(ctx, sess); err != nil {
		c.log.Warn("cart refetch after mutation failed", slog.Any("err", err))
	}
}

func (c *Controller) reconcile(ctx context.Context, rc domain.RemoteCart) {
	snap := domain.SnapshotFromRemote(rc)

	c.mu.Lock()
	c.state = snap
	c.mu.Unlock()

	c.persist(ctx, snap)
}

func (c *Controller) persist(ctx context.Context, snap domain.Snapshot) {
	if err := c.store.Save(ctx, c.userID, snap); err != nil {
		c.log.Warn("cart snapshot save failed", slog.Any("err", err))
	}
}

func (c *Controller) setPending(set func(*Pending)) {
	c.mu.Lock()
	set(&c.pending)
	c.mu.Unlock()
}

func (c *Controller) clearPending(clear func(*Pending)) {
	c.mu.Lock()
	clear(&c.pending)
	c.mu.Unlock()
}
