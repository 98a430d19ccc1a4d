package app

import (
	"context"
	"log/slog"
	"sync"
)

// Registry hands out the cart controller owning a given user's derived
// state. One controller per user for the life of the process.
type Registry struct {
	gw    CartGateway
	store SnapshotStore
	log   *slog.Logger

	mu     sync.Mutex
	byUser map[string]*Controller
}

func NewRegistry(gw CartGateway, store SnapshotStore, log *slog.Logger) *Registry {
	return &Registry{
		gw:     gw,
		store:  store,
		log:    log,
		byUser: make(map[string]*Controller),
	}
}

func (r *Registry) For(ctx context.Context, userID string) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.byUser[userID]; ok {
		return c
	}
	c := NewController(ctx, userID, r.gw, r.store, r.log)
	r.byUser[userID] = c
	return c
}
