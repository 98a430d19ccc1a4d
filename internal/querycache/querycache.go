// Package querycache maps logical resource keys to their last-fetched
// remote value. Reads for a key already in flight join the in-flight call
// instead of issuing a duplicate request; a mutation invalidates the key so
// the next read hits the remote again. When overlapping fetches settle, the
// last one to settle wins.
package querycache

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

type Fetcher[V any] func(ctx context.Context) (V, error)

// Resource caches one logical resource under a stable key.
type Resource[V any] struct {
	key   string
	group singleflight.Group

	mu    sync.Mutex
	value V
	fresh bool
}

func NewResource[V any](key string) *Resource[V] {
	return &Resource[V]{key: key}
}

func (r *Resource[V]) Key() string { return r.key }

// Get returns the cached value when fresh, otherwise fetches it. Concurrent
// callers share a single in-flight fetch. Fetch failures are not cached.
func (r *Resource[V]) Get(ctx context.Context, fetch Fetcher[V]) (V, error) {
	r.mu.Lock()
	if r.fresh {
		v := r.value
		r.mu.Unlock()
		return v, nil
	}
	r.mu.Unlock()

	res, err, _ := r.group.Do(r.key, func() (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		var zero V
		return zero, err
	}

	v := res.(V)
	r.mu.Lock()
	r.value = v
	r.fresh = true
	r.mu.Unlock()
	return v, nil
}

// Invalidate forces the next Get to hit the remote. An in-flight fetch
// is forgotten so later reads start a fresh call instead of joining it.
func (r *Resource[V]) Invalidate() {
	r.mu.Lock()
	var zero V
	r.value = zero
	r.fresh = false
	r.mu.Unlock()

	r.group.Forget(r.key)
}

// Peek returns the cached value without fetching.
func (r *Resource[V]) Peek() (V, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.value, r.fresh
}
