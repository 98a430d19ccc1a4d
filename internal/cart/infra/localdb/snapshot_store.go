// Package localdb adapts the durable key-value store into the cart's
// persisted snapshot port.
package localdb

import (
	"context"
	"errors"

	"github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/dwikikusuma/storefront/pkg/sqlitekv"
)

// Snapshots are stored one per user under the original client cache key.
const storeKeyPrefix = "cart-store:"

type SnapshotStore struct {
	kv *sqlitekv.Store
}

func NewSnapshotStore(kv *sqlitekv.Store) *SnapshotStore {
	return &SnapshotStore{kv: kv}
}

func (s *SnapshotStore) Save(ctx context.Context, userID string, snap domain.Snapshot) error {
	b, err := domain.EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	return s.kv.Put(ctx, storeKeyPrefix+userID, b)
}

func (s *SnapshotStore) Load(ctx context.Context, userID string) (domain.Snapshot, bool, error) {
	b, err := s.kv.Get(ctx, storeKeyPrefix+userID)
	if errors.Is(err, sqlitekv.ErrNotFound) {
		return domain.Snapshot{}, false, nil
	}
	if err != nil {
		return domain.Snapshot{}, false, err
	}
	snap, err := domain.DecodeSnapshot(b)
	if err != nil {
		return domain.Snapshot{}, false, err
	}
	return snap, true, nil
}

func (s *SnapshotStore) Clear(ctx context.Context, userID string) error {
	return s.kv.Delete(ctx, storeKeyPrefix+userID)
}
