package session

import (
	"context"
	"errors"

	"github.com/dwikikusuma/storefront/pkg/sqlitekv"
)

// IdentityStore persists identity snapshots in the durable client cache.
type IdentityStore struct {
	kv *sqlitekv.Store
}

func NewIdentityStore(kv *sqlitekv.Store) *IdentityStore {
	return &IdentityStore{kv: kv}
}

func (s *IdentityStore) Save(ctx context.Context, id Identity) error {
	b, err := EncodeIdentity(id)
	if err != nil {
		return err
	}
	return s.kv.Put(ctx, StoreKey+":"+id.UserID, b)
}

func (s *IdentityStore) Delete(ctx context.Context, userID string) error {
	return s.kv.Delete(ctx, StoreKey+":"+userID)
}

func (s *IdentityStore) Load(ctx context.Context, userID string) (Identity, bool, error) {
	b, err := s.kv.Get(ctx, StoreKey+":"+userID)
	if errors.Is(err, sqlitekv.ErrNotFound) {
		return Identity{}, false, nil
	}
	if err != nil {
		return Identity{}, false, err
	}
	id, err := DecodeIdentity(b)
	if err != nil {
		return Identity{}, false, err
	}
	return id, true, nil
}
