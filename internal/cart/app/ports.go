package app

import (
	"context"

	"github.com/dwikikusuma/storefront/internal/cart/domain"
)

// Ack is the remote service's acknowledgement of a cart mutation.
type Ack struct {
	Success bool
	Message string
}

// CartGateway is the remote cart service. The bearer token identifies the
// session-keyed cart on every call.
type CartGateway interface {
	Fetch(ctx context.Context, bearer string) (domain.RemoteCart, error)
	AddLines(ctx context.Context, bearer string, lines []domain.Line) (Ack, error)
	SetQuantity(ctx context.Context, bearer string, lineID string, quantity int) error
	Remove(ctx context.Context, bearer string, lineID string) error
}

// SnapshotStore persists the derived cart state across restarts. Writes
// happen synchronously after remote confirmation, never optimistically.
type SnapshotStore interface {
	Save(ctx context.Context, userID string, s domain.Snapshot) error
	Load(ctx context.Context, userID string) (domain.Snapshot, bool, error)
	Clear(ctx context.Context, userID string) error
}
