package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Quantity bounds enforced before any value reaches the remote service.
const (
	MinQuantity = 1
	MaxQuantity = 99
)

func ValidQuantity(q int) bool {
	return q >= MinQuantity && q <= MaxQuantity
}

// Line is one product's presence in the derived cart, unique by ProductID.
type Line struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Snapshot is the locally derived cart state. It is a projection of the
// remote cart, never authoritative: on any conflict the remote wins.
type Snapshot struct {
	Lines     []Line `json:"items"`
	ItemCount int    `json:"itemCount"`
}

// Recount rederives ItemCount from the lines. The count is never adjusted
// incrementally, so it cannot drift from the sum.
func (s *Snapshot) Recount() {
	total := 0
	for _, l := range s.Lines {
		total += l.Quantity
	}
	s.ItemCount = total
}

func (s Snapshot) Has(productID string) bool {
	for _, l := range s.Lines {
		if l.ProductID == productID {
			return true
		}
	}
	return false
}

// Clone returns a copy safe to hand out while the original keeps mutating.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{ItemCount: s.ItemCount}
	if len(s.Lines) > 0 {
		out.Lines = make([]Line, len(s.Lines))
		copy(out.Lines, s.Lines)
	}
	return out
}

// RemoteLine is a server-assigned cart line. LineID, not ProductID, is the
// identifier used for update and delete calls.
type RemoteLine struct {
	LineID    string
	ProductID string
	Quantity  int
}

// RemoteCart is the authoritative cart as last reported by the remote
// service.
type RemoteCart struct {
	OwnerID   string
	Lines     []RemoteLine
	UpdatedAt time.Time
}

// SnapshotFromRemote projects a remote cart into derived local state,
// fully replacing whatever was known before.
func SnapshotFromRemote(rc RemoteCart) Snapshot {
	var s Snapshot
	for _, l := range rc.Lines {
		s.Lines = append(s.Lines, Line{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	s.Recount()
	return s
}

// EncodeSnapshot and DecodeSnapshot form the explicit serialization
// boundary of the persisted client cache.
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode cart snapshot: %w", err)
	}
	return b, nil
}

func DecodeSnapshot(b []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode cart snapshot: %w", err)
	}
	s.Recount()
	return s, nil
}
