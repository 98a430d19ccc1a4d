// Package session holds the client-side projection of the external auth
// subsystem. The projection is read-only: sessions are created, refreshed
// and destroyed elsewhere, this package only decodes what the bearer token
// says and carries it through the request.
package session

import (
	"context"
	"encoding/json"
	"fmt"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type Session struct {
	Authenticated bool
	UserID        string
	Name          string
	Email         string
	Role          Role
	BearerToken   string
}

// Anonymous is the session used when no valid token is present.
func Anonymous() Session {
	return Session{}
}

func (s Session) IsAdmin() bool {
	return s.Authenticated && s.Role == RoleAdmin
}

// StoreKey is the persisted-cache key for the identity snapshot.
const StoreKey = "auth-store"

// Identity is the durable slice of a session: who the user is, not the
// bearer token. It is what survives a reload.
type Identity struct {
	Authenticated bool   `json:"authenticated"`
	UserID        string `json:"userId,omitempty"`
	Name          string `json:"name,omitempty"`
	Email         string `json:"email,omitempty"`
	Role          Role   `json:"role,omitempty"`
}

func (s Session) Identity() Identity {
	return Identity{
		Authenticated: s.Authenticated,
		UserID:        s.UserID,
		Name:          s.Name,
		Email:         s.Email,
		Role:          s.Role,
	}
}

func EncodeIdentity(id Identity) ([]byte, error) {
	b, err := json.Marshal(id)
	if err != nil {
		return nil, fmt.Errorf("encode identity: %w", err)
	}
	return b, nil
}

func DecodeIdentity(b []byte) (Identity, error) {
	var id Identity
	if err := json.Unmarshal(b, &id); err != nil {
		return Identity{}, fmt.Errorf("decode identity: %w", err)
	}
	return id, nil
}

type ctxKey struct{}

func WithContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored on the request context, or the
// anonymous session when none was attached.
func FromContext(ctx context.Context) Session {
	if s, ok := ctx.Value(ctxKey{}).(Session); ok {
		return s
	}
	return Anonymous()
}
