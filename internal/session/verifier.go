package session

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier turns bearer tokens into session projections. Tokens are
// HMAC-signed by the external auth service; anything that does not parse,
// verify, or is expired yields the anonymous session rather than an error.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Verify(token string) Session {
	if token == "" {
		return Anonymous()
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Anonymous()
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Anonymous()
	}

	sess := Session{
		Authenticated: true,
		BearerToken:   token,
	}
	if sub, err := claims.GetSubject(); err == nil {
		sess.UserID = sub
	}
	if name, ok := claims["name"].(string); ok {
		sess.Name = name
	}
	if email, ok := claims["email"].(string); ok {
		sess.Email = email
	}
	if role, ok := claims["role"].(string); ok {
		sess.Role = Role(role)
	}
	return sess
}
