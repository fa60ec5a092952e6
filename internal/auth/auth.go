// Package auth marks the identity boundary. Session and credential
// issuance live outside this service; all it does is verify bearer
// tokens and expose the caller's identity to handlers.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the authenticated caller, as asserted by the token
// issuer.
type Identity struct {
	UserID string
	Email  string
}

// ErrInvalidToken indicates a token that failed verification.
var ErrInvalidToken = errors.New("invalid token")

type identityKey struct{}

// ContextWithIdentity attaches the caller identity to the context.
func ContextWithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext extracts the caller identity, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(Identity)

	return identity, ok
}

// Verifier validates HS256 bearer tokens.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a verifier with the shared signing secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Verify parses and validates a token, returning the caller identity.
func (v *Verifier) Verify(tokenString string) (Identity, error) {
	var c claims

	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	if c.Subject == "" {
		return Identity{}, ErrInvalidToken
	}

	return Identity{UserID: c.Subject, Email: c.Email}, nil
}
