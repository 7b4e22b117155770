/*
Package session supplies the current bearer token and user identity to the chat core.

The provider is passed explicitly to every component that needs it, rather than
being read from an ambient global, so read access stays scoped by interface.
*/
package session

import (
	"fmt"

	"coachchat/internal/pkg/authtok"
)

// Kind identifies which side of a conversation a user is on.
type Kind string

const (
	KindStudent Kind = "student"
	KindTrainer Kind = "trainer"
)

// Identity is the current user's id and role as carried by the session token.
type Identity struct {
	ID   string
	Kind Kind
}

// Provider supplies the current bearer token and user identity.
// The chat core calls Token before opening a live connection and before each
// durable call; session teardown on auth failure is the caller's concern.
type Provider interface {
	Token() string
	Identity() Identity
}

// Static is a Provider backed by a fixed token whose identity was extracted
// from the token's claims once, at construction.
type Static struct {
	token    string
	identity Identity
}

var _ Provider = (*Static)(nil)

// FromToken builds a Static provider from a bearer token, deriving the
// identity from the token's claims.
func FromToken(token string) (*Static, error) {
	if token == "" {
		return nil, fmt.Errorf("session token is empty")
	}

	claims, err := authtok.Extract(token)
	if err != nil {
		return nil, err
	}

	kind := Kind(claims.UserType)
	if kind != KindStudent && kind != KindTrainer {
		return nil, fmt.Errorf("session token carries unknown user type %q", claims.UserType)
	}

	return &Static{
		token:    token,
		identity: Identity{ID: claims.ID, Kind: kind},
	}, nil
}

// New builds a Static provider from an explicit token and identity.
// Used when the identity is already known, e.g. in tests.
func New(token string, identity Identity) *Static {
	return &Static{token: token, identity: identity}
}

// Token returns the current bearer token.
func (s *Static) Token() string {
	return s.token
}

// Identity returns the current user's identity.
func (s *Static) Identity() Identity {
	return s.identity
}
