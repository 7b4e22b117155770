/*
Package authtok extracts identity claims from the portal's bearer tokens.

The client never holds the signing secret, so tokens are parsed without
signature verification: the backend remains the authority on token validity,
and the claims are used only to derive the current user's identity and to
anticipate expiry.
*/
package authtok

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

// Claims defines the structure of the JSON Web Token (JWT) claims issued by the portal.
type Claims struct {
	// StandardClaims embeds the JWT standard fields such as Exp (Expiration),
	// Iat (Issued At), and Iss (Issuer).
	jwt.StandardClaims

	// ID is the unified identifier of the signed-in user.
	ID string `json:"id"`

	// UserType defines the role of the user within the portal ("student" or "trainer").
	UserType string `json:"user_type"`
}

// Extract parses the bearer token string and returns its claims without verifying
// the signature. It fails only on malformed tokens.
func Extract(tokenString string) (*Claims, error) {
	claims := &Claims{}

	parser := &jwt.Parser{}
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("failed to parse bearer token: %w", err)
	}

	if claims.ID == "" {
		return nil, fmt.Errorf("bearer token carries no user id claim")
	}

	return claims, nil
}

// ExpiresWithin reports whether the token expires within the given window.
// Tokens without an expiration claim never report as expiring.
func (c *Claims) ExpiresWithin(window time.Duration) bool {
	if c.ExpiresAt == 0 {
		return false
	}
	return time.Now().Add(window).Unix() >= c.ExpiresAt
}
