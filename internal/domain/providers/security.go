package providers

import (
	"context"
	"time"
)

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare returns nil when password matches hash.
	Compare(hash, password string) error
}

// TokenType distinguishes access from refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// TokenClaims are the facts embedded in an issued token.
type TokenClaims struct {
	Subject   string
	Type      TokenType
	TokenID   string
	IsAdmin   bool
	Email     string
	FirstName string
	LastName  string
	IssuedAt  time.Time
	ExpiresAt time.Time

	// SessionID is shared by a refresh token and every access token derived from it.
	// SessionExpiresAt is when that refresh token expires.
	SessionID        string
	SessionExpiresAt time.Time
}

// TokenProvider signs and verifies bearer tokens.
type TokenProvider interface {
	// Issue signs claims as a token of the given type. Subject, identity and session fields
	// come from claims; TokenID, IssuedAt and ExpiresAt are assigned by the provider.
	// An empty SessionID starts a new session.
	Issue(claims TokenClaims, tokenType TokenType) (string, *TokenClaims, error)

	// Verify checks signature and expiry. Expired tokens yield an UNAUTHORIZED
	// error with message "Token has expired"; anything else "Invalid token".
	Verify(token string) (*TokenClaims, error)
}

// RevocationStore remembers revoked token IDs until they would have expired anyway.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
