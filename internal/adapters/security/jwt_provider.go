package security

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hbnb-project/hbnb/backend/internal/domain/providers"
	apperrors "github.com/hbnb-project/hbnb/backend/pkg/errors"
)

const (
	MsgTokenExpired = "Token has expired"
	MsgTokenInvalid = "Invalid token"
)

// Claims is the JWT payload.
type Claims struct {
	Type      providers.TokenType `json:"type"`
	IsAdmin   bool                `json:"is_admin"`
	Email     string              `json:"email,omitempty"`
	FirstName string              `json:"first_name,omitempty"`
	LastName  string              `json:"last_name,omitempty"`
	SessionID string              `json:"sid"`
	// SessionExpiry is the unix expiry of the session's refresh token
	SessionExpiry int64 `json:"sexp,omitempty"`
	jwt.RegisteredClaims
}

// JWTProvider issues and verifies HS256 tokens
type JWTProvider struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

var _ providers.TokenProvider = (*JWTProvider)(nil)

// NewJWTProvider creates a provider signing with secret
func NewJWTProvider(secret string, accessTTL, refreshTTL time.Duration) *JWTProvider {
	return &JWTProvider{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// Issue signs a token. Refresh tokens carry only the subject.
func (p *JWTProvider) Issue(in providers.TokenClaims, tokenType providers.TokenType) (string, *providers.TokenClaims, error) {
	ttl := p.accessTTL
	if tokenType == providers.TokenTypeRefresh {
		ttl = p.refreshTTL
	}
	now := p.now().UTC().Truncate(time.Second)
	expiresAt := now.Add(ttl)

	sessionID := in.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	sessionExpiry := in.SessionExpiresAt
	if tokenType == providers.TokenTypeRefresh || sessionExpiry.IsZero() {
		sessionExpiry = expiresAt
	}

	claims := Claims{
		Type:          tokenType,
		SessionID:     sessionID,
		SessionExpiry: sessionExpiry.Unix(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   in.Subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	if tokenType == providers.TokenTypeAccess {
		claims.IsAdmin = in.IsAdmin
		claims.Email = in.Email
		claims.FirstName = in.FirstName
		claims.LastName = in.LastName
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", nil, apperrors.NewInternalError("failed to sign token", err)
	}
	return signed, toTokenClaims(&claims), nil
}

// Verify parses and validates a token.
func (p *JWTProvider) Verify(token string) (*providers.TokenClaims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(p.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.NewUnauthorizedError(MsgTokenExpired)
		}
		return nil, apperrors.NewUnauthorizedError(MsgTokenInvalid)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, apperrors.NewUnauthorizedError(MsgTokenInvalid)
	}
	return toTokenClaims(claims), nil
}

func toTokenClaims(c *Claims) *providers.TokenClaims {
	out := &providers.TokenClaims{
		Subject:   c.Subject,
		Type:      c.Type,
		TokenID:   c.ID,
		SessionID: c.SessionID,
		IsAdmin:   c.IsAdmin,
		Email:     c.Email,
		FirstName: c.FirstName,
		LastName:  c.LastName,
	}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	if c.SessionExpiry > 0 {
		out.SessionExpiresAt = time.Unix(c.SessionExpiry, 0).UTC()
	}
	return out
}
