package services

import (
	"context"
	"strings"
	"time"

	"github.com/hbnb-project/hbnb/backend/internal/domain/entities"
	"github.com/hbnb-project/hbnb/backend/internal/domain/providers"
	"github.com/hbnb-project/hbnb/backend/internal/domain/repositories"
	"github.com/hbnb-project/hbnb/backend/internal/infrastructure/observability"
	apperrors "github.com/hbnb-project/hbnb/backend/pkg/errors"
)

const (
	MsgInvalidCredentials = "Invalid email or password"
	MsgInvalidToken       = "Invalid token"
	MsgTokenRevoked       = "Token has been revoked"
)

// AuthResult is returned by Login, Register and Refresh.
type AuthResult struct {
	User                 *entities.User
	AccessToken          string
	AccessTokenExpiresAt time.Time
	RefreshToken         string
}

// AuthService verifies credentials and resolves bearer tokens into principals
type AuthService struct {
	users       repositories.UserRepository
	userService *UserService
	hasher      providers.PasswordHasher
	tokens      providers.TokenProvider
	revocations providers.RevocationStore
	dummyHash   string
}

// NewAuthService creates a new auth service
func NewAuthService(
	users repositories.UserRepository,
	userService *UserService,
	hasher providers.PasswordHasher,
	tokens providers.TokenProvider,
	revocations providers.RevocationStore,
) *AuthService {
	s := &AuthService{
		users:       users,
		userService: userService,
		hasher:      hasher,
		tokens:      tokens,
		revocations: revocations,
	}
	// compared against for unknown emails so both failure paths cost one bcrypt run
	if h, err := hasher.Hash("hbnb-timing-equalizer"); err == nil {
		s.dummyHash = h
	}
	return s
}

// Login checks credentials. Unknown email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			return nil, err
		}
		_ = s.hasher.Compare(s.dummyHash, password)
		return nil, apperrors.NewUnauthorizedError(MsgInvalidCredentials)
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorizedError(MsgInvalidCredentials)
	}

	return s.issuePair(user)
}

// Register creates a regular user and signs them in. The admin flag is always cleared.
func (s *AuthService) Register(ctx context.Context, in entities.UserInput) (*AuthResult, error) {
	in.IsAdmin = false
	user, err := s.userService.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.issuePair(user)
}

// Refresh exchanges a refresh token for a new access token built from the current user record
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.tokens.Verify(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.Type != providers.TokenTypeRefresh {
		return nil, apperrors.NewUnauthorizedError(MsgInvalidToken)
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}
	user, err := s.loadSubject(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}

	access, accessClaims, err := s.tokens.Issue(sessionClaimsFor(user, claims), providers.TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, AccessToken: access, AccessTokenExpiresAt: accessClaims.ExpiresAt}, nil
}

// ResolvePrincipal verifies an access token and re-reads its user, so deletions
// and admin demotions apply to tokens issued earlier.
func (s *AuthService) ResolvePrincipal(ctx context.Context, accessToken string) (*entities.Principal, error) {
	claims, err := s.tokens.Verify(accessToken)
	if err != nil {
		return nil, err
	}
	if claims.Type != providers.TokenTypeAccess {
		return nil, apperrors.NewUnauthorizedError(MsgInvalidToken)
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}
	user, err := s.loadSubject(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}

	principal := entities.PrincipalFromUser(user)
	principal.TokenID = claims.TokenID
	principal.ExpiresAt = claims.ExpiresAt
	principal.SessionID = claims.SessionID
	principal.SessionExpiresAt = claims.SessionExpiresAt
	return principal, nil
}

// Logout revokes the principal's access token and its login session, so the
// refresh token issued alongside it can no longer mint access tokens.
func (s *AuthService) Logout(ctx context.Context, principal *entities.Principal) error {
	if principal == nil || principal.TokenID == "" {
		return apperrors.NewUnauthorizedError(MsgInvalidToken)
	}
	if err := s.revocations.Revoke(ctx, principal.TokenID, principal.ExpiresAt); err != nil {
		return apperrors.NewInternalError("failed to revoke token", err)
	}
	if principal.SessionID != "" {
		until := principal.SessionExpiresAt
		if until.Before(principal.ExpiresAt) {
			until = principal.ExpiresAt
		}
		if err := s.revocations.Revoke(ctx, sessionRevocationKey(principal.SessionID), until); err != nil {
			return apperrors.NewInternalError("failed to revoke session", err)
		}
	}
	return nil
}

func (s *AuthService) issuePair(user *entities.User) (*AuthResult, error) {
	refresh, refreshClaims, err := s.tokens.Issue(providers.TokenClaims{Subject: user.ID}, providers.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	access, accessClaims, err := s.tokens.Issue(sessionClaimsFor(user, refreshClaims), providers.TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		User:                 user,
		AccessToken:          access,
		AccessTokenExpiresAt: accessClaims.ExpiresAt,
		RefreshToken:         refresh,
	}, nil
}

func (s *AuthService) loadSubject(ctx context.Context, userID string) (*entities.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewUnauthorizedError(MsgInvalidToken)
		}
		return nil, err
	}
	return user, nil
}

// checkRevoked rejects a token whose own ID or session has been revoked
func (s *AuthService) checkRevoked(ctx context.Context, claims *providers.TokenClaims) error {
	keys := []string{claims.TokenID}
	if claims.SessionID != "" {
		keys = append(keys, sessionRevocationKey(claims.SessionID))
	}
	for _, key := range keys {
		revoked, err := s.revocations.IsRevoked(ctx, key)
		if err != nil {
			// lookup errors fail open
			observability.LoggerFromContext(ctx).Warn().Err(err).Msg("token revocation lookup failed")
			continue
		}
		if revoked {
			return apperrors.NewUnauthorizedError(MsgTokenRevoked)
		}
	}
	return nil
}

func sessionRevocationKey(sessionID string) string {
	return "session:" + sessionID
}

// claimsFor builds fresh access claims from the stored user.
func claimsFor(u *entities.User) providers.TokenClaims {
	return providers.TokenClaims{
		Subject:   u.ID,
		IsAdmin:   u.IsAdmin,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// sessionClaimsFor builds access claims that stay in the session of the given refresh token.
func sessionClaimsFor(u *entities.User, refresh *providers.TokenClaims) providers.TokenClaims {
	c := claimsFor(u)
	c.SessionID = refresh.SessionID
	c.SessionExpiresAt = refresh.ExpiresAt
	return c
}
