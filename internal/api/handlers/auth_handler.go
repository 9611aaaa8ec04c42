package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hbnb-project/hbnb/backend/internal/api/middleware"
	"github.com/hbnb-project/hbnb/backend/internal/application/services"
	"github.com/hbnb-project/hbnb/backend/internal/domain/entities"
	"github.com/hbnb-project/hbnb/backend/internal/domain/policy"
	"github.com/hbnb-project/hbnb/backend/internal/domain/providers"
	"github.com/hbnb-project/hbnb/backend/internal/infrastructure/observability"
	apperrors "github.com/hbnb-project/hbnb/backend/pkg/errors"
)

const loginRateKeyPrefix = "auth:login:rate:"

// AuthService is the subset of services.AuthService used by AuthHandler
type AuthService interface {
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	Register(ctx context.Context, in entities.UserInput) (*services.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*services.AuthResult, error)
	Logout(ctx context.Context, principal *entities.Principal) error
}

// LoginRateLimit configures per-IP login throttling. A zero Limit disables it.
type LoginRateLimit struct {
	Limit  int
	Window time.Duration
}

// AuthHandler handles registration, login and token lifecycle requests
type AuthHandler struct {
	auth    AuthService
	limiter *rateLimiter
	metrics *observability.Metrics
}

// NewAuthHandler creates a new auth handler. cache may be nil.
func NewAuthHandler(auth AuthService, cache providers.CacheProvider, limit LoginRateLimit, metrics *observability.Metrics) *AuthHandler {
	return &AuthHandler{
		auth:    auth,
		limiter: newRateLimiter(cache, limit.Limit, limit.Window),
		metrics: metrics,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	Message      string         `json:"message,omitempty"`
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token,omitempty"`
	TokenType    string         `json:"token_type"`
	ExpiresIn    int64          `json:"expires_in"`
	User         *entities.User `json:"user"`
}

func newTokenResponse(message string, res *services.AuthResult) tokenResponse {
	expiresIn := int64(time.Until(res.AccessTokenExpiresAt).Seconds())
	if expiresIn < 0 {
		expiresIn = 0
	}
	return tokenResponse{
		Message:      message,
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    expiresIn,
		User:         res.User,
	}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in entities.UserInput
	if err := decodeJSON(r, &in); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	res, err := h.auth.Register(r.Context(), in)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, newTokenResponse("User registered successfully", res))
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)
	if allowed, retryAfter := h.limiter.allow(r.Context(), loginRateKeyPrefix+ip); !allowed {
		observability.RecordAuthFailure(r.Context(), h.metrics, "rate_limited")
		w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
		respondWithError(w, http.StatusTooManyRequests, "Too many login attempts, please try again later")
		return
	}

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		respondWithError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeUnauthorized) {
			observability.RecordAuthFailure(r.Context(), h.metrics, "bad_credentials")
			observability.LoggerFromContext(r.Context()).Info().Str("client_ip", ip).Msg("login rejected")
		}
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newTokenResponse("Login successful", res))
}

// Refresh handles POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if req.RefreshToken == "" {
		respondWithAppError(w, r, apperrors.NewFieldValidationError("refresh_token", "Refresh token is required"))
		return
	}

	res, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newTokenResponse("", res))
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	if err := policy.RequireAuthenticated(principal); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if err := h.auth.Logout(r.Context(), principal); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Successfully logged out"})
}

// Protected handles GET /api/v1/auth/protected
func (h *AuthHandler) Protected(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	if err := policy.RequireAuthenticated(principal); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":  fmt.Sprintf("Hello %s! This is a protected endpoint.", principal.FirstName),
		"user_id":  principal.UserID,
		"is_admin": principal.IsAdmin,
	})
}
