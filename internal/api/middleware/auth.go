package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hbnb-project/hbnb/backend/internal/domain/entities"
	"github.com/hbnb-project/hbnb/backend/internal/infrastructure/observability"
	apperrors "github.com/hbnb-project/hbnb/backend/pkg/errors"
)

// PrincipalResolver turns a bearer token into the acting principal
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, accessToken string) (*entities.Principal, error)
}

type principalKey struct{}

// WithPrincipal attaches the acting principal to ctx.
func WithPrincipal(ctx context.Context, p *entities.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the acting principal, or nil for anonymous requests.
func PrincipalFromContext(ctx context.Context) *entities.Principal {
	p, _ := ctx.Value(principalKey{}).(*entities.Principal)
	return p
}

// AuthMiddleware resolves an "Authorization: Bearer" header into a principal.
// Requests without the header continue anonymously; a present but unusable
// credential is answered with 401 before reaching any handler.
func AuthMiddleware(resolver PrincipalResolver, metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			scheme, token, ok := strings.Cut(header, " ")
			token = strings.TrimSpace(token)
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				observability.RecordAuthFailure(r.Context(), metrics, "malformed_header")
				writeError(w, http.StatusUnauthorized, "Authorization header must be 'Bearer <token>'")
				return
			}

			principal, err := resolver.ResolvePrincipal(r.Context(), token)
			if err != nil {
				if appErr, ok := apperrors.As(err); ok && appErr.Type == apperrors.ErrorTypeUnauthorized {
					observability.RecordAuthFailure(r.Context(), metrics, "invalid_token")
					writeError(w, http.StatusUnauthorized, appErr.Message)
					return
				}
				observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("failed to resolve principal")
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
