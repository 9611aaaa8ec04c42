package middleware

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hbnb-project/hbnb/backend/internal/infrastructure/observability"
)

// ObservabilityMiddleware traces each request under its route pattern and records request metrics.
// It must wrap the ServeMux directly: r.Pattern is only filled in on the request the mux receives.
func ObservabilityMiddleware(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := observability.StartSpan(r.Context(), r.Method+" "+r.URL.Path)
			defer span.End()

			rw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			r = r.WithContext(ctx)
			start := time.Now()

			next.ServeHTTP(rw, r)

			route := routeLabel(r)
			span.SetName(route)
			span.SetAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.route", route),
				attribute.String("http.user_agent", r.UserAgent()),
				attribute.Int("http.status_code", rw.statusCode),
			)
			annotatePrincipal(span, r)
			if rw.statusCode >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(rw.statusCode))
			}

			observability.RecordRequestMetric(ctx, metrics, r.Method, route, rw.statusCode, time.Since(start))
		})
	}
}

// routeLabel keeps metric cardinality bounded: IDs never appear in labels.
func routeLabel(r *http.Request) string {
	if r.Pattern == "" {
		return "unmatched"
	}
	return r.Pattern
}

func annotatePrincipal(span trace.Span, r *http.Request) {
	if id := observability.RequestIDFromContext(r.Context()); id != "" {
		span.SetAttributes(attribute.String("hbnb.request_id", id))
	}
	p := PrincipalFromContext(r.Context())
	if p == nil {
		span.SetAttributes(attribute.Bool("hbnb.anonymous", true))
		return
	}
	span.SetAttributes(
		attribute.String("enduser.id", p.UserID),
		attribute.Bool("hbnb.is_admin", p.IsAdmin),
	)
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecorder) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}
