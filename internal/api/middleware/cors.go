package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// corsPreflightMaxAge is how long browsers may reuse a preflight answer
const corsPreflightMaxAge = 600

var (
	corsAllowedMethods = strings.Join([]string{
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
	}, ", ")
	corsAllowedHeaders = strings.Join([]string{"Content-Type", "Authorization", "If-None-Match"}, ", ")
	// headers set by the logging, cache, ETag and login rate limit layers
	corsExposedHeaders = strings.Join([]string{RequestIDHeader, CacheStatusHeader, "ETag", "Retry-After"}, ", ")
)

// corsOrigins is the configured allow-list. "*" anywhere in it admits every origin.
type corsOrigins struct {
	any     bool
	allowed map[string]struct{}
}

func newCORSOrigins(origins []string) corsOrigins {
	o := corsOrigins{allowed: make(map[string]struct{}, len(origins))}
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "*" {
			o.any = true
			continue
		}
		if origin != "" {
			o.allowed[origin] = struct{}{}
		}
	}
	if len(o.allowed) == 0 {
		o.any = true
	}
	return o
}

func (o corsOrigins) admits(origin string) bool {
	if o.any {
		return true
	}
	_, ok := o.allowed[origin]
	return ok
}

// CORSMiddleware adds CORS headers for the configured origins. An empty list allows any origin.
// Browser preflights are answered here with 204 and never reach the API handlers.
func CORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	origins := newCORSOrigins(allowedOrigins)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			origin := r.Header.Get("Origin")

			if origin != "" && origins.admits(origin) {
				if origins.any {
					h.Set("Access-Control-Allow-Origin", "*")
				} else {
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
				h.Set("Access-Control-Expose-Headers", corsExposedHeaders)
			}

			if r.Method != http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			h.Set("Access-Control-Allow-Methods", corsAllowedMethods)
			h.Set("Access-Control-Allow-Headers", corsAllowedHeaders)
			if r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Max-Age", strconv.Itoa(corsPreflightMaxAge))
			}
			w.WriteHeader(http.StatusNoContent)
		})
	}
}
