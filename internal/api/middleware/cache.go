package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"github.com/hbnb-project/hbnb/backend/internal/application/services"
	"github.com/hbnb-project/hbnb/backend/internal/domain/entities"
	"github.com/hbnb-project/hbnb/backend/internal/domain/providers"
	"github.com/hbnb-project/hbnb/backend/internal/infrastructure/observability"
)

// CacheStatusHeader reports HIT or MISS on cacheable responses
const CacheStatusHeader = "X-Cache"

// CacheConfig holds cache configuration for a route prefix
type CacheConfig struct {
	Collection entities.Collection
	TTLSeconds int
}

// CacheMiddleware caches GET responses under keys namespaced by collection, so a
// change event can drop every response that may embed the changed entity.
type CacheMiddleware struct {
	cache        providers.CacheProvider
	metrics      *observability.Metrics
	routeConfigs map[string]CacheConfig
}

// DefaultCacheRoutes maps API path prefixes to the collection they serve.
func DefaultCacheRoutes(apiPrefix string) map[string]CacheConfig {
	return map[string]CacheConfig{
		apiPrefix + "/users":     {Collection: entities.CollectionUsers, TTLSeconds: 300},
		apiPrefix + "/amenities": {Collection: entities.CollectionAmenities, TTLSeconds: 1800},
		apiPrefix + "/places":    {Collection: entities.CollectionPlaces, TTLSeconds: 300},
		apiPrefix + "/reviews":   {Collection: entities.CollectionReviews, TTLSeconds: 300},
	}
}

// NewCacheMiddleware creates a new cache middleware
func NewCacheMiddleware(cache providers.CacheProvider, metrics *observability.Metrics, routes map[string]CacheConfig) *CacheMiddleware {
	return &CacheMiddleware{
		cache:        cache,
		metrics:      metrics,
		routeConfigs: routes,
	}
}

// Middleware returns the cache middleware handler
func (m *CacheMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || m.cache == nil {
			next.ServeHTTP(w, r)
			return
		}

		config, ok := m.getRouteConfig(r.URL.Path)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		logger := observability.LoggerFromContext(ctx)
		cacheKey := m.generateCacheKey(config.Collection, r)

		cached, err := m.cache.Get(ctx, cacheKey)
		if err == nil {
			observability.RecordCacheHit(ctx, m.metrics, string(config.Collection))
			w.Header().Set(CacheStatusHeader, "HIT")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(cached)
			return
		}
		if !errors.Is(err, providers.ErrCacheMiss) {
			logger.Warn().Err(err).Str("key", cacheKey).Msg("cache lookup failed")
		}

		observability.RecordCacheMiss(ctx, m.metrics, string(config.Collection))
		w.Header().Set(CacheStatusHeader, "MISS")

		recorder := &responseRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			body:           &bytes.Buffer{},
		}
		next.ServeHTTP(recorder, r)

		// Only cache successful responses
		if recorder.statusCode == http.StatusOK && recorder.body.Len() > 0 {
			if err := m.cache.Set(ctx, cacheKey, recorder.body.Bytes(), config.TTLSeconds); err != nil {
				logger.Warn().Err(err).Str("key", cacheKey).Msg("failed to cache response")
			}
		}
	})
}

// getRouteConfig returns the config of the longest matching prefix
func (m *CacheMiddleware) getRouteConfig(path string) (CacheConfig, bool) {
	var (
		best    CacheConfig
		bestLen int
	)
	for prefix, config := range m.routeConfigs {
		if path != prefix && !strings.HasPrefix(path, prefix+"/") {
			continue
		}
		if len(prefix) > bestLen {
			best, bestLen = config, len(prefix)
		}
	}
	return best, bestLen > 0
}

// generateCacheKey hashes path and query under the collection namespace
func (m *CacheMiddleware) generateCacheKey(collection entities.Collection, r *http.Request) string {
	key := r.URL.Path
	if r.URL.RawQuery != "" {
		key += "?" + r.URL.Query().Encode()
	}
	hash := sha256.Sum256([]byte(key))
	return services.HTTPCachePrefix + string(collection) + ":" + hex.EncodeToString(hash[:])
}

// responseRecorder captures the response for caching
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
	written    bool
}

// WriteHeader captures the status code
func (r *responseRecorder) WriteHeader(statusCode int) {
	if !r.written {
		r.statusCode = statusCode
		r.ResponseWriter.WriteHeader(statusCode)
		r.written = true
	}
}

// Write captures the response body and writes to the client
func (r *responseRecorder) Write(data []byte) (int, error) {
	if !r.written {
		r.WriteHeader(http.StatusOK)
	}
	r.body.Write(data)
	return r.ResponseWriter.Write(data)
}
