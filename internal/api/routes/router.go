package routes

import (
	"net/http"

	"github.com/hbnb-project/hbnb/backend/internal/api/handlers"
	"github.com/hbnb-project/hbnb/backend/internal/api/loaders"
	"github.com/hbnb-project/hbnb/backend/internal/api/middleware"
	"github.com/hbnb-project/hbnb/backend/internal/domain/repositories"
	"github.com/hbnb-project/hbnb/backend/internal/infrastructure/observability"
)

// APIPrefix is the path prefix of every versioned endpoint.
const APIPrefix = "/api/v1"

// Handlers groups the HTTP handlers the router dispatches to
type Handlers struct {
	Auth      *handlers.AuthHandler
	Users     *handlers.UserHandler
	Amenities *handlers.AmenityHandler
	Places    *handlers.PlaceHandler
	Reviews   *handlers.ReviewHandler
	Health    *handlers.HealthHandler
}

// Repositories backs the per-request dataloaders
type Repositories struct {
	Users     repositories.UserRepository
	Places    repositories.PlaceRepository
	Amenities repositories.AmenityRepository
}

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	handlers       Handlers
	repos          Repositories
	resolver       middleware.PrincipalResolver
	allowedOrigins []string

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
}

// NewRouter creates a new router. cacheMiddleware and metrics may be nil.
func NewRouter(
	h Handlers,
	repos Repositories,
	resolver middleware.PrincipalResolver,
	allowedOrigins []string,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		handlers:        h,
		repos:           repos,
		resolver:        resolver,
		allowedOrigins:  allowedOrigins,
		cacheMiddleware: cacheMiddleware,
		metrics:         metrics,
	}
}

// SetupRoutes registers every route and wraps the mux in the middleware chain
func (r *Router) SetupRoutes() http.Handler {
	h := r.handlers

	r.mux.HandleFunc("GET /{$}", h.Health.Root)
	r.mux.HandleFunc("GET /health", h.Health.Health)

	// Authentication
	r.mux.HandleFunc("POST "+APIPrefix+"/auth/register", h.Auth.Register)
	r.mux.HandleFunc("POST "+APIPrefix+"/auth/login", h.Auth.Login)
	r.mux.HandleFunc("POST "+APIPrefix+"/auth/refresh", h.Auth.Refresh)
	r.mux.HandleFunc("POST "+APIPrefix+"/auth/logout", h.Auth.Logout)
	r.mux.HandleFunc("GET "+APIPrefix+"/auth/protected", h.Auth.Protected)

	// Users
	r.mux.HandleFunc("GET "+APIPrefix+"/users", h.Users.ListUsers)
	r.mux.HandleFunc("POST "+APIPrefix+"/users", h.Users.CreateUser)
	r.mux.HandleFunc("GET "+APIPrefix+"/users/{id}", h.Users.GetUser)
	r.mux.HandleFunc("PUT "+APIPrefix+"/users/{id}", h.Users.UpdateUser)
	r.mux.HandleFunc("DELETE "+APIPrefix+"/users/{id}", h.Users.DeleteUser)

	// Amenities
	r.mux.HandleFunc("GET "+APIPrefix+"/amenities", h.Amenities.ListAmenities)
	r.mux.HandleFunc("POST "+APIPrefix+"/amenities", h.Amenities.CreateAmenity)
	r.mux.HandleFunc("GET "+APIPrefix+"/amenities/{id}", h.Amenities.GetAmenity)
	r.mux.HandleFunc("PUT "+APIPrefix+"/amenities/{id}", h.Amenities.UpdateAmenity)
	r.mux.HandleFunc("DELETE "+APIPrefix+"/amenities/{id}", h.Amenities.DeleteAmenity)

	// Places
	r.mux.HandleFunc("GET "+APIPrefix+"/places", h.Places.ListPlaces)
	r.mux.HandleFunc("POST "+APIPrefix+"/places", h.Places.CreatePlace)
	r.mux.HandleFunc("GET "+APIPrefix+"/places/search", h.Places.SearchPlaces)
	r.mux.HandleFunc("GET "+APIPrefix+"/places/{id}", h.Places.GetPlace)
	r.mux.HandleFunc("PUT "+APIPrefix+"/places/{id}", h.Places.UpdatePlace)
	r.mux.HandleFunc("DELETE "+APIPrefix+"/places/{id}", h.Places.DeletePlace)
	r.mux.HandleFunc("GET "+APIPrefix+"/places/{id}/reviews", h.Places.ListPlaceReviews)

	// Reviews
	r.mux.HandleFunc("GET "+APIPrefix+"/reviews", h.Reviews.ListReviews)
	r.mux.HandleFunc("POST "+APIPrefix+"/reviews", h.Reviews.CreateReview)
	r.mux.HandleFunc("GET "+APIPrefix+"/reviews/{id}", h.Reviews.GetReview)
	r.mux.HandleFunc("PUT "+APIPrefix+"/reviews/{id}", h.Reviews.UpdateReview)
	r.mux.HandleFunc("DELETE "+APIPrefix+"/reviews/{id}", h.Reviews.DeleteReview)
	r.mux.HandleFunc("GET "+APIPrefix+"/reviews/places/{place_id}", h.Reviews.ListReviewsByPlace)

	// Observability wraps the mux directly so the matched pattern is visible after dispatch
	var handler http.Handler = middleware.ObservabilityMiddleware(r.metrics)(r.mux)

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = loaders.Middleware(r.repos.Users, r.repos.Places, r.repos.Amenities)(handler)
	handler = middleware.AuthMiddleware(r.resolver, r.metrics)(handler)
	handler = middleware.ResponseOptimization(APIPrefix)(handler)
	handler = middleware.RecoveryMiddleware(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
