package handlers

import (
	"net/http"
	"strings"

	"github.com/hbnb-project/hbnb/backend/internal/api/middleware"
	"github.com/hbnb-project/hbnb/backend/internal/application/services"
	"github.com/hbnb-project/hbnb/backend/internal/domain/entities"
	"github.com/hbnb-project/hbnb/backend/internal/domain/policy"
	"github.com/hbnb-project/hbnb/backend/internal/domain/repositories"
	apperrors "github.com/hbnb-project/hbnb/backend/pkg/errors"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// PlaceHandler handles place-related HTTP requests
type PlaceHandler struct {
	places  *services.PlaceService
	reviews *services.ReviewService
}

// NewPlaceHandler creates a new place handler
func NewPlaceHandler(places *services.PlaceService, reviews *services.ReviewService) *PlaceHandler {
	return &PlaceHandler{places: places, reviews: reviews}
}

// ListPlaces handles GET /api/v1/places
func (h *PlaceHandler) ListPlaces(w http.ResponseWriter, r *http.Request) {
	opts, err := parseListOptions(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	places, err := h.places.List(r.Context(), opts)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	h.respondWithPlaces(w, r, places)
}

// SearchPlaces handles GET /api/v1/places/search
//
// Query parameters: q, min_price, max_price, lat, lon, radius_km,
// amenities (comma-separated IDs), limit, offset.
func (h *PlaceHandler) SearchPlaces(w http.ResponseWriter, r *http.Request) {
	params, err := parseSearchParams(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	places, err := h.places.Search(r.Context(), params)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	h.respondWithPlaces(w, r, places)
}

// GetPlace handles GET /api/v1/places/{id}
func (h *PlaceHandler) GetPlace(w http.ResponseWriter, r *http.Request) {
	place, err := h.places.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	reviews, err := h.reviews.ListByPlace(r.Context(), place.ID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	l, err := requestLoaders(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	resp, err := presentPlaceDetail(r.Context(), l, place, reviews)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// ListPlaceReviews handles GET /api/v1/places/{id}/reviews
func (h *PlaceHandler) ListPlaceReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.ListByPlace(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithReviews(w, r, reviews)
}

// CreatePlace handles POST /api/v1/places. The caller becomes the owner.
func (h *PlaceHandler) CreatePlace(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	if err := policy.CanCreatePlace(principal); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	var in entities.PlaceInput
	if err := decodeJSON(r, &in); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	in.OwnerID = principal.UserID

	place, err := h.places.Create(r.Context(), in)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	h.respondWithPlace(w, r, http.StatusCreated, place)
}

// UpdatePlace handles PUT /api/v1/places/{id}
func (h *PlaceHandler) UpdatePlace(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	if err := policy.RequireAuthenticated(principal); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	place, err := h.places.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if err := policy.CanUpdatePlace(principal, place); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	var patch entities.PlacePatch
	if err := decodeJSON(r, &patch); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	updated, err := h.places.Update(r.Context(), place.ID, patch)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	h.respondWithPlace(w, r, http.StatusOK, updated)
}

// DeletePlace handles DELETE /api/v1/places/{id}
func (h *PlaceHandler) DeletePlace(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	if err := policy.RequireAuthenticated(principal); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	place, err := h.places.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if err := policy.CanDeletePlace(principal, place); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if err := h.places.Delete(r.Context(), place.ID); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PlaceHandler) respondWithPlaces(w http.ResponseWriter, r *http.Request, places []*entities.Place) {
	l, err := requestLoaders(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	resp, err := presentPlaces(r.Context(), l, places)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (h *PlaceHandler) respondWithPlace(w http.ResponseWriter, r *http.Request, status int, place *entities.Place) {
	l, err := requestLoaders(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	resp, err := presentPlace(r.Context(), l, place)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, status, resp)
}

func parseSearchParams(r *http.Request) (repositories.PlaceSearchParams, error) {
	q := r.URL.Query()
	params := repositories.PlaceSearchParams{
		Query: strings.TrimSpace(q.Get("q")),
	}

	var err error
	if params.MinPrice, err = queryFloat(r, "min_price"); err != nil {
		return params, err
	}
	if params.MaxPrice, err = queryFloat(r, "max_price"); err != nil {
		return params, err
	}
	if params.Latitude, err = queryFloat(r, "lat"); err != nil {
		return params, err
	}
	if params.Longitude, err = queryFloat(r, "lon"); err != nil {
		return params, err
	}
	radius, err := queryFloat(r, "radius_km")
	if err != nil {
		return params, err
	}
	if radius != nil {
		if *radius <= 0 {
			return params, apperrors.NewFieldValidationError("radius_km", "radius_km must be positive")
		}
		if params.Latitude == nil || params.Longitude == nil {
			return params, apperrors.NewFieldValidationError("radius_km", "radius_km requires lat and lon")
		}
		params.RadiusKm = *radius
	}
	if params.MinPrice != nil && params.MaxPrice != nil && *params.MinPrice > *params.MaxPrice {
		return params, apperrors.NewFieldValidationError("min_price", "min_price must not exceed max_price")
	}

	if raw := q.Get("amenities"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				params.AmenityIDs = append(params.AmenityIDs, id)
			}
		}
	}

	if params.Limit, err = queryInt(r, "limit"); err != nil {
		return params, err
	}
	if params.Limit == 0 {
		params.Limit = defaultSearchLimit
	}
	if params.Limit > maxSearchLimit {
		params.Limit = maxSearchLimit
	}
	if params.Offset, err = queryInt(r, "offset"); err != nil {
		return params, err
	}
	return params, nil
}
