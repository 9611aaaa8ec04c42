package handlers

import (
	"net/http"

	"github.com/hbnb-project/hbnb/backend/internal/api/middleware"
	"github.com/hbnb-project/hbnb/backend/internal/application/services"
	"github.com/hbnb-project/hbnb/backend/internal/domain/entities"
	"github.com/hbnb-project/hbnb/backend/internal/domain/policy"
)

// AmenityHandler handles amenity-related HTTP requests
type AmenityHandler struct {
	amenities *services.AmenityService
}

// NewAmenityHandler creates a new amenity handler
func NewAmenityHandler(amenities *services.AmenityService) *AmenityHandler {
	return &AmenityHandler{amenities: amenities}
}

type amenityRequest struct {
	Name string `json:"name"`
}

// ListAmenities handles GET /api/v1/amenities
func (h *AmenityHandler) ListAmenities(w http.ResponseWriter, r *http.Request) {
	opts, err := parseListOptions(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	amenities, err := h.amenities.List(r.Context(), opts)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, amenities)
}

// GetAmenity handles GET /api/v1/amenities/{id}
func (h *AmenityHandler) GetAmenity(w http.ResponseWriter, r *http.Request) {
	amenity, err := h.amenities.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, amenity)
}

// CreateAmenity handles POST /api/v1/amenities
func (h *AmenityHandler) CreateAmenity(w http.ResponseWriter, r *http.Request) {
	if err := policy.CanCreateAmenity(middleware.PrincipalFromContext(r.Context())); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	var req amenityRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	amenity, err := h.amenities.Create(r.Context(), req.Name)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, amenity)
}

// UpdateAmenity handles PUT /api/v1/amenities/{id}
func (h *AmenityHandler) UpdateAmenity(w http.ResponseWriter, r *http.Request) {
	if err := policy.CanUpdateAmenity(middleware.PrincipalFromContext(r.Context())); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	var patch entities.AmenityPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	amenity, err := h.amenities.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, amenity)
}

// DeleteAmenity handles DELETE /api/v1/amenities/{id}
func (h *AmenityHandler) DeleteAmenity(w http.ResponseWriter, r *http.Request) {
	if err := policy.CanDeleteAmenity(middleware.PrincipalFromContext(r.Context())); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if err := h.amenities.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
