package handlers

import (
	"net/http"

	"github.com/hbnb-project/hbnb/backend/internal/api/middleware"
	"github.com/hbnb-project/hbnb/backend/internal/application/services"
	"github.com/hbnb-project/hbnb/backend/internal/domain/entities"
	"github.com/hbnb-project/hbnb/backend/internal/domain/policy"
	"github.com/hbnb-project/hbnb/backend/internal/domain/validation"
)

// ReviewHandler handles review-related HTTP requests
type ReviewHandler struct {
	reviews *services.ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviews *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// reviewRequest accepts any JSON number for rating so a fractional value
// gets a rating-specific message.
type reviewRequest struct {
	Text    string   `json:"text"`
	Rating  *float64 `json:"rating"`
	PlaceID string   `json:"place_id"`
}

type reviewPatchRequest struct {
	Text   *string  `json:"text"`
	Rating *float64 `json:"rating"`
}

// ListReviews handles GET /api/v1/reviews
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	opts, err := parseListOptions(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	reviews, err := h.reviews.List(r.Context(), opts)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithReviews(w, r, reviews)
}

// GetReview handles GET /api/v1/reviews/{id}
func (h *ReviewHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	review, err := h.reviews.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithReview(w, r, http.StatusOK, review)
}

// ListReviewsByPlace handles GET /api/v1/reviews/places/{place_id}
func (h *ReviewHandler) ListReviewsByPlace(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.ListByPlace(r.Context(), r.PathValue("place_id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithReviews(w, r, reviews)
}

// CreateReview handles POST /api/v1/reviews. The caller becomes the author.
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	if err := policy.CanCreateReview(principal); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	in := entities.ReviewInput{
		Text:    req.Text,
		PlaceID: req.PlaceID,
		UserID:  principal.UserID,
	}
	if req.Rating != nil {
		rating, err := validation.RatingNumber(*req.Rating)
		if err != nil {
			respondWithAppError(w, r, err)
			return
		}
		in.Rating = rating
	}

	review, err := h.reviews.Create(r.Context(), in)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithReview(w, r, http.StatusCreated, review)
}

// UpdateReview handles PUT /api/v1/reviews/{id}
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	if err := policy.RequireAuthenticated(principal); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	review, err := h.reviews.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if err := policy.CanUpdateReview(principal, review); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	var req reviewPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	patch := entities.ReviewPatch{Text: req.Text}
	if req.Rating != nil {
		rating, err := validation.RatingNumber(*req.Rating)
		if err != nil {
			respondWithAppError(w, r, err)
			return
		}
		patch.Rating = &rating
	}

	updated, err := h.reviews.Update(r.Context(), review.ID, patch)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithReview(w, r, http.StatusOK, updated)
}

// DeleteReview handles DELETE /api/v1/reviews/{id}
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	if err := policy.RequireAuthenticated(principal); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	review, err := h.reviews.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if err := policy.CanDeleteReview(principal, review); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if err := h.reviews.Delete(r.Context(), review.ID); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func respondWithReviews(w http.ResponseWriter, r *http.Request, reviews []*entities.Review) {
	l, err := requestLoaders(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	resp, err := presentReviews(r.Context(), l, reviews)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func respondWithReview(w http.ResponseWriter, r *http.Request, status int, review *entities.Review) {
	l, err := requestLoaders(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	resp, err := presentReview(r.Context(), l, review)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, status, resp)
}
