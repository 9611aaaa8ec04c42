package handlers

import (
	"net/http"

	"github.com/hbnb-project/hbnb/backend/internal/api/middleware"
	"github.com/hbnb-project/hbnb/backend/internal/application/services"
	"github.com/hbnb-project/hbnb/backend/internal/domain/entities"
	"github.com/hbnb-project/hbnb/backend/internal/domain/policy"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	users *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// ListUsers handles GET /api/v1/users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	opts, err := parseListOptions(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	users, err := h.users.List(r.Context(), opts)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, users)
}

// GetUser handles GET /api/v1/users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}

// CreateUser handles POST /api/v1/users. Only administrators may call it; they
// may set the admin flag explicitly.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	if err := policy.CanCreateUser(middleware.PrincipalFromContext(r.Context())); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	var in entities.UserInput
	if err := decodeJSON(r, &in); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	user, err := h.users.Create(r.Context(), in)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, user)
}

// UpdateUser handles PUT /api/v1/users/{id}. Non-admins may only change their
// own first and last name; other fields they send are dropped.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	principal := middleware.PrincipalFromContext(r.Context())

	if err := policy.RequireAuthenticated(principal); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if _, err := h.users.GetByID(r.Context(), id); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if err := policy.CanUpdateUser(principal, id); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	var patch entities.UserPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	user, err := h.users.Update(r.Context(), id, policy.RestrictUserPatch(principal, patch))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}

// DeleteUser handles DELETE /api/v1/users/{id}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := policy.CanDeleteUser(middleware.PrincipalFromContext(r.Context())); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if err := h.users.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
