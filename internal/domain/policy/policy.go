// Package policy decides whether a principal may perform a mutation.
// A nil principal is anonymous: reads are open to it, every mutation is
// refused with UNAUTHORIZED. Authenticated refusals are FORBIDDEN.
package policy

import (
	"github.com/hbnb-project/hbnb/backend/internal/domain/entities"
	apperrors "github.com/hbnb-project/hbnb/backend/pkg/errors"
)

const msgAuthRequired = "Authorization token is required"

// RequireAuthenticated refuses anonymous principals.
func RequireAuthenticated(p *entities.Principal) error {
	if p == nil {
		return apperrors.NewUnauthorizedError(msgAuthRequired)
	}
	return nil
}

// RequireAdmin refuses anyone who is not an administrator.
func RequireAdmin(p *entities.Principal, message string) error {
	if err := RequireAuthenticated(p); err != nil {
		return err
	}
	if !p.IsAdmin {
		return apperrors.NewForbiddenError(message)
	}
	return nil
}

func requireSelfOrAdmin(p *entities.Principal, ownerID, message string) error {
	if err := RequireAuthenticated(p); err != nil {
		return err
	}
	if p.IsAdmin || p.Is(ownerID) {
		return nil
	}
	return apperrors.NewForbiddenError(message)
}

// Users

func CanCreateUser(p *entities.Principal) error {
	return RequireAdmin(p, "Only administrators can create users through this endpoint")
}

func CanUpdateUser(p *entities.Principal, targetID string) error {
	return requireSelfOrAdmin(p, targetID, "You can only update your own profile")
}

func CanDeleteUser(p *entities.Principal) error {
	return RequireAdmin(p, "Only administrators can delete users")
}

// RestrictUserPatch drops the fields a non-admin may not change on their own
// profile. Admin patches pass through unchanged.
func RestrictUserPatch(p *entities.Principal, patch entities.UserPatch) entities.UserPatch {
	if p != nil && p.IsAdmin {
		return patch
	}
	return entities.UserPatch{
		FirstName: patch.FirstName,
		LastName:  patch.LastName,
	}
}

// Amenities

func CanCreateAmenity(p *entities.Principal) error {
	return RequireAdmin(p, "Only administrators can create amenities")
}

func CanUpdateAmenity(p *entities.Principal) error {
	return RequireAdmin(p, "Only administrators can update amenities")
}

func CanDeleteAmenity(p *entities.Principal) error {
	return RequireAdmin(p, "Only administrators can delete amenities")
}

// Places

func CanCreatePlace(p *entities.Principal) error {
	return RequireAuthenticated(p)
}

func CanUpdatePlace(p *entities.Principal, place *entities.Place) error {
	return requireSelfOrAdmin(p, place.OwnerID, "You can only update places you own")
}

func CanDeletePlace(p *entities.Principal, place *entities.Place) error {
	return requireSelfOrAdmin(p, place.OwnerID, "You can only delete places you own")
}

// Reviews

func CanCreateReview(p *entities.Principal) error {
	return RequireAuthenticated(p)
}

func CanUpdateReview(p *entities.Principal, review *entities.Review) error {
	return requireSelfOrAdmin(p, review.UserID, "You can only update reviews you created")
}

func CanDeleteReview(p *entities.Principal, review *entities.Review) error {
	return requireSelfOrAdmin(p, review.UserID, "You can only delete reviews you created")
}
