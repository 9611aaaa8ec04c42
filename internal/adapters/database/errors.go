package database

import (
	"errors"

	"github.com/lib/pq"

	"github.com/hbnb-project/hbnb/backend/internal/domain/repositories"
	apperrors "github.com/hbnb-project/hbnb/backend/pkg/errors"
)

// translateWriteError maps constraint violations onto domain errors and wraps
// everything else as internal.
func translateWriteError(err error, msg string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case constraintUserEmail:
			return apperrors.NewConflictError("email", repositories.MsgEmailTaken)
		case constraintAmenityName:
			return apperrors.NewConflictError("name", repositories.MsgAmenityTaken)
		case constraintReviewUserPlace:
			return apperrors.NewConflictError("place_id", repositories.MsgAlreadyReviewed)
		case constraintPlaceOwner:
			return apperrors.NewNotFoundError("Owner not found")
		case constraintReviewPlace:
			return apperrors.NewNotFoundError("Place not found")
		case constraintReviewUser:
			return apperrors.NewNotFoundError("User not found")
		case constraintPlaceAmenityLink:
			return apperrors.NewFieldValidationError("amenities", "Amenity not found")
		}
	}
	return apperrors.NewInternalError(msg, err)
}
