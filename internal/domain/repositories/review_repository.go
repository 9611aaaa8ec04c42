package repositories

import (
	"context"

	"github.com/hbnb-project/hbnb/backend/internal/domain/entities"
)

// ReviewRepository defines the interface for review operations
type ReviewRepository interface {
	// Create stores a review. A second review by the same user for the same place
	// yields a CONFLICT error on field "place_id".
	Create(ctx context.Context, review *entities.Review) error

	GetByID(ctx context.Context, id string) (*entities.Review, error)

	List(ctx context.Context, opts ListOptions) ([]*entities.Review, error)

	// ListByPlace retrieves reviews for a place
	ListByPlace(ctx context.Context, placeID string) ([]*entities.Review, error)

	// ListByUser retrieves reviews by a user
	ListByUser(ctx context.Context, userID string) ([]*entities.Review, error)

	// GetByUserAndPlace returns NOT_FOUND when the user has not reviewed the place
	GetByUserAndPlace(ctx context.Context, userID, placeID string) (*entities.Review, error)

	Update(ctx context.Context, review *entities.Review) error

	Delete(ctx context.Context, id string) error
}
