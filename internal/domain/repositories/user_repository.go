package repositories

import (
	"context"

	"github.com/hbnb-project/hbnb/backend/internal/domain/entities"
)

// ListOptions pages a listing. A zero Limit returns everything.
type ListOptions struct {
	Limit  int
	Offset int
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create stores a new user. A taken email yields a CONFLICT error on field "email".
	Create(ctx context.Context, user *entities.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*entities.User, error)

	// GetByIDs retrieves the users that exist among ids, in no particular order
	GetByIDs(ctx context.Context, ids []string) ([]*entities.User, error)

	// GetByEmail retrieves a user by email, compared case-insensitively
	GetByEmail(ctx context.Context, email string) (*entities.User, error)

	// List retrieves users ordered by creation time
	List(ctx context.Context, opts ListOptions) ([]*entities.User, error)

	// Update updates a user
	Update(ctx context.Context, user *entities.User) error

	// Delete removes a user together with their places, the reviews on those places, and their reviews
	Delete(ctx context.Context, id string) error
}
