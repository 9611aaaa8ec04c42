package repositories

import (
	"context"

	"github.com/hbnb-project/hbnb/backend/internal/domain/entities"
)

// AmenityRepository defines the interface for amenity data operations
type AmenityRepository interface {
	// Create stores a new amenity. A taken name yields a CONFLICT error on field "name".
	Create(ctx context.Context, amenity *entities.Amenity) error

	GetByID(ctx context.Context, id string) (*entities.Amenity, error)

	GetByIDs(ctx context.Context, ids []string) ([]*entities.Amenity, error)

	// GetByName matches the stored name exactly
	GetByName(ctx context.Context, name string) (*entities.Amenity, error)

	List(ctx context.Context, opts ListOptions) ([]*entities.Amenity, error)

	Update(ctx context.Context, amenity *entities.Amenity) error

	// Delete removes the amenity and unlinks it from every place
	Delete(ctx context.Context, id string) error
}
