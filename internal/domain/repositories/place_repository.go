package repositories

import (
	"context"

	"github.com/hbnb-project/hbnb/backend/internal/domain/entities"
)

// PlaceRepository defines the interface for place data operations.
// Places carry their amenity IDs; Create and Update persist the set as given.
type PlaceRepository interface {
	// Create stores a new place and its amenity links
	Create(ctx context.Context, place *entities.Place) error

	GetByID(ctx context.Context, id string) (*entities.Place, error)

	GetByIDs(ctx context.Context, ids []string) ([]*entities.Place, error)

	List(ctx context.Context, opts ListOptions) ([]*entities.Place, error)

	// ListByOwner retrieves the places owned by a user
	ListByOwner(ctx context.Context, ownerID string) ([]*entities.Place, error)

	// Update updates the scalar fields and replaces the amenity links
	Update(ctx context.Context, place *entities.Place) error

	// Delete removes a place and its reviews
	Delete(ctx context.Context, id string) error
}

// PlaceSearchRepository defines the interface for place search operations (e.g. Typesense)
type PlaceSearchRepository interface {
	// Search returns the IDs of matching places, best match first
	Search(ctx context.Context, params PlaceSearchParams) ([]string, error)

	// Index inserts or replaces a place document
	Index(ctx context.Context, place *entities.Place) error

	// Delete removes a place from the index
	Delete(ctx context.Context, id string) error
}

// PlaceSearchParams filters place searches. Nil pointers and zero values disable a filter.
type PlaceSearchParams struct {
	Query      string
	MinPrice   *float64
	MaxPrice   *float64
	Latitude   *float64
	Longitude  *float64
	RadiusKm   float64
	AmenityIDs []string
	Limit      int
	Offset     int
}

// HasGeo reports whether a radius search was requested.
func (p PlaceSearchParams) HasGeo() bool {
	return p.Latitude != nil && p.Longitude != nil && p.RadiusKm > 0
}
