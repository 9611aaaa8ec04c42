package services

import (
	"context"

	"github.com/hbnb-project/hbnb/backend/internal/domain/entities"
	"github.com/hbnb-project/hbnb/backend/internal/domain/providers"
	"github.com/hbnb-project/hbnb/backend/internal/domain/repositories"
	"github.com/hbnb-project/hbnb/backend/internal/domain/validation"
	"github.com/hbnb-project/hbnb/backend/internal/infrastructure/observability"
	apperrors "github.com/hbnb-project/hbnb/backend/pkg/errors"
)

// AmenityService handles business logic for amenities
type AmenityService struct {
	amenities repositories.AmenityRepository
	places    *PlaceService
	changes   changePublisher
}

// NewAmenityService creates a new amenity service
func NewAmenityService(amenities repositories.AmenityRepository) *AmenityService {
	return &AmenityService{amenities: amenities}
}

// SetEventBus enables change events
func (s *AmenityService) SetEventBus(bus providers.EventBus) {
	s.changes.bus = bus
}

// SetPlaceService lets deletions refresh the search documents of places that linked the amenity
func (s *AmenityService) SetPlaceService(places *PlaceService) {
	s.places = places
}

// Create stores a new amenity; names are unique and compared case-sensitively
func (s *AmenityService) Create(ctx context.Context, name string) (*entities.Amenity, error) {
	amenity, err := entities.NewAmenity(name)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, amenity.Name, ""); err != nil {
		return nil, err
	}
	if err := s.amenities.Create(ctx, amenity); err != nil {
		return nil, err
	}
	s.changes.publish(ctx, entities.NewChangeEvent(entities.CollectionAmenities, entities.ChangeActionCreated, amenity.ID))
	return amenity, nil
}

func (s *AmenityService) GetByID(ctx context.Context, id string) (*entities.Amenity, error) {
	return s.amenities.GetByID(ctx, id)
}

func (s *AmenityService) GetByName(ctx context.Context, name string) (*entities.Amenity, error) {
	return s.amenities.GetByName(ctx, name)
}

func (s *AmenityService) List(ctx context.Context, opts repositories.ListOptions) ([]*entities.Amenity, error) {
	return s.amenities.List(ctx, opts)
}

// Update renames an amenity, rejecting names held by another amenity
func (s *AmenityService) Update(ctx context.Context, id string, patch entities.AmenityPatch) (*entities.Amenity, error) {
	amenity, err := s.amenities.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		name, err := validation.AmenityName(*patch.Name)
		if err != nil {
			return nil, err
		}
		if err := s.ensureNameFree(ctx, name, amenity.ID); err != nil {
			return nil, err
		}
	}
	if err := amenity.Apply(patch); err != nil {
		return nil, err
	}
	if err := s.amenities.Update(ctx, amenity); err != nil {
		return nil, err
	}
	s.changes.publish(ctx, entities.NewChangeEvent(entities.CollectionAmenities, entities.ChangeActionUpdated, amenity.ID))
	return amenity, nil
}

// Delete removes an amenity and unlinks it from places
func (s *AmenityService) Delete(ctx context.Context, id string) error {
	linked, err := s.places.indexedIDsWithAmenity(ctx, id)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("amenity_id", id).Msg("failed to list places linking amenity")
	}
	if err := s.amenities.Delete(ctx, id); err != nil {
		return err
	}
	s.places.syncIndex(ctx, linked)
	s.changes.publish(ctx, entities.NewChangeEvent(entities.CollectionAmenities, entities.ChangeActionDeleted, id))
	return nil
}

func (s *AmenityService) ensureNameFree(ctx context.Context, name, selfID string) error {
	existing, err := s.amenities.GetByName(ctx, name)
	switch {
	case err == nil && existing.ID != selfID:
		return apperrors.NewConflictError("name", repositories.MsgAmenityTaken)
	case err != nil && !apperrors.IsNotFound(err):
		return err
	}
	return nil
}
