package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/hbnb-project/hbnb/backend/internal/domain/entities"
	"github.com/hbnb-project/hbnb/backend/internal/domain/providers"
	"github.com/hbnb-project/hbnb/backend/internal/domain/repositories"
	"github.com/hbnb-project/hbnb/backend/internal/infrastructure/observability"
	apperrors "github.com/hbnb-project/hbnb/backend/pkg/errors"
)

// PlaceService handles business logic for places
type PlaceService struct {
	places          repositories.PlaceRepository
	users           repositories.UserRepository
	amenities       repositories.AmenityRepository
	searchRepo      repositories.PlaceSearchRepository
	strictAmenities bool
	changes         changePublisher
}

// NewPlaceService creates a new place service. searchRepo may be nil.
func NewPlaceService(
	places repositories.PlaceRepository,
	users repositories.UserRepository,
	amenities repositories.AmenityRepository,
	searchRepo repositories.PlaceSearchRepository,
) *PlaceService {
	return &PlaceService{
		places:     places,
		users:      users,
		amenities:  amenities,
		searchRepo: searchRepo,
	}
}

// SetEventBus enables change events
func (s *PlaceService) SetEventBus(bus providers.EventBus) {
	s.changes.bus = bus
}

// SetStrictAmenities makes unknown amenity IDs a validation error instead of being skipped
func (s *PlaceService) SetStrictAmenities(strict bool) {
	s.strictAmenities = strict
}

// Create stores a place for an existing owner and indexes it
func (s *PlaceService) Create(ctx context.Context, in entities.PlaceInput) (*entities.Place, error) {
	if _, err := s.users.GetByID(ctx, in.OwnerID); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFoundError("Owner not found")
		}
		return nil, err
	}

	place, err := entities.NewPlace(in)
	if err != nil {
		return nil, err
	}
	amenityIDs, err := s.resolveAmenities(ctx, in.AmenityIDs)
	if err != nil {
		return nil, err
	}
	place.SetAmenities(amenityIDs)

	if err := s.places.Create(ctx, place); err != nil {
		return nil, err
	}

	s.index(ctx, place)
	s.changes.publish(ctx, entities.NewChangeEvent(entities.CollectionPlaces, entities.ChangeActionCreated, place.ID).
		WithRelated(entities.CollectionUsers, place.OwnerID))
	return place, nil
}

// GetByID retrieves a place by ID
func (s *PlaceService) GetByID(ctx context.Context, id string) (*entities.Place, error) {
	return s.places.GetByID(ctx, id)
}

// List retrieves places
func (s *PlaceService) List(ctx context.Context, opts repositories.ListOptions) ([]*entities.Place, error) {
	return s.places.List(ctx, opts)
}

// ListByOwner retrieves the places a user owns
func (s *PlaceService) ListByOwner(ctx context.Context, ownerID string) ([]*entities.Place, error) {
	return s.places.ListByOwner(ctx, ownerID)
}

// Update applies patch. A supplied amenity list replaces the current set.
func (s *PlaceService) Update(ctx context.Context, id string, patch entities.PlacePatch) (*entities.Place, error) {
	place, err := s.places.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := place.Apply(patch); err != nil {
		return nil, err
	}
	if patch.AmenityIDs != nil {
		amenityIDs, err := s.resolveAmenities(ctx, *patch.AmenityIDs)
		if err != nil {
			return nil, err
		}
		place.SetAmenities(amenityIDs)
	}

	if err := s.places.Update(ctx, place); err != nil {
		return nil, err
	}

	s.index(ctx, place)
	s.changes.publish(ctx, entities.NewChangeEvent(entities.CollectionPlaces, entities.ChangeActionUpdated, place.ID))
	return place, nil
}

// Delete removes a place and its reviews
func (s *PlaceService) Delete(ctx context.Context, id string) error {
	if err := s.places.Delete(ctx, id); err != nil {
		return err
	}

	if s.searchRepo != nil {
		if err := s.searchRepo.Delete(ctx, id); err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).Str("place_id", id).Msg("failed to remove place from search index")
		}
	}
	s.changes.publish(ctx, entities.NewChangeEvent(entities.CollectionPlaces, entities.ChangeActionDeleted, id))
	return nil
}

// Search uses the search index when configured and falls back to filtering in process
func (s *PlaceService) Search(ctx context.Context, params repositories.PlaceSearchParams) ([]*entities.Place, error) {
	if s.searchRepo != nil {
		ids, err := s.searchRepo.Search(ctx, params)
		if err == nil {
			return s.loadInOrder(ctx, ids)
		}
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("place search index unavailable, filtering in process")
	}

	all, err := s.places.List(ctx, repositories.ListOptions{})
	if err != nil {
		return nil, err
	}
	matched := make([]*entities.Place, 0, len(all))
	for _, p := range all {
		if MatchesSearch(p, params) {
			matched = append(matched, p)
		}
	}
	return pageSlice(matched, params.Offset, params.Limit), nil
}

// Reindex pushes every stored place to the search index
func (s *PlaceService) Reindex(ctx context.Context) (int, error) {
	if s.searchRepo == nil {
		return 0, nil
	}
	all, err := s.places.List(ctx, repositories.ListOptions{})
	if err != nil {
		return 0, err
	}
	for i, p := range all {
		if err := s.searchRepo.Index(ctx, p); err != nil {
			return i, fmt.Errorf("indexing place %s: %w", p.ID, err)
		}
	}
	return len(all), nil
}

func (s *PlaceService) resolveAmenities(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return []string{}, nil
	}
	found, err := s.amenities.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	known := make(map[string]struct{}, len(found))
	for _, a := range found {
		known[a.ID] = struct{}{}
	}

	resolved := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := known[id]; ok {
			resolved = append(resolved, id)
			continue
		}
		if s.strictAmenities {
			return nil, apperrors.NewFieldValidationError("amenities", fmt.Sprintf("Amenity %s not found", id))
		}
	}
	return resolved, nil
}

func (s *PlaceService) index(ctx context.Context, place *entities.Place) {
	if s.searchRepo == nil {
		return
	}
	if err := s.searchRepo.Index(ctx, place); err != nil {
		// eventual consistency: the write already succeeded
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("place_id", place.ID).Msg("failed to index place")
	}
}

// indexedIDsWithAmenity lists the places linking amenityID while the link still exists.
// It returns nil when no search index is configured.
func (s *PlaceService) indexedIDsWithAmenity(ctx context.Context, amenityID string) ([]string, error) {
	if s == nil || s.searchRepo == nil {
		return nil, nil
	}
	all, err := s.places.List(ctx, repositories.ListOptions{})
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, p := range all {
		if p.HasAmenity(amenityID) {
			ids = append(ids, p.ID)
		}
	}
	return ids, nil
}

// indexedIDsOwnedBy lists ownerID's places, or nil when no search index is configured
func (s *PlaceService) indexedIDsOwnedBy(ctx context.Context, ownerID string) ([]string, error) {
	if s == nil || s.searchRepo == nil {
		return nil, nil
	}
	owned, err := s.places.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(owned))
	for _, p := range owned {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

// syncIndex re-indexes the listed places from storage and drops the ones that no longer exist.
// Used after deletions that cascade into places outside PlaceService.
func (s *PlaceService) syncIndex(ctx context.Context, ids []string) {
	if s == nil || s.searchRepo == nil || len(ids) == 0 {
		return
	}
	logger := observability.LoggerFromContext(ctx)

	found, err := s.places.GetByIDs(ctx, ids)
	if err != nil {
		logger.Warn().Err(err).Int("places", len(ids)).Msg("failed to load places for index sync")
		return
	}
	present := make(map[string]struct{}, len(found))
	for _, p := range found {
		present[p.ID] = struct{}{}
		s.index(ctx, p)
	}
	for _, id := range ids {
		if _, ok := present[id]; ok {
			continue
		}
		if err := s.searchRepo.Delete(ctx, id); err != nil {
			logger.Warn().Err(err).Str("place_id", id).Msg("failed to remove place from search index")
		}
	}
}

func (s *PlaceService) loadInOrder(ctx context.Context, ids []string) ([]*entities.Place, error) {
	if len(ids) == 0 {
		return []*entities.Place{}, nil
	}
	found, err := s.places.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*entities.Place, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]*entities.Place, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// MatchesSearch reports whether place satisfies every filter in params.
func MatchesSearch(place *entities.Place, params repositories.PlaceSearchParams) bool {
	if q := strings.TrimSpace(params.Query); q != "" {
		q = strings.ToLower(q)
		if !strings.Contains(strings.ToLower(place.Title), q) &&
			!strings.Contains(strings.ToLower(place.Description), q) {
			return false
		}
	}
	if params.MinPrice != nil && place.Price < *params.MinPrice {
		return false
	}
	if params.MaxPrice != nil && place.Price > *params.MaxPrice {
		return false
	}
	for _, id := range params.AmenityIDs {
		if !place.HasAmenity(id) {
			return false
		}
	}
	if params.HasGeo() &&
		DistanceKm(*params.Latitude, *params.Longitude, place.Latitude, place.Longitude) > params.RadiusKm {
		return false
	}
	return true
}

const earthRadiusKm = 6371.0

// DistanceKm is the haversine distance between two coordinates.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func pageSlice[T any](items []T, offset, limit int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return items[:0]
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
