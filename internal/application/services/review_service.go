package services

import (
	"context"

	"github.com/hbnb-project/hbnb/backend/internal/domain/entities"
	"github.com/hbnb-project/hbnb/backend/internal/domain/providers"
	"github.com/hbnb-project/hbnb/backend/internal/domain/repositories"
	apperrors "github.com/hbnb-project/hbnb/backend/pkg/errors"
)

const msgOwnPlaceReview = "You cannot review your own place"

// ReviewService handles business logic for reviews.
// Author checks for update and delete belong to the caller's authorization layer.
type ReviewService struct {
	reviews repositories.ReviewRepository
	places  repositories.PlaceRepository
	users   repositories.UserRepository
	changes changePublisher
}

// NewReviewService creates a new review service
func NewReviewService(reviews repositories.ReviewRepository, places repositories.PlaceRepository, users repositories.UserRepository) *ReviewService {
	return &ReviewService{reviews: reviews, places: places, users: users}
}

// SetEventBus enables change events
func (s *ReviewService) SetEventBus(bus providers.EventBus) {
	s.changes.bus = bus
}

// Create checks, in order: the place exists, the user exists, the user does not
// own the place, the user has not reviewed it yet. Field validation comes last.
func (s *ReviewService) Create(ctx context.Context, in entities.ReviewInput) (*entities.Review, error) {
	place, err := s.places.GetByID(ctx, in.PlaceID)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, in.UserID); err != nil {
		return nil, err
	}
	if place.OwnerID == in.UserID {
		return nil, apperrors.NewPolicyError(msgOwnPlaceReview)
	}
	_, err = s.reviews.GetByUserAndPlace(ctx, in.UserID, in.PlaceID)
	switch {
	case err == nil:
		return nil, apperrors.NewConflictError("place_id", repositories.MsgAlreadyReviewed)
	case !apperrors.IsNotFound(err):
		return nil, err
	}

	review, err := entities.NewReview(in)
	if err != nil {
		return nil, err
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}

	s.changes.publish(ctx, entities.NewChangeEvent(entities.CollectionReviews, entities.ChangeActionCreated, review.ID).
		WithRelated(entities.CollectionPlaces, review.PlaceID))
	return review, nil
}

func (s *ReviewService) GetByID(ctx context.Context, id string) (*entities.Review, error) {
	return s.reviews.GetByID(ctx, id)
}

func (s *ReviewService) List(ctx context.Context, opts repositories.ListOptions) ([]*entities.Review, error) {
	return s.reviews.List(ctx, opts)
}

// ListByPlace returns NOT_FOUND when the place does not exist
func (s *ReviewService) ListByPlace(ctx context.Context, placeID string) ([]*entities.Review, error) {
	if _, err := s.places.GetByID(ctx, placeID); err != nil {
		return nil, err
	}
	return s.reviews.ListByPlace(ctx, placeID)
}

func (s *ReviewService) ListByUser(ctx context.Context, userID string) ([]*entities.Review, error) {
	return s.reviews.ListByUser(ctx, userID)
}

func (s *ReviewService) GetByUserAndPlace(ctx context.Context, userID, placeID string) (*entities.Review, error) {
	return s.reviews.GetByUserAndPlace(ctx, userID, placeID)
}

// Update changes text and rating; the place and author stay fixed
func (s *ReviewService) Update(ctx context.Context, id string, patch entities.ReviewPatch) (*entities.Review, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := review.Apply(patch); err != nil {
		return nil, err
	}
	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, err
	}
	s.changes.publish(ctx, entities.NewChangeEvent(entities.CollectionReviews, entities.ChangeActionUpdated, review.ID).
		WithRelated(entities.CollectionPlaces, review.PlaceID))
	return review, nil
}

func (s *ReviewService) Delete(ctx context.Context, id string) error {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, id); err != nil {
		return err
	}
	s.changes.publish(ctx, entities.NewChangeEvent(entities.CollectionReviews, entities.ChangeActionDeleted, id).
		WithRelated(entities.CollectionPlaces, review.PlaceID))
	return nil
}
