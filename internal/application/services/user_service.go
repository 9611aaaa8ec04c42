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

// UserService handles business logic for users
type UserService struct {
	users   repositories.UserRepository
	hasher  providers.PasswordHasher
	places  *PlaceService
	changes changePublisher
}

// NewUserService creates a new user service
func NewUserService(users repositories.UserRepository, hasher providers.PasswordHasher) *UserService {
	return &UserService{users: users, hasher: hasher}
}

// SetEventBus enables change events
func (s *UserService) SetEventBus(bus providers.EventBus) {
	s.changes.bus = bus
}

// SetPlaceService lets deletions remove the user's places from the search index
func (s *UserService) SetPlaceService(places *PlaceService) {
	s.places = places
}

// Create validates in, rejects a taken email and stores the user with a hashed password
func (s *UserService) Create(ctx context.Context, in entities.UserInput) (*entities.User, error) {
	user, err := entities.NewUser(in)
	if err != nil {
		return nil, err
	}
	password, err := validation.Password(in.Password)
	if err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, user.Email, ""); err != nil {
		return nil, err
	}

	if user.PasswordHash, err = s.hasher.Hash(password); err != nil {
		return nil, err
	}
	// The repository re-checks uniqueness atomically; a concurrent duplicate surfaces here as CONFLICT.
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.changes.publish(ctx, entities.NewChangeEvent(entities.CollectionUsers, entities.ChangeActionCreated, user.ID))
	return user, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id string) (*entities.User, error) {
	return s.users.GetByID(ctx, id)
}

// GetByEmail retrieves a user by email, ignoring case
func (s *UserService) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	return s.users.GetByEmail(ctx, email)
}

// List retrieves users
func (s *UserService) List(ctx context.Context, opts repositories.ListOptions) ([]*entities.User, error) {
	return s.users.List(ctx, opts)
}

// Update applies patch. Email uniqueness is re-checked only when the email changes;
// a new password is validated and re-hashed. An empty patch returns the stored user untouched.
func (s *UserService) Update(ctx context.Context, id string, patch entities.UserPatch) (*entities.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return user, nil
	}

	if patch.Email != nil {
		email, err := validation.Email(*patch.Email)
		if err != nil {
			return nil, err
		}
		if email != user.Email {
			if err := s.ensureEmailFree(ctx, email, user.ID); err != nil {
				return nil, err
			}
		}
	}

	var newHash string
	if patch.Password != nil {
		password, err := validation.Password(*patch.Password)
		if err != nil {
			return nil, err
		}
		if newHash, err = s.hasher.Hash(password); err != nil {
			return nil, err
		}
	}

	if err := user.Apply(patch); err != nil {
		return nil, err
	}
	if newHash != "" {
		user.PasswordHash = newHash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.changes.publish(ctx, entities.NewChangeEvent(entities.CollectionUsers, entities.ChangeActionUpdated, user.ID))
	return user, nil
}

// Delete removes a user; storage cascades to their places and reviews
func (s *UserService) Delete(ctx context.Context, id string) error {
	owned, err := s.places.indexedIDsOwnedBy(ctx, id)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("user_id", id).Msg("failed to list places owned by user")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.places.syncIndex(ctx, owned)
	s.changes.publish(ctx, entities.NewChangeEvent(entities.CollectionUsers, entities.ChangeActionDeleted, id))
	return nil
}

func (s *UserService) ensureEmailFree(ctx context.Context, email, selfID string) error {
	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil && existing.ID != selfID:
		return apperrors.NewConflictError("email", repositories.MsgEmailTaken)
	case err != nil && !apperrors.IsNotFound(err):
		return err
	}
	return nil
}
