package services

import (
	"context"

	"github.com/hbnb-project/hbnb/backend/internal/domain/entities"
	"github.com/hbnb-project/hbnb/backend/internal/infrastructure/observability"
	apperrors "github.com/hbnb-project/hbnb/backend/pkg/errors"
)

// DefaultAmenities are created by Seed when missing.
var DefaultAmenities = []string{
	"WiFi",
	"Air Conditioning",
	"Swimming Pool",
	"Gym",
	"Parking",
	"Pet Friendly",
	"Kitchen",
	"Washing Machine",
	"TV",
	"Balcony",
}

// SeedOptions configures the initial administrator.
type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
	AdminFirst    string
	AdminLast     string
}

// SeedResult reports what Seed created.
type SeedResult struct {
	AdminCreated     bool
	AmenitiesCreated int
}

// SeedService creates the initial administrator and the basic amenities. Running it twice is harmless.
type SeedService struct {
	users     *UserService
	amenities *AmenityService
}

func NewSeedService(users *UserService, amenities *AmenityService) *SeedService {
	return &SeedService{users: users, amenities: amenities}
}

func (s *SeedService) Seed(ctx context.Context, opts SeedOptions) (*SeedResult, error) {
	logger := observability.LoggerFromContext(ctx)
	result := &SeedResult{}

	if opts.AdminFirst == "" {
		opts.AdminFirst = "Admin"
	}
	if opts.AdminLast == "" {
		opts.AdminLast = "HBnB"
	}

	_, err := s.users.GetByEmail(ctx, opts.AdminEmail)
	switch {
	case err == nil:
		logger.Debug().Str("email", opts.AdminEmail).Msg("admin user already present")
	case apperrors.IsNotFound(err):
		_, err := s.users.Create(ctx, entities.UserInput{
			FirstName: opts.AdminFirst,
			LastName:  opts.AdminLast,
			Email:     opts.AdminEmail,
			Password:  opts.AdminPassword,
			IsAdmin:   true,
		})
		switch {
		case err == nil:
			result.AdminCreated = true
		case apperrors.IsType(err, apperrors.ErrorTypeConflict):
			// another instance seeded concurrently
		default:
			return result, err
		}
	default:
		return result, err
	}

	for _, name := range DefaultAmenities {
		_, err := s.amenities.GetByName(ctx, name)
		if err == nil {
			continue
		}
		if !apperrors.IsNotFound(err) {
			return result, err
		}
		if _, err := s.amenities.Create(ctx, name); err != nil {
			if apperrors.IsType(err, apperrors.ErrorTypeConflict) {
				continue
			}
			return result, err
		}
		result.AmenitiesCreated++
	}

	logger.Info().
		Bool("admin_created", result.AdminCreated).
		Int("amenities_created", result.AmenitiesCreated).
		Msg("seed complete")
	return result, nil
}
