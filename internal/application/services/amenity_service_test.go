package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbnb-project/hbnb/backend/internal/domain/entities"
	apperrors "github.com/hbnb-project/hbnb/backend/pkg/errors"
)

func TestAmenityService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	wifi := f.amenity(t, "WiFi")
	gym := f.amenity(t, "Gym")

	_, err := f.amenities.Create(ctx, " WiFi ")
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeConflict, appErr.Type)
	assert.Equal(t, "name", appErr.Field)

	// renaming to its own name is fine, taking another's is not
	_, err = f.amenities.Update(ctx, wifi.ID, entities.AmenityPatch{Name: strPtr("WiFi")})
	assert.NoError(t, err)
	_, err = f.amenities.Update(ctx, wifi.ID, entities.AmenityPatch{Name: strPtr("Gym")})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))

	renamed, err := f.amenities.Update(ctx, gym.ID, entities.AmenityPatch{Name: strPtr("Fitness")})
	require.NoError(t, err)
	assert.Equal(t, "Fitness", renamed.Name)

	got, err := f.amenities.GetByName(ctx, "Fitness")
	require.NoError(t, err)
	assert.Equal(t, gym.ID, got.ID)

	require.NoError(t, f.amenities.Delete(ctx, gym.ID))
	_, err = f.amenities.GetByID(ctx, gym.ID)
	assert.True(t, apperrors.IsNotFound(err))
}
