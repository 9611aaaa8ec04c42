package services_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbnb-project/hbnb/backend/internal/domain/entities"
	apperrors "github.com/hbnb-project/hbnb/backend/pkg/errors"
)

func TestUserService_CreateThenGet_NeverExposesPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := f.user(t, "Alice@Example.com")
	got, err := f.users.GetByID(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, "hashed:secret123", got.PasswordHash)

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret123")
	assert.NotContains(t, string(raw), "password")
}

func TestUserService_DuplicateEmailAnyCase(t *testing.T) {
	f := newFixture(t)
	f.user(t, "a@x.com")

	_, err := f.users.Create(context.Background(), entities.UserInput{
		FirstName: "B", LastName: "B", Email: "A@X.COM", Password: "secret123",
	})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeConflict, appErr.Type)
	assert.Equal(t, "email", appErr.Field)
	assert.Equal(t, "User with this email already exists", appErr.Message)
}

func TestUserService_CreateValidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.Create(ctx, entities.UserInput{FirstName: "A", LastName: "B", Email: "a@x.com", Password: "12345"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	_, err = f.users.Create(ctx, entities.UserInput{FirstName: "", LastName: "B", Email: "a@x.com", Password: "123456"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestUserService_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t, "a@x.com")
	f.user(t, "b@x.com")

	// same email in another case is not a change of owner
	updated, err := f.users.Update(ctx, a.ID, entities.UserPatch{Email: strPtr("A@x.com"), FirstName: strPtr("Ann")})
	require.NoError(t, err)
	assert.Equal(t, "Ann", updated.FirstName)

	_, err = f.users.Update(ctx, a.ID, entities.UserPatch{Email: strPtr("b@x.com")})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))

	updated, err = f.users.Update(ctx, a.ID, entities.UserPatch{Password: strPtr("newpassword")})
	require.NoError(t, err)
	assert.Equal(t, "hashed:newpassword", updated.PasswordHash)

	_, err = f.users.Update(ctx, a.ID, entities.UserPatch{Password: strPtr("short")})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	_, err = f.users.Update(ctx, "missing", entities.UserPatch{FirstName: strPtr("X")})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUserService_DeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner@x.com")
	guest := f.user(t, "guest@x.com")
	place := f.place(t, owner.ID)
	guestPlace := f.place(t, guest.ID)

	onPlace, err := f.reviews.Create(ctx, entities.ReviewInput{Text: "ok", Rating: 3, PlaceID: place.ID, UserID: guest.ID})
	require.NoError(t, err)
	byOwner, err := f.reviews.Create(ctx, entities.ReviewInput{Text: "ok", Rating: 3, PlaceID: guestPlace.ID, UserID: owner.ID})
	require.NoError(t, err)

	require.NoError(t, f.users.Delete(ctx, owner.ID))

	_, err = f.users.GetByID(ctx, owner.ID)
	assert.True(t, apperrors.IsNotFound(err))
	_, err = f.places.GetByID(ctx, place.ID)
	assert.True(t, apperrors.IsNotFound(err))
	_, err = f.reviews.GetByID(ctx, onPlace.ID)
	assert.True(t, apperrors.IsNotFound(err))
	_, err = f.reviews.GetByID(ctx, byOwner.ID)
	assert.True(t, apperrors.IsNotFound(err))

	events := f.bus.Events()
	last := events[len(events)-1]
	assert.Equal(t, entities.CollectionUsers, last.Collection)
	assert.Equal(t, entities.ChangeActionDeleted, last.Action)
}

func TestUserService_UpdateWithEmptyPatchLeavesUserUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "a@x.com")
	before := len(f.bus.Events())

	got, err := f.users.Update(ctx, u.ID, entities.UserPatch{})
	require.NoError(t, err)
	assert.True(t, u.UpdatedAt.Equal(got.UpdatedAt))
	assert.Len(t, f.bus.Events(), before)

	stored, err := f.store.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, u.UpdatedAt.Equal(stored.UpdatedAt))

	_, err = f.users.Update(ctx, "missing", entities.UserPatch{})
	assert.True(t, apperrors.IsNotFound(err))
}
