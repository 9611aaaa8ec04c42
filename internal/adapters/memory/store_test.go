package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/hbnb-project/hbnb/backend/internal/adapters/memory"
	"github.com/hbnb-project/hbnb/backend/internal/domain/entities"
	"github.com/hbnb-project/hbnb/backend/internal/domain/repositories"
	apperrors "github.com/hbnb-project/hbnb/backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(t *testing.T, email string) *entities.User {
	t.Helper()
	u, err := entities.NewUser(entities.UserInput{FirstName: "F", LastName: "L", Email: email})
	require.NoError(t, err)
	return u
}

func newPlace(t *testing.T, ownerID string) *entities.Place {
	t.Helper()
	p, err := entities.NewPlace(entities.PlaceInput{Title: "Place", Price: 10, OwnerID: ownerID})
	require.NoError(t, err)
	return p
}

func TestUserRepository_EmailUniqueCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	users := memory.NewStore().Users()

	require.NoError(t, users.Create(ctx, newUser(t, "a@x.com")))

	dup := newUser(t, "a@x.com")
	dup.Email = "A@X.COM"
	err := users.Create(ctx, dup)
	require.Error(t, err)
	appErr, _ := apperrors.As(err)
	assert.Equal(t, apperrors.ErrorTypeConflict, appErr.Type)
	assert.Equal(t, "email", appErr.Field)

	got, err := users.GetByEmail(ctx, "A@x.com")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Email)
}

func TestUserRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	users := memory.NewStore().Users()
	u := newUser(t, "copy@x.com")
	require.NoError(t, users.Create(ctx, u))

	got, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	got.FirstName = "Mutated"

	again, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "F", again.FirstName)
}

func TestUserRepository_ConcurrentCreateSameEmail(t *testing.T) {
	ctx := context.Background()
	users := memory.NewStore().Users()

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u, _ := entities.NewUser(entities.UserInput{FirstName: "F", LastName: "L", Email: "race@x.com"})
			if users.Create(ctx, u) == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
}

func TestDeleteUser_Cascades(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	owner := newUser(t, "owner@x.com")
	guest := newUser(t, "guest@x.com")
	require.NoError(t, store.Users().Create(ctx, owner))
	require.NoError(t, store.Users().Create(ctx, guest))

	ownersPlace := newPlace(t, owner.ID)
	guestsPlace := newPlace(t, guest.ID)
	require.NoError(t, store.Places().Create(ctx, ownersPlace))
	require.NoError(t, store.Places().Create(ctx, guestsPlace))

	onOwnersPlace, _ := entities.NewReview(entities.ReviewInput{Text: "t", Rating: 3, PlaceID: ownersPlace.ID, UserID: guest.ID})
	byOwner, _ := entities.NewReview(entities.ReviewInput{Text: "t", Rating: 3, PlaceID: guestsPlace.ID, UserID: owner.ID})
	require.NoError(t, store.Reviews().Create(ctx, onOwnersPlace))
	require.NoError(t, store.Reviews().Create(ctx, byOwner))

	require.NoError(t, store.Users().Delete(ctx, owner.ID))

	_, err := store.Places().GetByID(ctx, ownersPlace.ID)
	assert.True(t, apperrors.IsNotFound(err))
	_, err = store.Reviews().GetByID(ctx, onOwnersPlace.ID)
	assert.True(t, apperrors.IsNotFound(err))
	_, err = store.Reviews().GetByID(ctx, byOwner.ID)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = store.Places().GetByID(ctx, guestsPlace.ID)
	assert.NoError(t, err)

	assert.True(t, apperrors.IsNotFound(store.Users().Delete(ctx, owner.ID)))
}

func TestReviewRepository_OnePerUserAndPlace(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	owner, guest := newUser(t, "o@x.com"), newUser(t, "g@x.com")
	require.NoError(t, store.Users().Create(ctx, owner))
	require.NoError(t, store.Users().Create(ctx, guest))
	place := newPlace(t, owner.ID)
	require.NoError(t, store.Places().Create(ctx, place))

	first, _ := entities.NewReview(entities.ReviewInput{Text: "good", Rating: 4, PlaceID: place.ID, UserID: guest.ID})
	second, _ := entities.NewReview(entities.ReviewInput{Text: "again", Rating: 5, PlaceID: place.ID, UserID: guest.ID})
	require.NoError(t, store.Reviews().Create(ctx, first))
	err := store.Reviews().Create(ctx, second)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))

	got, err := store.Reviews().GetByUserAndPlace(ctx, guest.ID, place.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	byPlace, err := store.Reviews().ListByPlace(ctx, place.ID)
	require.NoError(t, err)
	assert.Len(t, byPlace, 1)
}

func TestPlaceRepository_AmenityLinks(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	owner := newUser(t, "o@x.com")
	require.NoError(t, store.Users().Create(ctx, owner))
	wifi, _ := entities.NewAmenity("WiFi")
	gym, _ := entities.NewAmenity("Gym")
	require.NoError(t, store.Amenities().Create(ctx, wifi))
	require.NoError(t, store.Amenities().Create(ctx, gym))

	place := newPlace(t, owner.ID)
	place.SetAmenities([]string{wifi.ID, "missing", gym.ID})
	require.NoError(t, store.Places().Create(ctx, place))

	got, err := store.Places().GetByID(ctx, place.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{wifi.ID, gym.ID}, got.AmenityIDs)

	require.NoError(t, store.Amenities().Delete(ctx, wifi.ID))
	got, err = store.Places().GetByID(ctx, place.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{gym.ID}, got.AmenityIDs)
}

func TestAmenityRepository_NameIsCaseSensitive(t *testing.T) {
	ctx := context.Background()
	amenities := memory.NewStore().Amenities()

	wifi, _ := entities.NewAmenity("WiFi")
	require.NoError(t, amenities.Create(ctx, wifi))

	lower, _ := entities.NewAmenity("wifi")
	require.NoError(t, amenities.Create(ctx, lower))

	dup, _ := entities.NewAmenity("WiFi")
	assert.True(t, apperrors.IsType(amenities.Create(ctx, dup), apperrors.ErrorTypeConflict))

	wifi.Name = "wifi"
	assert.True(t, apperrors.IsType(amenities.Update(ctx, wifi), apperrors.ErrorTypeConflict))
}

func TestList_Paging(t *testing.T) {
	ctx := context.Background()
	amenities := memory.NewStore().Amenities()
	for _, n := range []string{"A", "B", "C"} {
		a, _ := entities.NewAmenity(n)
		require.NoError(t, amenities.Create(ctx, a))
	}

	all, err := amenities.List(ctx, repositories.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	paged, err := amenities.List(ctx, repositories.ListOptions{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, all[1].ID, paged[0].ID)

	empty, err := amenities.List(ctx, repositories.ListOptions{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, empty)
}
