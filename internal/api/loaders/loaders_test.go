package loaders_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbnb-project/hbnb/backend/internal/adapters/memory"
	"github.com/hbnb-project/hbnb/backend/internal/api/loaders"
	"github.com/hbnb-project/hbnb/backend/internal/domain/entities"
	apperrors "github.com/hbnb-project/hbnb/backend/pkg/errors"
)

// countingUsers counts GetByIDs calls on top of the in-memory repository
type countingUsers struct {
	*memory.UserRepository
	calls atomic.Int32
}

func (c *countingUsers) GetByIDs(ctx context.Context, ids []string) ([]*entities.User, error) {
	c.calls.Add(1)
	return c.UserRepository.GetByIDs(ctx, ids)
}

func TestUserLoader_LoadManyAndCache(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	users := &countingUsers{UserRepository: store.Users()}

	var ids []string
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		u, err := entities.NewUser(entities.UserInput{FirstName: "A", LastName: "B", Email: email})
		require.NoError(t, err)
		require.NoError(t, users.Create(ctx, u))
		ids = append(ids, u.ID)
	}

	l := loaders.NewLoaders(users, store.Places(), store.Amenities())
	got, errs := l.UserLoader.LoadMany(ctx, append(ids, "missing"))()

	calls := users.calls.Load()
	assert.GreaterOrEqual(t, calls, int32(1))
	require.Len(t, got, 4)
	for i, id := range ids {
		assert.Equal(t, id, got[i].ID)
	}
	require.Len(t, errs, 4)
	assert.Nil(t, errs[0])
	assert.True(t, apperrors.IsNotFound(errs[3]))

	// cached within the same loader set
	_, err := l.UserLoader.Load(ctx, ids[0])()
	require.NoError(t, err)
	assert.Equal(t, calls, users.calls.Load())
}

func TestFor_WithoutLoaders(t *testing.T) {
	assert.Nil(t, loaders.For(context.Background()))

	store := memory.NewStore()
	l := loaders.NewLoaders(store.Users(), store.Places(), store.Amenities())
	ctx := loaders.WithLoaders(context.Background(), l)
	assert.Same(t, l, loaders.For(ctx))
}
