// Package loaders batches the user, place and amenity lookups that one request's
// representations need into a single repository call per kind.
package loaders

import (
	"context"
	"net/http"
	"time"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/hbnb-project/hbnb/backend/internal/domain/entities"
	"github.com/hbnb-project/hbnb/backend/internal/domain/repositories"
	apperrors "github.com/hbnb-project/hbnb/backend/pkg/errors"
)

type ctxKey string

const loadersKey ctxKey = "dataloaders"

// batchWait bounds how long a loader collects keys before dispatching.
const batchWait = 2 * time.Millisecond

// Loaders contains the per-request dataloaders
type Loaders struct {
	UserLoader    *dataloader.Loader[string, *entities.User]
	PlaceLoader   *dataloader.Loader[string, *entities.Place]
	AmenityLoader *dataloader.Loader[string, *entities.Amenity]
}

// NewLoaders creates a fresh set of loaders. Their caches live as long as the Loaders value.
func NewLoaders(
	userRepo repositories.UserRepository,
	placeRepo repositories.PlaceRepository,
	amenityRepo repositories.AmenityRepository,
) *Loaders {
	return &Loaders{
		UserLoader: dataloader.NewBatchedLoader(
			batchByID(userRepo.GetByIDs, func(u *entities.User) string { return u.ID }, "User not found"),
			dataloader.WithWait[string, *entities.User](batchWait),
		),
		PlaceLoader: dataloader.NewBatchedLoader(
			batchByID(placeRepo.GetByIDs, func(p *entities.Place) string { return p.ID }, "Place not found"),
			dataloader.WithWait[string, *entities.Place](batchWait),
		),
		AmenityLoader: dataloader.NewBatchedLoader(
			batchByID(amenityRepo.GetByIDs, func(a *entities.Amenity) string { return a.ID }, "Amenity not found"),
			dataloader.WithWait[string, *entities.Amenity](batchWait),
		),
	}
}

// batchByID adapts a GetByIDs repository method to a batch function. Keys with no
// stored entity resolve to a NOT_FOUND error.
func batchByID[T any](
	fetch func(ctx context.Context, ids []string) ([]T, error),
	idOf func(T) string,
	notFound string,
) dataloader.BatchFunc[string, T] {
	return func(ctx context.Context, keys []string) []*dataloader.Result[T] {
		results := make([]*dataloader.Result[T], len(keys))
		items, err := fetch(ctx, keys)

		byID := make(map[string]T, len(items))
		if err == nil {
			for _, item := range items {
				byID[idOf(item)] = item
			}
		}

		for i, key := range keys {
			if err != nil {
				results[i] = &dataloader.Result[T]{Error: err}
			} else if item, ok := byID[key]; ok {
				results[i] = &dataloader.Result[T]{Data: item}
			} else {
				results[i] = &dataloader.Result[T]{Error: apperrors.NewNotFoundError(notFound)}
			}
		}
		return results
	}
}

// For returns the loaders attached to ctx, or nil
func For(ctx context.Context) *Loaders {
	l, _ := ctx.Value(loadersKey).(*Loaders)
	return l
}

// WithLoaders returns a new context with the loaders attached
func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, loaders)
}

// Middleware attaches a fresh set of loaders to every request
func Middleware(
	userRepo repositories.UserRepository,
	placeRepo repositories.PlaceRepository,
	amenityRepo repositories.AmenityRepository,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := NewLoaders(userRepo, placeRepo, amenityRepo)
			next.ServeHTTP(w, r.WithContext(WithLoaders(r.Context(), l)))
		})
	}
}
