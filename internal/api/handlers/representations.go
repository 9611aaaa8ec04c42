package handlers

import (
	"context"
	"net/http"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/hbnb-project/hbnb/backend/internal/api/loaders"
	"github.com/hbnb-project/hbnb/backend/internal/domain/entities"
	apperrors "github.com/hbnb-project/hbnb/backend/pkg/errors"
)

type amenitySummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type placeResponse struct {
	entities.Base
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Price       float64               `json:"price"`
	Latitude    float64               `json:"latitude"`
	Longitude   float64               `json:"longitude"`
	OwnerID     string                `json:"owner_id"`
	Owner       *entities.UserSummary `json:"owner"`
	Amenities   []amenitySummary      `json:"amenities"`
}

// placeDetailResponse is returned for single-place reads
type placeDetailResponse struct {
	placeResponse
	Reviews []reviewResponse `json:"reviews"`
}

type reviewResponse struct {
	entities.Base
	Text    string                 `json:"text"`
	Rating  int                    `json:"rating"`
	PlaceID string                 `json:"place_id"`
	UserID  string                 `json:"user_id"`
	User    *entities.UserSummary  `json:"user"`
	Place   *entities.PlaceSummary `json:"place"`
}

// requestLoaders returns the dataloaders attached by loaders.Middleware
func requestLoaders(r *http.Request) (*loaders.Loaders, error) {
	l := loaders.For(r.Context())
	if l == nil {
		return nil, apperrors.NewInternalError("request loaders not configured", nil)
	}
	return l, nil
}

// loadAll resolves keys in one batch, skipping keys that no longer exist.
func loadAll[T any](ctx context.Context, loader *dataloader.Loader[string, T], keys []string) (map[string]T, error) {
	out := make(map[string]T, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	items, errs := loader.LoadMany(ctx, keys)()
	for i, key := range keys {
		if i < len(errs) && errs[i] != nil {
			if apperrors.IsNotFound(errs[i]) {
				continue
			}
			return nil, errs[i]
		}
		out[key] = items[i]
	}
	return out, nil
}

// keySet collects distinct non-empty keys in first-seen order
type keySet struct {
	seen map[string]struct{}
	keys []string
}

func (k *keySet) add(key string) {
	if key == "" {
		return
	}
	if k.seen == nil {
		k.seen = make(map[string]struct{})
	}
	if _, ok := k.seen[key]; ok {
		return
	}
	k.seen[key] = struct{}{}
	k.keys = append(k.keys, key)
}

func presentPlaces(ctx context.Context, l *loaders.Loaders, places []*entities.Place) ([]placeResponse, error) {
	var ownerIDs, amenityIDs keySet
	for _, p := range places {
		ownerIDs.add(p.OwnerID)
		for _, id := range p.AmenityIDs {
			amenityIDs.add(id)
		}
	}

	owners, err := loadAll(ctx, l.UserLoader, ownerIDs.keys)
	if err != nil {
		return nil, err
	}
	amenities, err := loadAll(ctx, l.AmenityLoader, amenityIDs.keys)
	if err != nil {
		return nil, err
	}

	out := make([]placeResponse, 0, len(places))
	for _, p := range places {
		resp := placeResponse{
			Base:        p.Base,
			Title:       p.Title,
			Description: p.Description,
			Price:       p.Price,
			Latitude:    p.Latitude,
			Longitude:   p.Longitude,
			OwnerID:     p.OwnerID,
			Amenities:   make([]amenitySummary, 0, len(p.AmenityIDs)),
		}
		if owner, ok := owners[p.OwnerID]; ok {
			summary := owner.Summary()
			resp.Owner = &summary
		}
		for _, id := range p.AmenityIDs {
			if a, ok := amenities[id]; ok {
				resp.Amenities = append(resp.Amenities, amenitySummary{ID: a.ID, Name: a.Name})
			}
		}
		out = append(out, resp)
	}
	return out, nil
}

func presentPlaceDetail(ctx context.Context, l *loaders.Loaders, place *entities.Place, reviews []*entities.Review) (*placeDetailResponse, error) {
	places, err := presentPlaces(ctx, l, []*entities.Place{place})
	if err != nil {
		return nil, err
	}
	presented, err := presentReviews(ctx, l, reviews)
	if err != nil {
		return nil, err
	}
	return &placeDetailResponse{placeResponse: places[0], Reviews: presented}, nil
}

func presentReviews(ctx context.Context, l *loaders.Loaders, reviews []*entities.Review) ([]reviewResponse, error) {
	var userIDs, placeIDs keySet
	for _, r := range reviews {
		userIDs.add(r.UserID)
		placeIDs.add(r.PlaceID)
	}

	users, err := loadAll(ctx, l.UserLoader, userIDs.keys)
	if err != nil {
		return nil, err
	}
	places, err := loadAll(ctx, l.PlaceLoader, placeIDs.keys)
	if err != nil {
		return nil, err
	}

	out := make([]reviewResponse, 0, len(reviews))
	for _, r := range reviews {
		resp := reviewResponse{
			Base:    r.Base,
			Text:    r.Text,
			Rating:  r.Rating,
			PlaceID: r.PlaceID,
			UserID:  r.UserID,
		}
		if u, ok := users[r.UserID]; ok {
			resp.User = &entities.UserSummary{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName}
		}
		if p, ok := places[r.PlaceID]; ok {
			summary := p.Summary()
			resp.Place = &summary
		}
		out = append(out, resp)
	}
	return out, nil
}

func presentReview(ctx context.Context, l *loaders.Loaders, review *entities.Review) (*reviewResponse, error) {
	out, err := presentReviews(ctx, l, []*entities.Review{review})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func presentPlace(ctx context.Context, l *loaders.Loaders, place *entities.Place) (*placeResponse, error) {
	out, err := presentPlaces(ctx, l, []*entities.Place{place})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}
