//go:build integration

package search

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbnb-project/hbnb/backend/internal/domain/entities"
	"github.com/hbnb-project/hbnb/backend/internal/domain/repositories"
	"github.com/hbnb-project/hbnb/backend/internal/infrastructure/clients/typesense"
	"github.com/hbnb-project/hbnb/backend/pkg/config"
)

func TestTypesenseAdapterIntegration(t *testing.T) {
	url := os.Getenv("TEST_TYPESENSE_URL")
	if url == "" {
		t.Skip("Skipping integration test: TEST_TYPESENSE_URL not set")
	}

	client, err := typesense.NewClient(&config.TypesenseConfig{URL: url, APIKey: "xyz"})
	require.NoError(t, err)

	adapter := NewTypesenseAdapter(client)
	ctx := context.Background()

	require.NoError(t, adapter.InitSchema(ctx))

	place := &entities.Place{
		Base:        entities.NewBase(),
		Title:       "Typesense Beach House",
		Description: "Steps from the water",
		Price:       180,
		Latitude:    37.7749,
		Longitude:   -122.4194,
		OwnerID:     "owner-ts-1",
		AmenityIDs:  []string{"wifi"},
	}
	require.NoError(t, adapter.Index(ctx, place))
	defer adapter.Delete(ctx, place.ID)

	// indexing is near-real-time
	time.Sleep(500 * time.Millisecond)

	maxPrice := 200.0
	ids, err := adapter.Search(ctx, repositories.PlaceSearchParams{
		Query:    "beach",
		MaxPrice: &maxPrice,
		Limit:    10,
	})
	require.NoError(t, err)
	assert.Contains(t, ids, place.ID)

	lat, lon := 37.78, -122.42
	ids, err = adapter.Search(ctx, repositories.PlaceSearchParams{
		Latitude:  &lat,
		Longitude: &lon,
		RadiusKm:  5,
		Limit:     10,
	})
	require.NoError(t, err)
	assert.Contains(t, ids, place.ID)
}
