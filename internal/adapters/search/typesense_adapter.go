package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/hbnb-project/hbnb/backend/internal/domain/entities"
	"github.com/hbnb-project/hbnb/backend/internal/domain/repositories"
	tsclient "github.com/hbnb-project/hbnb/backend/internal/infrastructure/clients/typesense"
)

const (
	collectionName = "places"
	// maxPerPage is the largest page Typesense serves.
	maxPerPage = 250
)

// TypesenseAdapter implements place search using Typesense. It returns IDs only;
// callers load the authoritative records from storage.
type TypesenseAdapter struct {
	client *tsclient.Client
}

var _ repositories.PlaceSearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures the collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	if _, err := a.client.Client().Collection(collectionName).Retrieve(ctx); err == nil {
		return nil
	}

	schema := &api.CollectionSchema{
		Name: collectionName,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "title", Type: "string"},
			{Name: "description", Type: "string", Optional: pointer.True()},
			{Name: "price", Type: "float", Facet: pointer.True()},
			{Name: "location", Type: "geopoint"},
			{Name: "owner_id", Type: "string", Facet: pointer.True()},
			{Name: "amenity_ids", Type: "string[]", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "created_at", Type: "int64"},
		},
		DefaultSortingField: pointer.String("created_at"),
	}

	if _, err := a.client.Client().Collections().Create(ctx, schema); err != nil {
		return fmt.Errorf("failed to create typesense collection: %w", err)
	}
	return nil
}

// DropSchema deletes the collection so the next InitSchema starts empty
func (a *TypesenseAdapter) DropSchema(ctx context.Context) error {
	if _, err := a.client.Client().Collection(collectionName).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete typesense collection: %w", err)
	}
	return nil
}

// Index upserts a place document
func (a *TypesenseAdapter) Index(ctx context.Context, place *entities.Place) error {
	_, err := a.client.Client().Collection(collectionName).Documents().Upsert(ctx, buildPlaceDocument(place))
	if err != nil {
		return fmt.Errorf("failed to index place: %w", err)
	}
	return nil
}

// Delete removes a place from the index
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(collectionName).Document(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete place from index: %w", err)
	}
	return nil
}

// Search returns matching place IDs in relevance order
func (a *TypesenseAdapter) Search(ctx context.Context, params repositories.PlaceSearchParams) ([]string, error) {
	result, err := a.client.Client().Collection(collectionName).Documents().Search(ctx, buildSearchParams(params))
	if err != nil {
		return nil, fmt.Errorf("failed to search places: %w", err)
	}
	if result.Hits == nil {
		return []string{}, nil
	}

	ids := make([]string, 0, len(*result.Hits))
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		if id, ok := (*hit.Document)["id"].(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func buildPlaceDocument(place *entities.Place) map[string]interface{} {
	amenities := place.AmenityIDs
	if amenities == nil {
		amenities = []string{}
	}
	return map[string]interface{}{
		"id":          place.ID,
		"title":       place.Title,
		"description": place.Description,
		"price":       place.Price,
		"location":    []float64{place.Latitude, place.Longitude},
		"owner_id":    place.OwnerID,
		"amenity_ids": amenities,
		"created_at":  place.CreatedAt.Unix(),
	}
}

func buildSearchParams(params repositories.PlaceSearchParams) *api.SearchCollectionParams {
	q := strings.TrimSpace(params.Query)
	if q == "" {
		q = "*"
	}

	perPage := params.Limit
	if perPage <= 0 || perPage > maxPerPage {
		perPage = maxPerPage
	}

	sp := &api.SearchCollectionParams{
		Q:       pointer.String(q),
		QueryBy: pointer.String("title,description"),
		Page:    pointer.Int(params.Offset/perPage + 1),
		PerPage: pointer.Int(perPage),
	}
	if filter := buildFilter(params); filter != "" {
		sp.FilterBy = pointer.String(filter)
	}
	return sp
}

func buildFilter(params repositories.PlaceSearchParams) string {
	var clauses []string
	if params.MinPrice != nil {
		clauses = append(clauses, "price:>="+formatFloat(*params.MinPrice))
	}
	if params.MaxPrice != nil {
		clauses = append(clauses, "price:<="+formatFloat(*params.MaxPrice))
	}
	for _, id := range params.AmenityIDs {
		clauses = append(clauses, fmt.Sprintf("amenity_ids:=`%s`", id))
	}
	if params.HasGeo() {
		clauses = append(clauses, fmt.Sprintf("location:(%s, %s, %s km)",
			formatFloat(*params.Latitude), formatFloat(*params.Longitude), formatFloat(params.RadiusKm)))
	}
	return strings.Join(clauses, " && ")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
