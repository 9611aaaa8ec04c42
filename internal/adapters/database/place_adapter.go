package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"

	"github.com/hbnb-project/hbnb/backend/internal/domain/entities"
	"github.com/hbnb-project/hbnb/backend/internal/domain/repositories"
	"github.com/hbnb-project/hbnb/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/hbnb-project/hbnb/backend/pkg/errors"
)

var placeColumns = []interface{}{
	"id", "title", "description", "price", "latitude", "longitude", "owner_id", "created_at", "updated_at",
}

// PlaceAdapter implements the PlaceRepository interface. Amenity links live in
// place_amenities and are written in the same transaction as the place row.
type PlaceAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

var _ repositories.PlaceRepository = (*PlaceAdapter)(nil)

// NewPlaceAdapter creates a new place adapter
func NewPlaceAdapter(client *postgres.Client) *PlaceAdapter {
	return &PlaceAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts the place and its amenity links
func (a *PlaceAdapter) Create(ctx context.Context, place *entities.Place) error {
	query, args, err := a.db.Insert("places").Prepared(true).Rows(goqu.Record{
		"id":          place.ID,
		"title":       place.Title,
		"description": place.Description,
		"price":       place.Price,
		"latitude":    place.Latitude,
		"longitude":   place.Longitude,
		"owner_id":    place.OwnerID,
		"created_at":  place.CreatedAt,
		"updated_at":  place.UpdatedAt,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build query", err)
	}

	return a.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return translateWriteError(err, "failed to create place")
		}
		return a.insertAmenityLinks(ctx, tx, place.ID, place.AmenityIDs)
	})
}

func (a *PlaceAdapter) GetByID(ctx context.Context, id string) (*entities.Place, error) {
	query, args, err := a.db.Select(placeColumns...).From("places").Prepared(true).Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	place, err := scanPlace(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("Place not found")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get place", err)
	}

	if err := a.attachAmenities(ctx, []*entities.Place{place}); err != nil {
		return nil, err
	}
	return place, nil
}

func (a *PlaceAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Place, error) {
	if len(ids) == 0 {
		return []*entities.Place{}, nil
	}
	return a.query(ctx, a.db.Select(placeColumns...).From("places").Where(goqu.Ex{"id": ids}))
}

func (a *PlaceAdapter) List(ctx context.Context, opts repositories.ListOptions) ([]*entities.Place, error) {
	return a.query(ctx, paginate(a.db.Select(placeColumns...).From("places"), opts))
}

func (a *PlaceAdapter) ListByOwner(ctx context.Context, ownerID string) ([]*entities.Place, error) {
	ds := a.db.Select(placeColumns...).From("places").Where(goqu.Ex{"owner_id": ownerID})
	return a.query(ctx, paginate(ds, repositories.ListOptions{}))
}

// Update writes the scalar columns and replaces the amenity links. The owner never changes.
func (a *PlaceAdapter) Update(ctx context.Context, place *entities.Place) error {
	query, args, err := a.db.Update("places").Prepared(true).
		Set(goqu.Record{
			"title":       place.Title,
			"description": place.Description,
			"price":       place.Price,
			"latitude":    place.Latitude,
			"longitude":   place.Longitude,
			"updated_at":  place.UpdatedAt,
		}).
		Where(goqu.Ex{"id": place.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build query", err)
	}

	unlink, unlinkArgs, err := a.db.Delete("place_amenities").Prepared(true).Where(goqu.Ex{"place_id": place.ID}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build query", err)
	}

	return a.inTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return translateWriteError(err, "failed to update place")
		}
		if err := requireAffected(result, "Place not found"); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, unlink, unlinkArgs...); err != nil {
			return apperrors.NewInternalError("failed to clear place amenities", err)
		}
		return a.insertAmenityLinks(ctx, tx, place.ID, place.AmenityIDs)
	})
}

// Delete removes a place; reviews and amenity links cascade
func (a *PlaceAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete("places").Prepared(true).Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete place", err)
	}
	return requireAffected(result, "Place not found")
}

func (a *PlaceAdapter) insertAmenityLinks(ctx context.Context, tx *sql.Tx, placeID string, amenityIDs []string) error {
	if len(amenityIDs) == 0 {
		return nil
	}
	rows := make([]interface{}, 0, len(amenityIDs))
	for i, id := range amenityIDs {
		rows = append(rows, goqu.Record{"place_id": placeID, "amenity_id": id, "position": i})
	}
	query, args, err := a.db.Insert("place_amenities").Prepared(true).Rows(rows...).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build query", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return translateWriteError(err, "failed to link place amenities")
	}
	return nil
}

// attachAmenities loads the amenity links of places in one query.
func (a *PlaceAdapter) attachAmenities(ctx context.Context, places []*entities.Place) error {
	if len(places) == 0 {
		return nil
	}
	byID := make(map[string]*entities.Place, len(places))
	ids := make([]string, 0, len(places))
	for _, p := range places {
		p.AmenityIDs = []string{}
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	query, args, err := a.db.Select("place_id", "amenity_id").From("place_amenities").Prepared(true).
		Where(goqu.Ex{"place_id": ids}).
		Order(goqu.I("place_id").Asc(), goqu.I("position").Asc()).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to load place amenities", err)
	}
	defer rows.Close()

	for rows.Next() {
		var placeID, amenityID string
		if err := rows.Scan(&placeID, &amenityID); err != nil {
			return apperrors.NewInternalError("failed to scan place amenity", err)
		}
		if p, ok := byID[placeID]; ok {
			p.AmenityIDs = append(p.AmenityIDs, amenityID)
		}
	}
	if err := rows.Err(); err != nil {
		return apperrors.NewInternalError("failed to load place amenities", err)
	}
	return nil
}

func (a *PlaceAdapter) query(ctx context.Context, ds *goqu.SelectDataset) ([]*entities.Place, error) {
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list places", err)
	}
	places := []*entities.Place{}
	for rows.Next() {
		place, err := scanPlace(rows)
		if err != nil {
			rows.Close()
			return nil, apperrors.NewInternalError("failed to scan place", err)
		}
		places = append(places, place)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list places", err)
	}

	if err := a.attachAmenities(ctx, places); err != nil {
		return nil, err
	}
	return places, nil
}

func (a *PlaceAdapter) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	err := a.client.WithTx(ctx, fn)
	var txErr *postgres.TxError
	if errors.As(err, &txErr) {
		return apperrors.NewInternalError("failed to "+txErr.Op+" transaction", txErr.Err)
	}
	return err
}

func scanPlace(row rowScanner) (*entities.Place, error) {
	p := &entities.Place{}
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.Latitude, &p.Longitude, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}
