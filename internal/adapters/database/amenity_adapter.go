package database

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"

	"github.com/hbnb-project/hbnb/backend/internal/domain/entities"
	"github.com/hbnb-project/hbnb/backend/internal/domain/repositories"
	"github.com/hbnb-project/hbnb/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/hbnb-project/hbnb/backend/pkg/errors"
)

var amenityColumns = []interface{}{"id", "name", "created_at", "updated_at"}

// AmenityAdapter implements the AmenityRepository interface
type AmenityAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

var _ repositories.AmenityRepository = (*AmenityAdapter)(nil)

// NewAmenityAdapter creates a new amenity adapter
func NewAmenityAdapter(client *postgres.Client) *AmenityAdapter {
	return &AmenityAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

func (a *AmenityAdapter) Create(ctx context.Context, amenity *entities.Amenity) error {
	query, args, err := a.db.Insert("amenities").Prepared(true).Rows(goqu.Record{
		"id":         amenity.ID,
		"name":       amenity.Name,
		"created_at": amenity.CreatedAt,
		"updated_at": amenity.UpdatedAt,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build query", err)
	}
	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return translateWriteError(err, "failed to create amenity")
	}
	return nil
}

func (a *AmenityAdapter) GetByID(ctx context.Context, id string) (*entities.Amenity, error) {
	return a.getOne(ctx, goqu.Ex{"id": id})
}

func (a *AmenityAdapter) GetByName(ctx context.Context, name string) (*entities.Amenity, error) {
	return a.getOne(ctx, goqu.Ex{"name": name})
}

func (a *AmenityAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Amenity, error) {
	if len(ids) == 0 {
		return []*entities.Amenity{}, nil
	}
	return a.query(ctx, a.db.Select(amenityColumns...).From("amenities").Where(goqu.Ex{"id": ids}))
}

func (a *AmenityAdapter) List(ctx context.Context, opts repositories.ListOptions) ([]*entities.Amenity, error) {
	return a.query(ctx, paginate(a.db.Select(amenityColumns...).From("amenities"), opts))
}

func (a *AmenityAdapter) Update(ctx context.Context, amenity *entities.Amenity) error {
	query, args, err := a.db.Update("amenities").Prepared(true).
		Set(goqu.Record{"name": amenity.Name, "updated_at": amenity.UpdatedAt}).
		Where(goqu.Ex{"id": amenity.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return translateWriteError(err, "failed to update amenity")
	}
	return requireAffected(result, "Amenity not found")
}

// Delete removes an amenity; place links go with it through the foreign key
func (a *AmenityAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete("amenities").Prepared(true).Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete amenity", err)
	}
	return requireAffected(result, "Amenity not found")
}

func (a *AmenityAdapter) getOne(ctx context.Context, where goqu.Ex) (*entities.Amenity, error) {
	query, args, err := a.db.Select(amenityColumns...).From("amenities").Prepared(true).Where(where).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	amenity := &entities.Amenity{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).
		Scan(&amenity.ID, &amenity.Name, &amenity.CreatedAt, &amenity.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("Amenity not found")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get amenity", err)
	}
	return amenity, nil
}

func (a *AmenityAdapter) query(ctx context.Context, ds *goqu.SelectDataset) ([]*entities.Amenity, error) {
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list amenities", err)
	}
	defer rows.Close()

	amenities := []*entities.Amenity{}
	for rows.Next() {
		amenity := &entities.Amenity{}
		if err := rows.Scan(&amenity.ID, &amenity.Name, &amenity.CreatedAt, &amenity.UpdatedAt); err != nil {
			return nil, apperrors.NewInternalError("failed to scan amenity", err)
		}
		amenities = append(amenities, amenity)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to list amenities", err)
	}
	return amenities, nil
}
