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

var reviewColumns = []interface{}{"id", "text", "rating", "place_id", "user_id", "created_at", "updated_at"}

// ReviewAdapter implements the ReviewRepository interface
type ReviewAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

var _ repositories.ReviewRepository = (*ReviewAdapter)(nil)

// NewReviewAdapter creates a new review adapter
func NewReviewAdapter(client *postgres.Client) *ReviewAdapter {
	return &ReviewAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a review; the (user_id, place_id) constraint enforces one review per place
func (a *ReviewAdapter) Create(ctx context.Context, review *entities.Review) error {
	query, args, err := a.db.Insert("reviews").Prepared(true).Rows(goqu.Record{
		"id":         review.ID,
		"text":       review.Text,
		"rating":     review.Rating,
		"place_id":   review.PlaceID,
		"user_id":    review.UserID,
		"created_at": review.CreatedAt,
		"updated_at": review.UpdatedAt,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build query", err)
	}
	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return translateWriteError(err, "failed to create review")
	}
	return nil
}

func (a *ReviewAdapter) GetByID(ctx context.Context, id string) (*entities.Review, error) {
	return a.getOne(ctx, goqu.Ex{"id": id}, "Review not found")
}

func (a *ReviewAdapter) GetByUserAndPlace(ctx context.Context, userID, placeID string) (*entities.Review, error) {
	return a.getOne(ctx, goqu.Ex{"user_id": userID, "place_id": placeID}, "Review not found")
}

func (a *ReviewAdapter) List(ctx context.Context, opts repositories.ListOptions) ([]*entities.Review, error) {
	return a.query(ctx, paginate(a.db.Select(reviewColumns...).From("reviews"), opts))
}

func (a *ReviewAdapter) ListByPlace(ctx context.Context, placeID string) ([]*entities.Review, error) {
	ds := a.db.Select(reviewColumns...).From("reviews").Where(goqu.Ex{"place_id": placeID})
	return a.query(ctx, paginate(ds, repositories.ListOptions{}))
}

func (a *ReviewAdapter) ListByUser(ctx context.Context, userID string) ([]*entities.Review, error) {
	ds := a.db.Select(reviewColumns...).From("reviews").Where(goqu.Ex{"user_id": userID})
	return a.query(ctx, paginate(ds, repositories.ListOptions{}))
}

// Update writes text and rating only
func (a *ReviewAdapter) Update(ctx context.Context, review *entities.Review) error {
	query, args, err := a.db.Update("reviews").Prepared(true).
		Set(goqu.Record{
			"text":       review.Text,
			"rating":     review.Rating,
			"updated_at": review.UpdatedAt,
		}).
		Where(goqu.Ex{"id": review.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return translateWriteError(err, "failed to update review")
	}
	return requireAffected(result, "Review not found")
}

func (a *ReviewAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete("reviews").Prepared(true).Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete review", err)
	}
	return requireAffected(result, "Review not found")
}

func (a *ReviewAdapter) getOne(ctx context.Context, where goqu.Ex, notFound string) (*entities.Review, error) {
	query, args, err := a.db.Select(reviewColumns...).From("reviews").Prepared(true).Where(where).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	review, err := scanReview(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(notFound)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get review", err)
	}
	return review, nil
}

func (a *ReviewAdapter) query(ctx context.Context, ds *goqu.SelectDataset) ([]*entities.Review, error) {
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list reviews", err)
	}
	defer rows.Close()

	reviews := []*entities.Review{}
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan review", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to list reviews", err)
	}
	return reviews, nil
}

func scanReview(row rowScanner) (*entities.Review, error) {
	r := &entities.Review{}
	if err := row.Scan(&r.ID, &r.Text, &r.Rating, &r.PlaceID, &r.UserID, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return r, nil
}
