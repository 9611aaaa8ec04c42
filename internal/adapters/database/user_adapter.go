package database

import (
	"context"
	"database/sql"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/hbnb-project/hbnb/backend/internal/domain/entities"
	"github.com/hbnb-project/hbnb/backend/internal/domain/repositories"
	"github.com/hbnb-project/hbnb/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/hbnb-project/hbnb/backend/pkg/errors"
)

var userColumns = []interface{}{
	"id", "first_name", "last_name", "email", "password_hash", "is_admin", "created_at", "updated_at",
}

// UserAdapter implements the UserRepository interface
type UserAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

var _ repositories.UserRepository = (*UserAdapter)(nil)

// NewUserAdapter creates a new user adapter
func NewUserAdapter(client *postgres.Client) *UserAdapter {
	return &UserAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a user; emails are stored lower-cased
func (a *UserAdapter) Create(ctx context.Context, user *entities.User) error {
	record := goqu.Record{
		"id":            user.ID,
		"first_name":    user.FirstName,
		"last_name":     user.LastName,
		"email":         strings.ToLower(user.Email),
		"password_hash": user.PasswordHash,
		"is_admin":      user.IsAdmin,
		"created_at":    user.CreatedAt,
		"updated_at":    user.UpdatedAt,
	}

	query, args, err := a.db.Insert("users").Prepared(true).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build query", err)
	}
	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return translateWriteError(err, "failed to create user")
	}
	return nil
}

// GetByID retrieves a user by ID
func (a *UserAdapter) GetByID(ctx context.Context, id string) (*entities.User, error) {
	return a.getOne(ctx, goqu.Ex{"id": id})
}

// GetByEmail retrieves a user by email, ignoring case
func (a *UserAdapter) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	return a.getOne(ctx, goqu.Ex{"email": strings.ToLower(strings.TrimSpace(email))})
}

// GetByIDs retrieves the users that exist among ids
func (a *UserAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.User, error) {
	if len(ids) == 0 {
		return []*entities.User{}, nil
	}
	ds := a.db.Select(userColumns...).From("users").Where(goqu.Ex{"id": ids})
	return a.query(ctx, ds)
}

// List retrieves users ordered by creation time
func (a *UserAdapter) List(ctx context.Context, opts repositories.ListOptions) ([]*entities.User, error) {
	ds := paginate(a.db.Select(userColumns...).From("users"), opts)
	return a.query(ctx, ds)
}

// Update writes every mutable column
func (a *UserAdapter) Update(ctx context.Context, user *entities.User) error {
	query, args, err := a.db.Update("users").Prepared(true).
		Set(goqu.Record{
			"first_name":    user.FirstName,
			"last_name":     user.LastName,
			"email":         strings.ToLower(user.Email),
			"password_hash": user.PasswordHash,
			"is_admin":      user.IsAdmin,
			"updated_at":    user.UpdatedAt,
		}).
		Where(goqu.Ex{"id": user.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return translateWriteError(err, "failed to update user")
	}
	return requireAffected(result, "User not found")
}

// Delete removes a user; foreign keys cascade to places and reviews
func (a *UserAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete("users").Prepared(true).Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete user", err)
	}
	return requireAffected(result, "User not found")
}

func (a *UserAdapter) getOne(ctx context.Context, where goqu.Ex) (*entities.User, error) {
	query, args, err := a.db.Select(userColumns...).From("users").Prepared(true).Where(where).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	user, err := scanUser(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("User not found")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get user", err)
	}
	return user, nil
}

func (a *UserAdapter) query(ctx context.Context, ds *goqu.SelectDataset) ([]*entities.User, error) {
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list users", err)
	}
	defer rows.Close()

	users := []*entities.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan user", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to list users", err)
	}
	return users, nil
}

func scanUser(row rowScanner) (*entities.User, error) {
	u := &entities.User{}
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}
