package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hbnb-project/hbnb/backend/internal/infrastructure/clients/postgres"
	"github.com/hbnb-project/hbnb/backend/internal/infrastructure/observability"
)

// Constraint names referenced when translating driver errors.
const (
	constraintUserEmail        = "users_email_key"
	constraintAmenityName      = "amenities_name_key"
	constraintReviewUserPlace  = "reviews_user_place_key"
	constraintPlaceOwner       = "places_owner_id_fkey"
	constraintReviewPlace      = "reviews_place_id_fkey"
	constraintReviewUser       = "reviews_user_id_fkey"
	constraintPlaceAmenityLink = "place_amenities_amenity_id_fkey"
)

// schema is applied in order; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		first_name    VARCHAR(50)  NOT NULL,
		last_name     VARCHAR(50)  NOT NULL,
		email         VARCHAR(255) NOT NULL,
		password_hash TEXT         NOT NULL,
		is_admin      BOOLEAN      NOT NULL DEFAULT FALSE,
		created_at    TIMESTAMPTZ  NOT NULL,
		updated_at    TIMESTAMPTZ  NOT NULL,
		CONSTRAINT users_email_key UNIQUE (email)
	)`,
	`CREATE TABLE IF NOT EXISTS amenities (
		id         TEXT PRIMARY KEY,
		name       VARCHAR(50) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		CONSTRAINT amenities_name_key UNIQUE (name)
	)`,
	`CREATE TABLE IF NOT EXISTS places (
		id          TEXT PRIMARY KEY,
		title       VARCHAR(100)     NOT NULL,
		description VARCHAR(1000)    NOT NULL DEFAULT '',
		price       DOUBLE PRECISION NOT NULL CHECK (price > 0),
		latitude    DOUBLE PRECISION NOT NULL CHECK (latitude BETWEEN -90 AND 90),
		longitude   DOUBLE PRECISION NOT NULL CHECK (longitude BETWEEN -180 AND 180),
		owner_id    TEXT             NOT NULL,
		created_at  TIMESTAMPTZ      NOT NULL,
		updated_at  TIMESTAMPTZ      NOT NULL,
		CONSTRAINT places_owner_id_fkey FOREIGN KEY (owner_id) REFERENCES users (id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS places_owner_id_idx ON places (owner_id)`,
	`CREATE TABLE IF NOT EXISTS place_amenities (
		place_id   TEXT    NOT NULL,
		amenity_id TEXT    NOT NULL,
		position   INTEGER NOT NULL,
		PRIMARY KEY (place_id, amenity_id),
		CONSTRAINT place_amenities_place_id_fkey FOREIGN KEY (place_id) REFERENCES places (id) ON DELETE CASCADE,
		CONSTRAINT place_amenities_amenity_id_fkey FOREIGN KEY (amenity_id) REFERENCES amenities (id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id         TEXT PRIMARY KEY,
		text       VARCHAR(1000) NOT NULL,
		rating     SMALLINT      NOT NULL CHECK (rating BETWEEN 1 AND 5),
		place_id   TEXT          NOT NULL,
		user_id    TEXT          NOT NULL,
		created_at TIMESTAMPTZ   NOT NULL,
		updated_at TIMESTAMPTZ   NOT NULL,
		CONSTRAINT reviews_user_place_key UNIQUE (user_id, place_id),
		CONSTRAINT reviews_place_id_fkey FOREIGN KEY (place_id) REFERENCES places (id) ON DELETE CASCADE,
		CONSTRAINT reviews_user_id_fkey FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS reviews_place_id_idx ON reviews (place_id)`,
}

// Migrate creates the tables inside one transaction
func Migrate(ctx context.Context, client *postgres.Client) error {
	err := client.WithTx(ctx, func(tx *sql.Tx) error {
		for i, stmt := range schema {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("migration statement %d failed: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	observability.LoggerFromContext(ctx).Info().Int("statements", len(schema)).Msg("database schema is up to date")
	return nil
}
