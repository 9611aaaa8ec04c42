package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/hbnb-project/hbnb/backend/internal/infrastructure/observability"
	"github.com/hbnb-project/hbnb/backend/pkg/config"
	"github.com/hbnb-project/hbnb/backend/pkg/retry"
)

// Client owns the HBnB connection pool
type Client struct {
	db *sql.DB
}

// NewClient opens the pool described by cfg and waits, with backoff, until the server answers
func NewClient(cfg *config.DatabaseConfig) (*Client, error) {
	db, err := sql.Open("postgres", cfg.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	logger := observability.GetLogger()
	err = retry.DoWithLog(
		context.Background(),
		retry.DefaultConfig(),
		"PostgreSQL",
		func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return db.PingContext(ctx)
		},
		retry.ZerologFunc(*logger, "PostgreSQL"),
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL after retries: %w", err)
	}

	logger.Info().
		Str("host", cfg.Host).
		Str("database", cfg.Database).
		Int("max_open_conns", cfg.MaxOpenConns).
		Msg("connected to PostgreSQL")
	return &Client{db: db}, nil
}

// NewClientFromDB wraps an already opened pool (sqlmock in tests)
func NewClientFromDB(db *sql.DB) *Client {
	return &Client{db: db}
}

func (c *Client) DB() *sql.DB {
	return c.db
}

func (c *Client) Close() error {
	return c.db.Close()
}

// Ping backs the /health database component
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// TxError reports a failure to open or commit a transaction, as opposed to an
// error returned by the work inside it.
type TxError struct {
	Op  string
	Err error
}

func (e *TxError) Error() string { return e.Op + " transaction: " + e.Err.Error() }
func (e *TxError) Unwrap() error { return e.Err }

// WithTx runs fn in a transaction, committing when it returns nil and rolling back otherwise.
// fn's error is returned unchanged.
func (c *Client) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return &TxError{Op: "begin", Err: err}
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return &TxError{Op: "commit", Err: err}
	}
	return nil
}
