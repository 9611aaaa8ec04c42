package database

import (
	"database/sql"

	"github.com/doug-martin/goqu/v9"

	"github.com/hbnb-project/hbnb/backend/internal/domain/repositories"
	apperrors "github.com/hbnb-project/hbnb/backend/pkg/errors"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// paginate orders by creation time and applies the listing window.
func paginate(ds *goqu.SelectDataset, opts repositories.ListOptions) *goqu.SelectDataset {
	ds = ds.Order(goqu.I("created_at").Asc(), goqu.I("id").Asc())
	if opts.Limit > 0 {
		ds = ds.Limit(uint(opts.Limit))
	}
	if opts.Offset > 0 {
		ds = ds.Offset(uint(opts.Offset))
	}
	return ds
}

// requireAffected turns a zero-row write into NOT_FOUND.
func requireAffected(result sql.Result, notFound string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if n == 0 {
		return apperrors.NewNotFoundError(notFound)
	}
	return nil
}
