package database

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pupped/storefront/internal/models"
)

// sqlStateErrors maps Postgres SQLSTATE codes onto the model sentinels the
// handlers understand.
var sqlStateErrors = map[string]error{
	"23505": models.ErrConflict,   // unique_violation: article slug
	"23503": models.ErrBadRequest, // foreign_key_violation: unknown article or product id
	"23502": models.ErrBadRequest, // not_null_violation
	"23514": models.ErrBadRequest, // check_violation: contact type, submission status
	"22P02": models.ErrNotFound,   // invalid_text_representation: malformed uuid in a lookup
}

// MapPostgresError translates driver errors into model sentinels. Anything it
// does not recognise is returned unchanged.
func MapPostgresError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if mapped, ok := sqlStateErrors[pgErr.Code]; ok {
			return mapped
		}
	}

	return err
}
