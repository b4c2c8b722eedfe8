package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes
const uniqueViolationCode = "23505"

// isUniqueViolation checks if the given error is a PostgreSQL unique
// constraint violation. An insert losing this way means another writer
// created the row first, which the record store reports as a version
// conflict.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
