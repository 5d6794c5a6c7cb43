package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE classes raised by the statement itself rather than the server's health.
const (
	sqlStateDataException = "22"
	sqlStateSyntaxOrRule  = "42"
)

// IsClientError reports whether err is a Postgres error caused by the query's
// input, such as a filter value that does not cast to the column type.
func IsClientError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || len(pgErr.Code) < 2 {
		return false
	}
	switch pgErr.Code[:2] {
	case sqlStateDataException, sqlStateSyntaxOrRule:
		return true
	}
	return false
}
