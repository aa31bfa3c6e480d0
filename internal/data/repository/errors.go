package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrDuplicate is returned when a unique constraint (email, username, token hash) is violated.
	ErrDuplicate = errors.New("duplicate record")
	// ErrNotFound is returned by mutations that matched no row.
	// Lookups report a missing row as (nil, nil) instead.
	ErrNotFound = errors.New("record not found")
)

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
