package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// MapError translates database errors to domain errors.
// sql.ErrNoRows becomes notFoundErr and a unique violation (23505) becomes
// duplicateErr. Other errors are returned unchanged.
func MapError(err error, notFoundErr, duplicateErr error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return notFoundErr
	}

	if pgCode(err) == pgUniqueViolation {
		return duplicateErr
	}

	return err
}

// MapReferenceError translates a foreign key violation (23503) into refErr
// and otherwise defers to MapError.
func MapReferenceError(err error, notFoundErr, duplicateErr, refErr error) error {
	if pgCode(err) == pgForeignKeyViolation {
		return refErr
	}
	return MapError(err, notFoundErr, duplicateErr)
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
