package helper

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	PGUniqueViolation     = "23505"
	PGForeignKeyViolation = "23503"
	PGExclusionViolation  = "23P01"
)

// PGCode extracts the SQLSTATE from errors raised by pgx or lib/pq.
func PGCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func IsUniqueViolation(err error) bool {
	return PGCode(err) == PGUniqueViolation
}

func IsForeignKeyViolation(err error) bool {
	return PGCode(err) == PGForeignKeyViolation
}
