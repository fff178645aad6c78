package db

import (
	"errors"

	pgconnv1 "github.com/jackc/pgconn"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes the application reacts to.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// ErrorCode extracts the SQLSTATE code from a pgx error, or an empty string.
func ErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var legacyErr *pgconnv1.PgError
	if errors.As(err, &legacyErr) {
		return legacyErr.Code
	}
	return ""
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	return ErrorCode(err) == codeUniqueViolation
}

// IsForeignKeyViolation reports whether err is a foreign key constraint
// violation, typically a reference to a row that does not exist.
func IsForeignKeyViolation(err error) bool {
	return ErrorCode(err) == codeForeignKeyViolation
}

// IsSerializationFailure reports whether err indicates the transaction lost a
// race against a concurrent writer and should be retried by the caller.
func IsSerializationFailure(err error) bool {
	code := ErrorCode(err)
	return code == codeSerializationFailure || code == codeDeadlockDetected
}
