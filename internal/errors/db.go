package errors

import (
	"context"
	"errors"
	"regexp"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// reKeyField extracts the column from a unique violation detail: "Key (email)=(x) already exists.".
var reKeyField = regexp.MustCompile(`Key \(([^)]+)\)=`)

// MapDBError maps database errors to AppError values:
//   - context deadline / cancellation → Timeout / Canceled
//   - pgx.ErrNoRows → NotFound
//   - unique violation → Conflict (with field)
//   - check and NOT NULL violations → Validation (with field)
//   - connection failures → Unavailable
//
// Unrecognized errors are returned unchanged.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &AppError{Code: ErrCodeTimeout, Message: "database call timed out", Cause: err}
	case errors.Is(err, context.Canceled):
		return &AppError{Code: ErrCodeCanceled, Message: "database call canceled", Cause: err}
	case errors.Is(err, pgx.ErrNoRows):
		return &AppError{Code: ErrCodeNotFound, Message: "record not found", Cause: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return mapPgError(pgErr)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return &AppError{Code: ErrCodeUnavailable, Message: "database unavailable", Cause: err}
	}

	return err
}

func mapPgError(pgErr *pgconn.PgError) error {
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return &AppError{
			Code:    ErrCodeConflict,
			Message: "record already exists",
			Field:   uniqueField(pgErr),
			Cause:   pgErr,
		}
	case pgerrcode.CheckViolation:
		return &AppError{
			Code:    ErrCodeValidation,
			Message: "value violates constraint " + pgErr.ConstraintName,
			Field:   pgErr.ColumnName,
			Cause:   pgErr,
		}
	case pgerrcode.NotNullViolation:
		return &AppError{
			Code:    ErrCodeValidation,
			Message: "required field is missing",
			Field:   pgErr.ColumnName,
			Cause:   pgErr,
		}
	case pgerrcode.InvalidTextRepresentation:
		return &AppError{Code: ErrCodeValidation, Message: "malformed value", Cause: pgErr}
	case pgerrcode.QueryCanceled:
		return &AppError{Code: ErrCodeTimeout, Message: "database call timed out", Cause: pgErr}
	case pgerrcode.AdminShutdown, pgerrcode.CannotConnectNow, pgerrcode.TooManyConnections:
		return &AppError{Code: ErrCodeUnavailable, Message: "database unavailable", Cause: pgErr}
	default:
		return &AppError{Code: ErrCodeInternal, Message: "database error", Cause: pgErr}
	}
}

// uniqueField prefers the ColumnName metadata, falling back to the Detail message.
func uniqueField(pgErr *pgconn.PgError) string {
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName
	}
	if m := reKeyField.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
		return m[1]
	}
	return ""
}
