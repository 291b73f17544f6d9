package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/Taichi-iskw/yt-trend/internal/errors"
)

// handlePostgreSQLError converts PostgreSQL-specific errors to appropriate AppError codes
func handlePostgreSQLError(err error, operation string) *apperrors.AppError {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperrors.Wrap(err, apperrors.CodeExternal, operation+": database call cancelled")
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return apperrors.Wrap(err, apperrors.CodeInternal, operation)
	}

	switch pgErr.Code {
	case "23505": // UNIQUE_VIOLATION
		return handleUniqueViolation(pgErr)

	case "23503": // FOREIGN_KEY_VIOLATION
		return handleForeignKeyViolation(pgErr)

	case "23502": // NOT_NULL_VIOLATION
		return apperrors.Wrap(err, apperrors.CodeInvalidArg, "required field is missing: "+pgErr.ColumnName)

	case "23514": // CHECK_VIOLATION
		return apperrors.Wrap(err, apperrors.CodeInvalidArg, "data violates check constraint "+pgErr.ConstraintName)

	case "42P01", "42703": // UNDEFINED_TABLE, UNDEFINED_COLUMN
		return apperrors.Wrap(err, apperrors.CodeInternal, "database schema is out of date; run `yt-trend db migrate`")

	case "57014": // QUERY_CANCELED
		return apperrors.Wrap(err, apperrors.CodeExternal, operation+": query cancelled")

	case "08000", "08003", "08006", "53300": // connection failures, TOO_MANY_CONNECTIONS
		return apperrors.Wrap(err, apperrors.CodeExternal, "database connection error")

	default:
		return apperrors.Wrap(err, apperrors.CodeInternal, operation+" (PostgreSQL code: "+pgErr.Code+")")
	}
}

// handleUniqueViolation names the table whose key collided
func handleUniqueViolation(pgErr *pgconn.PgError) *apperrors.AppError {
	switch {
	case strings.HasPrefix(pgErr.ConstraintName, "channels"):
		return apperrors.Wrap(pgErr, apperrors.CodeConflict, "channel with this ID already exists")
	case strings.HasPrefix(pgErr.ConstraintName, "videos"):
		return apperrors.Wrap(pgErr, apperrors.CodeConflict, "video with this ID already exists")
	default:
		return apperrors.Wrap(pgErr, apperrors.CodeConflict, "resource already exists")
	}
}

// handleForeignKeyViolation reports which reference is missing
func handleForeignKeyViolation(pgErr *pgconn.PgError) *apperrors.AppError {
	if strings.Contains(pgErr.ConstraintName, "channel_id") {
		return apperrors.Wrap(pgErr, apperrors.CodeDependency, "referenced channel does not exist")
	}
	return apperrors.Wrap(pgErr, apperrors.CodeDependency, "referenced resource does not exist")
}
