package dbx

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
)

// IsUniqueViolation reports whether err carries PostgreSQL SQLSTATE 23505.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" // unique_violation
}

// IsForeignKeyViolation reports whether err carries PostgreSQL SQLSTATE 23503.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23503" // foreign_key_violation
}

// Classify maps a driver error onto the common sentinels: no rows becomes
// ErrorNotFound, a unique violation ErrorConflict, a foreign key violation
// ErrorNotFound. Anything else is wrapped as a db error.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return common.ErrorNotFound
	case IsUniqueViolation(err):
		return fmt.Errorf("%w: %s", common.ErrorConflict, constraintName(err))
	case IsForeignKeyViolation(err):
		return fmt.Errorf("%w: %s", common.ErrorNotFound, constraintName(err))
	default:
		return fmt.Errorf("db error: %w", err)
	}
}

func constraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.ConstraintName != "" {
		return pgErr.ConstraintName
	}
	return "constraint violation"
}
