package repositories

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/example/catalogapi/internal/services"
)

const uniqueViolation = "23505"

// translateUserConflict maps a unique violation on users.email or
// users.mobile to the matching conflict error.
func translateUserConflict(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}

	switch {
	case strings.Contains(pgErr.ConstraintName, "email"):
		return services.ErrEmailExists
	case strings.Contains(pgErr.ConstraintName, "mobile"):
		return services.ErrMobileExists
	default:
		return err
	}
}
