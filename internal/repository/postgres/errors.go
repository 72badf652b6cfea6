package postgres

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// IsPgNoRowsError checks if error is a "no rows" error
func IsPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsUUID reports whether id parses as a uuid. Repositories check ids up front
// and report malformed ones as not found.
func IsUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
