package shared

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound indicates a lookup by id returned no row.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates a command violated a domain rule.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates a storage-level unique constraint violation.
	ErrConflict = errors.New("conflict")
	// ErrEntityInUse indicates a soft delete blocked by a positive usage count.
	ErrEntityInUse = errors.New("entity in use")
)

// MapStorageError translates pgx failures into domain sentinels. Unique
// violations become ErrConflict and missing rows become ErrNotFound; every
// other storage error passes through untouched for the caller to surface.
func MapStorageError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrConflict
	}
	return err
}
