package sqlstore

import (
	"errors"
	"fmt"
	"strings"

	catalog "asset-catalog/internal/catalog/domain"

	"github.com/jackc/pgx/v5/pgconn"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// classify maps driver errors onto catalog sentinels, keeping the driver
// message in the chain.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case isConstraintViolation(err):
		return fmt.Errorf("%w: %s: %v", catalog.ErrConstraintViolation, op, err)
	case isDataException(err):
		return fmt.Errorf("%w: %s: %v", catalog.ErrInvalidRecord, op, err)
	case isMissingTable(err):
		return fmt.Errorf("%w: %s: %v", catalog.ErrStorageUnavailable, op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func isConstraintViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code()&0xff == sqlite3lib.SQLITE_CONSTRAINT {
			return true
		}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "23")
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "constraint failed")
}

// isDataException matches SQLSTATE class 22, such as a numeric value out of
// range for its column.
func isDataException(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "22")
	}
	return false
}

func isMissingTable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "42P01"
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such table")
}
