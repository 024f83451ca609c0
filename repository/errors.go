package repository

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrStorageUnavailable marks failures caused by an unreachable store rather than by the query itself.
var ErrStorageUnavailable = errors.New("storage unavailable")

// IsStorageUnavailable reports whether err means the database could not be reached.
func IsStorageUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrStorageUnavailable) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	// Class 08 is connection exception; 57P0x covers server shutdown.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "08") || strings.HasPrefix(pgErr.Code, "57P0")
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// storageErr wraps err with msg, tagging connection failures with ErrStorageUnavailable.
func storageErr(msg string, err error) error {
	if IsStorageUnavailable(err) && !errors.Is(err, ErrStorageUnavailable) {
		return fmt.Errorf("%s: %w: %w", msg, ErrStorageUnavailable, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
