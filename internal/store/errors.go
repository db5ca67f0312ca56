package store

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAdminExists is returned when an insert would create a second
	// administrator account.
	ErrAdminExists = errors.New("admin already exists")

	// ErrUnknownDriver is returned by Open for an unsupported driver name.
	ErrUnknownDriver = errors.New("unknown database driver")
)

// isUniqueViolation reports whether err is a unique-constraint violation from
// either supported driver. SQLite reports "UNIQUE constraint failed", the
// pgx stdlib driver reports SQLSTATE 23505 / "duplicate key".
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "23505")
}
