package sqlite

import (
	"errors"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// constraintViolation matches extended SQLite result codes, falling back to
// the message for drivers that only report the primary code.
func constraintViolation(err error, code int, msg string) bool {
	if err == nil {
		return false
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code() == code {
		return true
	}
	return strings.Contains(err.Error(), msg)
}

func isForeignKeyViolation(err error) bool {
	return constraintViolation(err, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, "FOREIGN KEY constraint failed")
}

func isUniqueViolation(err error) bool {
	return constraintViolation(err, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, "UNIQUE constraint failed") ||
		constraintViolation(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE, "UNIQUE constraint failed")
}
