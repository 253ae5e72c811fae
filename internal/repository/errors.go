// Package repository holds the SQL access layer for accounts and session
// tokens.  The sentinel errors below let handlers map storage outcomes to
// HTTP statuses with errors.Is instead of inspecting driver errors.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrUsernameExists is returned by AccountRepo.Create when the username is
// already taken.  Handlers translate it into HTTP 409.
var ErrUsernameExists = errors.New("username already exists")

// ErrAccountNotFound means no account row matched the lookup.
var ErrAccountNotFound = errors.New("account not found")

// ErrSessionNotFound means no session row exists for the token digest.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionExpired means the session row exists but its expires_at has
// passed.
var ErrSessionExpired = errors.New("session expired")

// isUniqueViolation recognises duplicate-key failures from both drivers.
func isUniqueViolation(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
