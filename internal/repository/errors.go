// Package repository holds the SQL data access for accounts, messages and
// prescriptions.  Repositories speak plain database/sql with `?`
// placeholders so the same code runs on MySQL and SQLite.  Methods with a
// Tx suffix run inside a caller-owned transaction; the caller commits or
// rolls back.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the addressed row does not exist.  It
// replaces sql.ErrNoRows so callers need not import database/sql.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a primary or unique
// key, such as registering a username twice.
var ErrDuplicate = errors.New("duplicate key")

// querier is the subset shared by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// mysqlDuplicateEntry is the server error number for ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// translate maps driver errors onto the package sentinels and passes
// everything else through untouched.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return ErrDuplicate
	}
	// modernc.org/sqlite reports "constraint failed: UNIQUE constraint failed: ..."
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrDuplicate
	}
	return err
}
