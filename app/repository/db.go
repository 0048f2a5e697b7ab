package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so a repository can be bound to a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const (
	mysqlErrDuplicateEntry = 1062
	mysqlErrDeadlock       = 1213
	mysqlErrNoReferenced   = 1452
)

func IsDuplicateEntry(err error) bool {
	return hasMySQLCode(err, mysqlErrDuplicateEntry)
}

func IsDeadlock(err error) bool {
	return hasMySQLCode(err, mysqlErrDeadlock)
}

// IsMissingReference reports a foreign key violation on insert, i.e. the parent row is gone.
func IsMissingReference(err error) bool {
	return hasMySQLCode(err, mysqlErrNoReferenced)
}

func hasMySQLCode(err error, code uint16) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == code
	}
	return false
}
