package core

import (
	"context"
	"database/sql"
)

// DBExecutor is the subset of sqlx used by our repositories.
// Both *sqlx.DB and *sqlx.Tx satisfy it, so repository methods run the same
// inside and outside a transaction.
type DBExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}
