package dialect

import (
	"context"
)

// Supported dialect names.
const (
	MySQL    = "mysql"
	SQLite   = "sqlite"
	Postgres = "postgres"
)

// ExecQuerier wraps the two standard database operations.
type ExecQuerier interface {
	// Exec executes a statement that does not return rows. The args
	// parameter is expected to hold a []any; v may be nil or a
	// *sql.Result destination.
	Exec(ctx context.Context, query string, args, v any) error

	// Query executes a statement that returns rows. The args parameter
	// is expected to hold a []any; v receives the row iterator.
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the minimal interface a database backend exposes to the
// engine.
type Driver interface {
	ExecQuerier

	// Tx starts and returns a new transaction.
	Tx(context.Context) (Tx, error)

	// Close closes the underlying connection.
	Close() error

	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Tx is a transactional connection.
type Tx interface {
	ExecQuerier
	Commit() error
	Rollback() error
}

// NopTx returns a Tx over the driver with no-op Commit and Rollback.
// Useful for read-only flows that share a code path with transactional
// ones.
func NopTx(d Driver) Tx {
	return nopTx{d}
}

type nopTx struct {
	Driver
}

func (nopTx) Commit() error   { return nil }
func (nopTx) Rollback() error { return nil }
