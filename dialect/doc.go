// Package dialect provides database dialect abstraction for the quarry
// engine.
//
// This package defines the interfaces and types used for
// database-specific operations, allowing the engine to read the code
// graph from multiple relational backends.
//
// # Supported Dialects
//
// Each dialect is identified by a constant string:
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//
// # Driver Interface
//
// The Driver interface is the minimal contract a backend exposes:
//
//	type Driver interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// The engine itself is strictly read-only over the code graph; Exec
// exists for backends and tests that need to seed or maintain data
// through the same connection.
//
// # Usage
//
// Opening a database connection:
//
//	import (
//	    "github.com/quarrydev/quarry/dialect"
//	    "github.com/quarrydev/quarry/dialect/sql"
//	)
//
//	drv, err := sql.Open(dialect.Postgres, "postgres://...")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer drv.Close()
//
// The dialect/sql sub-package carries the database/sql implementation,
// the SELECT builder the store renders push-down queries with, and
// driver wrappers for statistics and debug logging.
package dialect
