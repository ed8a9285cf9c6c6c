package store

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql" // mysql driver
	_ "github.com/lib/pq"              // postgres driver
	_ "modernc.org/sqlite"             // sqlite driver

	"github.com/quarrydev/quarry/dialect"
	dsql "github.com/quarrydev/quarry/dialect/sql"
)

// Open opens a SQL-backed store for the given dialect name and data
// source. The three supported dialects are registered by this package.
func Open(dialectName, source string, opts ...SQLOption) (*SQLStore, error) {
	switch dialectName {
	case dialect.MySQL, dialect.SQLite, dialect.Postgres:
	default:
		return nil, fmt.Errorf("store: unsupported dialect %q", dialectName)
	}
	drv, err := dsql.Open(dialectName, source)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", dialectName, err)
	}
	return NewSQL(drv, opts...), nil
}
