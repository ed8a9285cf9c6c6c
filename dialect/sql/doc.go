// Package sql provides SQL query building primitives and the
// database/sql driver implementation.
//
// The engine reads the code graph through this package: the store
// renders its row fetches with the Selector builder, and executes them
// through a Driver opened for one of the supported dialects.
//
// # Dialect Support
//
// SQL generation adapts to the dialect set on the builder:
//
//	import "github.com/quarrydev/quarry/dialect"
//
//	q, args := sql.Select().
//	    From("function").
//	    Where(sql.EQ("module_id", 7)).
//	    OrderBy("id").
//	    Dialect(dialect.Postgres).
//	    Query()
//	// SELECT * FROM "function" WHERE "module_id" = $1 ORDER BY "id"
//
// Postgres renders $n placeholders and double-quoted identifiers,
// MySQL renders ? placeholders and backticks, SQLite renders ?
// placeholders and double quotes.
//
// # Predicates
//
// Predicates compose with And/Or and mirror the engine's condition
// operators:
//
//	sql.EQ("name", "main")           // name = ?
//	sql.GT("line_number_start", 10)  // line_number_start > ?
//	sql.Contains("raw_string", "x")  // raw_string LIKE '%x%' (escaped)
//	sql.In("id", 1, 2, 3)            // id IN (?, ?, ?)
//	sql.IsNull("raw_string")         // raw_string IS NULL
//
// # Driver Wrappers
//
// NewStatsDriver layers query counters and slow-query logging over any
// dialect.Driver; NewDebugDriver logs every statement at debug level.
package sql
