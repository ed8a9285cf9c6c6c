package sql

import (
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/quarrydev/quarry/dialect"
)

// Builder accumulates one SQL statement together with its bound
// arguments and dialect-specific placeholders.
type Builder struct {
	sb      strings.Builder
	dialect string
	args    []any
}

// Quote quotes the given identifier for the builder's dialect.
func (b *Builder) Quote(ident string) string {
	switch b.dialect {
	case dialect.MySQL:
		return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
	case dialect.Postgres:
		return pq.QuoteIdentifier(ident)
	default:
		return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
	}
}

// Arg appends a bound argument and writes its placeholder.
func (b *Builder) Arg(v any) *Builder {
	b.args = append(b.args, v)
	if b.dialect == dialect.Postgres {
		b.sb.WriteString("$" + strconv.Itoa(len(b.args)))
	} else {
		b.sb.WriteString("?")
	}
	return b
}

// WriteString appends raw SQL text.
func (b *Builder) WriteString(s string) *Builder {
	b.sb.WriteString(s)
	return b
}

// Ident writes a quoted identifier.
func (b *Builder) Ident(ident string) *Builder {
	b.sb.WriteString(b.Quote(ident))
	return b
}

// String returns the accumulated SQL text.
func (b *Builder) String() string { return b.sb.String() }

// Args returns the bound arguments in placeholder order.
func (b *Builder) Args() []any { return b.args }

// Predicate renders one WHERE fragment into a builder.
type Predicate func(*Builder)

// EQ returns a column = value predicate.
func EQ(col string, v any) Predicate {
	return func(b *Builder) {
		b.Ident(col).WriteString(" = ").Arg(v)
	}
}

// NEQ returns a column <> value predicate.
func NEQ(col string, v any) Predicate {
	return func(b *Builder) {
		b.Ident(col).WriteString(" <> ").Arg(v)
	}
}

// GT returns a column > value predicate.
func GT(col string, v any) Predicate {
	return func(b *Builder) {
		b.Ident(col).WriteString(" > ").Arg(v)
	}
}

// GTE returns a column >= value predicate.
func GTE(col string, v any) Predicate {
	return func(b *Builder) {
		b.Ident(col).WriteString(" >= ").Arg(v)
	}
}

// LT returns a column < value predicate.
func LT(col string, v any) Predicate {
	return func(b *Builder) {
		b.Ident(col).WriteString(" < ").Arg(v)
	}
}

// LTE returns a column <= value predicate.
func LTE(col string, v any) Predicate {
	return func(b *Builder) {
		b.Ident(col).WriteString(" <= ").Arg(v)
	}
}

// Like returns a case-sensitive LIKE predicate; the pattern is passed
// through unescaped.
func Like(col, pattern string) Predicate {
	return func(b *Builder) {
		b.Ident(col).WriteString(" LIKE ").Arg(pattern)
	}
}

// ILike returns a case-insensitive LIKE predicate. Postgres renders
// ILIKE; other dialects fold both sides with LOWER.
func ILike(col, pattern string) Predicate {
	return func(b *Builder) {
		if b.dialect == dialect.Postgres {
			b.Ident(col).WriteString(" ILIKE ").Arg(pattern)
			return
		}
		b.WriteString("LOWER(").Ident(col).WriteString(") LIKE LOWER(").Arg(pattern).WriteString(")")
	}
}

// In returns a column IN (...) predicate. An empty list renders FALSE.
func In(col string, vs ...any) Predicate {
	return func(b *Builder) {
		if len(vs) == 0 {
			b.WriteString("FALSE")
			return
		}
		b.Ident(col).WriteString(" IN (")
		for i, v := range vs {
			if i > 0 {
				b.WriteString(", ")
			}
			b.Arg(v)
		}
		b.WriteString(")")
	}
}

// NotIn returns a column NOT IN (...) predicate. An empty list renders
// TRUE.
func NotIn(col string, vs ...any) Predicate {
	return func(b *Builder) {
		if len(vs) == 0 {
			b.WriteString("TRUE")
			return
		}
		b.Ident(col).WriteString(" NOT IN (")
		for i, v := range vs {
			if i > 0 {
				b.WriteString(", ")
			}
			b.Arg(v)
		}
		b.WriteString(")")
	}
}

// Between returns an inclusive range predicate.
func Between(col string, lo, hi any) Predicate {
	return func(b *Builder) {
		b.Ident(col).WriteString(" BETWEEN ").Arg(lo).WriteString(" AND ").Arg(hi)
	}
}

// IsNull returns a column IS NULL predicate.
func IsNull(col string) Predicate {
	return func(b *Builder) {
		b.Ident(col).WriteString(" IS NULL")
	}
}

// NotNull returns a column IS NOT NULL predicate.
func NotNull(col string) Predicate {
	return func(b *Builder) {
		b.Ident(col).WriteString(" IS NOT NULL")
	}
}

// Contains returns a substring predicate; pattern metacharacters in the
// needle are escaped.
func Contains(col, sub string) Predicate {
	return likeEscaped(col, "%"+escapeLike(sub)+"%")
}

// HasPrefix returns a prefix predicate.
func HasPrefix(col, prefix string) Predicate {
	return likeEscaped(col, escapeLike(prefix)+"%")
}

// HasSuffix returns a suffix predicate.
func HasSuffix(col, suffix string) Predicate {
	return likeEscaped(col, "%"+escapeLike(suffix))
}

func likeEscaped(col, pattern string) Predicate {
	return func(b *Builder) {
		b.Ident(col).WriteString(" LIKE ").Arg(pattern)
		// MySQL and Postgres default the escape character to a
		// backslash; SQLite, and the SQLite-compatible default dialect,
		// have no default.
		switch b.dialect {
		case dialect.MySQL, dialect.Postgres:
		default:
			b.WriteString(` ESCAPE '\'`)
		}
	}
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}

// And groups the given predicates with AND.
func And(preds ...Predicate) Predicate {
	return func(b *Builder) {
		b.WriteString("(")
		for i, p := range preds {
			if i > 0 {
				b.WriteString(" AND ")
			}
			p(b)
		}
		b.WriteString(")")
	}
}

// Or groups the given predicates with OR.
func Or(preds ...Predicate) Predicate {
	return func(b *Builder) {
		b.WriteString("(")
		for i, p := range preds {
			if i > 0 {
				b.WriteString(" OR ")
			}
			p(b)
		}
		b.WriteString(")")
	}
}

// Selector builds a SELECT statement.
type Selector struct {
	dialect string
	table   string
	columns []string
	preds   []Predicate
	order   []string
	limit   int
}

// Select starts a SELECT builder for the given columns; no columns
// selects *.
func Select(columns ...string) *Selector {
	return &Selector{columns: columns}
}

// Dialect sets the dialect the statement is rendered in. The default
// is SQLite-compatible quoting with ? placeholders.
func (s *Selector) Dialect(name string) *Selector {
	s.dialect = name
	return s
}

// From sets the table to select from.
func (s *Selector) From(table string) *Selector {
	s.table = table
	return s
}

// Where appends a predicate; multiple calls are ANDed.
func (s *Selector) Where(p Predicate) *Selector {
	if p != nil {
		s.preds = append(s.preds, p)
	}
	return s
}

// OrderBy appends ordering columns.
func (s *Selector) OrderBy(columns ...string) *Selector {
	s.order = append(s.order, columns...)
	return s
}

// Limit caps the number of returned rows.
func (s *Selector) Limit(n int) *Selector {
	s.limit = n
	return s
}

// Query renders the statement and its arguments.
func (s *Selector) Query() (string, []any) {
	b := &Builder{dialect: s.dialect}
	b.WriteString("SELECT ")
	if len(s.columns) == 0 {
		b.WriteString("*")
	} else {
		for i, c := range s.columns {
			if i > 0 {
				b.WriteString(", ")
			}
			b.Ident(c)
		}
	}
	b.WriteString(" FROM ").Ident(s.table)
	if len(s.preds) > 0 {
		b.WriteString(" WHERE ")
		for i, p := range s.preds {
			if i > 0 {
				b.WriteString(" AND ")
			}
			p(b)
		}
	}
	if len(s.order) > 0 {
		b.WriteString(" ORDER BY ")
		for i, c := range s.order {
			if i > 0 {
				b.WriteString(", ")
			}
			b.Ident(c)
		}
	}
	if s.limit > 0 {
		b.WriteString(" LIMIT " + strconv.Itoa(s.limit))
	}
	return b.String(), b.Args()
}
