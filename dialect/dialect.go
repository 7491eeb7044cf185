package dialect

import "strings"

// Dialect abstracts the per-database differences the engine cares about:
// placeholder syntax and identifier quoting. Name is exposed to templates as
// the _databaseId variable so statements can branch on the target database.
type Dialect interface {
	Name() string
	QuoteIdentifier(name string) string
	Placeholder(n int) string
}

// ByName resolves a dialect from its database id.
func ByName(name string) (Dialect, bool) {
	switch name {
	case "postgres", "postgresql":
		return Postgres{}, true
	case "mysql":
		return MySQL{}, true
	case "sqlite", "sqlite3":
		return SQLite{}, true
	}
	return nil, false
}

// Translate rewrites the generic ? markers produced by statement compilation
// into the dialect's positional placeholders. Markers inside single-quoted
// literals are left alone.
func Translate(d Dialect, query string) string {
	if d.Placeholder(1) == "?" {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	inLiteral := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			// A doubled quote inside a literal is an escaped quote, not a close.
			if inLiteral && i+1 < len(query) && query[i+1] == '\'' {
				b.WriteString("''")
				i++
				continue
			}
			inLiteral = !inLiteral
			b.WriteByte(c)
		case c == '?' && !inLiteral:
			n++
			b.WriteString(d.Placeholder(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
