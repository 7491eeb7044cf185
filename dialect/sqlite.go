package dialect

type SQLite struct{}

func NewSQLiteDialect() Dialect {
	return SQLite{}
}

func (SQLite) Name() string { return "sqlite" }

func (SQLite) QuoteIdentifier(name string) string {
	return `"` + name + `"`
}

func (SQLite) Placeholder(n int) string {
	return "?"
}
