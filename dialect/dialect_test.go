package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByName(t *testing.T) {
	for name, expected := range map[string]string{
		"postgres":   "postgres",
		"postgresql": "postgres",
		"mysql":      "mysql",
		"sqlite":     "sqlite",
		"sqlite3":    "sqlite",
	} {
		d, ok := ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, expected, d.Name())
	}

	_, ok := ByName("oracle")
	assert.False(t, ok)
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "$3", Postgres{}.Placeholder(3))
	assert.Equal(t, "?", MySQL{}.Placeholder(3))
	assert.Equal(t, "?", SQLite{}.Placeholder(3))
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, `"name"`, Postgres{}.QuoteIdentifier("name"))
	assert.Equal(t, "`name`", MySQL{}.QuoteIdentifier("name"))
	assert.Equal(t, `"name"`, SQLite{}.QuoteIdentifier("name"))
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		query    string
		expected string
	}{
		{
			name:     "PostgresNumbering",
			dialect:  Postgres{},
			query:    "SELECT * FROM t WHERE a=? AND b=?",
			expected: "SELECT * FROM t WHERE a=$1 AND b=$2",
		},
		{
			name:     "QuestionMarkDialectUntouched",
			dialect:  SQLite{},
			query:    "SELECT * FROM t WHERE a=?",
			expected: "SELECT * FROM t WHERE a=?",
		},
		{
			name:     "LiteralPreserved",
			dialect:  Postgres{},
			query:    "SELECT '?' FROM t WHERE a=?",
			expected: "SELECT '?' FROM t WHERE a=$1",
		},
		{
			name:     "EscapedQuoteInsideLiteral",
			dialect:  Postgres{},
			query:    "SELECT 'it''s ?' FROM t WHERE a=?",
			expected: "SELECT 'it''s ?' FROM t WHERE a=$1",
		},
		{
			name:     "NoMarkers",
			dialect:  Postgres{},
			query:    "SELECT 1",
			expected: "SELECT 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Translate(tt.dialect, tt.query))
		})
	}
}
