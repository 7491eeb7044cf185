package node

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apply(t *testing.T, n Node, parameter any) *DynamicContext {
	t.Helper()
	ctx := NewContext(nil, parameter, "")
	_, err := n.Apply(ctx)
	require.NoError(t, err)
	return ctx
}

// =========================================================================
// Literal Nodes
// =========================================================================

func TestStaticText(t *testing.T) {
	ctx := apply(t, &StaticText{Text: "SELECT 1"}, nil)
	assert.Equal(t, "SELECT 1", ctx.SQL())
}

func TestMixedAppliesInOrder(t *testing.T) {
	tree := Mixed{
		&StaticText{Text: "SELECT *"},
		&StaticText{Text: "FROM users"},
	}
	ctx := apply(t, tree, nil)
	assert.Equal(t, "SELECT * FROM users", ctx.SQL())
}

func TestTextSubstitution(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		parameter any
		expected  string
	}{
		{
			name:      "SingleExpression",
			text:      "ORDER BY ${column}",
			parameter: map[string]any{"column": "name"},
			expected:  "ORDER BY name",
		},
		{
			name:      "MultipleExpressions",
			text:      "${a}.${b}",
			parameter: map[string]any{"a": "public", "b": "users"},
			expected:  "public.users",
		},
		{
			name:      "NullBecomesEmpty",
			text:      "x${missing}y",
			parameter: map[string]any{},
			expected:  "xy",
		},
		{
			name:      "PrimitiveValueAlias",
			text:      "LIMIT ${value}",
			parameter: 10,
			expected:  "LIMIT 10",
		},
		{
			name:      "StructProperty",
			text:      "ORDER BY ${sort}",
			parameter: struct{ Sort string }{Sort: "age"},
			expected:  "ORDER BY age",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := apply(t, &Text{Text: tt.text}, tt.parameter)
			assert.Equal(t, tt.expected, ctx.SQL())
		})
	}
}

func TestTextSubstitutionPattern(t *testing.T) {
	digits := regexp.MustCompile(`^[0-9]+$`)

	ctx := apply(t, &Text{Text: "LIMIT ${n}", Pattern: digits}, map[string]any{"n": 25})
	assert.Equal(t, "LIMIT 25", ctx.SQL())

	bad := NewContext(nil, map[string]any{"n": "25; DROP TABLE users"}, "")
	_, err := (&Text{Text: "LIMIT ${n}", Pattern: digits}).Apply(bad)
	require.Error(t, err)
	var secErr *SecurityValidationError
	assert.ErrorAs(t, err, &secErr)
	// No partial text survives a failed validation.
	assert.Empty(t, bad.SQL())
}

func TestTextDynamicClassification(t *testing.T) {
	assert.True(t, (&Text{Text: "a ${b}"}).Dynamic())
	assert.False(t, (&Text{Text: "a #{b}"}).Dynamic())
}

// =========================================================================
// Conditional and Choice
// =========================================================================

func TestIf(t *testing.T) {
	tree := &If{Test: "a != null", Child: &StaticText{Text: "AND a=#{a}"}}

	ctx := NewContext(nil, map[string]any{"a": 5}, "")
	contributed, err := tree.Apply(ctx)
	require.NoError(t, err)
	assert.True(t, contributed)
	assert.Equal(t, "AND a=#{a}", ctx.SQL())

	ctx = NewContext(nil, map[string]any{}, "")
	contributed, err = tree.Apply(ctx)
	require.NoError(t, err)
	assert.False(t, contributed)
	assert.Empty(t, ctx.SQL())
}

func TestChooseFirstTrueBranchWins(t *testing.T) {
	tree := &Choose{
		Whens: []*If{
			{Test: "false", Child: &StaticText{Text: "first"}},
			{Test: "true", Child: &StaticText{Text: "second"}},
			{Test: "true", Child: &StaticText{Text: "third"}},
		},
		Otherwise: &StaticText{Text: "fallback"},
	}
	ctx := apply(t, tree, nil)
	assert.Equal(t, "second", ctx.SQL())
}

func TestChooseOtherwise(t *testing.T) {
	tree := &Choose{
		Whens:     []*If{{Test: "false", Child: &StaticText{Text: "never"}}},
		Otherwise: &StaticText{Text: "fallback"},
	}
	ctx := apply(t, tree, nil)
	assert.Equal(t, "fallback", ctx.SQL())
}

func TestChooseNothingMatches(t *testing.T) {
	tree := &Choose{Whens: []*If{{Test: "false", Child: &StaticText{Text: "never"}}}}
	ctx := NewContext(nil, nil, "")
	contributed, err := tree.Apply(ctx)
	require.NoError(t, err)
	assert.False(t, contributed)
	assert.Empty(t, ctx.SQL())
}

// =========================================================================
// Variable Declaration
// =========================================================================

func TestBind(t *testing.T) {
	tree := Mixed{
		&Bind{Name: "pattern", Expr: "name + '%'"},
		&StaticText{Text: "WHERE name LIKE #{pattern}"},
	}
	ctx := apply(t, tree, map[string]any{"name": "bob"})

	assert.Equal(t, "WHERE name LIKE #{pattern}", ctx.SQL())
	v, ok := ctx.Lookup("pattern")
	require.True(t, ok)
	assert.Equal(t, "bob%", v)
	assert.Equal(t, "bob%", ctx.ExtraBindings()["pattern"])
}

func TestBindShadowsArgumentProperty(t *testing.T) {
	tree := Mixed{
		&Bind{Name: "name", Expr: "'override'"},
		&Text{Text: "${name}"},
	}
	ctx := apply(t, tree, map[string]any{"name": "original"})
	assert.Equal(t, "override", ctx.SQL())
}

// =========================================================================
// Trim, Where, Set
// =========================================================================

func TestWhereStripsLeadingConnective(t *testing.T) {
	tests := []struct {
		name      string
		parameter map[string]any
		expected  string
	}{
		{"FirstConditionOnly", map[string]any{"a": 5}, "SELECT * FROM t WHERE a=#{a}"},
		{"SecondConditionOnly", map[string]any{"b": 7}, "SELECT * FROM t WHERE b=#{b}"},
		{"BothConditions", map[string]any{"a": 5, "b": 7}, "SELECT * FROM t WHERE a=#{a} AND b=#{b}"},
		{"NoConditions", map[string]any{}, "SELECT * FROM t"},
	}

	tree := Mixed{
		&StaticText{Text: "SELECT * FROM t"},
		Where(Mixed{
			&If{Test: "a != null", Child: &StaticText{Text: "AND a=#{a}"}},
			&If{Test: "b != null", Child: &StaticText{Text: "AND b=#{b}"}},
		}),
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := apply(t, tree, tt.parameter)
			assert.Equal(t, tt.expected, ctx.SQL())
		})
	}
}

func TestWhereStripsOrConnective(t *testing.T) {
	tree := Where(&StaticText{Text: "OR a=#{a}"})
	ctx := apply(t, tree, map[string]any{"a": 1})
	sql := ctx.SQL()
	assert.Equal(t, "WHERE a=#{a}", sql)
	assert.NotContains(t, sql, "OR")
}

func TestSetStripsTrailingComma(t *testing.T) {
	tree := Mixed{
		&StaticText{Text: "UPDATE users"},
		Set(Mixed{
			&If{Test: "name != null", Child: &StaticText{Text: "name=#{name},"}},
			&If{Test: "age != null", Child: &StaticText{Text: "age=#{age},"}},
		}),
		&StaticText{Text: "WHERE id=#{id}"},
	}
	ctx := apply(t, tree, map[string]any{"name": "bob", "id": 1})
	assert.Equal(t, "UPDATE users SET name=#{name} WHERE id=#{id}", ctx.SQL())
}

func TestTrimCustomOverrides(t *testing.T) {
	tree := &Trim{
		Prefix:          "(",
		Suffix:          ")",
		PrefixOverrides: []string{"AND ", "OR "},
		SuffixOverrides: []string{","},
		Child:           &StaticText{Text: "AND a=1,"},
	}
	ctx := apply(t, tree, nil)
	assert.Equal(t, "( a=1 )", ctx.SQL())
}

func TestTrimEmptyChildAppendsNothing(t *testing.T) {
	tree := &Trim{Prefix: "WHERE", Child: &If{Test: "false", Child: &StaticText{Text: "a=1"}}}
	ctx := apply(t, tree, nil)
	assert.Empty(t, ctx.SQL())
}

func TestTrimCaseInsensitiveOverride(t *testing.T) {
	tree := Where(&StaticText{Text: "and a=#{a}"})
	ctx := apply(t, tree, map[string]any{"a": 1})
	assert.Equal(t, "WHERE a=#{a}", ctx.SQL())
}
