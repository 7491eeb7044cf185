package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeline/dynsql/eval"
	"github.com/forgeline/dynsql/node"
)

// =========================================================================
// End-to-End Evaluation
// =========================================================================

func TestEvaluateConditionalWhere(t *testing.T) {
	tree := node.Mixed{
		&node.StaticText{Text: "SELECT * FROM t"},
		node.Where(node.Mixed{
			&node.If{Test: "a != null", Child: &node.StaticText{Text: "AND a=#{a}"}},
			&node.If{Test: "b != null", Child: &node.StaticText{Text: "AND b=#{b}"}},
		}),
	}

	bound, err := Evaluate(tree, map[string]any{"a": 5, "b": nil})
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM t WHERE a=?", bound.SQL)
	require.Len(t, bound.Mappings, 1)
	assert.Equal(t, "a", bound.Mappings[0].Property)
	assert.Equal(t, []any{5}, bound.Args(map[string]any{"a": 5, "b": nil}))
}

func TestEvaluateForeachInClause(t *testing.T) {
	tree := &node.ForEach{
		Collection: "list",
		Item:       "v",
		Open:       "(",
		Close:      ")",
		Separator:  ",",
		Child:      &node.StaticText{Text: "#{v}"},
	}
	parameter := map[string]any{"list": []int{1, 2, 3}}

	bound, err := Evaluate(tree, parameter)
	require.NoError(t, err)

	assert.Equal(t, "( ? , ? , ? )", bound.SQL)
	require.Len(t, bound.Mappings, 3)

	// Each occurrence carries its iteration-specific disambiguated path.
	paths := map[string]bool{}
	for _, m := range bound.Mappings {
		assert.NotEqual(t, "v", m.Property)
		paths[m.Property] = true
	}
	assert.Len(t, paths, 3)

	assert.Equal(t, []any{1, 2, 3}, bound.Args(parameter))
}

func TestEvaluateBindFlowsIntoArgs(t *testing.T) {
	tree := node.Mixed{
		&node.Bind{Name: "pattern", Expr: "name + '%'"},
		&node.StaticText{Text: "SELECT * FROM users WHERE name LIKE #{pattern}"},
	}
	parameter := map[string]any{"name": "bob"}

	bound, err := Evaluate(tree, parameter)
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM users WHERE name LIKE ?", bound.SQL)
	assert.Equal(t, "bob%", bound.ExtraBindings["pattern"])
	assert.Equal(t, []any{"bob%"}, bound.Args(parameter))
}

func TestEvaluateStructArgument(t *testing.T) {
	type filter struct {
		Name string
		Age  int
	}

	tree := node.Mixed{
		&node.StaticText{Text: "SELECT * FROM users"},
		node.Where(node.Mixed{
			&node.If{Test: "name != ''", Child: &node.StaticText{Text: "AND name=#{name}"}},
			&node.If{Test: "age > 0", Child: &node.StaticText{Text: "AND age=#{age}"}},
		}),
	}

	bound, err := Evaluate(tree, filter{Name: "bob"})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users WHERE name=?", bound.SQL)
	assert.Equal(t, []any{"bob"}, bound.Args(filter{Name: "bob"}))
}

func TestEvaluateDatabaseID(t *testing.T) {
	tree := &node.Choose{
		Whens: []*node.If{
			{Test: "_databaseId == 'postgres'", Child: &node.StaticText{Text: "SELECT now()"}},
		},
		Otherwise: &node.StaticText{Text: "SELECT CURRENT_TIMESTAMP"},
	}

	bound, err := EvaluateWith(tree, nil, EvalOptions{DatabaseID: "postgres"})
	require.NoError(t, err)
	assert.Equal(t, "SELECT now()", bound.SQL)

	bound, err = EvaluateWith(tree, nil, EvalOptions{DatabaseID: "mysql"})
	require.NoError(t, err)
	assert.Equal(t, "SELECT CURRENT_TIMESTAMP", bound.SQL)
}

func TestEvaluateWithDedicatedEvaluator(t *testing.T) {
	cache := eval.NewProgramCache(8)
	ev := eval.New(cache)

	tree := &node.If{Test: "a > 1", Child: &node.StaticText{Text: "yes"}}
	_, err := EvaluateWith(tree, map[string]any{"a": 2}, EvalOptions{Evaluator: ev})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())
}

func TestEvaluatePropagatesErrors(t *testing.T) {
	tree := &node.ForEach{Collection: "missing", Item: "v", Child: &node.StaticText{Text: "#{v}"}}
	_, err := Evaluate(tree, map[string]any{})
	require.Error(t, err)

	var evalErr *eval.EvaluationError
	assert.ErrorAs(t, err, &evalErr)
}
