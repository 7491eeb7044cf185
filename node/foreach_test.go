package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForEachEmptyCollection(t *testing.T) {
	tree := &ForEach{
		Collection: "ids",
		Item:       "id",
		Open:       "(",
		Close:      ")",
		Separator:  ",",
		Child:      &StaticText{Text: "#{id}"},
	}
	ctx := NewContext(nil, map[string]any{"ids": []int{}}, "")
	contributed, err := tree.Apply(ctx)
	require.NoError(t, err)
	assert.True(t, contributed)
	assert.Empty(t, ctx.SQL())
}

func TestForEachNullCollection(t *testing.T) {
	tree := &ForEach{Collection: "ids", Item: "id", Child: &StaticText{Text: "#{id}"}}
	ctx := NewContext(nil, map[string]any{}, "")
	_, err := tree.Apply(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collection")
}

func TestForEachListWithDelimiters(t *testing.T) {
	tree := &ForEach{
		Collection: "ids",
		Item:       "v",
		Open:       "(",
		Close:      ")",
		Separator:  ",",
		Child:      &StaticText{Text: "#{v}"},
	}
	ctx := apply(t, tree, map[string]any{"ids": []int{1, 2, 3}})

	assert.Equal(t, "( #{__frch_v_0} , #{__frch_v_1} , #{__frch_v_2} )", ctx.SQL())

	extra := ctx.ExtraBindings()
	assert.Equal(t, 1, extra["__frch_v_0"])
	assert.Equal(t, 2, extra["__frch_v_1"])
	assert.Equal(t, 3, extra["__frch_v_2"])
}

func TestForEachSeparatorCount(t *testing.T) {
	tree := &ForEach{
		Collection: "ids",
		Item:       "v",
		Separator:  "UNION",
		Child:      &StaticText{Text: "SELECT #{v}"},
	}
	ctx := apply(t, tree, map[string]any{"ids": []int{1, 2, 3, 4}})
	assert.Equal(t, 3, countOccurrences(ctx.SQL(), "UNION"))
}

// The separator privilege belongs to the first iteration that actually
// writes, not to index zero: iterations whose body contributes nothing must
// not cause a leading separator.
func TestForEachSeparatorAfterEmptyIterations(t *testing.T) {
	tree := &ForEach{
		Collection: "ids",
		Item:       "v",
		Separator:  ",",
		Child:      &If{Test: "v > 2", Child: &StaticText{Text: "#{v}"}},
	}
	ctx := apply(t, tree, map[string]any{"ids": []int{1, 2, 3, 4}})

	sql := ctx.SQL()
	assert.Equal(t, "#{__frch_v_2} , #{__frch_v_3}", sql)
	assert.Equal(t, 1, countOccurrences(sql, ","))
}

func TestForEachMapCollection(t *testing.T) {
	tree := &ForEach{
		Collection: "attrs",
		Index:      "k",
		Item:       "v",
		Separator:  ",",
		Child:      &Text{Text: "${k}=#{v}"},
	}
	ctx := apply(t, tree, map[string]any{"attrs": map[string]string{"name": "bob"}})
	assert.Equal(t, "name=#{__frch_v_0}", ctx.SQL())
	assert.Equal(t, "bob", ctx.ExtraBindings()["__frch_v_0"])
}

func TestForEachIndexBinding(t *testing.T) {
	tree := &ForEach{
		Collection: "ids",
		Index:      "i",
		Item:       "v",
		Separator:  ",",
		Child:      &StaticText{Text: "#{i}:#{v}"},
	}
	ctx := apply(t, tree, map[string]any{"ids": []string{"a", "b"}})

	assert.Equal(t, "#{__frch_i_0}:#{__frch_v_0} , #{__frch_i_1}:#{__frch_v_1}", ctx.SQL())
	extra := ctx.ExtraBindings()
	assert.Equal(t, 0, extra["__frch_i_0"])
	assert.Equal(t, "b", extra["__frch_v_1"])
}

func TestForEachUnbindsLoopVariables(t *testing.T) {
	tree := &ForEach{
		Collection: "ids",
		Index:      "i",
		Item:       "v",
		Child:      &StaticText{Text: "#{v}"},
	}
	ctx := apply(t, tree, map[string]any{"ids": []int{1}})

	_, ok := ctx.Lookup("v")
	assert.False(t, ok)
	_, ok = ctx.Lookup("i")
	assert.False(t, ok)
	// Disambiguated bindings survive for the placeholder compiler.
	_, ok = ctx.Lookup("__frch_v_0")
	assert.True(t, ok)
}

func TestForEachNested(t *testing.T) {
	inner := &ForEach{
		Collection: "pair",
		Item:       "x",
		Separator:  ",",
		Child:      &StaticText{Text: "#{x}"},
	}
	tree := &ForEach{
		Collection: "groups",
		Item:       "pair",
		Open:       "(",
		Close:      ")",
		Separator:  "), (",
		Child:      inner,
	}
	ctx := apply(t, tree, map[string]any{"groups": [][]int{{1, 2}, {3, 4}}})

	extra := ctx.ExtraBindings()
	// Unique numbers never repeat across nesting levels.
	assert.Equal(t, 1, extra["__frch_x_1"])
	assert.Equal(t, 2, extra["__frch_x_2"])
	assert.Equal(t, 3, extra["__frch_x_4"])
	assert.Equal(t, 4, extra["__frch_x_5"])
}

func TestItemFilterLeavesPartialNamesAlone(t *testing.T) {
	tree := &ForEach{
		Collection: "ids",
		Item:       "v",
		Child:      &StaticText{Text: "#{value} #{v} #{v.field}"},
	}
	ctx := apply(t, tree, map[string]any{"ids": []int{9}})
	assert.Equal(t, "#{value} #{__frch_v_0} #{__frch_v_0.field}", ctx.SQL())
}

func countOccurrences(s, sub string) int {
	count := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			count++
		}
	}
	return count
}
