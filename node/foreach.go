package node

import "strconv"

// uniqueSuffixPrefix namespaces the disambiguated per-iteration bindings so
// they cannot collide with template-authored names.
const uniqueSuffixPrefix = "__frch_"

// UniqueName returns the disambiguated binding name for one iteration of a
// loop variable: the configured name plus a suffix from the context's shared
// sequence counter. The placeholder compiler resolves these names from the
// extra-bindings snapshot after the loop has moved on.
func UniqueName(name string, n int) string {
	return uniqueSuffixPrefix + name + "_" + strconv.Itoa(n)
}

// ForEach iterates a collection expression, applying its child once per
// element with the configured index/item names bound. Output is wrapped in the
// optional open/close delimiters; the separator is gated so it never appears
// before the first iteration that actually writes something, even when earlier
// iterations contribute nothing.
type ForEach struct {
	Collection string
	Item       string
	Index      string
	Open       string
	Close      string
	Separator  string
	Child      Node
}

func (n *ForEach) Apply(ctx Context) (bool, error) {
	pairs, err := ctx.Evaluator().Iterable(n.Collection, ctx.EvalEnv())
	if err != nil {
		return false, err
	}
	if len(pairs) == 0 {
		return true, nil
	}

	if n.Open != "" {
		ctx.AppendSQL(n.Open)
	}

	first := true
	for _, pair := range pairs {
		// Each iteration gets a fresh decorator pair over the outer context;
		// nothing from a previous iteration's chain is reused.
		var gate *prefixedContext
		if first || n.Separator == "" {
			gate = newPrefixedContext(ctx, "")
		} else {
			gate = newPrefixedContext(ctx, n.Separator)
		}

		unique := ctx.NextUniqueNumber()
		n.bindIteration(gate, n.Index, pair.Key, unique)
		n.bindIteration(gate, n.Item, pair.Value, unique)

		filtered := &itemFilterContext{
			Context:   gate,
			itemName:  n.Item,
			itemKey:   UniqueName(n.Item, unique),
			indexName: n.Index,
			indexKey:  UniqueName(n.Index, unique),
		}
		if _, err := n.Child.Apply(filtered); err != nil {
			return false, err
		}

		// The "no separator before me" privilege survives until some
		// iteration actually fires the gate.
		if first {
			first = !gate.applied
		}
	}

	if n.Close != "" {
		ctx.AppendSQL(n.Close)
	}

	// The loop variables are scoped to the loop; the disambiguated bindings
	// stay behind for the placeholder compiler.
	if n.Index != "" {
		ctx.Unbind(n.Index)
	}
	if n.Item != "" {
		ctx.Unbind(n.Item)
	}
	return true, nil
}

func (n *ForEach) bindIteration(ctx Context, name string, value any, unique int) {
	if name == "" {
		return
	}
	ctx.Bind(name, value)
	ctx.Bind(UniqueName(name, unique), value)
}

func (*ForEach) Kind() Kind { return KindForEach }
