package node

// If evaluates its test expression; on true it applies the child against the
// same context and reports success, on false it leaves the context untouched
// and reports no contribution.
type If struct {
	Test  string
	Child Node
}

func (n *If) Apply(ctx Context) (bool, error) {
	ok, err := ctx.Evaluator().Bool(n.Test, ctx.EvalEnv())
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if _, err := n.Child.Apply(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (*If) Kind() Kind { return KindIf }
