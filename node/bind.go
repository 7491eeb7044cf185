package node

// Bind evaluates an expression once and publishes the result under Name,
// visible to every subsequent sibling and descendant read. Always succeeds
// unless the expression itself fails.
type Bind struct {
	Name string
	Expr string
}

func (n *Bind) Apply(ctx Context) (bool, error) {
	value, err := ctx.Evaluator().Value(n.Expr, ctx.EvalEnv())
	if err != nil {
		return false, err
	}
	ctx.Bind(n.Name, value)
	return true, nil
}

func (*Bind) Kind() Kind { return KindBind }
