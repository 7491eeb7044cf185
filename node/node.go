// Package node defines the compiled template node tree and the per-invocation
// context it evaluates against. A tree is built once by the mapper front-end,
// is immutable afterwards, and is safe for unbounded concurrent application;
// each application gets its own Context.
package node

// Node is one element of a compiled statement template. Apply consumes the
// context, appending output and/or mutating bindings. The boolean reports
// whether the node contributed: conditional kinds signal "no match" with
// false rather than an error, keeping the hot path free of exception-style
// control flow.
type Node interface {
	Apply(ctx Context) (bool, error)
}

// Kind discriminates node types without reflection, mirroring the tagged-union
// shape of the compiled tree.
type Kind int

const (
	KindStaticText Kind = iota
	KindText
	KindIf
	KindChoose
	KindBind
	KindTrim
	KindForEach
	KindMixed
)

// Mixed is the structural glue produced for every compiled block: it applies
// each child in order against the same context and always reports success.
type Mixed []Node

func (m Mixed) Apply(ctx Context) (bool, error) {
	for _, child := range m {
		if _, err := child.Apply(ctx); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (Mixed) Kind() Kind { return KindMixed }

// StaticText appends fixed text verbatim. It carries no expression and never
// consults the bindings.
type StaticText struct {
	Text string
}

func (n *StaticText) Apply(ctx Context) (bool, error) {
	ctx.AppendSQL(n.Text)
	return true, nil
}

func (*StaticText) Kind() Kind { return KindStaticText }
