package node

// Trim materializes its child's full output in a buffering decorator before
// any prefix/suffix policy runs; the boundary token is only knowable once all
// children have written, so per-fragment trimming would misfire. On commit at
// most one override token is stripped from each end and the configured
// replacement prefix/suffix inserted.
type Trim struct {
	Prefix          string
	Suffix          string
	PrefixOverrides []string
	SuffixOverrides []string
	Child           Node
}

func (n *Trim) Apply(ctx Context) (bool, error) {
	trimmed := newTrimmedContext(ctx, n)
	contributed, err := n.Child.Apply(trimmed)
	if err != nil {
		return false, err
	}
	trimmed.Commit()
	return contributed, nil
}

func (*Trim) Kind() Kind { return KindTrim }

// whereOverrides lists the boolean connectives a WHERE clause strips from its
// head, in the four whitespace variants a template can produce.
var whereOverrides = []string{
	"AND ", "OR ",
	"AND\n", "OR\n",
	"AND\r", "OR\r",
	"AND\t", "OR\t",
}

// Where builds the WHERE specialization: strips a leading AND/OR connective
// and prefixes the clause keyword when the body contributed anything.
func Where(child Node) *Trim {
	return &Trim{
		Prefix:          "WHERE",
		PrefixOverrides: whereOverrides,
		Child:           child,
	}
}

// Set builds the SET specialization: strips one trailing comma separator and
// prefixes the clause keyword.
func Set(child Node) *Trim {
	return &Trim{
		Prefix:          "SET",
		SuffixOverrides: []string{","},
		Child:           child,
	}
}
