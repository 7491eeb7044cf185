package node

// Choose applies its branches in order; the first branch whose test holds wins
// and no further branch is tried. When none wins the optional default applies.
// With no winner and no default the node contributes nothing.
type Choose struct {
	Whens     []*If
	Otherwise Node
}

func (n *Choose) Apply(ctx Context) (bool, error) {
	for _, when := range n.Whens {
		applied, err := when.Apply(ctx)
		if err != nil {
			return false, err
		}
		if applied {
			return true, nil
		}
	}
	if n.Otherwise != nil {
		if _, err := n.Otherwise.Apply(ctx); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

func (*Choose) Kind() Kind { return KindChoose }
