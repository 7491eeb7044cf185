package binder

import (
	"reflect"

	"github.com/forgeline/dynsql/eval"
)

// BoundStatement is the final per-invocation artifact: immutable parameterized
// text, the ordered parameter mappings, and the snapshot of bindings the tree
// evaluation introduced (loop variables, bind results). A mapping whose path
// only ever existed in that snapshot resolves from it, not from the argument.
type BoundStatement struct {
	SQL           string
	Mappings      []*ParameterMapping
	ExtraBindings map[string]any
}

// ValueOf resolves one mapping's runtime value: the extra-bindings snapshot is
// consulted first, then the argument object; a primitive argument with no
// matching property binds as the whole value.
func (b *BoundStatement) ValueOf(m *ParameterMapping, parameter any) any {
	if b.ExtraBindings != nil {
		if v, ok := eval.AccessorFor(b.ExtraBindings).ReadProperty(m.Property); ok {
			return v
		}
	}
	if parameter == nil {
		return nil
	}
	if HasTypeHandler(reflect.TypeOf(parameter)) {
		return parameter
	}
	if v, ok := eval.AccessorFor(parameter).ReadProperty(m.Property); ok {
		return v
	}
	return nil
}

// Args resolves every IN-capable mapping in order, ready for positional
// dispatch.
func (b *BoundStatement) Args(parameter any) []any {
	args := make([]any, 0, len(b.Mappings))
	for _, m := range b.Mappings {
		if m.Mode == ModeOut {
			args = append(args, nil)
			continue
		}
		args = append(args, b.ValueOf(m, parameter))
	}
	return args
}
