// Package binder compiles fully-expanded statement text into its executable
// form: every #{...} placeholder becomes one positional marker and one ordered
// parameter mapping. This is the second phase of evaluation; it never sees the
// ${...} placeholders the node tree already substituted.
package binder

import (
	"reflect"
	"sync"
	"time"
)

// Mode is the directionality of one bound parameter.
type Mode int

const (
	ModeIn Mode = iota
	ModeOut
	ModeInOut
)

func (m Mode) String() string {
	switch m {
	case ModeOut:
		return "OUT"
	case ModeInOut:
		return "INOUT"
	default:
		return "IN"
	}
}

// Cursor is the sentinel declared type for cursor-typed parameters, selected
// when the wire type name names a cursor.
type Cursor struct{}

// CursorType is the reflect.Type of the cursor sentinel.
var CursorType = reflect.TypeOf(Cursor{})

// AnyType is the generic declared type used when nothing more specific can be
// inferred.
var AnyType = reflect.TypeOf((*any)(nil)).Elem()

// ParameterMapping describes one placeholder occurrence. Mappings are emitted
// in left-to-right order of occurrence in the final text; binding at execution
// time is strictly positional, so the order is load-bearing. The same property
// referenced twice yields two mappings.
type ParameterMapping struct {
	// Property is the bound property path.
	Property string
	// ValueType is the declared (or inferred) value type.
	ValueType reflect.Type
	// DBType is the declared wire/column type, e.g. "VARCHAR".
	DBType string
	// DBTypeName is the raw wire type name; naming the cursor sentinel here
	// selects the cursor declared type.
	DBTypeName string
	// Mode is the parameter directionality.
	Mode Mode
	// Scale is the declared numeric scale, when present.
	Scale *int
	// ResultMap references a nested result map for cursor parameters.
	ResultMap string
	// Handler overrides the value handler for this occurrence.
	Handler string
}

// cursorTypeName is matched case-insensitively against DBTypeName.
const cursorTypeName = "CURSOR"

// handlerRegistry tracks the whole types for which a registered value
// conversion exists; an argument of such a type binds as-is rather than by
// property traversal.
type handlerRegistry struct {
	mu    sync.RWMutex
	types map[reflect.Type]struct{}
}

func (r *handlerRegistry) register(t reflect.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[t] = struct{}{}
}

func (r *handlerRegistry) has(t reflect.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.types[t]
	return ok
}

var defaultHandlers = func() *handlerRegistry {
	r := &handlerRegistry{types: make(map[reflect.Type]struct{})}
	for _, v := range []any{
		"", int(0), int8(0), int16(0), int32(0), int64(0),
		uint(0), uint8(0), uint16(0), uint32(0), uint64(0),
		float32(0), float64(0), false,
		time.Time{}, []byte(nil),
	} {
		r.types[reflect.TypeOf(v)] = struct{}{}
	}
	return r
}()

// RegisterTypeHandler marks a whole type as directly bindable, so arguments of
// that type are used verbatim during declared-type inference.
func RegisterTypeHandler(t reflect.Type) {
	defaultHandlers.register(t)
}

// HasTypeHandler reports whether a value conversion is registered for the
// whole type.
func HasTypeHandler(t reflect.Type) bool {
	if t == nil {
		return false
	}
	return defaultHandlers.has(t)
}
