// Package eval evaluates template expressions against a binding environment.
// Expressions are expr-lang source; compiled programs are cached process-wide
// so repeated invocations of the same statement never re-parse.
package eval

import (
	"fmt"
	"math/big"
	"reflect"

	"github.com/expr-lang/expr/vm"
)

// Pair is one element of an iterable expression result. For sequences Key is
// the zero-based position; for map-like values it is the entry key.
type Pair struct {
	Key   any
	Value any
}

// Evaluator runs expressions against binding environments. The zero value is
// not usable; construct with New. Safe for concurrent use.
type Evaluator struct {
	programs *ProgramCache
}

// New creates an Evaluator backed by the given program cache.
func New(cache *ProgramCache) *Evaluator {
	if cache == nil {
		cache = NewProgramCache(defaultProgramCacheSize)
	}
	return &Evaluator{programs: cache}
}

// Default is the process-wide evaluator used when no explicit one is wired.
var Default = New(NewProgramCache(defaultProgramCacheSize))

// Value evaluates the expression and returns the raw result.
func (e *Evaluator) Value(source string, env map[string]any) (any, error) {
	program, err := e.programs.GetOrCompile(source)
	if err != nil {
		return nil, err
	}
	out, err := vm.Run(program, runEnv(env))
	if err != nil {
		return nil, evalErrorf(source, err, "cannot evaluate expression")
	}
	return out, nil
}

// Bool evaluates the expression and coerces the result to a boolean.
// Booleans pass through, null is false, numbers are true iff nonzero
// (compared as exact decimals), anything else non-null is true.
func (e *Evaluator) Bool(source string, env map[string]any) (bool, error) {
	out, err := e.Value(source, env)
	if err != nil {
		return false, err
	}
	return Truthy(out), nil
}

// Iterable evaluates the expression and coerces the result into an ordered
// sequence of pairs. Null and non-iterable results fail with EvaluationError.
func (e *Evaluator) Iterable(source string, env map[string]any) ([]Pair, error) {
	out, err := e.Value(source, env)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, evalErrorf(source, nil, "expression evaluated to null where a collection was required")
	}

	rv := reflect.ValueOf(out)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		pairs := make([]Pair, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			pairs[i] = Pair{Key: i, Value: rv.Index(i).Interface()}
		}
		return pairs, nil
	case reflect.Map:
		pairs := make([]Pair, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			pairs = append(pairs, Pair{Key: iter.Key().Interface(), Value: iter.Value().Interface()})
		}
		return pairs, nil
	default:
		return nil, evalErrorf(source, nil, "expression of type %T is not iterable", out)
	}
}

// Truthy applies the boolean coercion rule to an already-evaluated value.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return decimalNonZero(v)
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return false
		}
		return Truthy(rv.Elem().Interface())
	}
	return true
}

// decimalNonZero compares a numeric value against zero through its decimal
// string form, so values like 0.0 and -0 compare equal to zero without
// floating-point rounding surprises.
func decimalNonZero(v any) bool {
	rat, ok := new(big.Rat).SetString(fmt.Sprint(v))
	if !ok {
		return true
	}
	return rat.Sign() != 0
}

// runEnv guarantees the environment resolves the identifier "null" to nil so
// MyBatis-style tests like "a != null" evaluate unchanged. The caller's map is
// never mutated.
func runEnv(env map[string]any) map[string]any {
	if env == nil {
		return map[string]any{"null": nil}
	}
	if _, ok := env["null"]; ok {
		return env
	}
	wrapped := make(map[string]any, len(env)+1)
	for k, v := range env {
		wrapped[k] = v
	}
	wrapped["null"] = nil
	return wrapped
}
