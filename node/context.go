package node

import (
	"strings"

	"github.com/forgeline/dynsql/eval"
)

// Reserved binding keys. The raw argument and the database identifier ride in
// the bindings map next to user-introduced values.
const (
	ParameterKey  = "_parameter"
	DatabaseIDKey = "_databaseId"
)

// Context is the per-invocation state a node tree evaluates against: a
// bindings map, an accumulating SQL buffer, and a sequence counter shared by
// every decorated view of the same root. Contexts are never shared across
// goroutines.
//
// Decorators wrap a Context and override individual operations while
// delegating the rest; delegation must preserve the identity of the bindings
// map and the sequence counter, or sibling nodes would disagree about
// uniqueness.
type Context interface {
	// Bind upserts a value into the bindings map.
	Bind(name string, value any)
	// Unbind removes a binding.
	Unbind(name string)
	// Lookup reads a binding; on a miss it falls back to reflective property
	// access on the argument object unless the argument is map-like.
	Lookup(name string) (any, bool)
	// Bindings exposes the shared bindings map.
	Bindings() map[string]any
	// AppendSQL appends one fragment plus a delimiting space to the output.
	AppendSQL(fragment string)
	// SQL returns the accumulated output, trimmed.
	SQL() string
	// NextUniqueNumber returns the current counter value and increments it.
	NextUniqueNumber() int
	// Evaluator returns the expression evaluator for this invocation.
	Evaluator() *eval.Evaluator
	// EvalEnv builds the environment expressions evaluate against: the
	// bindings map backed by the argument's own properties.
	EvalEnv() map[string]any
}

// DynamicContext is the root Context implementation, created fresh per
// invocation and discarded with it.
type DynamicContext struct {
	evaluator    *eval.Evaluator
	bindings     map[string]any
	sql          strings.Builder
	uniqueNumber int

	parameter   any
	paramIsMap  bool
	paramFields map[string]any // argument properties visible to expressions
	accessor    eval.Accessor
}

// NewContext creates the root context for one evaluation of a node tree.
func NewContext(evaluator *eval.Evaluator, parameter any, databaseID string) *DynamicContext {
	if evaluator == nil {
		evaluator = eval.Default
	}
	c := &DynamicContext{
		evaluator: evaluator,
		bindings: map[string]any{
			ParameterKey:  parameter,
			DatabaseIDKey: databaseID,
			"null":        nil,
		},
		parameter:  parameter,
		paramIsMap: eval.IsMapLike(parameter),
		accessor:   eval.AccessorFor(parameter),
	}
	c.paramFields = parameterFields(parameter)
	return c
}

func (c *DynamicContext) Bind(name string, value any) {
	c.bindings[name] = value
}

func (c *DynamicContext) Unbind(name string) {
	delete(c.bindings, name)
}

func (c *DynamicContext) Lookup(name string) (any, bool) {
	if v, ok := c.bindings[name]; ok {
		return v, true
	}
	if c.parameter == nil || c.paramIsMap {
		return nil, false
	}
	return c.accessor.ReadProperty(name)
}

func (c *DynamicContext) Bindings() map[string]any {
	return c.bindings
}

func (c *DynamicContext) AppendSQL(fragment string) {
	c.sql.WriteString(fragment)
	c.sql.WriteByte(' ')
}

func (c *DynamicContext) SQL() string {
	return strings.TrimSpace(c.sql.String())
}

func (c *DynamicContext) NextUniqueNumber() int {
	n := c.uniqueNumber
	c.uniqueNumber++
	return n
}

func (c *DynamicContext) Evaluator() *eval.Evaluator {
	return c.evaluator
}

// EvalEnv merges the argument's top-level properties under the live bindings.
// Bindings shadow properties; later binds are visible because the bindings map
// itself is consulted last.
func (c *DynamicContext) EvalEnv() map[string]any {
	if len(c.paramFields) == 0 {
		return c.bindings
	}
	env := make(map[string]any, len(c.bindings)+len(c.paramFields))
	for k, v := range c.paramFields {
		env[k] = v
	}
	for k, v := range c.bindings {
		env[k] = v
	}
	return env
}

// ExtraBindings snapshots the values the evaluation introduced beyond the
// reserved keys, for descriptor resolution after the context is gone.
func (c *DynamicContext) ExtraBindings() map[string]any {
	extra := make(map[string]any, len(c.bindings))
	for k, v := range c.bindings {
		switch k {
		case ParameterKey, DatabaseIDKey, "null":
			continue
		}
		extra[k] = v
	}
	return extra
}

// parameterFields flattens the argument one level deep so expressions can
// reference its properties directly. Struct fields are exposed under both
// their Go spelling and the lower-camel property name; map entries under
// their keys.
func parameterFields(parameter any) map[string]any {
	if parameter == nil {
		return nil
	}
	if eval.IsMapLike(parameter) {
		return mapEntries(parameter)
	}
	return structFields(parameter)
}
