// Package mapper parses statement mapper documents into compiled node trees
// and keeps the registry that resolves statement ids at call time. A mapper
// document groups named select/insert/update/delete statements under a
// namespace, plus reusable <sql> fragments referenced with <include>.
package mapper

import (
	"fmt"
	"reflect"

	"github.com/forgeline/dynsql/node"
)

// StatementKind classifies a mapped statement by its verb element.
type StatementKind int

const (
	KindSelect StatementKind = iota
	KindInsert
	KindUpdate
	KindDelete
)

func (k StatementKind) String() string {
	switch k {
	case KindSelect:
		return "select"
	case KindInsert:
		return "insert"
	case KindUpdate:
		return "update"
	case KindDelete:
		return "delete"
	}
	return "unknown"
}

// Statement is one compiled mapped statement. The node tree is built once at
// parse time and shared by every invocation.
type Statement struct {
	ID        string
	Namespace string
	Kind      StatementKind
	Root      node.Node

	// ParamType narrows placeholder type inference; it is bound after
	// parsing via Configuration.BindParamType since a document cannot name
	// Go types.
	ParamType reflect.Type

	// KeyGenerator and KeyProperty request a generated key to be written
	// into the argument before an insert runs.
	KeyGenerator string
	KeyProperty  string
}

// FullID is the registry key, namespace-qualified.
func (s *Statement) FullID() string {
	return s.Namespace + "." + s.ID
}

// Mapper holds the statements and fragments of one parsed document.
type Mapper struct {
	Namespace  string
	Statements map[string]*Statement

	fragments map[string]node.Node
}

// Fragment returns a named <sql> fragment.
func (m *Mapper) Fragment(refid string) (node.Node, bool) {
	frag, ok := m.fragments[refid]
	return frag, ok
}

// includeNode defers fragment resolution to apply time, so a fragment may be
// declared anywhere in the document relative to its includes.
type includeNode struct {
	mapper *Mapper
	refid  string
}

func (n *includeNode) Apply(ctx node.Context) (bool, error) {
	frag, ok := n.mapper.fragments[n.refid]
	if !ok {
		return false, fmt.Errorf("mapper %s: no sql fragment %q", n.mapper.Namespace, n.refid)
	}
	return frag.Apply(ctx)
}
