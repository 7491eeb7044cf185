// Package engine ties the pieces together: it evaluates compiled node trees
// into bound statements and, through Engine, runs registered mapper
// statements against a database.
package engine

import (
	"reflect"

	"github.com/forgeline/dynsql/binder"
	"github.com/forgeline/dynsql/eval"
	"github.com/forgeline/dynsql/node"
)

// EvalOptions tunes a single evaluation. The zero value uses the shared
// expression evaluator, no database id, and infers the argument type from the
// argument itself.
type EvalOptions struct {
	Evaluator  *eval.Evaluator
	DatabaseID string
	ArgType    reflect.Type
}

// Evaluate applies a node tree to an argument and compiles the result into an
// executable bound statement.
func Evaluate(root node.Node, parameter any) (*binder.BoundStatement, error) {
	return EvaluateWith(root, parameter, EvalOptions{})
}

// EvaluateWith is Evaluate with explicit options.
func EvaluateWith(root node.Node, parameter any, opts EvalOptions) (*binder.BoundStatement, error) {
	evaluator := opts.Evaluator
	if evaluator == nil {
		evaluator = eval.Default
	}

	ctx := node.NewContext(evaluator, parameter, opts.DatabaseID)
	if _, err := root.Apply(ctx); err != nil {
		return nil, err
	}

	argType := opts.ArgType
	if argType == nil && parameter != nil {
		argType = reflect.TypeOf(parameter)
	}

	extra := ctx.ExtraBindings()
	sqlText, mappings, err := binder.Compile(ctx.SQL(), argType, extra)
	if err != nil {
		return nil, err
	}
	return &binder.BoundStatement{
		SQL:           sqlText,
		Mappings:      mappings,
		ExtraBindings: extra,
	}, nil
}
