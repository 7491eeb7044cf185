package eval

import "fmt"

// EvaluationError reports an expression that could not be evaluated to the
// shape its position requires (e.g. null where a collection is needed).
// It is fail-fast: callers propagate it and abort the whole invocation.
type EvaluationError struct {
	Expr   string
	Reason string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("eval: %s: %s: %v", e.Expr, e.Reason, e.Err)
	}
	return fmt.Sprintf("eval: %s: %s", e.Expr, e.Reason)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

func evalErrorf(expr string, err error, format string, args ...any) *EvaluationError {
	return &EvaluationError{Expr: expr, Reason: fmt.Sprintf(format, args...), Err: err}
}
