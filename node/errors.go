package node

import "fmt"

// SecurityValidationError reports a ${} substitution whose result violated the
// node's configured allow-pattern. The invocation aborts immediately; no
// partial SQL is ever returned.
type SecurityValidationError struct {
	Expr  string
	Value string
}

func (e *SecurityValidationError) Error() string {
	return fmt.Sprintf("substitution of ${%s} produced a value rejected by the allow-pattern: %q", e.Expr, e.Value)
}
