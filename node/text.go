package node

import (
	"fmt"
	"regexp"
	"strings"
)

// Text is a literal carrying ${expr} substitution placeholders. Each
// placeholder is evaluated against the bindings, stringified (null becomes the
// empty string) and spliced in before the fragment is appended. An optional
// allow-pattern guards every substituted value; a mismatch aborts the whole
// invocation with SecurityValidationError.
//
// Fragments without ${} are classified StaticText by the front-end; that is an
// optimization only, a Text node over static content behaves identically.
type Text struct {
	Text    string
	Pattern *regexp.Regexp
}

func (n *Text) Apply(ctx Context) (bool, error) {
	out, err := n.substitute(ctx)
	if err != nil {
		return false, err
	}
	ctx.AppendSQL(out)
	return true, nil
}

func (*Text) Kind() Kind { return KindText }

// Dynamic reports whether the fragment contains any substitution placeholder.
func (n *Text) Dynamic() bool {
	return strings.Contains(n.Text, "${")
}

func (n *Text) substitute(ctx Context) (string, error) {
	text := n.Text
	if !strings.Contains(text, "${") {
		return text, nil
	}

	env := ctx.EvalEnv()
	if raw, ok := env[ParameterKey]; ok && isPrimitive(raw) {
		// Convenience alias for scalar arguments: ${value}.
		if _, taken := env["value"]; !taken {
			env = withAlias(env, "value", raw)
		}
	}

	var b strings.Builder
	b.Grow(len(text))
	for {
		start := strings.Index(text, "${")
		if start < 0 {
			b.WriteString(text)
			return b.String(), nil
		}
		end := strings.Index(text[start:], "}")
		if end < 0 {
			b.WriteString(text)
			return b.String(), nil
		}
		end += start

		expr := strings.TrimSpace(text[start+2 : end])
		value, err := ctx.Evaluator().Value(expr, env)
		if err != nil {
			return "", err
		}
		substituted := ""
		if value != nil {
			substituted = fmt.Sprint(value)
		}
		if n.Pattern != nil && !n.Pattern.MatchString(substituted) {
			return "", &SecurityValidationError{Expr: expr, Value: substituted}
		}

		b.WriteString(text[:start])
		b.WriteString(substituted)
		text = text[end+1:]
	}
}

func withAlias(env map[string]any, name string, value any) map[string]any {
	wrapped := make(map[string]any, len(env)+1)
	for k, v := range env {
		wrapped[k] = v
	}
	wrapped[name] = value
	return wrapped
}
