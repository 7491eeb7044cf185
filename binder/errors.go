package binder

import "fmt"

// BuilderError reports malformed placeholder content: an unknown attribute,
// a bad attribute value, or an unsupported parameter form. It always indicates
// an incorrectly authored template and is never recovered from.
type BuilderError struct {
	Placeholder string
	Reason      string
}

func (e *BuilderError) Error() string {
	return fmt.Sprintf("binder: #{%s}: %s", e.Placeholder, e.Reason)
}

func builderErrorf(placeholder, format string, args ...any) *BuilderError {
	return &BuilderError{Placeholder: placeholder, Reason: fmt.Sprintf(format, args...)}
}
