package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValueShape is returned when a scalar is given to a multi-select prompt or a set
// is given to a single-valued prompt.
var ErrValueShape = errors.New("value shape does not match prompt kind")

// ValidationError reports one rejected prompt value or catalog entry.
// Path is a prompt label or a slash-separated catalog path such as
// "action/Actions/Buy/Quantity:".
type ValidationError struct {
	Path   string
	Reason string
	Value  string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("%s: %s (got %q)", e.Path, e.Reason, e.Value)
}

// AggregateError collects every problem found while parsing a catalog.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "catalog has %d problems:", len(e.Errors))
	for _, err := range e.Errors {
		sb.WriteString("\n  - ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error { return e.Errors }

// ValidationErrors returns the collected errors of an *AggregateError anywhere in
// err's chain, or nil.
func ValidationErrors(err error) []error {
	var agg *AggregateError
	if errors.As(err, &agg) {
		return agg.Errors
	}
	return nil
}
