package errortypes

import (
	"fmt"
	"strings"
)

// AggregateErrors collects every error found in one pass, such as configuration validation
// or one failover run down the DSP list.
type AggregateErrors struct {
	Message string
	Errors  []error
}

func NewAggregateErrors(msg string, errs []error) AggregateErrors {
	return AggregateErrors{
		Message: msg,
		Errors:  errs,
	}
}

// Error puts each error on its own numbered line under Message.
func (e AggregateErrors) Error() string {
	if len(e.Errors) == 0 {
		return ""
	}

	noun := "errors"
	if len(e.Errors) == 1 {
		noun = "error"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d %s):\n", e.Message, len(e.Errors), noun)
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "  %d: %v\n", i+1, err)
	}
	return b.String()
}

// Inline joins the errors after Message on a single line so they fit in one log entry.
func (e AggregateErrors) Inline() string {
	if len(e.Errors) == 0 {
		return e.Message
	}
	parts := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		parts[i] = err.Error()
	}
	return e.Message + ": " + strings.Join(parts, "; ")
}

func (e AggregateErrors) Unwrap() []error {
	return e.Errors
}
