package form

import (
	"errors"
	"fmt"
	"strings"
)

// FieldError reports a field that blocked a save.
type FieldError struct {
	Key    string
	Reason string
	Err    error
}

func (e *FieldError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("field %q: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("field %q: %s: %v", e.Key, e.Reason, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// AggregateError groups several field errors.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = fmt.Sprintf("  %d. %s", i+1, err.Error())
	}
	return fmt.Sprintf("%d field errors:\n%s", len(e.Errors), strings.Join(msgs, "\n"))
}

func (e *AggregateError) Unwrap() []error { return e.Errors }

// FieldErrors returns the individual errors of an AggregateError, or nil.
func FieldErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}
