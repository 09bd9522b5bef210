package dataset

import (
	"errors"
	"fmt"
)

// ErrEmptyOrUnparsable is matched by every ingestion failure.
var ErrEmptyOrUnparsable = errors.New("empty or unparsable dataset")

// UnparsableError reports why an upload could not be turned into a table.
type UnparsableError struct {
	Name   string
	Reason string
	Err    error
}

func (e *UnparsableError) Error() string {
	msg := "could not read tabular data"
	if e.Name != "" {
		msg = fmt.Sprintf("could not read tabular data from %s", e.Name)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UnparsableError) Unwrap() error { return e.Err }

// Is makes every UnparsableError match ErrEmptyOrUnparsable.
func (e *UnparsableError) Is(target error) bool { return target == ErrEmptyOrUnparsable }

func unparsable(name, reason string, err error) error {
	return &UnparsableError{Name: name, Reason: reason, Err: err}
}

// FilterError indicates a filter column that cannot be used for filtering.
type FilterError struct {
	Column string
	Kind   Kind
}

func (e *FilterError) Error() string {
	if e.Kind == KindUnknown {
		return fmt.Sprintf("filter column %q not found", e.Column)
	}
	return fmt.Sprintf("filter column %q is %s, only categorical columns can be filtered", e.Column, e.Kind)
}
