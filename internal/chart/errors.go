package chart

import (
	"errors"
	"fmt"
)

// ErrNoVisualizableColumns is the terminal state of a dataset with neither
// categorical nor numeric columns.
var ErrNoVisualizableColumns = errors.New("no numeric or categorical columns detected for visualization")

// ValidationError names the requirement a chart selection does not meet.
// Field is empty when the chart kind as a whole is unavailable.
type ValidationError struct {
	Kind        Kind
	Field       string
	Requirement string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s requires %s", e.Kind.Label(), e.Requirement)
	}
	return fmt.Sprintf("%s %s: %s", e.Kind.Label(), e.Field, e.Requirement)
}
