// Package chart turns a filtered dataset plus a user's chart selections into a
// validated, fully specified chart request.
package chart

import (
	"fmt"
	"strings"
	"time"
)

// Kind is one of the supported chart types.
type Kind string

const (
	Histogram Kind = "histogram"
	Scatter   Kind = "scatter"
	Bar       Kind = "bar"
	Line      Kind = "line"
	Pie       Kind = "pie"
)

// Kinds lists every chart kind in menu order.
var Kinds = []Kind{Histogram, Scatter, Bar, Line, Pie}

// Label is the human-readable menu name.
func (k Kind) Label() string {
	switch k {
	case Histogram:
		return "Histogram"
	case Scatter:
		return "Scatter Plot"
	case Bar:
		return "Bar Chart"
	case Line:
		return "Line Plot"
	case Pie:
		return "Pie Chart"
	default:
		return string(k)
	}
}

// ParseKind accepts kind identifiers and menu labels, case-insensitively.
func ParseKind(s string) (Kind, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for _, k := range Kinds {
		if norm == string(k) || norm == strings.ToLower(k.Label()) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown chart kind %q (use histogram|scatter|bar|line|pie)", s)
}

// NoGrouping is the color option meaning "do not split points by category".
// Column names are never empty, so it cannot collide with a real column.
const NoGrouping = ""

// MissingLabel names the group of rows whose grouping value is missing.
const MissingLabel = "(missing)"

// Aggregation is how rows are collapsed before charting.
type Aggregation string

const (
	AggNone Aggregation = ""
	AggSum  Aggregation = "sum"
)

// Draft is what the user picked. Empty fields fall back to the first
// candidate, the way a select box starts on its first entry.
type Draft struct {
	Kind  Kind   `json:"kind" yaml:"kind"`
	X     string `json:"x,omitempty" yaml:"x,omitempty"`
	Y     string `json:"y,omitempty" yaml:"y,omitempty"`
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
}

// Request is a validated chart instruction with its data prepared.
//
// Field use by kind:
//   - Histogram: X, Values
//   - Scatter: X, Y, optional Color, Series
//   - Bar, Pie: X (category), Y (value), Aggregation=sum, Totals
//   - Line: X, Y, Line
type Request struct {
	Kind        Kind         `json:"kind" yaml:"kind"`
	Title       string       `json:"title" yaml:"title"`
	X           string       `json:"x" yaml:"x"`
	Y           string       `json:"y,omitempty" yaml:"y,omitempty"`
	Color       string       `json:"color,omitempty" yaml:"color,omitempty"`
	Aggregation Aggregation  `json:"aggregation,omitempty" yaml:"aggregation,omitempty"`
	Values      []float64    `json:"values,omitempty" yaml:"values,omitempty"`
	Series      []Series     `json:"series,omitempty" yaml:"series,omitempty"`
	Totals      []GroupTotal `json:"totals,omitempty" yaml:"totals,omitempty"`
	Line        *LineData    `json:"line,omitempty" yaml:"line,omitempty"`
}

// Series is one color group of a scatter plot.
type Series struct {
	Name string    `json:"name" yaml:"name"`
	X    []float64 `json:"x" yaml:"x"`
	Y    []float64 `json:"y" yaml:"y"`
}

// GroupTotal is the summed value of one category.
type GroupTotal struct {
	Category string  `json:"category" yaml:"category"`
	Total    float64 `json:"total" yaml:"total"`
}

// LineData holds the points of a line plot in drawing order.
// Labels is always set; Numeric is set for numeric x columns and Times when
// the x values were read as timestamps.
type LineData struct {
	Labels   []string    `json:"labels" yaml:"labels"`
	Numeric  []float64   `json:"numeric,omitempty" yaml:"numeric,omitempty"`
	Times    []time.Time `json:"times,omitempty" yaml:"times,omitempty"`
	Temporal bool        `json:"temporal" yaml:"temporal"`
	Y        []float64   `json:"y" yaml:"y"`
}

// Len reports the number of data points the request carries.
func (r *Request) Len() int {
	switch r.Kind {
	case Histogram:
		return len(r.Values)
	case Scatter:
		n := 0
		for _, s := range r.Series {
			n += len(s.X)
		}
		return n
	case Bar, Pie:
		return len(r.Totals)
	case Line:
		if r.Line == nil {
			return 0
		}
		return len(r.Line.Y)
	}
	return 0
}
