package dataset

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/tobgu/qframe"
)

// NoFilter is the FilterSpec column meaning "no filter applied".
const NoFilter = ""

// FilterSpec keeps the rows whose value in Column is one of Values.
type FilterSpec struct {
	Column string   `json:"column" yaml:"column"`
	Values []string `json:"values" yaml:"values"`
}

// FilterStatus tells callers which state a filtered view is in.
type FilterStatus int

const (
	// FilterNone means no filter column was chosen; the view is the dataset.
	FilterNone FilterStatus = iota
	// FilterApplied means the view holds the matching rows, at least one.
	FilterApplied
	// FilterEmpty means a filter was chosen but no row is selected, either
	// because no values were picked or because none of them occur.
	FilterEmpty
)

func (s FilterStatus) String() string {
	switch s {
	case FilterNone:
		return "none"
	case FilterApplied:
		return "applied"
	case FilterEmpty:
		return "empty"
	default:
		return fmt.Sprintf("FilterStatus(%d)", int(s))
	}
}

// MarshalText lets JSON and YAML encoders print the state name.
func (s FilterStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Filter applies spec and returns the filtered view. Row order is kept and
// the receiver is not modified.
func (d *Dataset) Filter(spec FilterSpec) (*Dataset, FilterStatus, error) {
	if spec.Column == NoFilter {
		return d, FilterNone, nil
	}
	present, err := d.Distinct(spec.Column)
	if err != nil {
		return nil, FilterNone, err
	}
	// Values that never occur cannot match; dropping them keeps enum columns
	// from rejecting unknown members.
	wanted := lo.Intersect(present, lo.Uniq(spec.Values))
	if len(wanted) == 0 {
		return d.derive(d.frame.Slice(0, 0)), FilterEmpty, nil
	}
	out := d.frame.Filter(qframe.Filter{Column: spec.Column, Comparator: "in", Arg: wanted})
	if out.Err != nil {
		return nil, FilterNone, fmt.Errorf("filter %q: %w", spec.Column, out.Err)
	}
	if out.Len() == 0 {
		return d.derive(out), FilterEmpty, nil
	}
	return d.derive(out), FilterApplied, nil
}
