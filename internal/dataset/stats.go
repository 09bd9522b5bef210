package dataset

import (
	"math"
	"sort"

	"github.com/samber/lo"
)

// ColumnStats summarizes one column. Numeric fields are set for numeric
// columns, Top and Unique for the others.
type ColumnStats struct {
	NonNull int
	Missing int

	Min  float64
	Max  float64
	Mean float64
	Std  float64

	Unique int
	Top    []ValueCount
}

// ValueCount is how often a value occurs.
type ValueCount struct {
	Value string
	Count int
}

// Stats computes the summary of a column; topN limits Top.
func (d *Dataset) Stats(name string, topN int) (ColumnStats, error) {
	col, ok := d.Column(name)
	if !ok {
		return ColumnStats{}, &FilterError{Column: name}
	}
	var s ColumnStats
	if col.Kind == KindNumeric {
		vals, err := d.Floats(name)
		if err != nil {
			return s, err
		}
		present := lo.Filter(vals, func(v float64, _ int) bool { return !math.IsNaN(v) })
		s.NonNull = len(present)
		s.Missing = len(vals) - len(present)
		if len(present) == 0 {
			return s, nil
		}
		s.Min, s.Max = present[0], present[0]
		sum := 0.0
		for _, v := range present {
			s.Min = math.Min(s.Min, v)
			s.Max = math.Max(s.Max, v)
			sum += v
		}
		s.Mean = sum / float64(len(present))
		if len(present) > 1 {
			ss := 0.0
			for _, v := range present {
				ss += (v - s.Mean) * (v - s.Mean)
			}
			s.Std = math.Sqrt(ss / float64(len(present)-1))
		}
		return s, nil
	}

	labels, valid, err := d.Labels(name)
	if err != nil {
		return s, err
	}
	present := lo.Filter(labels, func(_ string, i int) bool { return valid[i] })
	s.NonNull = len(present)
	s.Missing = len(labels) - len(present)
	counts := lo.CountValues(present)
	s.Unique = len(counts)
	for v, n := range counts {
		s.Top = append(s.Top, ValueCount{Value: v, Count: n})
	}
	sort.Slice(s.Top, func(i, j int) bool {
		if s.Top[i].Count != s.Top[j].Count {
			return s.Top[i].Count > s.Top[j].Count
		}
		return s.Top[i].Value < s.Top[j].Value
	})
	if topN >= 0 && len(s.Top) > topN {
		s.Top = s.Top[:topN]
	}
	return s, nil
}
