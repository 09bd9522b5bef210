package chart

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/KaramelBytes/csvlens/internal/dataset"
)

// Plan validates a draft against the classification and prepares the data
// for the chart from view. view is the filtered dataset; cls is the
// classification of the unfiltered one, which has the same columns.
// Rows with a missing or non-finite value in a plotted field are left out.
func Plan(view *dataset.Dataset, cls dataset.Classification, d Draft) (*Request, error) {
	if !cls.Visualizable() {
		return nil, ErrNoVisualizableColumns
	}
	if err := Check(d.Kind, cls); err != nil {
		return nil, err
	}
	opts := Options(d.Kind, cls, view.ColumnNames(), d.X)
	x, err := pick(d.Kind, "x", d.X, opts.X)
	if err != nil {
		return nil, err
	}

	switch d.Kind {
	case Histogram:
		return planHistogram(view, x)
	case Scatter:
		if d.Y != "" && d.Y == x {
			return nil, &ValidationError{Kind: d.Kind, Field: "y", Requirement: "must differ from the x column"}
		}
		y, err := pick(d.Kind, "y", d.Y, opts.Y)
		if err != nil {
			return nil, err
		}
		color := NoGrouping
		if d.Color != NoGrouping {
			if color, err = pick(d.Kind, "color", d.Color, cls.Categorical); err != nil {
				return nil, err
			}
		}
		return planScatter(view, x, y, color)
	case Bar, Pie:
		y, err := pick(d.Kind, "y", d.Y, opts.Y)
		if err != nil {
			return nil, err
		}
		totals, err := SumByGroup(view, x, y)
		if err != nil {
			return nil, err
		}
		title := fmt.Sprintf("Total %s per %s", y, x)
		if d.Kind == Pie {
			title = fmt.Sprintf("Proportion of %s per %s", y, x)
		}
		return &Request{Kind: d.Kind, Title: title, X: x, Y: y, Aggregation: AggSum, Totals: totals}, nil
	case Line:
		y, err := pick(d.Kind, "y", d.Y, opts.Y)
		if err != nil {
			return nil, err
		}
		line, err := planLine(view, x, y)
		if err != nil {
			return nil, err
		}
		return &Request{Kind: Line, Title: fmt.Sprintf("Trend of %s by %s", y, x), X: x, Y: y, Line: line}, nil
	}
	return nil, fmt.Errorf("unknown chart kind %q", d.Kind)
}

// missing reports values that cannot be plotted: NaN marks a null cell and
// infinities have no position on an axis.
func missing(v float64) bool { return math.IsNaN(v) || math.IsInf(v, 0) }

func planHistogram(view *dataset.Dataset, x string) (*Request, error) {
	xs, err := view.Floats(x)
	if err != nil {
		return nil, err
	}
	values := lo.Filter(xs, func(v float64, _ int) bool { return !missing(v) })
	return &Request{Kind: Histogram, Title: "Distribution of " + x, X: x, Values: values}, nil
}

func planScatter(view *dataset.Dataset, x, y, color string) (*Request, error) {
	xs, err := view.Floats(x)
	if err != nil {
		return nil, err
	}
	ys, err := view.Floats(y)
	if err != nil {
		return nil, err
	}
	title := fmt.Sprintf("Scatter Plot %s vs %s", x, y)
	req := &Request{Kind: Scatter, X: x, Y: y, Color: color}

	var groups []string
	var valid []bool
	if color != NoGrouping {
		if groups, valid, err = view.Labels(color); err != nil {
			return nil, err
		}
		title += fmt.Sprintf(" (Colored by %s)", color)
	}
	req.Title = title

	index := map[string]int{}
	for i := range xs {
		if missing(xs[i]) || missing(ys[i]) {
			continue
		}
		name := ""
		if color != NoGrouping {
			name = MissingLabel
			if valid[i] {
				name = groups[i]
			}
		}
		k, ok := index[name]
		if !ok {
			k = len(req.Series)
			index[name] = k
			req.Series = append(req.Series, Series{Name: name})
		}
		req.Series[k].X = append(req.Series[k].X, xs[i])
		req.Series[k].Y = append(req.Series[k].Y, ys[i])
	}
	return req, nil
}

// SumByGroup sums value per distinct category, ordered by category.
// Rows with a missing category are dropped; missing or infinite values add nothing.
func SumByGroup(view *dataset.Dataset, category, value string) ([]GroupTotal, error) {
	labels, valid, err := view.Labels(category)
	if err != nil {
		return nil, err
	}
	vals, err := view.Floats(value)
	if err != nil {
		return nil, err
	}
	sums := map[string]float64{}
	for i, l := range labels {
		if !valid[i] {
			continue
		}
		cur := sums[l]
		if !missing(vals[i]) {
			cur += vals[i]
		}
		sums[l] = cur
	}
	keys := lo.Keys(sums)
	sort.Strings(keys)
	out := make([]GroupTotal, len(keys))
	for i, k := range keys {
		out[i] = GroupTotal{Category: k, Total: sums[k]}
	}
	return out, nil
}

func planLine(view *dataset.Dataset, x, y string) (*LineData, error) {
	col, ok := view.Column(x)
	if !ok {
		return nil, fmt.Errorf("column %q not found", x)
	}
	labels, valid, err := view.Labels(x)
	if err != nil {
		return nil, err
	}
	ys, err := view.Floats(y)
	if err != nil {
		return nil, err
	}

	order := make([]int, len(labels))
	for i := range order {
		order[i] = i
	}
	line := &LineData{}
	var xs []float64
	var times []time.Time
	switch col.Kind {
	case dataset.KindNumeric:
		if xs, err = view.Floats(x); err != nil {
			return nil, err
		}
		for i, v := range xs {
			valid[i] = valid[i] && !missing(v)
		}
		sortRows(order, valid, func(a, b int) bool { return xs[a] < xs[b] })
	case dataset.KindCategorical:
		if ts, ok := TryParseTimestamps(labels, valid); ok {
			times = ts
			line.Temporal = true
			sortRows(order, valid, func(a, b int) bool { return times[a].Before(times[b]) })
		}
	}

	for _, i := range order {
		if !valid[i] || missing(ys[i]) {
			continue
		}
		line.Labels = append(line.Labels, labels[i])
		line.Y = append(line.Y, ys[i])
		if xs != nil {
			line.Numeric = append(line.Numeric, xs[i])
		}
		if line.Temporal {
			line.Times = append(line.Times, times[i])
		}
	}
	return line, nil
}

// sortRows stably orders row indexes by less, rows that are not valid last.
func sortRows(order []int, valid []bool, less func(a, b int) bool) {
	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if valid[ia] != valid[ib] {
			return valid[ia]
		}
		return valid[ia] && less(ia, ib)
	})
}
