package server

import (
	"net/url"

	"github.com/samber/lo"

	"github.com/KaramelBytes/csvlens/internal/chart"
	"github.com/KaramelBytes/csvlens/internal/dashboard"
)

// parseSelection reads control state from query parameters. values_for names
// the filter column the values were picked for; values only count as an
// explicit choice when it matches the current filter column. fields_for
// names the chart kind x, y and color were picked for; they are dropped when
// the kind changed so the new kind starts from its own defaults.
func parseSelection(q url.Values, previewRows int) dashboard.Selection {
	sel := dashboard.Selection{
		FilterColumn: q.Get("filter_column"),
		FilterValues: lo.Uniq(q["filter_values"]),
		PreviewRows:  previewRows,
		Chart: chart.Draft{
			X:     q.Get("x"),
			Y:     q.Get("y"),
			Color: q.Get("color"),
		},
	}
	sel.ValuesChosen = sel.FilterColumn != "" && q.Get("values_for") == sel.FilterColumn
	if k, err := chart.ParseKind(q.Get("kind")); err == nil {
		sel.Chart.Kind = k
	}
	if q.Has("fields_for") {
		prev, err := chart.ParseKind(q.Get("fields_for"))
		if err != nil || prev != sel.Chart.Kind {
			sel.Chart.X, sel.Chart.Y, sel.Chart.Color = "", "", ""
		}
	}
	return sel
}

// selectionQuery encodes the resolved selection so the chart image matches
// the controls shown.
func selectionQuery(out *dashboard.Outcome) url.Values {
	q := url.Values{}
	if out.FilterColumn != "" {
		q.Set("filter_column", out.FilterColumn)
		q.Set("values_for", out.FilterColumn)
		for _, v := range out.FilterValues {
			q.Add("filter_values", v)
		}
	}
	q.Set("kind", string(out.Draft.Kind))
	q.Set("fields_for", string(out.Draft.Kind))
	if out.Draft.X != "" {
		q.Set("x", out.Draft.X)
	}
	if out.Draft.Y != "" {
		q.Set("y", out.Draft.Y)
	}
	if out.Draft.Color != "" {
		q.Set("color", out.Draft.Color)
	}
	return q
}
