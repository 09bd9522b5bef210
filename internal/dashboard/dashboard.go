// Package dashboard recomputes everything a dashboard page shows from one
// dataset and the user's current selections.
package dashboard

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/csvlens/internal/chart"
	"github.com/KaramelBytes/csvlens/internal/dataset"
)

// Level grades a Message.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Message is one user-facing notice.
type Message struct {
	Level Level  `json:"level" yaml:"level"`
	Text  string `json:"text" yaml:"text"`
}

// Selection is the state of every control on the page.
type Selection struct {
	FilterColumn string
	FilterValues []string
	// ValuesChosen distinguishes "nothing picked yet" from an explicit empty
	// pick. Until values are chosen every distinct value is selected.
	ValuesChosen bool
	Chart        chart.Draft
	PreviewRows  int
}

// ColumnInfo describes a column for display.
type ColumnInfo struct {
	Name string       `json:"name" yaml:"name"`
	Type string       `json:"type" yaml:"type"`
	Kind dataset.Kind `json:"kind" yaml:"kind"`
}

// Preview is the head of the dataset.
type Preview struct {
	Header []string   `json:"header" yaml:"header"`
	Rows   [][]string `json:"rows" yaml:"rows"`
}

// Outcome is the full result of one interaction.
type Outcome struct {
	Name           string                 `json:"name" yaml:"name"`
	Rows           int                    `json:"rows" yaml:"rows"`
	TotalRows      int                    `json:"total_rows" yaml:"total_rows"`
	Columns        []ColumnInfo           `json:"columns" yaml:"columns"`
	Classification dataset.Classification `json:"classification" yaml:"classification"`
	Preview        Preview                `json:"preview" yaml:"preview"`

	FilterColumns []string             `json:"filter_columns" yaml:"filter_columns"`
	FilterColumn  string               `json:"filter_column" yaml:"filter_column"`
	FilterChoices []string             `json:"filter_choices,omitempty" yaml:"filter_choices,omitempty"`
	FilterValues  []string             `json:"filter_values,omitempty" yaml:"filter_values,omitempty"`
	Status        dataset.FilterStatus `json:"filter_status" yaml:"filter_status"`
	FilteredRows  int                  `json:"filtered_rows" yaml:"filtered_rows"`
	// FilteredPreview is the head of the filtered rows, set once a filter applies.
	FilteredPreview *Preview `json:"filtered_preview,omitempty" yaml:"filtered_preview,omitempty"`

	Draft   chart.Draft        `json:"draft" yaml:"draft"`
	Fields  chart.FieldOptions `json:"fields" yaml:"fields"`
	Request *chart.Request     `json:"request,omitempty" yaml:"request,omitempty"`

	Messages []Message `json:"messages" yaml:"messages"`

	// View is the filtered dataset the request was planned from.
	View *dataset.Dataset `json:"-" yaml:"-"`
	// Err is the reason no request was produced, if any.
	Err error `json:"-" yaml:"-"`
}

func (o *Outcome) add(l Level, format string, args ...any) {
	o.Messages = append(o.Messages, Message{Level: l, Text: fmt.Sprintf(format, args...)})
}

// Evaluate runs classification, filtering and chart planning for sel.
// It never fails; problems are reported as messages and in Err.
func Evaluate(ds *dataset.Dataset, sel Selection) *Outcome {
	cls := dataset.Classify(ds)
	out := &Outcome{
		Name:           ds.Name,
		Rows:           ds.Len(),
		TotalRows:      ds.TotalRows,
		Classification: cls,
		Preview:        Preview{Header: ds.ColumnNames(), Rows: ds.Head(sel.PreviewRows)},
		FilterColumns:  append([]string{dataset.NoFilter}, cls.Categorical...),
	}
	for _, c := range ds.Columns() {
		out.Columns = append(out.Columns, ColumnInfo{Name: c.Name, Type: string(c.Type), Kind: c.Kind})
	}
	for _, w := range ds.Warnings {
		out.add(LevelWarning, "%s", w)
	}

	view := applyFilter(ds, sel, out)
	out.View = view
	out.FilteredRows = view.Len()
	if out.Status == dataset.FilterApplied {
		out.FilteredPreview = &Preview{Header: view.ColumnNames(), Rows: view.Head(sel.PreviewRows)}
	}

	out.Draft = sel.Chart
	if out.Draft.Kind == "" {
		out.Draft.Kind = chart.Histogram
	}
	out.Fields = chart.Options(out.Draft.Kind, cls, ds.ColumnNames(), out.Draft.X)

	req, err := chart.Plan(view, cls, out.Draft)
	var ve *chart.ValidationError
	switch {
	case errors.Is(err, chart.ErrNoVisualizableColumns):
		out.Err = err
		out.add(LevelError, "No numeric or categorical columns detected for visualization")
		return out
	case errors.As(err, &ve):
		out.Err = err
		out.add(LevelWarning, "%s", ve.Error())
		return out
	case err != nil:
		out.Err = err
		out.add(LevelError, "Could not build chart: %v", err)
		return out
	}
	out.Request = req
	out.Draft = chart.Draft{Kind: req.Kind, X: req.X, Y: req.Y, Color: req.Color}
	out.Fields = chart.Options(req.Kind, cls, ds.ColumnNames(), req.X)
	if req.Len() == 0 && out.Status != dataset.FilterEmpty {
		out.add(LevelInfo, "No data points to plot for %s", req.Title)
	}
	return out
}

func applyFilter(ds *dataset.Dataset, sel Selection, out *Outcome) *dataset.Dataset {
	if len(out.Classification.Categorical) == 0 {
		out.add(LevelWarning, "No categorical columns detected for filtering")
		return ds
	}
	if sel.FilterColumn == dataset.NoFilter {
		out.add(LevelInfo, "Select a categorical column to enable filtering")
		return ds
	}
	choices, err := ds.Distinct(sel.FilterColumn)
	if err != nil {
		out.add(LevelWarning, "%v", err)
		return ds
	}
	out.FilterColumn = sel.FilterColumn
	out.FilterChoices = choices
	values := sel.FilterValues
	if !sel.ValuesChosen {
		values = choices
	}
	out.FilterValues = values

	view, status, err := ds.Filter(dataset.FilterSpec{Column: sel.FilterColumn, Values: values})
	if err != nil {
		out.add(LevelWarning, "%v", err)
		out.FilterColumn = dataset.NoFilter
		return ds
	}
	out.Status = status
	switch status {
	case dataset.FilterEmpty:
		out.add(LevelInfo, "No rows match the selected filter values")
	case dataset.FilterApplied:
		out.add(LevelInfo, "%d rows after filter", view.Len())
	}
	return view
}
