package dashboard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/csvlens/internal/chart"
	"github.com/KaramelBytes/csvlens/internal/dataset"
)

const sales = "region,product,units\nNorth,apple,3\nSouth,pear,5\nNorth,plum,2\n"

func mustLoad(t *testing.T, body string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.LoadBytes("sales.csv", []byte(body), dataset.DefaultOptions())
	require.NoError(t, err)
	return ds
}

func texts(ms []Message, l Level) []string {
	var out []string
	for _, m := range ms {
		if m.Level == l {
			out = append(out, m.Text)
		}
	}
	return out
}

func TestEvaluateDefaults(t *testing.T) {
	out := Evaluate(mustLoad(t, sales), Selection{PreviewRows: 2})
	require.NoError(t, out.Err)
	assert.Equal(t, 3, out.Rows)
	assert.Equal(t, []string{"region", "product", "units"}, out.Preview.Header)
	assert.Len(t, out.Preview.Rows, 2)
	assert.Equal(t, []string{"", "region", "product"}, out.FilterColumns)
	assert.Equal(t, dataset.FilterNone, out.Status)
	assert.Contains(t, texts(out.Messages, LevelInfo), "Select a categorical column to enable filtering")

	require.NotNil(t, out.Request)
	assert.Equal(t, chart.Histogram, out.Draft.Kind)
	assert.Equal(t, "units", out.Draft.X)
	assert.Equal(t, []float64{3, 5, 2}, out.Request.Values)
}

func TestEvaluateFilterDefaultsToAllValues(t *testing.T) {
	out := Evaluate(mustLoad(t, sales), Selection{FilterColumn: "region", Chart: chart.Draft{Kind: chart.Bar}})
	require.NoError(t, out.Err)
	assert.Equal(t, []string{"North", "South"}, out.FilterChoices)
	assert.Equal(t, out.FilterChoices, out.FilterValues)
	assert.Equal(t, dataset.FilterApplied, out.Status)
	assert.Contains(t, texts(out.Messages, LevelInfo), "3 rows after filter")
	assert.Equal(t, []chart.GroupTotal{{Category: "North", Total: 5}, {Category: "South", Total: 5}}, out.Request.Totals)
}

func TestEvaluateExplicitSubset(t *testing.T) {
	out := Evaluate(mustLoad(t, sales), Selection{
		FilterColumn: "region",
		FilterValues: []string{"South"},
		ValuesChosen: true,
		Chart:        chart.Draft{Kind: chart.Pie, X: "product", Y: "units"},
	})
	require.NoError(t, out.Err)
	assert.Equal(t, 1, out.FilteredRows)
	assert.Equal(t, []chart.GroupTotal{{Category: "pear", Total: 5}}, out.Request.Totals)
}

func TestEvaluateFilteredPreview(t *testing.T) {
	ds := mustLoad(t, sales)
	out := Evaluate(ds, Selection{
		FilterColumn: "region",
		FilterValues: []string{"North"},
		ValuesChosen: true,
		PreviewRows:  5,
	})
	require.NotNil(t, out.FilteredPreview)
	assert.Equal(t, []string{"region", "product", "units"}, out.FilteredPreview.Header)
	assert.Equal(t, [][]string{{"North", "apple", "3"}, {"North", "plum", "2"}}, out.FilteredPreview.Rows)
	assert.Len(t, out.Preview.Rows, 3, "the full preview is kept")

	assert.Nil(t, Evaluate(ds, Selection{PreviewRows: 5}).FilteredPreview)
	assert.Nil(t, Evaluate(ds, Selection{FilterColumn: "region", ValuesChosen: true, PreviewRows: 5}).FilteredPreview)
}

func TestEvaluateEmptySelection(t *testing.T) {
	out := Evaluate(mustLoad(t, sales), Selection{FilterColumn: "region", ValuesChosen: true})
	assert.Equal(t, dataset.FilterEmpty, out.Status)
	assert.Equal(t, 0, out.FilteredRows)
	assert.Contains(t, texts(out.Messages, LevelInfo), "No rows match the selected filter values")
	require.NotNil(t, out.Request)
	assert.Zero(t, out.Request.Len())
}

func TestEvaluateNoCategoricalColumns(t *testing.T) {
	out := Evaluate(mustLoad(t, "a,b\n1,2\n3,4\n"), Selection{Chart: chart.Draft{Kind: chart.Scatter}})
	assert.Contains(t, texts(out.Messages, LevelWarning), "No categorical columns detected for filtering")
	require.NotNil(t, out.Request)
	assert.Equal(t, "Scatter Plot a vs b", out.Request.Title)
}

func TestEvaluateValidationWarning(t *testing.T) {
	out := Evaluate(mustLoad(t, "name\nalpha\nbeta\n"), Selection{Chart: chart.Draft{Kind: chart.Histogram}})
	assert.Nil(t, out.Request)
	var ve *chart.ValidationError
	require.True(t, errors.As(out.Err, &ve))
	assert.Len(t, texts(out.Messages, LevelWarning), 1)
}

func TestEvaluateNothingToChart(t *testing.T) {
	out := Evaluate(mustLoad(t, "flag\ntrue\nfalse\n"), Selection{})
	assert.ErrorIs(t, out.Err, chart.ErrNoVisualizableColumns)
	assert.Len(t, texts(out.Messages, LevelError), 1)
}

func TestEvaluateBadFilterColumn(t *testing.T) {
	out := Evaluate(mustLoad(t, sales), Selection{FilterColumn: "units"})
	assert.Equal(t, dataset.FilterNone, out.Status)
	assert.Equal(t, 3, out.FilteredRows)
	assert.NotEmpty(t, texts(out.Messages, LevelWarning))
}
