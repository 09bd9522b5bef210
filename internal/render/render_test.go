package render

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wcharczuk/go-chart/v2"

	plan "github.com/KaramelBytes/csvlens/internal/chart"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func requests() map[string]*plan.Request {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return map[string]*plan.Request{
		"histogram": {Kind: plan.Histogram, Title: "Distribution of v", X: "v", Values: []float64{1, 2, 2, 3, 7}},
		"scatter": {Kind: plan.Scatter, Title: "Scatter Plot a vs b (Colored by g)", X: "a", Y: "b", Color: "g", Series: []plan.Series{
			{Name: "x", X: []float64{1, 3}, Y: []float64{10, 30}},
			{Name: "y", X: []float64{2}, Y: []float64{20}},
		}},
		"bar":  {Kind: plan.Bar, Title: "Total val per cat", X: "cat", Y: "val", Aggregation: plan.AggSum, Totals: []plan.GroupTotal{{Category: "A", Total: 8}, {Category: "B", Total: -2}}},
		"pie":  {Kind: plan.Pie, Title: "Proportion of val per cat", X: "cat", Y: "val", Totals: []plan.GroupTotal{{Category: "A", Total: 8}, {Category: "B", Total: 2}}},
		"time": {Kind: plan.Line, Title: "Trend of v by day", X: "day", Y: "v", Line: &plan.LineData{Labels: []string{"a", "b"}, Times: []time.Time{day, day.AddDate(0, 0, 1)}, Temporal: true, Y: []float64{1, 2}}},
		"numeric line": {Kind: plan.Line, Title: "Trend of v by t", X: "t", Y: "v", Line: &plan.LineData{Labels: []string{"3", "1"}, Numeric: []float64{3, 1}, Y: []float64{5, 5}}},
		"text line":    {Kind: plan.Line, Title: "Trend of v by step", X: "step", Y: "v", Line: &plan.LineData{Labels: []string{"b", "a", "c"}, Y: []float64{1, 2, 3}}},
		"single point": {Kind: plan.Scatter, Title: "Scatter Plot a vs b", X: "a", Y: "b", Series: []plan.Series{{X: []float64{4}, Y: []float64{4}}}},
	}
}

func TestRenderPNG(t *testing.T) {
	for name, req := range requests() {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, req, Options{Width: 640, Height: 360, Format: PNG}), name)
		assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic), "%s: not a PNG", name)
	}
}

func TestRenderSVG(t *testing.T) {
	var buf bytes.Buffer
	req := requests()["bar"]
	require.NoError(t, Render(&buf, req, Options{Width: 640, Height: 360, Format: SVG}))
	out := buf.String()
	assert.True(t, strings.Contains(out, "<svg"), "missing svg root")
	assert.Contains(t, out, "Total val per cat")
}

func TestRenderNoData(t *testing.T) {
	cases := []*plan.Request{
		nil,
		{Kind: plan.Histogram},
		{Kind: plan.Bar, Totals: nil},
		{Kind: plan.Pie, Totals: []plan.GroupTotal{{Category: "A", Total: 0}, {Category: "B", Total: -1}}},
		{Kind: plan.Line, Line: &plan.LineData{}},
	}
	for i, req := range cases {
		var buf bytes.Buffer
		assert.ErrorIs(t, Render(&buf, req, DefaultOptions()), ErrNoData, "case %d", i)
	}
}

func TestBins(t *testing.T) {
	bins := Bins([]float64{0, 1, 2, 3, 4, 5, 6, 7}, 0)
	require.Len(t, bins, 4) // ceil(log2 8) + 1
	total := 0
	for _, b := range bins {
		total += b.Count
	}
	assert.Equal(t, 8, total)
	assert.Equal(t, 7.0, bins[3].Hi)
	for _, b := range bins {
		assert.Equal(t, 2, b.Count)
	}

	one := Bins([]float64{2, 2, 2}, 10)
	require.Len(t, one, 1)
	assert.Equal(t, 3, one[0].Count)
	assert.Equal(t, "[2, 2)", one[0].Label())

	assert.Len(t, Bins([]float64{1, 2}, 5), 5)
	assert.Nil(t, Bins(nil, 3))
}

func TestBinsIgnoreNonFiniteAndHugeRanges(t *testing.T) {
	bins := Bins([]float64{1, 2, math.Inf(1), math.NaN(), math.Inf(-1)}, 0)
	require.NotEmpty(t, bins)
	total := 0
	for _, b := range bins {
		total += b.Count
	}
	assert.Equal(t, 2, total)

	wide := Bins([]float64{-1e308, 0, 1e308}, 0)
	require.Len(t, wide, 3)
	assert.Equal(t, 1, wide[0].Count)
	assert.Equal(t, 1, wide[1].Count)
	assert.Equal(t, 1, wide[2].Count)

	assert.Nil(t, Bins([]float64{math.Inf(1)}, 4))
}

func TestFitBarsFoldsTail(t *testing.T) {
	values := make([]chart.Value, 300)
	sum := 0.0
	for i := range values {
		values[i] = chart.Value{Label: fmt.Sprintf("c%03d", i), Value: float64(i % 7)}
		sum += values[i].Value
	}
	got := fitBars(values, 400)
	require.Len(t, got, 100)
	assert.Equal(t, "(other 201)", got[len(got)-1].Label)
	folded := 0.0
	for _, v := range got {
		folded += v.Value
	}
	assert.InDelta(t, sum, folded, 1e-9)
	assert.Equal(t, "c000", values[0].Label, "input is left untouched")

	short := fitBars(values[:5], 400)
	assert.Len(t, short, 5)
	assert.Equal(t, "c004", short[4].Label)
}

func TestRenderManyCategories(t *testing.T) {
	req := &plan.Request{Kind: plan.Bar, Title: "Total v per k", X: "k", Y: "v"}
	for i := 0; i < 2000; i++ {
		req.Totals = append(req.Totals, plan.GroupTotal{Category: fmt.Sprintf("k%d", i), Total: float64(i)})
	}
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, req, Options{Width: 480, Height: 320, Format: PNG}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("SVG")
	require.NoError(t, err)
	assert.Equal(t, SVG, f)
	f, err = FormatFromPath("out/chart.png")
	require.NoError(t, err)
	assert.Equal(t, PNG, f)
	assert.Equal(t, "image/png", f.ContentType())
	_, err = FormatFromPath("chart.gif")
	assert.Error(t, err)
}
