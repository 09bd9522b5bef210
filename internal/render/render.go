// Package render draws planned chart requests as PNG or SVG images.
package render

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	plan "github.com/KaramelBytes/csvlens/internal/chart"
	"github.com/KaramelBytes/csvlens/internal/utils"
)

// ErrNoData is returned when a request holds nothing drawable.
var ErrNoData = errors.New("no data to plot")

// Format is an output image format.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

// ParseFormat accepts "png" or "svg" in any case; empty means PNG.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return PNG, nil
	case "svg":
		return SVG, nil
	}
	return "", fmt.Errorf("unsupported image format %q (use png|svg)", s)
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	if f == SVG {
		return "image/svg+xml"
	}
	return "image/png"
}

func (f Format) provider() chart.RendererProvider {
	if f == SVG {
		return chart.SVG
	}
	return chart.PNG
}

// Options sizes and encodes the image.
type Options struct {
	Width  int
	Height int
	// Bins is the histogram bin count; 0 picks one from the sample size.
	Bins   int
	Format Format
}

// DefaultOptions returns a 16:9 PNG.
func DefaultOptions() Options {
	return Options{Width: 1024, Height: 576, Format: PNG}
}

var palette = []drawing.Color{
	drawing.ColorFromHex("1f77b4"),
	drawing.ColorFromHex("ff7f0e"),
	drawing.ColorFromHex("2ca02c"),
	drawing.ColorFromHex("d62728"),
	drawing.ColorFromHex("9467bd"),
	drawing.ColorFromHex("8c564b"),
	drawing.ColorFromHex("e377c2"),
	drawing.ColorFromHex("7f7f7f"),
	drawing.ColorFromHex("bcbd22"),
	drawing.ColorFromHex("17becf"),
}

func colorAt(i int) drawing.Color { return palette[i%len(palette)] }

var background = chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}}

// Render draws req to w.
func Render(w io.Writer, req *plan.Request, opt Options) error {
	if req == nil || req.Len() == 0 {
		return ErrNoData
	}
	if opt.Width <= 0 || opt.Height <= 0 {
		d := DefaultOptions()
		opt.Width, opt.Height = d.Width, d.Height
	}
	var err error
	switch req.Kind {
	case plan.Histogram:
		err = histogram(w, req, opt)
	case plan.Scatter:
		err = scatter(w, req, opt)
	case plan.Bar:
		err = bars(w, req.Title, req.Y, barValues(req.Totals), opt)
	case plan.Line:
		err = line(w, req, opt)
	case plan.Pie:
		err = pie(w, req, opt)
	default:
		return fmt.Errorf("cannot render chart kind %q", req.Kind)
	}
	if err != nil {
		if errors.Is(err, ErrNoData) {
			return err
		}
		return fmt.Errorf("render %s: %w", req.Kind, err)
	}
	return nil
}

func histogram(w io.Writer, req *plan.Request, opt Options) error {
	var values []chart.Value
	for _, b := range Bins(req.Values, opt.Bins) {
		values = append(values, chart.Value{
			Label: b.Label(),
			Value: float64(b.Count),
			Style: chart.Style{FillColor: colorAt(0), StrokeColor: colorAt(0), StrokeWidth: 1},
		})
	}
	return bars(w, req.Title, "count", values, opt)
}

func barValues(totals []plan.GroupTotal) []chart.Value {
	out := make([]chart.Value, len(totals))
	for i, t := range totals {
		out[i] = chart.Value{
			Label: utils.Truncate(t.Category, 16),
			Value: t.Total,
			Style: chart.Style{FillColor: colorAt(0), StrokeColor: colorAt(0), StrokeWidth: 1},
		}
	}
	return out
}

func bars(w io.Writer, title, yName string, values []chart.Value, opt Options) error {
	if len(values) == 0 {
		return ErrNoData
	}
	usable := max(opt.Width-120, minSlot)
	values = fitBars(values, usable)
	slot := usable / len(values)
	lo, hi := 0.0, 0.0
	for _, v := range values {
		lo = min(lo, v.Value)
		hi = max(hi, v.Value)
	}
	rng := padRange(lo, hi)
	if lo == 0 && hi > 0 {
		rng.Min = 0
	}
	bc := chart.BarChart{
		Title:        title,
		Width:        opt.Width,
		Height:       opt.Height,
		Background:   background,
		BarWidth:     max(slot*7/10, 2),
		BarSpacing:   max(slot*3/10, 1),
		UseBaseValue: true,
		BaseValue:    0,
		YAxis: chart.YAxis{
			Name:  yName,
			Range: rng,
		},
		Bars: values,
	}
	return bc.Render(opt.Format.provider(), w)
}

const (
	// minSlot is the narrowest bar plus gap, in pixels.
	minSlot = 4
	// labelSlot is the width a category label needs to stay readable.
	labelSlot = 40
)

// fitBars keeps the bars within usable pixels. Past the limit the largest
// bars are kept in their order and the rest are summed into one "(other N)"
// bar. Labels are thinned when bars are too narrow to carry them all.
func fitBars(values []chart.Value, usable int) []chart.Value {
	limit := max(usable/minSlot, 1)
	if len(values) > limit {
		keep := limit - 1
		ranked := make([]int, len(values))
		for i := range ranked {
			ranked[i] = i
		}
		sort.SliceStable(ranked, func(a, b int) bool { return values[ranked[a]].Value > values[ranked[b]].Value })
		kept := make([]bool, len(values))
		for _, i := range ranked[:keep] {
			kept[i] = true
		}
		out := make([]chart.Value, 0, limit)
		rest := chart.Value{Style: values[0].Style}
		folded := 0
		for i, v := range values {
			if kept[i] {
				out = append(out, v)
				continue
			}
			rest.Value += v.Value
			folded++
		}
		rest.Label = fmt.Sprintf("(other %d)", folded)
		values = append(out, rest)
	} else {
		values = append([]chart.Value(nil), values...)
	}
	if slot := usable / len(values); slot < labelSlot {
		step := (labelSlot + slot - 1) / slot
		for i := range values {
			if i%step != 0 && i != len(values)-1 {
				values[i].Label = ""
			}
		}
	}
	return values
}

func scatter(w io.Writer, req *plan.Request, opt Options) error {
	var series []chart.Series
	xlo, xhi, ylo, yhi := bounds(req.Series)
	for i, s := range req.Series {
		if len(s.X) == 0 {
			continue
		}
		name := s.Name
		if name == "" {
			name = req.Y
		}
		series = append(series, chart.ContinuousSeries{
			Name:    name,
			XValues: s.X,
			YValues: s.Y,
			Style:   pointStyle(colorAt(i)),
		})
	}
	if len(series) == 0 {
		return ErrNoData
	}
	ch := chart.Chart{
		Title:      req.Title,
		Width:      opt.Width,
		Height:     opt.Height,
		Background: background,
		XAxis:      chart.XAxis{Name: req.X, Range: padRange(xlo, xhi)},
		YAxis:      chart.YAxis{Name: req.Y, Range: padRange(ylo, yhi)},
		Series:     series,
	}
	if req.Color != plan.NoGrouping {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}
	return ch.Render(opt.Format.provider(), w)
}

// pointStyle draws markers only, no connecting line.
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    4,
		DotColor:    col,
	}
}

func lineStyle(col drawing.Color) chart.Style {
	return chart.Style{StrokeWidth: 2, StrokeColor: col, DotWidth: 3, DotColor: col}
}

func line(w io.Writer, req *plan.Request, opt Options) error {
	ld := req.Line
	if ld == nil || len(ld.Y) == 0 {
		return ErrNoData
	}
	ylo, yhi := minMax(ld.Y)
	ch := chart.Chart{
		Title:      req.Title,
		Width:      opt.Width,
		Height:     opt.Height,
		Background: background,
		YAxis:      chart.YAxis{Name: req.Y, Range: padRange(ylo, yhi)},
	}
	switch {
	case ld.Temporal:
		first, last := ld.Times[0], ld.Times[len(ld.Times)-1]
		ch.XAxis = chart.XAxis{
			Name:           req.X,
			ValueFormatter: chart.TimeValueFormatterWithFormat(timeLayout(first, last)),
			Range:          padRange(chart.TimeToFloat64(first), chart.TimeToFloat64(last)),
		}
		ch.Series = []chart.Series{chart.TimeSeries{Name: req.Y, XValues: ld.Times, YValues: ld.Y, Style: lineStyle(colorAt(0))}}
	case len(ld.Numeric) > 0:
		xlo, xhi := minMax(ld.Numeric)
		ch.XAxis = chart.XAxis{Name: req.X, Range: padRange(xlo, xhi)}
		ch.Series = []chart.Series{chart.ContinuousSeries{Name: req.Y, XValues: ld.Numeric, YValues: ld.Y, Style: lineStyle(colorAt(0))}}
	default:
		xs := make([]float64, len(ld.Labels))
		for i := range xs {
			xs[i] = float64(i + 1)
		}
		ch.XAxis = chart.XAxis{
			Name:  req.X,
			Ticks: categoryTicks(ld.Labels),
			Range: &chart.ContinuousRange{Min: 0.5, Max: float64(len(xs)) + 0.5},
		}
		ch.Series = []chart.Series{chart.ContinuousSeries{Name: req.Y, XValues: xs, YValues: ld.Y, Style: lineStyle(colorAt(0))}}
	}
	return ch.Render(opt.Format.provider(), w)
}

// categoryTicks labels positions 1..n, thinning labels so at most about
// twenty are printed.
func categoryTicks(labels []string) []chart.Tick {
	step := max(len(labels)/20, 1)
	ticks := make([]chart.Tick, 0, len(labels)/step+1)
	for i, l := range labels {
		if i%step != 0 {
			continue
		}
		ticks = append(ticks, chart.Tick{Value: float64(i + 1), Label: utils.Truncate(l, 16)})
	}
	return ticks
}

func pie(w io.Writer, req *plan.Request, opt Options) error {
	sum := 0.0
	for _, t := range req.Totals {
		if t.Total > 0 {
			sum += t.Total
		}
	}
	if sum == 0 {
		return ErrNoData
	}
	var values []chart.Value
	for i, t := range req.Totals {
		if t.Total <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (%.1f%%)", utils.Truncate(t.Category, 24), t.Total*100/sum),
			Value: t.Total,
			Style: chart.Style{FillColor: colorAt(i), StrokeColor: drawing.ColorWhite, StrokeWidth: 1},
		})
	}
	pc := chart.PieChart{
		Title:      req.Title,
		Width:      opt.Width,
		Height:     opt.Height,
		Background: background,
		Values:     values,
	}
	return pc.Render(opt.Format.provider(), w)
}
