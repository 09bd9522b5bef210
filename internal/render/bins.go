package render

import (
	"math"
	"time"

	"github.com/spf13/cast"
	"github.com/wcharczuk/go-chart/v2"

	plan "github.com/KaramelBytes/csvlens/internal/chart"
)

// Bin is one histogram interval [Lo, Hi); the last bin also holds Hi.
type Bin struct {
	Lo    float64
	Hi    float64
	Count int
}

// Label prints the interval compactly.
func (b Bin) Label() string {
	return "[" + cast.ToString(round3(b.Lo)) + ", " + cast.ToString(round3(b.Hi)) + ")"
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

// Bins splits values into n equal-width bins. n <= 0 uses Sturges' rule.
// A constant sample yields one bin. Non-finite values are ignored.
func Bins(values []float64, n int) []Bin {
	values = finite(values)
	if len(values) == 0 {
		return nil
	}
	lo, hi := minMax(values)
	if lo == hi {
		return []Bin{{Lo: lo, Hi: hi, Count: len(values)}}
	}
	if n <= 0 {
		n = int(math.Ceil(math.Log2(float64(len(values))))) + 1
	}
	// hi/n - lo/n stays finite where hi - lo would overflow.
	width := hi/float64(n) - lo/float64(n)
	bins := make([]Bin, n)
	for i := range bins {
		bins[i].Lo = lo + float64(i)*width
		bins[i].Hi = lo + float64(i+1)*width
	}
	bins[n-1].Hi = hi
	for _, v := range values {
		i := int(v/width - lo/width)
		i = max(0, min(i, n-1))
		bins[i].Count++
	}
	return bins
}

func finite(values []float64) []float64 {
	out := values[:0:0]
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

func minMax(values []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func bounds(series []plan.Series) (xlo, xhi, ylo, yhi float64) {
	xlo, ylo = math.Inf(1), math.Inf(1)
	xhi, yhi = math.Inf(-1), math.Inf(-1)
	for _, s := range series {
		if len(s.X) == 0 {
			continue
		}
		a, b := minMax(s.X)
		xlo, xhi = math.Min(xlo, a), math.Max(xhi, b)
		a, b = minMax(s.Y)
		ylo, yhi = math.Min(ylo, a), math.Max(yhi, b)
	}
	return
}

// padRange widens [lo, hi] by 5% each side; go-chart rejects zero-width ranges.
func padRange(lo, hi float64) *chart.ContinuousRange {
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return &chart.ContinuousRange{Min: 0, Max: 1}
	}
	span := hi - lo
	if span == 0 {
		span = math.Max(math.Abs(lo), 1)
		return &chart.ContinuousRange{Min: lo - span/2, Max: hi + span/2}
	}
	return &chart.ContinuousRange{Min: lo - span*0.05, Max: hi + span*0.05}
}

func timeLayout(first, last time.Time) string {
	span := last.Sub(first)
	if span < 0 {
		span = -span
	}
	switch {
	case span < 48*time.Hour && (first.Hour() != 0 || last.Hour() != 0 || first.Minute() != 0 || last.Minute() != 0):
		return "01-02 15:04"
	case span > 3*365*24*time.Hour:
		return "2006-01"
	default:
		return "2006-01-02"
	}
}
