package chart

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Month-first wins for ambiguous slashed dates; a day above 12 in the first
// position is read day-first instead.
var timeOptions = []dateparse.ParserOption{
	dateparse.PreferMonthFirst(true),
	dateparse.RetryAmbiguousDateWithSwap(true),
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(s, time.UTC, timeOptions...)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// TryParseTimestamps reads every present value as a timestamp. It succeeds
// only when all present values parse and at least one is present; missing
// entries stay zero.
func TryParseTimestamps(values []string, valid []bool) ([]time.Time, bool) {
	out := make([]time.Time, len(values))
	seen := false
	for i, v := range values {
		if !valid[i] {
			continue
		}
		t, ok := parseTime(v)
		if !ok {
			return nil, false
		}
		out[i] = t
		seen = true
	}
	return out, seen
}
