package signals

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"stock-advisor/internal/types"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05-07:00",
}

// ParseBars coerces provider rows into a PriceSeries sorted by date.
// Unparsable dates, non-numeric closes and duplicate dates fail with ParseError.
// Open, high and low fall back to the close when blank; volume is optional.
func ParseBars(rows []types.RawBar) (types.PriceSeries, *Error) {
	out := make(types.PriceSeries, 0, len(rows))
	for i, r := range rows {
		d, ok := parseDate(r.Date)
		if !ok {
			return nil, newError(ParseError, "row %d: unparsable date %q", i, r.Date)
		}
		cl, ok := parseNumber(r.Close)
		if !ok {
			return nil, newError(ParseError, "row %d: non-numeric close %q", i, r.Close)
		}
		bar := types.PriceBar{Date: d, Open: cl, High: cl, Low: cl, Close: cl}
		for _, f := range []struct {
			raw string
			dst *float64
		}{{r.Open, &bar.Open}, {r.High, &bar.High}, {r.Low, &bar.Low}} {
			if strings.TrimSpace(f.raw) == "" {
				continue
			}
			v, ok := parseNumber(f.raw)
			if !ok {
				return nil, newError(ParseError, "row %d: non-numeric price %q", i, f.raw)
			}
			*f.dst = v
		}
		if v, ok := parseNumber(r.Volume); ok {
			bar.Volume = v
		}
		out = append(out, bar)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	for i := 1; i < len(out); i++ {
		if !out[i].Date.After(out[i-1].Date) {
			return nil, newError(ParseError, "duplicate date %s", out[i].Date.Format("2006-01-02"))
		}
	}
	return out, nil
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
