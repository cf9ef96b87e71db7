package signals

import (
	"math"

	"stock-advisor/internal/ta"
	"stock-advisor/internal/types"
)

// MinBars is the shortest series the engine will evaluate.
const MinBars = 200

const (
	rsiPeriod      = 14
	slopeLag       = 5
	rocPeriod      = 10
	volWindow      = 20
	atrPeriod      = 14
	breakoutWindow = 20
	monthBars      = 21
	monthTarget    = 0.10
)

// Compute derives the signal set for a price series and the current price.
// It never computes anything on a series it rejects.
func Compute(series types.PriceSeries, currentPrice float64) (types.SignalSet, *Error) {
	if err := validate(series); err != nil {
		return types.SignalSet{}, err
	}
	closes := series.Closes()
	opens := series.Opens()
	last := len(closes) - 1

	sma50 := ta.SMA(closes, 50)
	sma200 := ta.SMA(closes, 200)
	macd, macdSig, macdHist := ta.MACD(closes, 12, 26, 9)
	roc := ta.ROC(closes, rocPeriod)
	highs := ta.RollingMax(closes, breakoutWindow)
	returns := ta.PctChange(closes, 1)

	bodies := make([]float64, len(closes))
	for i := range closes {
		bodies[i] = math.Abs(closes[i] - opens[i])
	}

	return types.SignalSet{
		SMA50:            r4(sma50[last]),
		SMA200:           r4(sma200[last]),
		RSI:              r4(ta.RSI(closes, rsiPeriod)),
		MACD:             r4(macd[last]),
		MACDSignal:       r4(macdSig[last]),
		MACDHist:         r4(macdHist[last]),
		PrevMACD:         r4(macd[last-1]),
		PrevMACDSignal:   r4(macdSig[last-1]),
		MA50Slope:        r4(sma50[last] - sma50[last-slopeLag]),
		ROC10:            r4(roc[last]),
		Volatility20:     r4(ta.SampleStdDev(returns, volWindow)),
		ATR14:            r4(ta.Mean(bodies, atrPeriod)),
		Breakout20:       closes[last] > highs[last-1],
		Monthly10PctProb: r4(monthlyHitRate(closes)),
		CurrentPrice:     r4(currentPrice),
		Crosses: &types.Crosses{
			BullishTrend: sma50[last] > sma200[last],
			MACD:         ta.Cross(macd[last-1], macdSig[last-1], macd[last], macdSig[last]),
		},
	}, nil
}

func validate(series types.PriceSeries) *Error {
	if len(series) < MinBars {
		return newError(InsufficientData, "Insufficient data: at least %d rows required, got %d.", MinBars, len(series))
	}
	for i, b := range series {
		if b.Date.IsZero() {
			return newError(ParseError, "row %d: missing date", i)
		}
		if i > 0 && !b.Date.After(series[i-1].Date) {
			return newError(ParseError, "row %d: dates must be strictly increasing", i)
		}
		if !finite(b.Close) || !finite(b.Open) {
			return newError(ParseError, "row %d: non-numeric price", i)
		}
		if b.Close <= 0 {
			return newError(ParseError, "row %d: non-positive close %v", i, b.Close)
		}
	}
	return nil
}

// monthlyHitRate is the share of 21-bar trailing returns that reached +10%.
func monthlyHitRate(closes []float64) float64 {
	rets := ta.PctChange(closes, monthBars)
	hits, total := 0, 0
	for _, r := range rets {
		if math.IsNaN(r) {
			continue
		}
		total++
		if r >= monthTarget {
			hits++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }

func r4(x float64) float64 { return ta.Round(x, 4) }
