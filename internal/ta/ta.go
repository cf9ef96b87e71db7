package ta

import (
	"math"

	talib "github.com/markcheno/go-talib"
)

// SMA returns the rolling simple moving average series; the first n-1 slots are zero.
func SMA(vals []float64, n int) []float64 {
	if len(vals) < n || n <= 0 {
		return nil
	}
	return talib.Sma(vals, n)
}

// EMA returns the exponentially smoothed series seeded with the first value (no bias adjustment).
func EMA(vals []float64, span int) []float64 {
	if len(vals) == 0 || span <= 0 {
		return nil
	}
	alpha := 2.0 / float64(span+1)
	out := make([]float64, len(vals))
	out[0] = vals[0]
	for i := 1; i < len(vals); i++ {
		out[i] = alpha*vals[i] + (1-alpha)*out[i-1]
	}
	return out
}

// MACD returns the MACD line, its signal line and the histogram.
func MACD(closes []float64, fast, slow, signal int) (line, sig, hist []float64) {
	ef, es := EMA(closes, fast), EMA(closes, slow)
	if ef == nil || es == nil {
		return nil, nil, nil
	}
	line = make([]float64, len(closes))
	for i := range closes {
		line[i] = ef[i] - es[i]
	}
	sig = EMA(line, signal)
	hist = make([]float64, len(closes))
	for i := range closes {
		hist[i] = line[i] - sig[i]
	}
	return line, sig, hist
}

// RSI computes the latest RSI from simple means of the last period gains and losses.
// A window with neither gains nor losses reads 50.
func RSI(closes []float64, period int) float64 {
	if len(closes) < period+1 || period <= 0 {
		return math.NaN()
	}
	gain, loss := 0.0, 0.0
	for i := len(closes) - period; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	switch {
	case gain == 0 && loss == 0:
		return 50.0
	case loss == 0:
		return 100.0
	}
	rs := (gain / float64(period)) / (loss / float64(period))
	return Clamp(100.0-(100.0/(1.0+rs)), 0, 100)
}

// ROC returns the rolling rate-of-change series in percent.
func ROC(vals []float64, n int) []float64 {
	if len(vals) <= n || n <= 0 {
		return nil
	}
	return talib.Roc(vals, n)
}

// RollingMax returns the rolling maximum series over n values.
func RollingMax(vals []float64, n int) []float64 {
	if len(vals) < n || n <= 0 {
		return nil
	}
	return talib.Max(vals, n)
}

// PctChange returns period-over-period fractional changes; the first slot is NaN.
func PctChange(vals []float64, lag int) []float64 {
	out := make([]float64, len(vals))
	for i := range vals {
		if i < lag || vals[i-lag] == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = vals[i]/vals[i-lag] - 1
	}
	return out
}

// SampleStdDev is the n-1 normalised standard deviation of the last n values.
func SampleStdDev(vals []float64, n int) float64 {
	if len(vals) < n || n < 2 {
		return math.NaN()
	}
	tail := vals[len(vals)-n:]
	m := 0.0
	for _, v := range tail {
		m += v
	}
	m /= float64(n)
	s := 0.0
	for _, v := range tail {
		d := v - m
		s += d * d
	}
	return math.Sqrt(s / float64(n-1))
}

// Mean averages the last n values.
func Mean(vals []float64, n int) float64 {
	if len(vals) < n || n <= 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := len(vals) - n; i < len(vals); i++ {
		sum += vals[i]
	}
	return sum / float64(n)
}

// Cross reports how a moved against b between the previous and the latest bar:
// 1 for an upward cross, -1 for a downward cross, 0 otherwise.
func Cross(prevA, prevB, a, b float64) int {
	switch {
	case prevA < prevB && a > b:
		return 1
	case prevA > prevB && a < b:
		return -1
	}
	return 0
}

func Round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}

func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
