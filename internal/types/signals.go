package types

// SignalSet holds the indicator values of one evaluation, rounded to 4 decimals.
type SignalSet struct {
	SMA50            float64 `json:"SMA_50"`
	SMA200           float64 `json:"SMA_200"`
	RSI              float64 `json:"RSI"`
	MACD             float64 `json:"MACD"`
	MACDSignal       float64 `json:"MACD_Signal"`
	MACDHist         float64 `json:"MACD_Hist"`
	PrevMACD         float64 `json:"Prev_MACD"`
	PrevMACDSignal   float64 `json:"Prev_MACD_Signal"`
	MA50Slope        float64 `json:"MA50_Slope"`
	ROC10            float64 `json:"ROC_10"`
	Volatility20     float64 `json:"Volatility_20"`
	ATR14            float64 `json:"ATR_14"`
	Breakout20       bool    `json:"Breakout_20"`
	Monthly10PctProb float64 `json:"Monthly_10pct_Prob"`
	CurrentPrice     float64 `json:"Current_Price"`

	// Crosses holds the trend and MACD comparisons taken before rounding.
	// It is nil for sets not computed from a price series.
	Crosses *Crosses `json:"-"`
}

// Crosses are comparisons read from unrounded indicator values.
type Crosses struct {
	BullishTrend bool // SMA50 above SMA200
	MACD         int  // 1 bullish crossover, -1 bearish crossover, 0 none
}

// SignalKeys lists the SignalSet keys in presentation order.
var SignalKeys = []string{
	"SMA_50", "SMA_200", "RSI", "MACD", "MACD_Signal", "MACD_Hist",
	"Prev_MACD", "Prev_MACD_Signal", "MA50_Slope", "ROC_10", "Volatility_20",
	"ATR_14", "Breakout_20", "Monthly_10pct_Prob", "Current_Price",
}

// Map returns the signal set keyed by indicator name.
func (s SignalSet) Map() map[string]any {
	return map[string]any{
		"SMA_50":             s.SMA50,
		"SMA_200":            s.SMA200,
		"RSI":                s.RSI,
		"MACD":               s.MACD,
		"MACD_Signal":        s.MACDSignal,
		"MACD_Hist":          s.MACDHist,
		"Prev_MACD":          s.PrevMACD,
		"Prev_MACD_Signal":   s.PrevMACDSignal,
		"MA50_Slope":         s.MA50Slope,
		"ROC_10":             s.ROC10,
		"Volatility_20":      s.Volatility20,
		"ATR_14":             s.ATR14,
		"Breakout_20":        s.Breakout20,
		"Monthly_10pct_Prob": s.Monthly10PctProb,
		"Current_Price":      s.CurrentPrice,
	}
}
