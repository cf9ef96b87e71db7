package types

import "time"

// PriceBar is one daily OHLCV row. A PriceSeries is ordered by strictly increasing Date.
type PriceBar struct {
	Date                           time.Time
	Open, High, Low, Close, Volume float64
}

type PriceSeries []PriceBar

// Closes returns the close column.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// Opens returns the open column.
func (s PriceSeries) Opens() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Open
	}
	return out
}

// RawBar is a price row as delivered by a provider, before numeric coercion.
type RawBar struct {
	Date, Open, High, Low, Close, Volume string
}

// Quote is the current market snapshot for one symbol.
type Quote struct {
	Symbol        string  `json:"symbol" csv:"symbol"`
	CurrentPrice  float64 `json:"current_price" csv:"current_price"`
	ChangePercent float64 `json:"change_percent" csv:"change_percent"`
}

const (
	DecisionBuy    = "BUY"
	DecisionSell   = "SELL"
	DecisionHold   = "HOLD"
	DecisionFailed = "EVALUATION_FAILED"
)

// FailedSignalMessage is the single rationale attached to a FAILED evaluation.
const FailedSignalMessage = "Evaluation failed due to error."

// Evaluation is the technical verdict for one symbol. Signals is nil when Error is set.
type Evaluation struct {
	Symbol        string     `json:"symbol"`
	Decision      string     `json:"decision"`
	Confidence    float64    `json:"confidence"`
	ActiveSignals []string   `json:"active_signals"`
	Signals       *SignalSet `json:"signals,omitempty"`
	Error         string     `json:"error,omitempty"`
	ErrorKind     string     `json:"error_kind,omitempty"`
}

// Failed reports whether the evaluation short-circuited.
func (e Evaluation) Failed() bool { return e.Decision == DecisionFailed }

// SignalMap renders the signal payload; a failed evaluation yields {"error": message}.
func (e Evaluation) SignalMap() map[string]any {
	if e.Signals == nil {
		return map[string]any{"error": e.Error}
	}
	return e.Signals.Map()
}
