// Package evaluation turns a signal set into a BUY/SELL/HOLD verdict.
package evaluation

import (
	"context"
	"fmt"

	"stock-advisor/internal/logger"
	"stock-advisor/internal/signals"
	"stock-advisor/internal/ta"
	"stock-advisor/internal/types"
)

const (
	probThreshold = 0.15
	rsiOverbought = 80.0
)

// Evaluate runs the indicator engine over a parsed series and scores the result.
func Evaluate(ctx context.Context, symbol string, series types.PriceSeries, currentPrice float64) types.Evaluation {
	set, err := signals.Compute(series, currentPrice)
	if err != nil {
		return Failed(ctx, symbol, err)
	}
	return Score(symbol, set)
}

// EvaluateRaw is Evaluate for provider rows that have not been coerced yet.
func EvaluateRaw(ctx context.Context, symbol string, rows []types.RawBar, currentPrice float64) types.Evaluation {
	series, err := signals.ParseBars(rows)
	if err != nil {
		return Failed(ctx, symbol, err)
	}
	return Evaluate(ctx, symbol, series, currentPrice)
}

// Failed builds the terminal evaluation for a rejected input.
func Failed(ctx context.Context, symbol string, err *signals.Error) types.Evaluation {
	logger.Warn(ctx, "Evaluation failed", "symbol", symbol, "kind", err.Kind.String(), "reason", err.Msg)
	return types.Evaluation{
		Symbol:        symbol,
		Decision:      types.DecisionFailed,
		Confidence:    0,
		ActiveSignals: []string{types.FailedSignalMessage},
		Error:         err.Msg,
		ErrorKind:     err.Kind.String(),
	}
}

// Score applies the weighted voting rule to a signal set.
func Score(symbol string, s types.SignalSet) types.Evaluation {
	var buy, sell float64
	active := make([]string, 0, 7)
	vote := func(side *float64, w float64, msg string) {
		*side += w
		active = append(active, msg)
	}

	bullishTrend := s.SMA50 > s.SMA200
	macdCross := ta.Cross(s.PrevMACD, s.PrevMACDSignal, s.MACD, s.MACDSignal)
	if s.Crosses != nil {
		bullishTrend, macdCross = s.Crosses.BullishTrend, s.Crosses.MACD
	}

	if bullishTrend {
		vote(&buy, 1, "✅ Bullish trend (MA50 > MA200)")
	} else {
		vote(&sell, 1, "❌ Bearish trend (MA50 < MA200)")
	}

	switch rsi := s.RSI; {
	case rsi > 40 && rsi < 70:
		vote(&buy, 1, fmt.Sprintf("✅ RSI in healthy range (%.2f)", rsi))
	case rsi < 30:
		vote(&buy, 1, fmt.Sprintf("✅ RSI oversold (%.2f)", rsi))
	case rsi > rsiOverbought:
		vote(&sell, 1, fmt.Sprintf("❌ RSI overbought (%.2f)", rsi))
	default:
		active = append(active, fmt.Sprintf("⚠️ RSI neutral (%.2f)", rsi))
	}

	switch macdCross {
	case 1:
		vote(&buy, 1, "✅ MACD bullish crossover")
	case -1:
		vote(&sell, 1, "❌ MACD bearish crossover")
	}

	switch {
	case s.MA50Slope > 0:
		vote(&buy, 0.5, fmt.Sprintf("✅ MA50 rising (slope %.4f)", s.MA50Slope))
	case s.MA50Slope < 0:
		vote(&sell, 0.5, fmt.Sprintf("❌ MA50 falling (slope %.4f)", s.MA50Slope))
	}

	if s.ROC10 > 0 {
		vote(&buy, 0.5, fmt.Sprintf("✅ Positive momentum (ROC10 %.2f%%)", s.ROC10))
	} else {
		vote(&sell, 0.5, fmt.Sprintf("❌ Weak momentum (ROC10 %.2f%%)", s.ROC10))
	}

	if s.Breakout20 {
		vote(&buy, 1, "✅ 20-day breakout")
	}

	if s.Monthly10PctProb >= probThreshold {
		vote(&buy, 1, fmt.Sprintf("✅ Frequent +10%% months (%.0f%%)", s.Monthly10PctProb*100))
	} else {
		vote(&sell, 0.5, fmt.Sprintf("❌ Rare +10%% months (%.0f%%)", s.Monthly10PctProb*100))
	}

	decision := types.DecisionHold
	switch {
	case buy > sell:
		decision = types.DecisionBuy
	case sell > buy:
		decision = types.DecisionSell
	}

	set := s
	return types.Evaluation{
		Symbol:        symbol,
		Decision:      decision,
		Confidence:    Confidence(buy, sell),
		ActiveSignals: active,
		Signals:       &set,
	}
}

// Confidence is the normalized score margin in [-1, 1], rounded to 2 decimals.
func Confidence(buy, sell float64) float64 {
	total := buy + sell
	if total < 1 {
		total = 1
	}
	return ta.Round(ta.Clamp((buy-sell)/total, -1, 1), 2)
}
