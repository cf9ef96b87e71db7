// Package llm builds the prompt shared by the language-model opinioners.
package llm

import (
	"fmt"
	"strings"

	"stock-advisor/internal/types"
)

// DefaultSystem is used when llm.system is blank.
const DefaultSystem = "You are a financial assistant providing buy, hold or sell advice based on given metrics."

// Prompt asks for a one-line "DECISION - brief explanation" answer about symbol.
func Prompt(symbol string, signals types.SignalSet, currentPrice, revenuePct float64) string {
	m := signals.Map()
	var b strings.Builder
	for _, k := range types.SignalKeys {
		fmt.Fprintf(&b, "%s = %v\n", k, m[k])
	}
	return fmt.Sprintf(
		"Return a clear answer about %s using these historical metrics:\n%sand current_price: %v\n\n"+
			"Goal: identify short-term bullish setups (1-4 weeks) potentially capable of yielding ~%v%% profit.\n"+
			"Output format: DECISION - brief explanation (max 30 words, include indicators in parentheses).\n"+
			"Options for DECISION: SELL, HOLD, BUY, EMPTY_DECISION.",
		symbol, b.String(), currentPrice, revenuePct,
	)
}

// System returns the configured system message or DefaultSystem.
func System(configured string) string {
	if strings.TrimSpace(configured) == "" {
		return DefaultSystem
	}
	return configured
}
