package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"stock-advisor/internal/types"
)

func TestPrompt(t *testing.T) {
	p := Prompt("AAPL", types.SignalSet{SMA50: 120.5, RSI: 61.2, Breakout20: true, CurrentPrice: 130}, 130, 10)

	assert.Contains(t, p, "about AAPL")
	assert.Contains(t, p, "SMA_50 = 120.5\n")
	assert.Contains(t, p, "RSI = 61.2\n")
	assert.Contains(t, p, "Breakout_20 = true\n")
	assert.Contains(t, p, "current_price: 130")
	assert.Contains(t, p, "~10% profit")
	assert.Contains(t, p, "Options for DECISION: SELL, HOLD, BUY, EMPTY_DECISION.")
	assert.Less(t, strings.Index(p, "SMA_50"), strings.Index(p, "SMA_200"))
	assert.Less(t, strings.Index(p, "ATR_14"), strings.Index(p, "Current_Price"))
}

func TestSystem(t *testing.T) {
	assert.Equal(t, DefaultSystem, System("  "))
	assert.Equal(t, "be brief", System("be brief"))
}
