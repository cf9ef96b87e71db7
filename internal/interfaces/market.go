package interfaces

import (
	"context"

	"stock-advisor/internal/types"
)

// QuoteSource returns the current market snapshot of a watch-list.
type QuoteSource interface {
	Quotes(ctx context.Context, symbols []string) ([]types.Quote, error)
}

// HistorySource returns daily bars for one symbol, oldest first, before numeric coercion.
type HistorySource interface {
	History(ctx context.Context, symbol string) ([]types.RawBar, error)
}

// SummarySource returns the structured technical-summary opinion of a symbol,
// shaped "LABEL (count) - LABEL (count) ...".
type SummarySource interface {
	Summary(ctx context.Context, symbol string) (string, error)
}
