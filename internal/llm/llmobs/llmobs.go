package llmobs

import (
	"context"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/types"
)

// observableOpinioner wraps an Opinioner with logging and tracing
type observableOpinioner struct {
	opinioner interfaces.Opinioner
}

var _ interfaces.Opinioner = (*observableOpinioner)(nil)

func Wrap(o interfaces.Opinioner) interfaces.Opinioner {
	return &observableOpinioner{opinioner: o}
}

func (oo *observableOpinioner) Opinion(
	ctx context.Context,
	symbol string,
	signals types.SignalSet,
	currentPrice, revenuePct float64,
) (string, error) {
	op := logger.StartOperation(ctx, "llm.Opinion", "symbol", symbol)
	ctx = op.GetContext()

	// Skip(1) reports the caller instead of this wrapper
	logger.DebugSkip(ctx, 1, "Requesting language model opinion",
		"symbol", symbol,
		"price", currentPrice,
		"rsi", signals.RSI,
	)

	text, err := oo.opinioner.Opinion(ctx, symbol, signals, currentPrice, revenuePct)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to get language model opinion", err, "symbol", symbol)
		op.EndWithError(err)
		return "", err
	}

	logger.InfoSkip(ctx, 1, "Language model opinion received",
		"symbol", symbol,
		"opinion", text,
	)
	op.End("opinion_length", len(text))
	return text, nil
}
