package noop

import (
	"context"

	"stock-advisor/internal/logger"
	"stock-advisor/internal/types"
)

// NoopOpinioner is used when no language model is configured. It returns no text,
// so arbitration falls back to the technical summary.
type NoopOpinioner struct{}

func NewNoopOpinioner() *NoopOpinioner {
	return &NoopOpinioner{}
}

func (n *NoopOpinioner) Opinion(ctx context.Context, symbol string, _ types.SignalSet, _, _ float64) (string, error) {
	logger.Debug(ctx, "Noop opinioner called - no opinion", "symbol", symbol)
	return "", nil
}
