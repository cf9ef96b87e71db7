package marketdata

import (
	"context"
	"errors"
	"fmt"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/types"
)

// NamedSource labels a history source for logs.
type NamedSource struct {
	Name   string
	Source interfaces.HistorySource
}

// FallbackHistory tries each source in order and returns the first non-empty history.
type FallbackHistory struct {
	sources []NamedSource
}

func NewFallbackHistory(sources ...NamedSource) *FallbackHistory {
	return &FallbackHistory{sources: sources}
}

func (f *FallbackHistory) History(ctx context.Context, symbol string) ([]types.RawBar, error) {
	var errs []error
	for _, s := range f.sources {
		rows, err := s.Source.History(ctx, symbol)
		if err == nil && len(rows) > 0 {
			return rows, nil
		}
		if err == nil {
			err = errors.New("empty history")
		}
		logger.Warn(ctx, "History source failed, trying next", "source", s.Name, "symbol", symbol, "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("no history for %s: %w", symbol, errors.Join(errs...))
}
