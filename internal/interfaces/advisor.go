package interfaces

import (
	"context"

	"stock-advisor/internal/ledger"
	"stock-advisor/internal/types"
)

// Opinioner asks a language model for a free-text "DECISION - explanation" opinion.
type Opinioner interface {
	Opinion(ctx context.Context, symbol string, signals types.SignalSet, currentPrice, revenuePct float64) (string, error)
}

// LedgerStore persists the position ledger. Update must serialize read-modify-write cycles.
type LedgerStore interface {
	Load(ctx context.Context) (ledger.Ledger, error)
	Update(ctx context.Context, fn func(ledger.Ledger) (ledger.Ledger, error)) error
}

// Publisher delivers a finished run somewhere (files, email, journal).
type Publisher interface {
	Publish(ctx context.Context, report *types.RunReport) error
}

// Advisor runs one batch over the configured watch-list.
type Advisor interface {
	Run(ctx context.Context) (*types.RunReport, error)
	Evaluate(ctx context.Context, symbol string) (types.Evaluation, error)
}
