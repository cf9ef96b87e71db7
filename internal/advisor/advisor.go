// Package advisor runs one batch over the watch-list: quotes, technical evaluations,
// opinions, arbitration, ledger update and publication.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"stock-advisor/internal/arbitration"
	"stock-advisor/internal/evaluation"
	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/ledger"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/signals"
	"stock-advisor/internal/store"
	"stock-advisor/internal/types"
)

// MissingMetricsOpinion replaces the language-model opinion of a failed evaluation.
const MissingMetricsOpinion = "error: metrics not provided"

// Deps are the collaborators of a run. Summary may be nil when the technical summary is disabled.
type Deps struct {
	Quotes     interfaces.QuoteSource
	History    interfaces.HistorySource
	Summary    interfaces.SummarySource
	Opinioner  interfaces.Opinioner
	Ledger     interfaces.LedgerStore
	Publishers []interfaces.Publisher
}

type Advisor struct {
	cfg    *store.Config
	deps   Deps
	policy arbitration.Policy
	loc    *time.Location
	now    func() time.Time
	newID  func() string
}

var _ interfaces.Advisor = (*Advisor)(nil)

func New(cfg *store.Config, deps Deps) (*Advisor, error) {
	policy, err := arbitration.ParsePolicy(cfg.ForceOpinion)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", cfg.Timezone, err)
	}
	if deps.Quotes == nil || deps.History == nil || deps.Opinioner == nil || deps.Ledger == nil {
		return nil, errors.New("advisor: quotes, history, opinioner and ledger are required")
	}
	return &Advisor{cfg: cfg, deps: deps, policy: policy, loc: loc, now: time.Now, newID: uuid.NewString}, nil
}

// symbolResult is what one symbol contributes to a run.
type symbolResult struct {
	quote      types.Quote
	eval       types.Evaluation
	structured *string
	freeText   *string
	custom     string
}

// Run processes the watch-list once. Per-symbol collaborator failures degrade the symbol's
// opinions; quote and ledger failures abort the run. Publisher failures are returned
// together with the finished report.
func (a *Advisor) Run(ctx context.Context) (*types.RunReport, error) {
	runID := a.newID()
	at := a.now().In(a.loc)
	ctx = logger.WithRunID(ctx, runID)
	logger.Info(ctx, "Run started", "symbols", len(a.cfg.Symbols), "policy", string(a.policy))

	quotes, err := a.deps.Quotes.Quotes(ctx, a.cfg.Symbols)
	if err != nil {
		return nil, fmt.Errorf("quotes: %w", err)
	}
	quotes = uniqueQuotes(quotes)

	results := make([]symbolResult, len(quotes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(a.cfg.Concurrency, 1))
	for i, q := range quotes {
		g.Go(func() error {
			results[i] = a.analyze(gctx, q)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows := make([]arbitration.Row, len(results))
	for i, r := range results {
		rows[i] = arbitration.Row{Symbol: r.quote.Symbol, Structured: r.structured, FreeText: r.freeText, Custom: &r.custom}
	}
	actions := arbitration.ActionColumn(a.policy, rows)

	report := &types.RunReport{RunID: runID, At: at, Policy: string(a.policy)}
	for i, r := range results {
		report.Rows = append(report.Rows, types.AnalysisRow{
			Symbol:           r.quote.Symbol,
			CurrentPrice:     r.quote.CurrentPrice,
			ChangePercent:    r.quote.ChangePercent,
			Evaluation:       r.eval.Decision,
			Confidence:       r.eval.Confidence,
			TechnicalOpinion: deref(r.structured),
			LLMOpinion:       deref(r.freeText),
			CustomOpinion:    r.custom,
			Action:           actions[i],
		})
		report.Evaluations = append(report.Evaluations, r.eval)
		if actions[i] == types.DecisionBuy {
			report.NewBuys = append(report.NewBuys, r.quote)
		}
		logger.Decision(ctx, r.quote.Symbol, actions[i], r.eval.Confidence, r.custom,
			"technical", r.eval.Decision,
			"summary", deref(r.structured),
			"llm", deref(r.freeText),
		)
	}

	var closed []ledger.Position
	var final ledger.Ledger
	err = a.deps.Ledger.Update(ctx, func(l ledger.Ledger) (ledger.Ledger, error) {
		next, c := ledger.ClosePositions(ctx, l, quotes, a.cfg.RevenuePercentage, at)
		next = ledger.AppendNewPositions(ctx, next, report.NewBuys, at)
		next = ledger.Trim(next, a.cfg.MaxRecords)
		closed, final = c, next
		return next, nil
	})
	if err != nil {
		return nil, fmt.Errorf("ledger update: %w", err)
	}
	for _, p := range closed {
		report.Closed = append(report.Closed, p.Row())
	}
	report.Ledger = final.Rows()

	logger.Info(ctx, "Run analysed",
		"symbols", len(report.Rows),
		"new_buys", len(report.NewBuys),
		"closed", len(report.Closed),
		"ledger_size", len(report.Ledger),
	)
	return report, a.publish(ctx, report)
}

// Evaluate runs the technical evaluation of one symbol at its current quote.
func (a *Advisor) Evaluate(ctx context.Context, symbol string) (types.Evaluation, error) {
	quotes, err := a.deps.Quotes.Quotes(ctx, []string{symbol})
	if err != nil {
		return types.Evaluation{}, fmt.Errorf("quote %s: %w", symbol, err)
	}
	for _, q := range quotes {
		if q.Symbol == symbol {
			return a.evaluate(ctx, q), nil
		}
	}
	return types.Evaluation{}, fmt.Errorf("no quote for %s", symbol)
}

func (a *Advisor) analyze(ctx context.Context, q types.Quote) symbolResult {
	r := symbolResult{quote: q}
	r.eval = a.evaluate(ctx, q)

	if a.deps.Summary != nil {
		s, err := a.deps.Summary.Summary(ctx, q.Symbol)
		if err != nil {
			logger.Warn(ctx, "Technical summary unavailable", "symbol", q.Symbol, "error", err)
		} else {
			r.structured = &s
		}
	}

	switch {
	case r.eval.Failed():
		r.freeText = ptr(MissingMetricsOpinion)
	default:
		text, err := a.deps.Opinioner.Opinion(ctx, q.Symbol, *r.eval.Signals, q.CurrentPrice, a.cfg.RevenuePercentage)
		switch {
		case err != nil:
			r.freeText = ptr("error: " + err.Error())
		case text != "":
			r.freeText = &text
		}
	}

	r.custom = arbitration.CustomOpinion(r.eval)
	return r
}

func (a *Advisor) evaluate(ctx context.Context, q types.Quote) types.Evaluation {
	rows, err := a.deps.History.History(ctx, q.Symbol)
	if err != nil {
		return evaluation.Failed(ctx, q.Symbol, signals.Unavailable(err))
	}
	return evaluation.EvaluateRaw(ctx, q.Symbol, rows, q.CurrentPrice)
}

func (a *Advisor) publish(ctx context.Context, report *types.RunReport) error {
	var errs []error
	for _, p := range a.deps.Publishers {
		if err := p.Publish(ctx, report); err != nil {
			logger.ErrorWithErr(ctx, "Publish failed", err, "publisher", fmt.Sprintf("%T", p))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func uniqueQuotes(quotes []types.Quote) []types.Quote {
	seen := make(map[string]bool, len(quotes))
	out := make([]types.Quote, 0, len(quotes))
	for _, q := range quotes {
		if seen[q.Symbol] {
			continue
		}
		seen[q.Symbol] = true
		out = append(out, q)
	}
	return out
}

func ptr(s string) *string { return &s }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
