package advisorobs

import (
	"context"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/types"
)

type observableAdvisor struct {
	advisor interfaces.Advisor
}

var _ interfaces.Advisor = (*observableAdvisor)(nil)

func Wrap(a interfaces.Advisor) interfaces.Advisor {
	return &observableAdvisor{advisor: a}
}

func (oa *observableAdvisor) Run(ctx context.Context) (*types.RunReport, error) {
	op := logger.StartOperation(ctx, "advisor.Run")
	ctx = op.GetContext()

	report, err := oa.advisor.Run(ctx)
	if report == nil {
		logger.ErrorWithErrSkip(ctx, 1, "Run failed", err)
		op.EndWithError(err)
		return nil, err
	}
	if err != nil {
		logger.Warn(ctx, "Run finished with publish errors", "run_id", report.RunID, "error", err)
	}

	logger.InfoSkip(ctx, 1, "Run completed",
		"run_id", report.RunID,
		"symbols", len(report.Rows),
		"new_buys", len(report.NewBuys),
		"closed", len(report.Closed),
	)
	op.End("symbols", len(report.Rows))
	return report, err
}

func (oa *observableAdvisor) Evaluate(ctx context.Context, symbol string) (types.Evaluation, error) {
	op := logger.StartOperation(ctx, "advisor.Evaluate", "symbol", symbol)
	ctx = op.GetContext()

	ev, err := oa.advisor.Evaluate(ctx, symbol)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Evaluation request failed", err, "symbol", symbol)
		op.EndWithError(err)
		return ev, err
	}

	logger.InfoSkip(ctx, 1, "Evaluation completed",
		"symbol", symbol,
		"decision", ev.Decision,
		"confidence", ev.Confidence,
	)
	op.End("decision", ev.Decision)
	return ev, nil
}
