package advisorobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-advisor/internal/types"
)

type fakeAdvisor struct {
	report *types.RunReport
	ev     types.Evaluation
	err    error
}

func (f fakeAdvisor) Run(context.Context) (*types.RunReport, error) { return f.report, f.err }
func (f fakeAdvisor) Evaluate(context.Context, string) (types.Evaluation, error) {
	return f.ev, f.err
}

func TestWrapRun(t *testing.T) {
	r := &types.RunReport{RunID: "r1"}
	got, err := Wrap(fakeAdvisor{report: r}).Run(context.Background())
	require.NoError(t, err)
	assert.Same(t, r, got)

	publishErr := errors.New("smtp down")
	got, err = Wrap(fakeAdvisor{report: r, err: publishErr}).Run(context.Background())
	assert.ErrorIs(t, err, publishErr)
	assert.Same(t, r, got)

	got, err = Wrap(fakeAdvisor{err: errors.New("quotes down")}).Run(context.Background())
	assert.Error(t, err)
	assert.Nil(t, got)
}

func TestWrapEvaluate(t *testing.T) {
	ev := types.Evaluation{Symbol: "AAPL", Decision: types.DecisionHold}
	got, err := Wrap(fakeAdvisor{ev: ev}).Evaluate(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, ev, got)

	_, err = Wrap(fakeAdvisor{err: errors.New("no quote")}).Evaluate(context.Background(), "AAPL")
	assert.Error(t, err)
}
