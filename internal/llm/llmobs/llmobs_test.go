package llmobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-advisor/internal/types"
)

type fakeOpinioner struct {
	text string
	err  error
}

func (f fakeOpinioner) Opinion(context.Context, string, types.SignalSet, float64, float64) (string, error) {
	return f.text, f.err
}

func TestWrapPassesThrough(t *testing.T) {
	got, err := Wrap(fakeOpinioner{text: "BUY - ok"}).Opinion(context.Background(), "AAPL", types.SignalSet{}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, "BUY - ok", got)

	boom := errors.New("timeout")
	got, err = Wrap(fakeOpinioner{text: "ignored", err: boom}).Opinion(context.Background(), "AAPL", types.SignalSet{}, 1, 10)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, got)
}
