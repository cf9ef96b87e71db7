package marketdata

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"

	"stock-advisor/internal/logger"
	"stock-advisor/internal/types"
)

// YahooClient fetches daily history from Yahoo Finance.
type YahooClient struct {
	years int
	now   func() time.Time
}

func NewYahooClient(years int) *YahooClient {
	return &YahooClient{years: years, now: time.Now}
}

func (yc *YahooClient) History(ctx context.Context, symbol string) ([]types.RawBar, error) {
	end := yc.now()
	start := end.AddDate(-yc.years, 0, 0)
	iter := chart.Get(&chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	})

	var rows []types.RawBar
	for iter.Next() {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		bar := iter.Bar()
		rows = append(rows, types.RawBar{
			Date:   time.Unix(int64(bar.Timestamp), 0).UTC().Format(time.DateOnly),
			Open:   bar.Open.String(),
			High:   bar.High.String(),
			Low:    bar.Low.String(),
			Close:  bar.Close.String(),
			Volume: strconv.Itoa(bar.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to get historical data for %s: %w", symbol, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no Yahoo Finance data for %s", symbol)
	}
	logger.Info(ctx, "History retrieved", "source", "yahoo", "symbol", symbol, "rows", len(rows))
	return rows, nil
}
