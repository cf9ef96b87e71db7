package marketdata

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"stock-advisor/internal/logger"
	"stock-advisor/internal/types"
)

const alphaSeriesKey = "Time Series (Daily)"

// AlphaVantageClient fetches TIME_SERIES_DAILY history.
type AlphaVantageClient struct {
	client *resty.Client
	apiKey string
	days   int
	now    func() time.Time
}

func NewAlphaVantageClient(baseURL, apiKey string, days int) *AlphaVantageClient {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(60 * time.Second)
	return &AlphaVantageClient{client: client, apiKey: apiKey, days: days, now: time.Now}
}

// History returns the bars of the last configured days, oldest first. Values are passed through
// as text; coercion happens in the indicator engine.
func (ac *AlphaVantageClient) History(ctx context.Context, symbol string) ([]types.RawBar, error) {
	if ac.apiKey == "" {
		return nil, errors.New("alpha vantage API key not configured")
	}
	resp, err := ac.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"function":   "TIME_SERIES_DAILY",
			"symbol":     symbol,
			"apikey":     ac.apiKey,
			"outputsize": "full",
		}).
		Get("/query")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history for %s: %w", symbol, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("alpha vantage http %d: %s", resp.StatusCode(), resp.String())
	}

	body := resp.String()
	if !gjson.Valid(body) {
		return nil, fmt.Errorf("alpha vantage returned invalid JSON for %s", symbol)
	}
	series := gjson.Get(body, alphaSeriesKey)
	if !series.Exists() {
		// Rate limits and bad symbols come back as 200 with a note instead of the series.
		var note string
		for _, k := range []string{"Note", "Information", "Error Message"} {
			if r := gjson.Get(body, k); r.Exists() {
				note = r.String()
				break
			}
		}
		return nil, fmt.Errorf("alpha vantage has no series for %s: %s", symbol, note)
	}

	cutoff := ac.now().AddDate(0, 0, -ac.days).Format(time.DateOnly)
	var rows []types.RawBar
	series.ForEach(func(date, v gjson.Result) bool {
		if date.String() < cutoff {
			return true
		}
		rows = append(rows, types.RawBar{
			Date:   date.String(),
			Open:   v.Get(`1\. open`).String(),
			High:   v.Get(`2\. high`).String(),
			Low:    v.Get(`3\. low`).String(),
			Close:  v.Get(`4\. close`).String(),
			Volume: v.Get(`5\. volume`).String(),
		})
		return true
	})
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })
	logger.Info(ctx, "History retrieved", "source", "alpha", "symbol", symbol, "rows", len(rows))
	return rows, nil
}
