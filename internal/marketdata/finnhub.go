// Package marketdata fetches quotes and daily price history.
package marketdata

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-resty/resty/v2"

	"stock-advisor/internal/logger"
	"stock-advisor/internal/types"
)

// FinnhubClient fetches current quotes from the Finnhub REST API.
type FinnhubClient struct {
	client     *resty.Client
	apiKey     string
	losersOnly bool
	topN       int
}

type FinnhubOptions struct {
	BaseURL    string
	APIKey     string
	LosersOnly bool
	TopN       int
}

func NewFinnhubClient(opts FinnhubOptions) *FinnhubClient {
	client := resty.New()
	client.SetBaseURL(opts.BaseURL)
	client.SetTimeout(30 * time.Second)
	client.SetRetryCount(2)
	return &FinnhubClient{client: client, apiKey: opts.APIKey, losersOnly: opts.LosersOnly, topN: opts.TopN}
}

// finnhubQuote is the /quote payload; c is the current price, dp the day change percent.
type finnhubQuote struct {
	C  float64  `json:"c"`
	D  *float64 `json:"d"`
	DP *float64 `json:"dp"`
	H  float64  `json:"h"`
	L  float64  `json:"l"`
	O  float64  `json:"o"`
	PC float64  `json:"pc"`
	T  int64    `json:"t"`
}

// Quote fetches one symbol.
func (fc *FinnhubClient) Quote(ctx context.Context, symbol string) (types.Quote, error) {
	if fc.apiKey == "" {
		return types.Quote{}, errors.New("finnhub API key not configured")
	}
	resp, err := fc.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol": symbol,
			"token":  fc.apiKey,
		}).
		ForceContentType("application/json").
		SetResult(&finnhubQuote{}).
		Get("/quote")
	if err != nil {
		return types.Quote{}, fmt.Errorf("failed to fetch quote for %s: %w", symbol, err)
	}
	if resp.StatusCode() != 200 {
		return types.Quote{}, fmt.Errorf("finnhub http %d: %s", resp.StatusCode(), resp.String())
	}

	q, ok := resp.Result().(*finnhubQuote)
	if !ok || q == nil {
		return types.Quote{}, fmt.Errorf("no quote data for %s", symbol)
	}
	if q.C <= 0 || q.DP == nil {
		return types.Quote{}, fmt.Errorf("no quote data for %s", symbol)
	}
	return types.Quote{Symbol: symbol, CurrentPrice: q.C, ChangePercent: *q.DP}, nil
}

// Quotes fetches the watch-list. Symbols that fail are logged and left out.
// With losersOnly, only negative movers are kept, most negative first, truncated to topN when set.
func (fc *FinnhubClient) Quotes(ctx context.Context, symbols []string) ([]types.Quote, error) {
	out := make([]types.Quote, 0, len(symbols))
	for _, s := range symbols {
		q, err := fc.Quote(ctx, s)
		if err != nil {
			logger.ErrorWithErr(ctx, "Error retrieving quote", err, "symbol", s)
			continue
		}
		out = append(out, q)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if fc.losersOnly {
		out = Losers(out, fc.topN)
	}
	logger.Info(ctx, "Quotes fetched", "requested", len(symbols), "kept", len(out), "losers_only", fc.losersOnly)
	return out, nil
}

// Losers keeps negative movers sorted by most negative change; topN <= 0 keeps all.
func Losers(quotes []types.Quote, topN int) []types.Quote {
	out := make([]types.Quote, 0, len(quotes))
	for _, q := range quotes {
		if q.ChangePercent < 0 {
			out = append(out, q)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ChangePercent < out[j].ChangePercent })
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}
