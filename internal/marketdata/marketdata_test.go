package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-advisor/internal/types"
)

func TestFinnhubQuotes(t *testing.T) {
	quotes := map[string]string{
		"AAPL": `{"c": 165.5, "d": -1.2, "dp": -0.72, "h": 167, "l": 164, "o": 166, "pc": 166.7, "t": 1700000000}`,
		"AMD":  `{"c": 140, "d": -4.1, "dp": -2.85, "h": 145, "l": 139, "o": 144, "pc": 144.1, "t": 1700000000}`,
		"NVDA": `{"c": 480, "d": 3.0, "dp": 0.63, "h": 481, "l": 470, "o": 472, "pc": 477, "t": 1700000000}`,
		"NOPE": `{"c": 0, "d": null, "dp": null, "h": 0, "l": 0, "o": 0, "pc": 0, "t": 0}`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("token"))
		body, ok := quotes[r.URL.Query().Get("symbol")]
		if !ok {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	fc := NewFinnhubClient(FinnhubOptions{BaseURL: srv.URL, APIKey: "secret"})
	got, err := fc.Quotes(context.Background(), []string{"AAPL", "AMD", "NVDA", "NOPE", "LIMIT"})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, types.Quote{Symbol: "AAPL", CurrentPrice: 165.5, ChangePercent: -0.72}, got[0])

	fc = NewFinnhubClient(FinnhubOptions{BaseURL: srv.URL, APIKey: "secret", LosersOnly: true, TopN: 1})
	got, err = fc.Quotes(context.Background(), []string{"AAPL", "AMD", "NVDA"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "AMD", got[0].Symbol)
}

func TestFinnhubRequiresKey(t *testing.T) {
	_, err := NewFinnhubClient(FinnhubOptions{BaseURL: "http://127.0.0.1:1"}).Quote(context.Background(), "AAPL")
	assert.EqualError(t, err, "finnhub API key not configured")
}

func TestFinnhubQuoteErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("symbol") {
		case "LIMIT":
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte("slow down"))
		default:
			_, _ = w.Write([]byte("not json"))
		}
	}))
	defer srv.Close()

	fc := NewFinnhubClient(FinnhubOptions{BaseURL: srv.URL, APIKey: "secret"})
	_, err := fc.Quote(context.Background(), "LIMIT")
	assert.EqualError(t, err, "finnhub http 429: slow down")

	_, err = fc.Quote(context.Background(), "AAPL")
	assert.Error(t, err)
}

func TestLosers(t *testing.T) {
	in := []types.Quote{{Symbol: "A", ChangePercent: -1}, {Symbol: "B", ChangePercent: 2}, {Symbol: "C", ChangePercent: -3}}
	got := Losers(in, 0)
	require.Len(t, got, 2)
	assert.Equal(t, "C", got[0].Symbol)
	assert.Equal(t, "A", got[1].Symbol)
}

const alphaBody = `{
  "Meta Data": {"2. Symbol": "IBM"},
  "Time Series (Daily)": {
    "2025-01-03": {"1. open": "10.5", "2. high": "11", "3. low": "10", "4. close": "10.8", "5. volume": "1200"},
    "2025-01-02": {"1. open": "10", "2. high": "10.6", "3. low": "9.9", "4. close": "10.5", "5. volume": "1000"},
    "2019-01-02": {"1. open": "1", "2. high": "1", "3. low": "1", "4. close": "1", "5. volume": "1"}
  }
}`

func TestAlphaVantageHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "TIME_SERIES_DAILY", r.URL.Query().Get("function"))
		assert.Equal(t, "full", r.URL.Query().Get("outputsize"))
		if r.URL.Query().Get("symbol") == "LIMIT" {
			_, _ = w.Write([]byte(`{"Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute."}`))
			return
		}
		_, _ = w.Write([]byte(alphaBody))
	}))
	defer srv.Close()

	ac := NewAlphaVantageClient(srv.URL, "k", 365)
	ac.now = func() time.Time { return time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC) }

	rows, err := ac.History(context.Background(), "IBM")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, types.RawBar{Date: "2025-01-02", Open: "10", High: "10.6", Low: "9.9", Close: "10.5", Volume: "1000"}, rows[0])
	assert.Equal(t, "2025-01-03", rows[1].Date)

	_, err = ac.History(context.Background(), "LIMIT")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "call frequency")
}

type fakeHistory struct {
	rows  []types.RawBar
	err   error
	calls int
}

func (f *fakeHistory) History(_ context.Context, _ string) ([]types.RawBar, error) {
	f.calls++
	return f.rows, f.err
}

func TestFallbackHistory(t *testing.T) {
	bars := []types.RawBar{{Date: "2025-01-02", Close: "1"}}
	primary := &fakeHistory{err: errors.New("rate limited")}
	empty := &fakeHistory{}
	backup := &fakeHistory{rows: bars}

	f := NewFallbackHistory(NamedSource{"alpha", primary}, NamedSource{"empty", empty}, NamedSource{"yahoo", backup})
	got, err := f.History(context.Background(), "IBM")
	require.NoError(t, err)
	assert.Equal(t, bars, got)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, backup.calls)

	f = NewFallbackHistory(NamedSource{"alpha", primary}, NamedSource{"empty", empty})
	_, err = f.History(context.Background(), "IBM")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
	assert.Contains(t, err.Error(), "empty history")
}

func TestCachingHistoryNilRedis(t *testing.T) {
	inner := &fakeHistory{rows: []types.RawBar{{Date: "2025-01-02", Close: "1"}}}
	c := NewCachingHistory(nil, 0, inner, "")
	assert.Equal(t, 6*time.Hour, c.ttl)
	assert.Equal(t, "history", c.namespace)

	got, err := c.History(context.Background(), "IBM")
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, inner.calls)
}

func TestCachingHistoryHitAndMiss(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	bars := []types.RawBar{{Date: "2025-01-02", Open: "1", High: "1", Low: "1", Close: "1", Volume: "5"}}
	payload, _ := json.Marshal(bars)
	day := time.Date(2025, 1, 4, 15, 0, 0, 0, time.UTC)

	inner := &fakeHistory{rows: bars}
	c := NewCachingHistory(rdb, time.Hour, inner, "hist")
	c.now = func() time.Time { return day }

	mock.ExpectGet("hist:BRK_B:2025-01-04").RedisNil()
	mock.ExpectSet("hist:BRK_B:2025-01-04", payload, time.Hour).SetVal("OK")
	got, err := c.History(context.Background(), "BRK B")
	require.NoError(t, err)
	assert.Equal(t, bars, got)

	mock.ExpectGet("hist:BRK_B:2025-01-04").SetVal(string(payload))
	got, err = c.History(context.Background(), "BRK B")
	require.NoError(t, err)
	assert.Equal(t, bars, got)
	assert.Equal(t, 1, inner.calls, "second call must be served from cache")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCachingHistoryCorruptedEntry(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	bars := []types.RawBar{{Date: "2025-01-02", Close: "1"}}
	payload, _ := json.Marshal(bars)
	c := NewCachingHistory(rdb, time.Hour, &fakeHistory{rows: bars}, "hist")
	c.now = func() time.Time { return time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC) }

	mock.ExpectGet("hist:IBM:2025-01-04").SetVal("not json")
	mock.ExpectDel("hist:IBM:2025-01-04").SetVal(1)
	mock.ExpectSet("hist:IBM:2025-01-04", payload, time.Hour).SetVal("OK")

	got, err := c.History(context.Background(), "IBM")
	require.NoError(t, err)
	assert.Equal(t, bars, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCachingHistoryInnerError(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	boom := errors.New("upstream down")
	c := NewCachingHistory(rdb, time.Hour, &fakeHistory{err: boom}, "hist")
	c.now = func() time.Time { return time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC) }

	mock.ExpectGet("hist:IBM:2025-01-04").RedisNil()
	_, err := c.History(context.Background(), "IBM")
	assert.ErrorIs(t, err, boom)
}
