package main

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"

	"stock-advisor/internal/advisor"
	"stock-advisor/internal/advisor/advisorobs"
	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/llm/claude"
	"stock-advisor/internal/llm/llmobs"
	"stock-advisor/internal/llm/noop"
	"stock-advisor/internal/llm/openai"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/marketdata"
	"stock-advisor/internal/notify"
	"stock-advisor/internal/report"
	"stock-advisor/internal/store"
	"stock-advisor/internal/summary"
	"stock-advisor/internal/tradelog"
)

// initializeSystem loads .env and sets up logging and tracing.
func initializeSystem() error {
	_ = godotenv.Load()
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func loadConfig(ctx context.Context, path string) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// app holds the collaborators that own resources.
type app struct {
	advisor interfaces.Advisor
	ledger  *store.LedgerRepo
	journal *tradelog.Journal
	closers []func() error
}

func (a *app) Close() {
	for _, c := range a.closers {
		_ = c()
	}
}

func initializeQuotes(cfg *store.Config) interfaces.QuoteSource {
	return marketdata.NewFinnhubClient(marketdata.FinnhubOptions{
		BaseURL:    cfg.Market.FinnhubURL,
		APIKey:     cfg.Secrets.FinnhubAPIKey,
		LosersOnly: cfg.Market.LosersOnly,
		TopN:       cfg.Market.TopN,
	})
}

// initializeHistory builds Alpha Vantage with a Yahoo fallback, optionally behind redis.
func initializeHistory(ctx context.Context, cfg *store.Config) (interfaces.HistorySource, func() error) {
	var sources []marketdata.NamedSource
	if cfg.Secrets.AlphaAPIKey != "" {
		sources = append(sources, marketdata.NamedSource{
			Name:   "alphavantage",
			Source: marketdata.NewAlphaVantageClient(cfg.Market.AlphaURL, cfg.Secrets.AlphaAPIKey, cfg.Market.HistoryDays),
		})
	} else {
		logger.Warn(ctx, "ALPHA_API_KEY not set - using Yahoo history only")
	}
	sources = append(sources, marketdata.NamedSource{Name: "yahoo", Source: marketdata.NewYahooClient(cfg.Market.YahooYears)})
	var history interfaces.HistorySource = marketdata.NewFallbackHistory(sources...)

	if !cfg.Cache.Enabled {
		return history, func() error { return nil }
	}
	rdb, err := marketdata.NewRedisClient(ctx, cfg.Cache.Addr, cfg.Secrets.RedisPassword, cfg.Cache.DB)
	if err != nil {
		logger.Warn(ctx, "History cache disabled", "error", err)
		return history, func() error { return nil }
	}
	ttl := time.Duration(cfg.Cache.TTLMinutes) * time.Minute
	return marketdata.NewCachingHistory(rdb, ttl, history, cfg.Cache.Namespace+":history"), rdb.Close
}

func initializeSummary(ctx context.Context, cfg *store.Config) interfaces.SummarySource {
	if !cfg.Summary.Enabled {
		logger.Info(ctx, "Technical summary disabled")
		return nil
	}
	timeout := time.Duration(cfg.Summary.TimeoutSeconds) * time.Second
	var fetcher summary.Fetcher = summary.NewStaticFetcher(timeout)
	if cfg.Summary.Render {
		fetcher = summary.NewRenderedFetcher(timeout, cfg.Summary.WaitSelector)
	}
	sel := cfg.Summary.Selectors
	return summary.NewSource(fetcher, cfg.Summary.URLTemplate, summary.Selectors{Item: sel.Item, Label: sel.Label, Count: sel.Count})
}

// initializeOpinioner picks the language model and wraps it with observability.
func initializeOpinioner(ctx context.Context, cfg *store.Config) interfaces.Opinioner {
	var o interfaces.Opinioner
	switch cfg.LLM.Provider {
	case "OPENAI":
		o = openai.NewOpenAIOpinioner(cfg)
	case "CLAUDE":
		o = claude.NewClaudeOpinioner(cfg)
	default:
		o = noop.NewNoopOpinioner()
		logger.Warn(ctx, "No LLM provider configured - language model opinions disabled")
	}
	return llmobs.Wrap(o)
}

func initializePublishers(cfg *store.Config, journal *tradelog.Journal) []interfaces.Publisher {
	pubs := []interfaces.Publisher{report.NewCSVWriter(cfg.Report.Dir), journal}
	if cfg.Email.Enabled {
		pubs = append(pubs, notify.NewEmailer(notify.Options{
			Host:       cfg.Email.Host,
			Port:       cfg.Email.Port,
			Sender:     cfg.Email.Sender,
			Password:   cfg.Secrets.SMTPPassword,
			Recipients: cfg.Email.Recipients,
			Subject:    cfg.Email.Subject,
			RevenuePct: cfg.RevenuePercentage,
		}))
	}
	return pubs
}

func openLedger(cfg *store.Config) (*store.LedgerRepo, error) {
	repo, err := store.OpenLedger(cfg.Ledger.Driver, cfg.Ledger.DSN)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	return repo, nil
}

func initializeApp(ctx context.Context, cfg *store.Config) (*app, error) {
	repo, err := openLedger(cfg)
	if err != nil {
		return nil, err
	}
	loc, _ := cfg.Location()
	a := &app{ledger: repo, journal: tradelog.NewJournal(cfg.Journal.Dir, loc)}
	a.closers = append(a.closers, repo.Close)

	history, closeHistory := initializeHistory(ctx, cfg)
	a.closers = append(a.closers, closeHistory)

	adv, err := advisor.New(cfg, advisor.Deps{
		Quotes:     initializeQuotes(cfg),
		History:    history,
		Summary:    initializeSummary(ctx, cfg),
		Opinioner:  initializeOpinioner(ctx, cfg),
		Ledger:     repo,
		Publishers: initializePublishers(cfg, a.journal),
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.advisor = advisorobs.Wrap(adv)
	return a, nil
}

// compressOldLogs archives journal files past the retention window.
func compressOldLogs(ctx context.Context, cfg *store.Config) {
	n, err := tradelog.CompressOlder(cfg.Journal.Dir, cfg.Journal.RetentionDays, time.Now())
	if err != nil {
		logger.Warn(ctx, "Failed to compress old journal files", "error", err)
		return
	}
	if n > 0 {
		logger.Info(ctx, "Compressed old journal files", "count", n)
	}
}
